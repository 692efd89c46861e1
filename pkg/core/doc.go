// Package core provides a small, stable facade over the jsvs engine for
// programs that embed the scanner. It re-exports a narrow API surface so
// callers do not import internal packages.
//
// Example:
//
//	findings := core.Scan(src)
//	_ = core.MarshalFindings(os.Stdout, findings)
package core
