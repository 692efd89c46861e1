// Package engine drives detection: it runs the rule table, the hex and Base64
// detectors over a text buffer, re-scans decoded Base64 payloads layer by
// layer under explicit limits, and correlates the results. It also walks
// files and directories for the CLI. External consumers should use the
// facade in pkg/core.
package engine
