package core

import (
	"context"

	"github.com/jsvs/jsvs/internal/engine"
	"github.com/jsvs/jsvs/internal/rules"
	"github.com/jsvs/jsvs/internal/types"
)

// Re-export selected internal types as a stable public API surface.
// These are type aliases so external consumers can depend on a stable path.
type (
	Config     = engine.Config
	Limits     = engine.Limits
	Result     = engine.Result
	PathConfig = engine.PathConfig
	Report     = engine.Report
	Finding    = types.Finding
	Severity   = types.Severity
)

const (
	SevWarning = types.SevWarning
	SevAlert   = types.SevAlert
)

// ErrPathNotFound is returned by ScanPaths for a missing target.
var ErrPathNotFound = engine.ErrPathNotFound

// Scan analyzes one JavaScript text with default limits and returns its
// findings in emission order.
func Scan(text string) []Finding {
	return engine.Scan(text)
}

// ScanText is Scan with explicit limits, logger and cancellation, returning
// decoded layers and diagnostics as well.
func ScanText(ctx context.Context, text string, cfg Config) Result {
	return engine.ScanText(ctx, text, cfg)
}

// ScanPaths scans a file or a directory tree.
func ScanPaths(ctx context.Context, cfg PathConfig) (Report, error) {
	return engine.ScanPaths(ctx, cfg)
}

// RuleIDs returns the identifiers of the built-in rules in evaluation order.
func RuleIDs() []string { return rules.IDs() }
