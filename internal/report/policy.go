package report

import (
	"strings"

	"github.com/jsvs/jsvs/internal/types"
)

// FailOnNone disables the failing exit status.
const FailOnNone = "none"

// ShouldFail reports whether any finding is at or above the failOn level
// (warning, alert or none). Unknown levels behave like alert.
func ShouldFail(findings []types.Finding, failOn string) bool {
	level := strings.ToLower(strings.TrimSpace(failOn))
	if level == FailOnNone {
		return false
	}
	th := types.Severity(level).Rank()
	if th == 0 {
		th = types.SevAlert.Rank()
	}
	for _, f := range findings {
		if f.Severity.Rank() >= th {
			return true
		}
	}
	return false
}

// Counts returns the number of alerts and warnings.
func Counts(findings []types.Finding) (alerts, warnings int) {
	for _, f := range findings {
		switch f.Severity {
		case types.SevAlert:
			alerts++
		case types.SevWarning:
			warnings++
		}
	}
	return alerts, warnings
}
