package detectors

import (
	"fmt"
	"regexp"

	"github.com/jsvs/jsvs/internal/rules"
	"github.com/jsvs/jsvs/internal/types"
)

// HexKeyword tags the aggregate hex-literal finding.
const HexKeyword = "hex-agg"

// HeavyHexThreshold is the literal count at which hex usage is an alert.
const HeavyHexThreshold = 10

// 0x-prefixed integers, #rrggbb colors and bare 8-digit hex tokens.
var reHexLiteral = regexp.MustCompile(`(?i)\b(?:0x[a-f0-9]+|#[a-f0-9]{6}|\b[a-f0-9]{8}\b)\b`)

// CountHex returns the number of non-overlapping hex literals in text.
func CountHex(text string) int {
	return len(reHexLiteral.FindAllStringIndex(text, -1))
}

// Hex emits a single aggregate finding scored by the volume of hex literals
// in text. Volume is the signal, so individual literals are not reported.
func Hex(text string, decoded bool) (types.Finding, bool) {
	n := CountHex(text)
	if n == 0 {
		return types.Finding{}, false
	}
	sev := types.SevWarning
	desc := fmt.Sprintf("Found %d hex values", n)
	if n >= HeavyHexThreshold {
		sev = types.SevAlert
		desc = fmt.Sprintf("Found %d hex values, possible heavy obfuscation", n)
	}
	return types.Finding{
		Keyword:     HexKeyword,
		Description: rules.Describe(desc, decoded),
		Severity:    rules.Escalate(sev, decoded),
	}, true
}
