package detectors

import (
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jsvs/jsvs/internal/rules"
	"github.com/jsvs/jsvs/internal/types"
)

// Base64Keyword tags the aggregate Base64 finding.
const Base64Keyword = "base64"

// MinBase64Run is the shortest alphabet run considered a Base64 payload.
const MinBase64Run = 50

var (
	// ErrDecode is returned when the harvested runs are not valid Base64.
	ErrDecode = errors.New("harvested text is not valid base64")
	// ErrNotUTF8 is returned when the decoded bytes are not UTF-8 text.
	ErrNotUTF8 = errors.New("decoded base64 is not valid utf-8")
)

var reBase64Run = regexp.MustCompile(fmt.Sprintf(`\b[A-Za-z0-9+/=]{%d,}\b`, MinBase64Run))

// Harvest is the outcome of one Base64 extraction attempt.
type Harvest struct {
	// Finding is set whenever at least one run was found, even when decoding fails.
	Finding *types.Finding
	// Runs is the number of runs that were concatenated.
	Runs int
	// Decoded holds the decoded text when OK is true.
	Decoded string
	OK      bool
	// Err explains why decoding failed (wraps ErrDecode or ErrNotUTF8).
	Err error
}

// Base64 collects every long Base64-alphabet run in order of appearance,
// joins them without a separator and tries to decode the result as UTF-8
// text. Unrelated runs joined together usually fail to decode.
func Base64(text string, decoded bool) Harvest {
	runs := reBase64Run.FindAllString(text, -1)
	if len(runs) == 0 {
		return Harvest{}
	}
	h := Harvest{
		Runs: len(runs),
		Finding: &types.Finding{
			Keyword:     Base64Keyword,
			Description: rules.Describe("Base64 encoded text found", decoded),
			Severity:    rules.Escalate(types.SevWarning, decoded),
		},
	}
	joined := strings.TrimRight(strings.Join(runs, ""), "=")
	raw, err := base64.RawStdEncoding.DecodeString(joined)
	if err != nil {
		h.Err = fmt.Errorf("%w: %v", ErrDecode, err)
		return h
	}
	if !utf8.Valid(raw) {
		h.Err = ErrNotUTF8
		return h
	}
	h.Decoded = string(raw)
	h.OK = true
	return h
}
