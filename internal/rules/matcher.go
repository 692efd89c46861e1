package rules

import (
	"strings"
	"sync"

	"github.com/jsvs/jsvs/internal/types"
	ac "github.com/petar-dambovaliev/aho-corasick"
)

// DecodedSuffix is appended to descriptions of findings from decoded layers.
const DecodedSuffix = " (decoded from Base64)"

var (
	prefilterOnce sync.Once
	prefilter     *ac.AhoCorasick
)

// buildPrefilter compiles every distinct keyword into one automaton. It only
// answers "does any keyword occur at all"; per-keyword offsets still come
// from a plain substring search because the automaton reports
// non-overlapping matches.
func buildPrefilter() {
	seen := map[string]bool{}
	var patterns []string
	for _, r := range table {
		for _, kw := range r.Keywords {
			if kw == "" || seen[kw] {
				continue
			}
			seen[kw] = true
			patterns = append(patterns, kw)
		}
	}
	if len(patterns) == 0 {
		return
	}
	builder := ac.NewAhoCorasickBuilder(ac.Opts{
		AsciiCaseInsensitive: false,
		MatchKind:            ac.LeftMostLongestMatch,
	})
	built := builder.Build(patterns)
	prefilter = &built
}

func anyKeyword(lower string) bool {
	prefilterOnce.Do(buildPrefilter)
	if prefilter == nil {
		return false
	}
	return len(prefilter.FindAll(lower)) > 0
}

// Match runs the rule table over text and returns one finding per (rule,
// keyword) pair present, at the keyword's first occurrence. Findings from a
// decoded layer are always alerts and carry DecodedSuffix.
func Match(text string, decoded bool) []types.Finding {
	if text == "" {
		return nil
	}
	lower := strings.ToLower(text)
	if !anyKeyword(lower) {
		return nil
	}
	return matchLower(table, lower, decoded)
}

// MatchRules is Match over an explicit rule set, without the prefilter.
func MatchRules(rs []Rule, text string, decoded bool) []types.Finding {
	if text == "" {
		return nil
	}
	return matchLower(rs, strings.ToLower(text), decoded)
}

func matchLower(rs []Rule, lower string, decoded bool) []types.Finding {
	var out []types.Finding
	for _, r := range rs {
		for _, kw := range r.Keywords {
			idx := strings.Index(lower, kw)
			if idx < 0 {
				continue
			}
			out = append(out, types.Finding{
				Keyword:     kw,
				Offset:      idx,
				Description: Describe(r.Description, decoded),
				Severity:    Escalate(r.Severity, decoded),
			})
		}
	}
	return out
}

// Escalate applies the decoded-layer rule: decoded content is never reported
// below alert.
func Escalate(base types.Severity, decoded bool) types.Severity {
	if decoded {
		return types.SevAlert
	}
	return base
}

// Describe annotates a description for decoded-layer findings.
func Describe(desc string, decoded bool) string {
	if decoded {
		return desc + DecodedSuffix
	}
	return desc
}
