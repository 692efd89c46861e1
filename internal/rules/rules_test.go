package rules

import (
	"strings"
	"testing"

	"github.com/jsvs/jsvs/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_WellFormed(t *testing.T) {
	ids := map[string]bool{}
	for _, r := range Table() {
		require.NotEmpty(t, r.ID)
		require.False(t, ids[r.ID], "duplicate rule id %s", r.ID)
		ids[r.ID] = true
		require.NotEmpty(t, r.Description, r.ID)
		require.NotEmpty(t, r.Keywords, r.ID)
		require.Contains(t, []types.Severity{types.SevWarning, types.SevAlert}, r.Severity, r.ID)
		seen := map[string]bool{}
		for _, kw := range r.Keywords {
			require.NotEmpty(t, kw, r.ID)
			require.Equal(t, strings.ToLower(kw), kw, "keyword %q in %s must be lowercase", kw, r.ID)
			require.False(t, seen[kw], "duplicate keyword %q in %s", kw, r.ID)
			seen[kw] = true
		}
	}
}

func TestTable_ReturnsCopy(t *testing.T) {
	a := Table()
	a[0].Keywords[0] = "mutated"
	a[0].Description = "mutated"
	b := Table()
	assert.Equal(t, "eval", b[0].Keywords[0])
	assert.Equal(t, "Possible XSS", b[0].Description)
}

func TestByID(t *testing.T) {
	r, ok := ByID("xss")
	require.True(t, ok)
	assert.Equal(t, types.SevAlert, r.Severity)
	_, ok = ByID("nope")
	assert.False(t, ok)
	assert.Equal(t, len(Table()), len(IDs()))
}

func TestMatch_Empty(t *testing.T) {
	assert.Empty(t, Match("", false))
	assert.Empty(t, Match(`console.log("Hello from the safe code!")`, false))
}

func TestMatch_EvalOnly(t *testing.T) {
	fs := Match("x = EVAL(y)", false)
	require.Len(t, fs, 1)
	assert.Equal(t, types.Finding{Keyword: "eval", Offset: 4, Description: "Possible XSS", Severity: types.SevAlert}, fs[0])
}

func TestMatch_FirstOccurrenceOnly(t *testing.T) {
	fs := Match("eval(a); eval(b); eval(c)", false)
	require.Len(t, fs, 1)
	assert.Equal(t, 0, fs[0].Offset)
}

func TestMatch_OverlappingKeywordsBothFire(t *testing.T) {
	text := `var f = document.createElement("iframe");`
	fs := Match(text, false)
	var kws []string
	for _, f := range fs {
		kws = append(kws, f.Keyword)
	}
	assert.Equal(t, []string{
		`document.createelement("iframe")`,
		"iframe",
		"document.createelement",
	}, kws)
}

func TestMatch_TableThenKeywordOrder(t *testing.T) {
	text := `var r = new XMLHttpRequest(); xhr.open("GET", u); eval(r);`
	fs := Match(text, false)
	require.Len(t, fs, 3)
	assert.Equal(t, "eval", fs[0].Keyword)
	assert.Equal(t, "xmlhttprequest", fs[1].Keyword)
	assert.Equal(t, "xhr.open", fs[2].Keyword)
	assert.Equal(t, "Possible insecure API call", fs[1].Description)
	assert.Equal(t, types.SevWarning, fs[1].Severity)
	assert.Equal(t, strings.Index(strings.ToLower(text), "xhr.open"), fs[2].Offset)
}

func TestMatch_DecodedEscalates(t *testing.T) {
	fs := Match("localStorage.getItem('token')", true)
	require.Len(t, fs, 1)
	assert.Equal(t, types.SevAlert, fs[0].Severity)
	assert.Equal(t, "Access to browser storage (possible PII harvesting)"+DecodedSuffix, fs[0].Description)
}

func TestMatchRules_Subset(t *testing.T) {
	r, _ := ByID("remote_url")
	fs := MatchRules([]Rule{r}, "eval('https://x')", false)
	require.Len(t, fs, 1)
	assert.Equal(t, "https://", fs[0].Keyword)
	assert.Empty(t, MatchRules([]Rule{r}, "", false))
}

func TestMatch_Idempotent(t *testing.T) {
	text := `fetch("http://a"); document.cookie; atob(x)`
	assert.Equal(t, Match(text, false), Match(text, false))
}

func TestMatch_FetchWithoutCallSyntax(t *testing.T) {
	for _, text := range []string{`fetch("/x")`, `fetch ("/x")`, `const f = fetch; f(u)`} {
		t.Run(text, func(t *testing.T) {
			fs := Match(text, false)
			require.Len(t, fs, 1)
			assert.Equal(t, "fetch", fs[0].Keyword)
			assert.Equal(t, strings.Index(text, "fetch"), fs[0].Offset)
			assert.Equal(t, "Possible insecure API call", fs[0].Description)
		})
	}
}
