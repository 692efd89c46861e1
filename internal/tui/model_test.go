package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jsvs/jsvs/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleItems() []Item {
	src := `var r = xhr.responseText; eval(r);`
	return []Item{
		{Finding: types.Finding{Path: "a.js", Keyword: "eval", Offset: 26, Description: "Possible XSS", Severity: types.SevAlert}, Source: src},
		{Finding: types.Finding{Path: "a.js", Keyword: "xhr.responsetext", Offset: 8, Description: "Reading response of a remote request", Severity: types.SevWarning}, Source: src},
		{Finding: types.Finding{Path: "b.js", Keyword: "atob", Offset: 0, Description: "Base64 encoding/decoding routine used (decoded from Base64)", Severity: types.SevAlert, Layer: 1}, Source: "atob(x)"},
	}
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewModel_Rows(t *testing.T) {
	m := NewModel(sampleItems(), nil)
	rows := m.table.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, "ALERT", rows[0][0])
	assert.Equal(t, "a.js:26", rows[0][2])
	assert.Equal(t, "WARN", rows[1][0])
	assert.Equal(t, "1", rows[2][3])
}

func TestUpdate_AlertsOnlyToggle(t *testing.T) {
	m := NewModel(sampleItems(), nil)
	next, _ := m.Update(key("s"))
	m = next.(Model)
	require.Len(t, m.table.Rows(), 2)
	assert.Equal(t, "atob", m.table.Rows()[1][1])

	next, _ = m.Update(key("s"))
	m = next.(Model)
	assert.Len(t, m.table.Rows(), 3)
}

func TestUpdate_Navigation(t *testing.T) {
	m := NewModel(sampleItems(), nil)
	next, _ := m.Update(key("j"))
	m = next.(Model)
	require.NotNil(t, m.selected())
	assert.Equal(t, "xhr.responsetext", m.selected().Finding.Keyword)
}

func TestUpdate_Quit(t *testing.T) {
	m := NewModel(sampleItems(), nil)
	next, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.True(t, next.(Model).quitting)
	assert.Equal(t, "", next.(Model).View())
}

func TestUpdate_Rescan(t *testing.T) {
	m := NewModel(nil, func() ([]Item, error) { return sampleItems()[:1], nil })
	next, cmd := m.Update(key("r"))
	m = next.(Model)
	assert.True(t, m.scanning)
	require.NotNil(t, cmd)

	next, _ = m.Update(cmd())
	m = next.(Model)
	assert.False(t, m.scanning)
	assert.Len(t, m.table.Rows(), 1)
	assert.Contains(t, m.statusMessage, "1 findings")
}

func TestUpdate_RescanError(t *testing.T) {
	m := NewModel(nil, func() ([]Item, error) { return nil, errors.New("boom") })
	_, cmd := m.Update(key("r"))
	msg := cmd()
	assert.Equal(t, statusMsg("Scan error: boom"), msg)
}

func TestView_Stats(t *testing.T) {
	m := NewModel(sampleItems(), nil)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	out := next.(Model).View()
	assert.Contains(t, out, "Total: 3")
	assert.Contains(t, out, "Possible XSS")

	empty := NewModel(nil, nil)
	next, _ = empty.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Contains(t, next.(Model).View(), "No suspicious patterns found")
}

func TestSnippet(t *testing.T) {
	text := strings.Repeat("a", 400) + "eval(x)" + strings.Repeat("b", 400)
	s := snippet(text, 400)
	assert.Contains(t, s, "eval(x)")
	assert.Len(t, s, 2*snippetRadius)

	assert.Equal(t, "", snippet("", 5))
	assert.Equal(t, "short", snippet("short", 99))

	// never splits a multi-byte rune
	multi := strings.Repeat("é", 200)
	assert.True(t, strings.HasPrefix(snippet(multi, 201), "é"))
}

func TestSourceOffset(t *testing.T) {
	ascii := "var x = eval(y)"
	assert.Equal(t, 8, sourceOffset(ascii, 8))
	assert.Equal(t, len(ascii), sourceOffset(ascii, 99))

	// 'İ' (2 bytes) lowers to 'i', the Kelvin sign (3 bytes) to 'k', an invalid byte to U+FFFD
	for _, src := range []string{"İİ eval(x)", "\u212a\u212a eval(x)", "ab\xffc eval(x)"} {
		lowered := strings.Index(strings.ToLower(src), "eval")
		got := sourceOffset(src, lowered)
		assert.True(t, strings.HasPrefix(src[got:], "eval"), "%q -> %d", src, got)
	}
}

func TestRenderDetail_InlineScript(t *testing.T) {
	page := "<p>hi</p><script>"
	script := "var K\u212a = 1; eval(K)"
	off := len(page) + strings.Index(strings.ToLower(script), "eval")
	it := Item{
		Finding: types.Finding{Path: "p.html", Unit: "p.html::script[1]", Keyword: "eval", Offset: off, Description: "Possible XSS", Severity: types.SevAlert},
		Source:  script,
		Base:    len(page),
	}
	out := renderDetail(it)
	assert.Contains(t, out, "p.html::script[1]")
	assert.Contains(t, out, "eval")
}

func TestFindingText(t *testing.T) {
	items := sampleItems()
	assert.Equal(t, "[alert] eval a.js:26: Possible XSS", findingText(items[0]))
	assert.Equal(t, "[alert] atob b.js:0 layer 1: Base64 encoding/decoding routine used (decoded from Base64)", findingText(items[2]))
}
