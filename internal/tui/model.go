package tui

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jsvs/jsvs/internal/types"
)

var (
	detailPaneBorderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true).
			Padding(0, 1)

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("7"))

	sevAlertStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	sevWarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	safeStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// snippetRadius is the number of bytes shown on each side of a finding.
const snippetRadius = 160

// Item is a finding together with the text of the layer it was found in.
// Base is the position of Source in the finding's offset space, non-zero for
// inline scripts whose offsets point into the page.
type Item struct {
	Finding types.Finding
	Source  string
	Base    int
}

// ScanFunc produces a fresh set of items for a rescan.
type ScanFunc func() ([]Item, error)

// severityText returns plain text for severity (ANSI codes break table truncation).
func severityText(s types.Severity) string {
	switch s {
	case types.SevAlert:
		return "ALERT"
	case types.SevWarning:
		return "WARN"
	default:
		return string(s)
	}
}

// Model is the state of the findings browser.
type Model struct {
	table    table.Model
	viewport viewport.Model
	items    []Item
	// visible maps table rows to indexes into items.
	visible    []int
	alertsOnly bool
	rescan     ScanFunc

	width, height int
	ready         bool
	quitting      bool
	scanning      bool
	statusMessage string
}

type itemsMsg []Item
type statusMsg string

// NewModel builds a model over items. rescan may be nil.
func NewModel(items []Item, rescan ScanFunc) Model {
	columns := []table.Column{
		{Title: "Sev", Width: 7},
		{Title: "Keyword", Width: 26},
		{Title: "Location", Width: 40},
		{Title: "Layer", Width: 5},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("15")).
		Bold(true).
		Padding(0, 1).
		Align(lipgloss.Left)
	s.Selected = lipgloss.NewStyle().
		Foreground(lipgloss.Color("232")).
		Background(lipgloss.Color("208")).
		Bold(true).
		Padding(0, 1)
	s.Cell = lipgloss.NewStyle().Padding(0, 1)
	t.SetStyles(s)

	m := Model{
		table:         t,
		viewport:      viewport.New(80, 10),
		rescan:        rescan,
		statusMessage: "q: quit | j/k: navigate | c: copy | s: alerts only | r: rescan",
	}
	m.setItems(items)
	return m
}

func (m *Model) setItems(items []Item) {
	m.items = items
	m.rebuildRows()
}

func (m *Model) rebuildRows() {
	m.visible = make([]int, 0, len(m.items))
	rows := make([]table.Row, 0, len(m.items))
	for i, it := range m.items {
		f := it.Finding
		if m.alertsOnly && f.Severity != types.SevAlert {
			continue
		}
		m.visible = append(m.visible, i)
		loc := fmt.Sprintf("%d", f.Offset)
		if f.Path != "" {
			loc = f.Path + ":" + loc
		}
		rows = append(rows, table.Row{severityText(f.Severity), f.Keyword, loc, fmt.Sprintf("%d", f.Layer)})
	}
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
	m.updateViewportContent()
}

// selected returns the item under the cursor.
func (m Model) selected() *Item {
	c := m.table.Cursor()
	if c < 0 || c >= len(m.visible) {
		return nil
	}
	return &m.items[m.visible[c]]
}

func (m *Model) updateViewportContent() {
	it := m.selected()
	if it == nil {
		m.viewport.SetContent("")
		return
	}
	m.viewport.SetContent(renderDetail(*it))
	m.viewport.GotoTop()
}

func renderDetail(it Item) string {
	f := it.Finding
	var b strings.Builder
	sev := sevWarningStyle.Render(severityText(f.Severity))
	if f.Severity == types.SevAlert {
		sev = sevAlertStyle.Render(severityText(f.Severity))
	}
	fmt.Fprintf(&b, "%s %s\n", keyStyle.Render("Severity:"), sev)
	fmt.Fprintf(&b, "%s %s\n", keyStyle.Render("Keyword:"), f.Keyword)
	fmt.Fprintf(&b, "%s %s\n", keyStyle.Render("Description:"), f.Description)
	if f.Path != "" {
		fmt.Fprintf(&b, "%s %s\n", keyStyle.Render("Path:"), f.Path)
	}
	if f.Unit != "" {
		fmt.Fprintf(&b, "%s %s\n", keyStyle.Render("Script:"), f.Unit)
	}
	fmt.Fprintf(&b, "%s %d  %s %d\n\n", keyStyle.Render("Offset:"), f.Offset, keyStyle.Render("Layer:"), f.Layer)
	if s := snippet(it.Source, sourceOffset(it.Source, f.Offset-it.Base)); s != "" {
		b.WriteString(highlightCode(s))
		b.WriteString("\n")
	}
	return b.String()
}

// sourceOffset maps an offset into strings.ToLower(src) back to src. The two
// differ in length when lowering changes a rune's encoded size.
func sourceOffset(src string, lowered int) int {
	n := 0
	for i, r := range src {
		if n >= lowered {
			return i
		}
		n += utf8.RuneLen(unicode.ToLower(r))
	}
	return len(src)
}

// snippet cuts the text around offset, aligned to rune boundaries.
func snippet(text string, offset int) string {
	if text == "" {
		return ""
	}
	offset = min(max(offset, 0), len(text))
	start := max(offset-snippetRadius, 0)
	end := min(offset+snippetRadius, len(text))
	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end++
	}
	return text[start:end]
}

func highlightCode(code string) string {
	lexer := lexers.Get("javascript")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return buf.String()
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "c":
			return m, m.copyFindingToClipboard()
		case "s":
			m.alertsOnly = !m.alertsOnly
			m.rebuildRows()
			return m, nil
		case "r":
			if m.scanning {
				return m, nil
			}
			m.scanning = true
			m.statusMessage = "Rescanning..."
			return m, m.rescanCmd()
		case "pgdown", "pgup":
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		before := m.table.Cursor()
		m.table, cmd = m.table.Update(msg)
		if m.table.Cursor() != before {
			m.updateViewportContent()
		}
		return m, cmd

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		tableHeight := max(msg.Height/2-3, 3)
		m.table.SetHeight(tableHeight)
		m.viewport.Width = max(msg.Width-2, 10)
		m.viewport.Height = max(msg.Height-tableHeight-7, 3)
		m.updateViewportContent()
		return m, nil

	case itemsMsg:
		m.scanning = false
		m.setItems(msg)
		m.statusMessage = fmt.Sprintf("Rescan complete: %d findings", len(msg))
		return m, nil

	case statusMsg:
		m.scanning = false
		m.statusMessage = string(msg)
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Initializing..."
	}
	var alerts, warnings int
	for _, it := range m.items {
		switch it.Finding.Severity {
		case types.SevAlert:
			alerts++
		case types.SevWarning:
			warnings++
		}
	}
	var stats string
	if len(m.items) == 0 {
		stats = safeStyle.Render("[OK] No suspicious patterns found")
	} else {
		stats = fmt.Sprintf("Total: %-4d  |  %s %-4d  |  %s %-4d",
			len(m.items), sevAlertStyle.Render("Alerts:"), alerts, sevWarningStyle.Render("Warnings:"), warnings)
		if m.alertsOnly {
			stats += "  [alerts only]"
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("jsvs")+" "+stats,
		m.table.View(),
		detailPaneBorderStyle.Render(m.viewport.View()),
		statusStyle.Width(max(m.width, 1)).Render(m.statusMessage),
	)
}
