package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

// copyFindingToClipboard copies the selected finding as one line of text.
func (m Model) copyFindingToClipboard() tea.Cmd {
	it := m.selected()
	if it == nil {
		return func() tea.Msg { return statusMsg("No finding selected") }
	}
	text := findingText(*it)
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return statusMsg(fmt.Sprintf("Clipboard error: %v", err))
		}
		return statusMsg("Copied finding details to clipboard")
	}
}

func findingText(it Item) string {
	f := it.Finding
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s", f.Severity, f.Keyword)
	if f.Path != "" {
		fmt.Fprintf(&sb, " %s:%d", f.Path, f.Offset)
	} else {
		fmt.Fprintf(&sb, " offset %d", f.Offset)
	}
	if f.Layer > 0 {
		fmt.Fprintf(&sb, " layer %d", f.Layer)
	}
	fmt.Fprintf(&sb, ": %s", f.Description)
	return sb.String()
}

func (m Model) rescanCmd() tea.Cmd {
	scan := m.rescan
	return func() tea.Msg {
		if scan == nil {
			return statusMsg("Rescan not available")
		}
		items, err := scan()
		if err != nil {
			return statusMsg(fmt.Sprintf("Scan error: %v", err))
		}
		return itemsMsg(items)
	}
}
