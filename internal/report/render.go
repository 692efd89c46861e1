package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/jsvs/jsvs/internal/rules"
	"github.com/jsvs/jsvs/internal/types"
	"github.com/olekukonko/tablewriter"
)

// SafeMessage is printed when a scan produced no findings.
const SafeMessage = "No suspicious patterns found, the code looks safe ✅"

type PrintOptions struct {
	NoColor      bool
	Duration     time.Duration
	FilesScanned int
	// Diagnostics are printed after the findings, one per line.
	Diagnostics []string
	// Decoded layers are printed after the findings and always written to JSON.
	Decoded []DecodedLayer
}

var (
	alertStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
)

// PrintText writes one line per finding in emission order followed by a
// summary footer.
func PrintText(w io.Writer, findings []types.Finding, opts PrintOptions) {
	if len(findings) == 0 {
		fmt.Fprintln(w, SafeMessage)
	}
	for _, f := range findings {
		loc := "offset " + strconv.Itoa(f.Offset)
		if p := locationPath(f); p != "" {
			loc = p + ":" + strconv.Itoa(f.Offset)
		}
		if f.Layer > 0 {
			loc += " " + paint(dimStyle, fmt.Sprintf("(layer %d)", f.Layer), opts.NoColor)
		}
		fmt.Fprintf(w, "%s keyword: %s found at %s  %s\n", severityLabel(f.Severity, opts.NoColor), f.Keyword, loc, f.Description)
	}
	printFooter(w, findings, opts)
}

// PrintTable renders findings as a bordered table.
func PrintTable(w io.Writer, findings []types.Finding, opts PrintOptions) {
	if len(findings) == 0 {
		fmt.Fprintln(w, SafeMessage)
	} else {
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("SEVERITY", "KEYWORD", "LOCATION", "LAYER", "DESCRIPTION").
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return cellStyle
			})
		for _, f := range findings {
			loc := strconv.Itoa(f.Offset)
			if p := locationPath(f); p != "" {
				loc = p + ":" + loc
			}
			t.Row(severityLabel(f.Severity, opts.NoColor), f.Keyword, loc, strconv.Itoa(f.Layer), f.Description)
		}
		fmt.Fprintln(w, t.String())
	}
	printFooter(w, findings, opts)
}

// locationPath names the text an offset points into. Page offsets of inline
// scripts use the page; decoded layers are told apart by their script.
func locationPath(f types.Finding) string {
	if f.Layer > 0 && f.Unit != "" {
		return f.Unit
	}
	return f.Path
}

func printFooter(w io.Writer, findings []types.Finding, opts PrintOptions) {
	printDecoded(w, opts.Decoded, opts.NoColor)
	for _, d := range opts.Diagnostics {
		fmt.Fprintln(w, paint(dimStyle, "note: "+d, opts.NoColor))
	}
	alerts, warnings := Counts(findings)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total findings: %d (alerts: %d, warnings: %d)\n", len(findings), alerts, warnings)
	if opts.Duration > 0 {
		fmt.Fprintf(w, "Scan duration: %.2fs\n", opts.Duration.Seconds())
	}
	if opts.FilesScanned > 0 {
		fmt.Fprintf(w, "Files scanned: %d\n", opts.FilesScanned)
	}
}

// PrintRules lists the rule table.
func PrintRules(w io.Writer, rs []rules.Rule) error {
	tw := tablewriter.NewWriter(w)
	tw.Header("ID", "Severity", "Description", "Keywords")
	rows := make([][]string, 0, len(rs))
	for _, r := range rs {
		rows = append(rows, []string{r.ID, string(r.Severity), r.Description, strings.Join(r.Keywords, " ")})
	}
	if err := tw.Bulk(rows); err != nil {
		return err
	}
	return tw.Render()
}

func severityLabel(s types.Severity, noColor bool) string {
	switch s {
	case types.SevAlert:
		return paint(alertStyle, "ALERT  ", noColor)
	default:
		return paint(warningStyle, "WARNING", noColor)
	}
}

func paint(st lipgloss.Style, s string, noColor bool) string {
	if noColor {
		return s
	}
	return st.Render(s)
}
