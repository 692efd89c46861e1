package jsvs

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jsvs/jsvs/internal/engine"
	"github.com/jsvs/jsvs/internal/report"
	"github.com/jsvs/jsvs/internal/rules"
	"github.com/jsvs/jsvs/internal/types"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func init() {
	cmd := &cobra.Command{
		Use:   "test-rule [id]",
		Short: "Scan JavaScript read from stdin, optionally with a single rule",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTestRule,
	}
	cmd.Long = "Without an id the full pipeline runs (rules, hex, Base64 layers, correlation).\nAvailable rules: " + strings.Join(rules.IDs(), ", ")
	addShowDecodedFlag(cmd)
	rootCmd.AddCommand(cmd)
}

func runTestRule(cmd *cobra.Command, args []string) error {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "reading from stdin (end with Ctrl-D)...")
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}

	var findings []types.Finding
	var diags []string
	var decoded []report.DecodedLayer
	if len(args) == 1 {
		r, ok := rules.ByID(args[0])
		if !ok {
			return fmt.Errorf("unknown rule id: %s (available: %s)", args[0], strings.Join(rules.IDs(), ", "))
		}
		findings = rules.MatchRules([]rules.Rule{r}, string(data), false)
	} else {
		log := newLogger(flagVerbose)
		defer func() { _ = log.Sync() }()
		res := engine.ScanText(cmd.Context(), string(data), engine.Config{Logger: log})
		findings, diags = res.Findings, res.Diagnostics
		decoded = unitLayers("", res.Layers)
	}

	w := cmd.OutOrStdout()
	switch {
	case flagSARIF:
		return report.WriteSARIF(w, findings)
	case flagJSON:
		return report.WriteJSON(w, findings, report.PrintOptions{Diagnostics: diags, Decoded: decoded})
	default:
		noColor := flagNoColor || os.Getenv("NO_COLOR") != "" || !term.IsTerminal(int(os.Stdout.Fd()))
		opts := report.PrintOptions{NoColor: noColor, Diagnostics: diags}
		if flagShowDecoded {
			opts.Decoded = decoded
		}
		report.PrintText(w, findings, opts)
	}
	return nil
}
