package jsvs

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/jsvs/jsvs/internal/engine"
	"github.com/jsvs/jsvs/internal/report"
	"github.com/jsvs/jsvs/internal/rules"
	"github.com/jsvs/jsvs/internal/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Output formats.
const (
	formatText  = "text"
	formatTable = "table"
	formatJSON  = "json"
	formatSARIF = "sarif"
	formatTUI   = "tui"
)

var (
	flagPath            string
	flagInclude         string
	flagExclude         string
	flagThreads         int
	flagMaxDepth        int
	flagMaxBytes        int64
	flagMaxFileBytes    int64
	flagTimeBudget      time.Duration
	flagDefaultExcludes bool
	flagTable           bool
	flagTUI             bool
	flagShowDecoded     bool
)

func init() {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan a JavaScript file or a directory",
		Args:  cobra.NoArgs,
		RunE:  runScan,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVarP(&flagPath, "filepath", "f", "", "file or directory to scan")
	_ = cmd.MarkFlagRequired("filepath")
	addScanFlags(cmd)
	cmd.Flags().BoolVar(&flagTable, "table", false, "output a bordered table")
	cmd.Flags().BoolVar(&flagTUI, "tui", false, "browse findings interactively")
	addShowDecodedFlag(cmd)
}

func addShowDecodedFlag(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&flagShowDecoded, "show-decoded", false, "print decoded Base64 layers after the findings (always included in JSON)")
}

// addScanFlags registers the flags shared by scan and watch.
func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagInclude, "include", "", "comma-separated include globs")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "comma-separated exclude globs")
	cmd.Flags().IntVar(&flagThreads, "threads", 0, "worker count (0 = GOMAXPROCS)")
	cmd.Flags().IntVar(&flagMaxDepth, "max-depth", 0, fmt.Sprintf("max Base64 decode depth (default %d)", engine.DefaultMaxDepth))
	cmd.Flags().Int64Var(&flagMaxBytes, "max-bytes", 0, "max bytes scanned across decoded layers per file (default 32MiB)")
	cmd.Flags().Int64Var(&flagMaxFileBytes, "max-file-bytes", 0, "skip files larger than this in directory scans (0 = no limit)")
	cmd.Flags().DurationVar(&flagTimeBudget, "time-budget", 0, fmt.Sprintf("time budget per file (default %s)", engine.DefaultTimeBudget))
	cmd.Flags().BoolVar(&flagDefaultExcludes, "default-excludes", true, "skip VCS/editor directories and binary assets")
}

// scanOptions is the resolved configuration of one scan invocation.
type scanOptions struct {
	path        engine.PathConfig
	format      string
	noColor     bool
	failOn      string
	showDecoded bool
}

// resolveScanOptions merges flags, the project config and the global config
// (in that order of precedence).
func resolveScanOptions(cmd *cobra.Command) (scanOptions, error) {
	local, global := loadConfigs(flagPath)
	budget, err := pickDuration(flagTimeBudget, local.TimeBudget, global.TimeBudget)
	if err != nil {
		return scanOptions{}, err
	}
	defaultExcludes := flagDefaultExcludes
	if !cmd.Flags().Changed("default-excludes") {
		if local.DefaultExcludes != nil {
			defaultExcludes = *local.DefaultExcludes
		} else if global.DefaultExcludes != nil {
			defaultExcludes = *global.DefaultExcludes
		}
	}
	opts := scanOptions{
		path: engine.PathConfig{
			Config: engine.Config{
				Limits: engine.Limits{
					MaxDepth:   pickInt(flagMaxDepth, local.MaxDepth, global.MaxDepth),
					MaxBytes:   pickInt64(flagMaxBytes, local.MaxBytes, global.MaxBytes),
					TimeBudget: budget,
				},
			},
			Path:            flagPath,
			IncludeGlobs:    pickString(flagInclude, local.Include, global.Include),
			ExcludeGlobs:    pickString(flagExclude, local.Exclude, global.Exclude),
			MaxFileBytes:    pickInt64(flagMaxFileBytes, local.MaxFileBytes, global.MaxFileBytes),
			Threads:         pickInt(flagThreads, local.Threads, global.Threads),
			DefaultExcludes: defaultExcludes,
		},
		noColor:     colorDisabled(local, global),
		failOn:      strings.ToLower(pickString(flagFailOn, local.FailOn, global.FailOn)),
		showDecoded: flagShowDecoded,
	}
	if opts.failOn == "" {
		opts.failOn = "alert"
	}
	switch opts.failOn {
	case "warning", "alert", report.FailOnNone:
	default:
		return scanOptions{}, fmt.Errorf("invalid --fail-on %q (want warning, alert or none)", opts.failOn)
	}

	switch {
	case flagSARIF:
		opts.format = formatSARIF
	case flagJSON:
		opts.format = formatJSON
	case flagTUI:
		opts.format = formatTUI
	case flagTable:
		opts.format = formatTable
	default:
		opts.format = strings.ToLower(pickString("", local.Format, global.Format))
	}
	switch opts.format {
	case "":
		opts.format = formatText
	case formatText, formatTable, formatJSON, formatSARIF:
	default:
		return scanOptions{}, fmt.Errorf("invalid format %q (want text, table, json or sarif)", opts.format)
	}
	return opts, nil
}

func runScan(cmd *cobra.Command, _ []string) error {
	opts, err := resolveScanOptions(cmd)
	if err != nil {
		return err
	}
	log := newLogger(flagVerbose)
	defer func() { _ = log.Sync() }()
	opts.path.Logger = log

	stderr := cmd.ErrOrStderr()
	if opts.format == formatText || opts.format == formatTable {
		abs, _ := filepath.Abs(flagPath)
		_, _ = fmt.Fprintf(stderr, "Scanning %s with %d rules...\n", abs, len(rules.IDs()))
	}
	rep, err := engine.ScanPaths(cmd.Context(), opts.path)
	if err != nil {
		return fmt.Errorf("scan error: %w", err)
	}
	for _, e := range rep.Errors {
		_, _ = fmt.Fprintln(stderr, "warning:", e)
	}
	log.Debug("scan finished",
		zap.Int("files", rep.FilesScanned),
		zap.Int("findings", len(rep.Findings)),
		zap.Duration("duration", rep.Duration))

	if opts.format == formatTUI {
		rescan := func() ([]tui.Item, error) {
			r, err := engine.ScanPaths(context.Background(), opts.path)
			if err != nil {
				return nil, err
			}
			return tuiItems(r), nil
		}
		if err := tui.Run(tuiItems(rep), rescan); err != nil {
			return err
		}
	} else if err := writeReport(cmd.OutOrStdout(), rep, opts); err != nil {
		return err
	}

	if report.ShouldFail(rep.Findings, opts.failOn) {
		return errFindings
	}
	return nil
}

func writeReport(w io.Writer, rep engine.Report, opts scanOptions) error {
	popts := report.PrintOptions{
		NoColor:      opts.noColor,
		Duration:     rep.Duration,
		FilesScanned: rep.FilesScanned,
		Diagnostics:  diagnostics(rep),
	}
	if opts.showDecoded || opts.format == formatJSON {
		popts.Decoded = decodedLayers(rep)
	}
	switch opts.format {
	case formatSARIF:
		if err := report.WriteSARIF(w, rep.Findings); err != nil {
			return fmt.Errorf("sarif error: %w", err)
		}
	case formatJSON:
		return report.WriteJSON(w, rep.Findings, popts)
	case formatTable:
		report.PrintTable(w, rep.Findings, popts)
	default:
		report.PrintText(w, rep.Findings, popts)
	}
	return nil
}

// diagnostics prefixes each unit's diagnostics with its path.
func diagnostics(rep engine.Report) []string {
	var out []string
	for _, u := range rep.Files {
		for _, d := range u.Diagnostics {
			out = append(out, u.Path+": "+d)
		}
	}
	return out
}

// decodedLayers lists every decoded layer of every unit, in unit order.
func decodedLayers(rep engine.Report) []report.DecodedLayer {
	var out []report.DecodedLayer
	for _, u := range rep.Files {
		out = append(out, unitLayers(u.Path, u.Layers)...)
	}
	return out
}

func unitLayers(path string, layers []string) []report.DecodedLayer {
	var out []report.DecodedLayer
	for depth := 1; depth < len(layers); depth++ {
		out = append(out, report.DecodedLayer{Path: path, Layer: depth, Text: layers[depth]})
	}
	return out
}

func tuiItems(rep engine.Report) []tui.Item {
	var items []tui.Item
	for _, u := range rep.Files {
		for _, f := range u.Findings {
			it := tui.Item{Finding: f}
			if f.Layer < len(u.Layers) {
				it.Source = u.Layers[f.Layer]
			}
			if f.Layer == 0 {
				it.Base = u.BaseOffset
			}
			items = append(items, it)
		}
	}
	return items
}
