package jsvs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jsvs/jsvs/internal/engine"
	"github.com/jsvs/jsvs/internal/report"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var flagDebounce time.Duration

func init() {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-scan a file or directory whenever it changes",
		Args:  cobra.NoArgs,
		RunE:  runWatch,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVarP(&flagPath, "filepath", "f", "", "file or directory to watch")
	_ = cmd.MarkFlagRequired("filepath")
	addScanFlags(cmd)
	cmd.Flags().DurationVar(&flagDebounce, "debounce", 500*time.Millisecond, "debounce interval for file changes")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	opts, err := resolveScanOptions(cmd)
	if err != nil {
		return err
	}
	if opts.format == formatTUI {
		opts.format = formatText
	}
	log := newLogger(flagVerbose)
	defer func() { _ = log.Sync() }()
	opts.path.Logger = log

	info, err := os.Stat(flagPath)
	if err != nil {
		return fmt.Errorf("%w: %s", engine.ErrPathNotFound, flagPath)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// single files are watched through their directory so editor renames
	// are still seen
	only := ""
	if info.IsDir() {
		err = addDirsRecursive(watcher, flagPath)
	} else {
		only = filepath.Clean(flagPath)
		err = watcher.Add(filepath.Dir(only))
	}
	if err != nil {
		return fmt.Errorf("watching directories: %w", err)
	}

	ctx := cmd.Context()
	out, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	var scanMu sync.Mutex
	rescan := func(label string) {
		scanMu.Lock()
		defer scanMu.Unlock()
		_, _ = fmt.Fprintf(stderr, "watch: %s %s\n", label, flagPath)
		rep, err := engine.ScanPaths(ctx, opts.path)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "error: scan failed: %v\n", err)
			return
		}
		if err := writeReport(out, rep, opts); err != nil {
			_, _ = fmt.Fprintf(stderr, "error: %v\n", err)
		}
		printSummary(stderr, rep)
	}

	rescan(fmt.Sprintf("scanning (debounce: %s)", flagDebounce))

	var mu sync.Mutex
	var timer *time.Timer
	resetTimer := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(flagDebounce, func() { rescan("re-scanning") })
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if only != "" && filepath.Clean(event.Name) != only {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if only == "" && event.Has(fsnotify.Create) {
				if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
					_ = addDirsRecursive(watcher, event.Name)
				}
			}
			log.Debug("change detected", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			resetTimer()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			_, _ = fmt.Fprintf(stderr, "watch error: %v\n", err)
		case <-ctx.Done():
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			mu.Unlock()
			_, _ = fmt.Fprintln(stderr, "\nwatch: stopped")
			return nil
		}
	}
}

func printSummary(w io.Writer, rep engine.Report) {
	alerts, warnings := report.Counts(rep.Findings)
	_, _ = fmt.Fprintf(w, "[results] %d finding(s) in %d file(s): %d alert(s), %d warning(s)\n",
		len(rep.Findings), rep.FilesScanned, alerts, warnings)
}

// addDirsRecursive watches root and every directory below it except VCS
// metadata and installed dependencies.
func addDirsRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root {
			switch d.Name() {
			case ".git", ".hg", ".svn", "node_modules":
				return filepath.SkipDir
			}
		}
		return watcher.Add(path)
	})
}
