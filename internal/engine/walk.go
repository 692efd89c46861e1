package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/jsvs/jsvs/internal/ignore"
	"github.com/jsvs/jsvs/internal/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrPathNotFound is returned when the scan target does not exist.
var ErrPathNotFound = errors.New("path does not exist")

// IgnoreFileDirective excludes a file from directory scans.
const IgnoreFileDirective = "jsvs:ignore-file"

// VirtualPathSeparator joins a file path and an inline script index.
const VirtualPathSeparator = "::"

// PathConfig controls scanning a file or a directory tree.
type PathConfig struct {
	Config

	// Path is a file or a directory.
	Path         string
	IncludeGlobs string
	ExcludeGlobs string
	// MaxFileBytes skips larger files during directory walks (0 = no limit).
	MaxFileBytes    int64
	Threads         int
	DefaultExcludes bool
}

// FileReport is the result for one scanned unit: a file, the markup of an
// HTML page, or one of its inline scripts. For a script, Path is the virtual
// unit name and Page/BaseOffset locate the script body inside the page.
type FileReport struct {
	Path       string
	Page       string
	BaseOffset int
	Result
}

// Report aggregates a path scan.
type Report struct {
	Files        []FileReport
	Findings     []types.Finding
	FilesScanned int
	Duration     time.Duration
	Errors       []error
}

// ScanPaths scans cfg.Path. A single file is always scanned; directories are
// walked and filtered by the root's .jsvsignore, globs, size and the ignore
// directive. Files are processed in parallel, the report keeps walk order.
// Unreadable files, directories and ignore files end up in Report.Errors.
func ScanPaths(ctx context.Context, cfg PathConfig) (Report, error) {
	var rep Report
	started := time.Now()
	log := cfg.Config.withDefaults().Logger

	info, err := os.Stat(cfg.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return rep, fmt.Errorf("%w: %s", ErrPathNotFound, cfg.Path)
		}
		return rep, fmt.Errorf("stat %s: %w", cfg.Path, err)
	}

	var targets []string
	explicit := !info.IsDir()
	if explicit {
		targets = []string{cfg.Path}
	} else {
		var walkErrs []error
		targets, walkErrs, err = collectTargets(ctx, cfg)
		for _, e := range walkErrs {
			log.Warn("walk error", zap.Error(e))
		}
		rep.Errors = append(rep.Errors, walkErrs...)
		if err != nil {
			return rep, err
		}
	}

	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}
	units := make([][]FileReport, len(targets))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(threads)
	for i, p := range targets {
		i, p := i, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(p)
			if err != nil {
				log.Warn("read failed", zap.String("path", p), zap.Error(err))
				mu.Lock()
				rep.Errors = append(rep.Errors, fmt.Errorf("read %s: %w", p, err))
				mu.Unlock()
				return nil
			}
			if !explicit && (strings.Contains(string(data), IgnoreFileDirective) || looksBinary(data)) {
				return nil
			}
			units[i] = scanFile(gctx, displayPath(cfg.Path, p, explicit), data, cfg.Config)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return rep, err
	}

	for _, us := range units {
		if us == nil {
			continue
		}
		rep.FilesScanned++
		for _, u := range us {
			rep.Files = append(rep.Files, u)
			rep.Findings = append(rep.Findings, u.Findings...)
		}
	}
	rep.Duration = time.Since(started)
	return rep, nil
}

// ScanBytes scans one in-memory file. HTML pages are split into markup and
// inline scripts, each scanned on its own.
func ScanBytes(ctx context.Context, path string, data []byte, cfg Config) []FileReport {
	return scanFile(ctx, path, data, cfg)
}

func scanFile(ctx context.Context, path string, data []byte, cfg Config) []FileReport {
	if !isHTMLPath(path) {
		return []FileReport{scanUnit(ctx, path, string(data), cfg)}
	}
	markup, scripts := splitHTML(data)
	out := []FileReport{scanUnit(ctx, path, markup, cfg)}
	for i, s := range scripts {
		vp := fmt.Sprintf("%s%sscript[%d]", path, VirtualPathSeparator, i+1)
		u := scanUnit(ctx, vp, s.Text, cfg)
		u.Page, u.BaseOffset = path, s.Offset
		for j := range u.Findings {
			f := &u.Findings[j]
			f.Path, f.Unit = path, vp
			// decoded layers have their own coordinates
			if f.Layer == 0 {
				f.Offset += s.Offset
			}
		}
		out = append(out, u)
	}
	return out
}

func scanUnit(ctx context.Context, path, text string, cfg Config) FileReport {
	res := ScanText(ctx, text, cfg)
	for i := range res.Findings {
		res.Findings[i].Path = path
	}
	return FileReport{Path: path, Result: res}
}

// collectTargets walks the root and returns the files to scan. Unreadable
// entries and a broken ignore file are returned as soft errors; only
// cancellation stops the walk.
func collectTargets(ctx context.Context, cfg PathConfig) ([]string, []error, error) {
	var out []string
	var soft []error
	ignPath := filepath.Join(cfg.Path, ignore.FileName)
	ign, err := ignore.Load(ignPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		soft = append(soft, fmt.Errorf("ignore file %s: %w", ignPath, err))
	}
	err = filepath.WalkDir(cfg.Path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			soft = append(soft, fmt.Errorf("walk %s: %w", p, err))
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if p != cfg.Path && cfg.DefaultExcludes && isDefaultDirExcluded(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		rel, _ := filepath.Rel(cfg.Path, p)
		if !ign.Empty() && ign.Match(filepath.ToSlash(rel)) {
			return nil
		}
		if !allowedByGlobs(rel, cfg.IncludeGlobs, cfg.ExcludeGlobs) {
			return nil
		}
		if cfg.DefaultExcludes && isDefaultFileExcluded(strings.ToLower(rel)) {
			return nil
		}
		if cfg.MaxFileBytes > 0 {
			if info, _ := d.Info(); info != nil && info.Size() > cfg.MaxFileBytes {
				return nil
			}
		}
		out = append(out, p)
		return nil
	})
	return out, soft, err
}

func displayPath(root, p string, explicit bool) string {
	if explicit {
		return filepath.ToSlash(p)
	}
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}

func looksBinary(b []byte) bool {
	const sniff = 800
	n := sniff
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if b[i] == 0 {
			return true
		}
	}
	return false
}
