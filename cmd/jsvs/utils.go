package jsvs

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jsvs/jsvs/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// loadConfigs returns the project config found next to target and the
// global config. Missing files yield zero values.
func loadConfigs(target string) (local, global config.FileConfig) {
	if c, err := config.LoadGlobal(); err == nil {
		global = c
	}
	root := target
	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		root = filepath.Dir(target)
	}
	if c, err := config.LoadLocal(root); err == nil {
		local = c
	}
	return local, global
}

func pickString(cli string, local, global *string) string {
	if cli != "" {
		return cli
	}
	if local != nil && *local != "" {
		return *local
	}
	if global != nil && *global != "" {
		return *global
	}
	return ""
}

func pickInt(cli int, local, global *int) int {
	if cli != 0 {
		return cli
	}
	if local != nil && *local != 0 {
		return *local
	}
	if global != nil && *global != 0 {
		return *global
	}
	return 0
}

func pickInt64(cli int64, local, global *int64) int64 {
	if cli != 0 {
		return cli
	}
	if local != nil && *local != 0 {
		return *local
	}
	if global != nil && *global != 0 {
		return *global
	}
	return 0
}

func pickBool(cli bool, local, global *bool) bool {
	if cli {
		return true
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return false
}

// pickDuration parses the config value only when the flag is unset.
func pickDuration(cli time.Duration, local, global *string) (time.Duration, error) {
	if cli != 0 {
		return cli, nil
	}
	s := pickString("", local, global)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid time_budget %q: %w", s, err)
	}
	return d, nil
}

// colorDisabled honours --no-color, config, NO_COLOR and non-terminal stdout.
func colorDisabled(local, global config.FileConfig) bool {
	if pickBool(flagNoColor, local.NoColor, global.NoColor) {
		return true
	}
	if os.Getenv("NO_COLOR") != "" {
		return true
	}
	return !term.IsTerminal(int(os.Stdout.Fd()))
}

// newLogger returns a console logger at debug level when verbose, otherwise
// a no-op logger.
func newLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	cfg.OutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}
