package jsvs

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/jsvs/jsvs/internal/engine"
	"github.com/jsvs/jsvs/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddDirsRecursive_SkipsVCSAndDependencies(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{".git", "node_modules", filepath.Join("src", "lib")} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, name, "sub"), 0o755))
	}

	watcher, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer watcher.Close()

	require.NoError(t, addDirsRecursive(watcher, dir))
	list := watcher.WatchList()
	assert.Contains(t, list, filepath.Join(dir, "src", "lib", "sub"))
	for _, watched := range list {
		base := filepath.Base(watched)
		if base == ".git" || base == "node_modules" {
			t.Errorf("should not watch %s", watched)
		}
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, engine.Report{
		FilesScanned: 2,
		Findings: []types.Finding{
			{Keyword: "eval", Severity: types.SevAlert},
			{Keyword: "atob", Severity: types.SevWarning},
		},
	})
	assert.Equal(t, "[results] 2 finding(s) in 2 file(s): 1 alert(s), 1 warning(s)\n", buf.String())
}
