package engine

import (
	"path/filepath"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
)

// DefaultIncludeGlobs selects script and page sources when no include list is given.
const DefaultIncludeGlobs = "**/*.{js,mjs,cjs,jsx,ts,tsx,html,htm}"

// node_modules stays in scope: third-party packages are a common carrier.
var defaultExcludeDirs = map[string]bool{
	".git":        true,
	".hg":         true,
	".svn":        true,
	".idea":       true,
	".vscode":     true,
	".venv":       true,
	"venv":        true,
	"__pycache__": true,
	"coverage":    true,
}

var defaultExcludeFileSuffixes = []string{
	".map", ".d.ts",
	".png", ".jpg", ".jpeg", ".gif", ".webp", ".ico",
	".zip", ".gz", ".tar", ".tgz", ".7z",
	".wasm",
}

func isDefaultDirExcluded(name string) bool {
	return defaultExcludeDirs[name]
}

func isDefaultFileExcluded(lowerRel string) bool {
	for _, s := range defaultExcludeFileSuffixes {
		if strings.HasSuffix(lowerRel, s) {
			return true
		}
	}
	return false
}

// allowedByGlobs returns true if relPath passes the include/exclude lists.
// Both are comma-separated doublestar patterns (commas inside {} belong to
// the pattern); an empty include list falls back to DefaultIncludeGlobs.
// Excludes are subtracted last.
func allowedByGlobs(relPath, include, exclude string) bool {
	rp := filepath.ToSlash(relPath)
	if include == "" {
		include = DefaultIncludeGlobs
	}
	if !matchAnyGlob(rp, parseGlobsList(include)) {
		return false
	}
	if excludes := parseGlobsList(exclude); len(excludes) > 0 && matchAnyGlob(rp, excludes) {
		return false
	}
	return true
}

func parseGlobsList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range splitGlobs(s) {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p, trimGlobPrefix(p))
		}
	}
	return out
}

// splitGlobs splits on commas that are not inside a {} alternation.
func splitGlobs(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

func matchAnyGlob(pathToMatch string, globs []string) bool {
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, pathToMatch); ok {
			return true
		}
		if ok, _ := doublestar.Match(g, filepath.Base(pathToMatch)); ok {
			return true
		}
	}
	return false
}

func trimGlobPrefix(g string) string {
	s := strings.TrimPrefix(g, "./")
	for strings.HasPrefix(s, "**/") {
		s = strings.TrimPrefix(s, "**/")
	}
	return s
}
