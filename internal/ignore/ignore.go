package ignore

import (
	"bufio"
	"io"
	"os"
	"path"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
)

// FileName is the ignore file looked up at the scan root.
const FileName = ".jsvsignore"

type pattern struct {
	glob     string
	dirOnly  bool
	anchored bool
}

// Matcher holds gitignore-style patterns: '#' starts a comment, a trailing
// '/' matches directories only, and a pattern without '/' matches at any
// depth. Negation is not supported.
type Matcher struct {
	patterns []pattern
}

// Load reads an ignore file.
func Load(p string) (Matcher, error) {
	f, err := os.Open(p)
	if err != nil {
		return Matcher{}, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads patterns, one per line.
func Parse(r io.Reader) (Matcher, error) {
	var m Matcher
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		p := pattern{}
		if strings.HasSuffix(line, "/") {
			p.dirOnly = true
			line = strings.TrimSuffix(line, "/")
		}
		line = strings.TrimPrefix(line, "./")
		if strings.Contains(line, "/") {
			p.anchored = true
			line = strings.TrimPrefix(line, "/")
		}
		if line == "" {
			continue
		}
		p.glob = line
		m.patterns = append(m.patterns, p)
	}
	return m, sc.Err()
}

// Empty reports whether the matcher has no patterns.
func (m Matcher) Empty() bool { return len(m.patterns) == 0 }

// Match reports whether the slash-separated relative file path is ignored,
// either itself or through one of its parent directories.
func (m Matcher) Match(rel string) bool {
	rel = strings.TrimPrefix(path.Clean(rel), "./")
	segs := strings.Split(rel, "/")
	for _, p := range m.patterns {
		// candidate i covers segs[:i+1]; the last one is the file itself
		for i := range segs {
			isFile := i == len(segs)-1
			if p.dirOnly && isFile {
				break
			}
			target := segs[i]
			if p.anchored {
				target = strings.Join(segs[:i+1], "/")
			}
			if ok, _ := doublestar.Match(p.glob, target); ok {
				return true
			}
		}
	}
	return false
}
