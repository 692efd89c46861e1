package engine

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// scriptBlock is the body of one inline <script> element.
type scriptBlock struct {
	Offset int
	Text   string
}

// splitHTML separates inline script bodies from the surrounding markup. The
// returned markup has every script body overwritten with spaces so offsets
// into it still match the page.
func splitHTML(data []byte) (string, []scriptBlock) {
	markup := bytes.Clone(data)
	var blocks []scriptBlock
	z := html.NewTokenizer(bytes.NewReader(data))
	pos := 0
	inScript := false
	for {
		tt := z.Next()
		raw := z.Raw()
		start := pos
		pos += len(raw)
		switch tt {
		case html.ErrorToken:
			return string(markup), blocks
		case html.StartTagToken:
			name, _ := z.TagName()
			inScript = string(name) == "script"
		case html.EndTagToken:
			inScript = false
		case html.TextToken:
			if !inScript || strings.TrimSpace(string(raw)) == "" {
				continue
			}
			blocks = append(blocks, scriptBlock{Offset: start, Text: string(raw)})
			for i := start; i < pos && i < len(markup); i++ {
				if markup[i] != '\n' {
					markup[i] = ' '
				}
			}
		}
	}
}

func isHTMLPath(p string) bool {
	lower := strings.ToLower(p)
	return strings.HasSuffix(lower, ".html") || strings.HasSuffix(lower, ".htm")
}
