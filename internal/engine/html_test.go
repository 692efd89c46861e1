package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitHTML(t *testing.T) {
	page := "<p>hi</p>\n<script>\neval(a)\n</script><script src=x.js></script>"
	markup, blocks := splitHTML([]byte(page))
	require.Len(t, blocks, 1)
	assert.Equal(t, "\neval(a)\n", blocks[0].Text)
	assert.Equal(t, strings.Index(page, "\neval"), blocks[0].Offset)
	assert.Len(t, markup, len(page), "offsets into markup match the page")
	assert.NotContains(t, markup, "eval")
	assert.Contains(t, markup, "<script src=x.js></script>")
}

func TestIsHTMLPath(t *testing.T) {
	assert.True(t, isHTMLPath("a/INDEX.HTML"))
	assert.True(t, isHTMLPath("x.htm"))
	assert.False(t, isHTMLPath("x.js"))
}
