package report

import (
	"fmt"
	"io"
)

// DecodedLayer is the text of one Base64 layer decoded while scanning Path.
type DecodedLayer struct {
	Path  string `json:"path,omitempty"`
	Layer int    `json:"layer"`
	Text  string `json:"text"`
}

func printDecoded(w io.Writer, layers []DecodedLayer, noColor bool) {
	for _, l := range layers {
		fmt.Fprintln(w)
		head := fmt.Sprintf("DECODED BASE64 (layer %d):", l.Layer)
		if l.Path != "" {
			head = fmt.Sprintf("DECODED BASE64 %s (layer %d):", l.Path, l.Layer)
		}
		fmt.Fprintln(w, paint(dimStyle, head, noColor))
		fmt.Fprintln(w, l.Text)
	}
}
