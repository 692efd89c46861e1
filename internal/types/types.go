package types

import (
	"strconv"

	xxhash "github.com/cespare/xxhash/v2"
)

// Severity is the risk level attached to a finding.
type Severity string

const (
	SevWarning Severity = "warning"
	SevAlert   Severity = "alert"
)

// Rank orders severities so callers can compare them (warning < alert).
// Unknown values rank below warning.
func (s Severity) Rank() int {
	switch s {
	case SevAlert:
		return 2
	case SevWarning:
		return 1
	default:
		return 0
	}
}

// Finding describes one suspicious pattern reported by a detector. Offset is
// a byte offset into the text of the layer that produced it (0 for aggregate
// findings); Layer is the Base64 decode depth of that text. Findings from an
// inline script keep the page as Path, name the script in Unit and, at layer
// 0, carry offsets into the page.
type Finding struct {
	Path        string   `json:"path,omitempty"`
	Unit        string   `json:"unit,omitempty"`
	Keyword     string   `json:"keyword"`
	Offset      int      `json:"offset"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Layer       int      `json:"layer,omitempty"`
}

// Decoded reports whether the finding came from a Base64-decoded layer.
func (f Finding) Decoded() bool { return f.Layer > 0 }

// Fingerprint returns a short stable identifier for the finding.
func (f Finding) Fingerprint() string {
	d := xxhash.New()
	_, _ = d.WriteString(f.Path)
	if f.Unit != "" {
		_, _ = d.WriteString("|")
		_, _ = d.WriteString(f.Unit)
	}
	_, _ = d.WriteString("|")
	_, _ = d.WriteString(f.Keyword)
	_, _ = d.WriteString("|")
	_, _ = d.WriteString(strconv.Itoa(f.Layer))
	_, _ = d.WriteString("|")
	_, _ = d.WriteString(strconv.Itoa(f.Offset))
	sum := d.Sum64()
	var buf [16]byte
	const hex = "0123456789abcdef"
	for i := 15; i >= 0; i-- {
		buf[i] = hex[sum&0xF]
		sum >>= 4
	}
	return string(buf[:])
}
