package report

import (
	"encoding/json"
	"io"

	"github.com/jsvs/jsvs/internal/types"
)

// JSONReport is the document written by WriteJSON.
type JSONReport struct {
	Findings     []types.Finding `json:"findings"`
	Alerts       int             `json:"alerts"`
	Warnings     int             `json:"warnings"`
	FilesScanned int             `json:"files_scanned,omitempty"`
	Diagnostics  []string        `json:"diagnostics,omitempty"`
	Decoded      []DecodedLayer  `json:"decoded,omitempty"`
}

// WriteJSON writes findings and totals as indented JSON. A nil slice is
// written as an empty array.
func WriteJSON(w io.Writer, findings []types.Finding, opts PrintOptions) error {
	if findings == nil {
		findings = []types.Finding{}
	}
	alerts, warnings := Counts(findings)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(JSONReport{
		Findings:     findings,
		Alerts:       alerts,
		Warnings:     warnings,
		FilesScanned: opts.FilesScanned,
		Diagnostics:  opts.Diagnostics,
		Decoded:      opts.Decoded,
	})
}
