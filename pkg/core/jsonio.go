package core

import (
	"encoding/json"
	"fmt"
	"io"
)

// MarshalFindings pretty-prints findings as a JSON array. A nil slice is
// written as [].
func MarshalFindings(w io.Writer, findings []Finding) error {
	if findings == nil {
		findings = []Finding{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(findings)
}

// UnmarshalFindings decodes a JSON array written by MarshalFindings. Findings
// with an unknown severity are rejected.
func UnmarshalFindings(r io.Reader) ([]Finding, error) {
	var fs []Finding
	if err := json.NewDecoder(r).Decode(&fs); err != nil {
		return nil, err
	}
	for i, f := range fs {
		if f.Severity.Rank() == 0 {
			return nil, fmt.Errorf("finding %d: unknown severity %q", i, f.Severity)
		}
	}
	return fs, nil
}
