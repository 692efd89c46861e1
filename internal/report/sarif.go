package report

import (
	"encoding/json"
	"io"

	"github.com/jsvs/jsvs/internal/types"
)

// ToolVersion is reported as the SARIF driver version.
var ToolVersion = "dev"

type sarif struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifResult struct {
	RuleID              string            `json:"ruleId"`
	RuleIndex           int               `json:"ruleIndex"`
	Level               string            `json:"level"`
	Message             sarifMessage      `json:"message"`
	Locations           []sarifLoc        `json:"locations,omitempty"`
	PartialFingerprints map[string]string `json:"partialFingerprints"`
	Properties          map[string]any    `json:"properties,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLoc struct {
	PhysicalLocation sarifPhys `json:"physicalLocation"`
}

type sarifPhys struct {
	ArtifactLocation sarifArt     `json:"artifactLocation"`
	Region           *sarifRegion `json:"region,omitempty"`
}

type sarifArt struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	CharOffset int `json:"charOffset"`
}

func sevToLevel(s types.Severity) string {
	if s == types.SevAlert {
		return "error"
	}
	return "warning"
}

// WriteSARIF writes findings as SARIF 2.1.0 to the provided writer. Each
// distinct keyword becomes a rule.
func WriteSARIF(w io.Writer, findings []types.Finding) error {
	run := sarifRun{
		Tool:    sarifTool{Driver: sarifDriver{Name: "jsvs", Version: ToolVersion, Rules: []sarifRule{}}},
		Results: []sarifResult{},
	}
	ruleIndex := map[string]int{}
	for _, f := range findings {
		idx, ok := ruleIndex[f.Keyword]
		if !ok {
			idx = len(run.Tool.Driver.Rules)
			ruleIndex[f.Keyword] = idx
			run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, sarifRule{
				ID:               f.Keyword,
				ShortDescription: sarifMessage{Text: f.Description},
			})
		}
		res := sarifResult{
			RuleID:              f.Keyword,
			RuleIndex:           idx,
			Level:               sevToLevel(f.Severity),
			Message:             sarifMessage{Text: f.Description},
			PartialFingerprints: map[string]string{"jsvs/v1": f.Fingerprint()},
		}
		// offsets in decoded layers do not point into the file
		if f.Path != "" {
			loc := sarifPhys{ArtifactLocation: sarifArt{URI: f.Path}}
			if f.Layer == 0 {
				loc.Region = &sarifRegion{CharOffset: f.Offset}
			}
			res.Locations = []sarifLoc{{PhysicalLocation: loc}}
		}
		if f.Layer > 0 {
			res.Properties = map[string]any{"decodeLayer": f.Layer, "offset": f.Offset}
		}
		if f.Unit != "" {
			if res.Properties == nil {
				res.Properties = map[string]any{}
			}
			res.Properties["script"] = f.Unit
		}
		run.Results = append(run.Results, res)
	}
	doc := sarif{
		Schema:  "https://json.schemastore.org/sarif-2.1.0.json",
		Version: "2.1.0",
		Runs:    []sarifRun{run},
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
