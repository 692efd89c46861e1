package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/jsvs/jsvs/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldFail(t *testing.T) {
	warnOnly := []types.Finding{{Keyword: "atob", Severity: types.SevWarning}}
	tests := []struct {
		name     string
		findings []types.Finding
		failOn   string
		want     bool
	}{
		{"none never fails", sample(), "none", false},
		{"alert with alert", sample(), "alert", true},
		{"alert with warnings only", warnOnly, "alert", false},
		{"warning with warnings", warnOnly, "warning", true},
		{"case insensitive", warnOnly, " Warning ", true},
		{"unknown behaves like alert", warnOnly, "high", false},
		{"empty findings", nil, "warning", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldFail(tt.findings, tt.failOn))
		})
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sample(), PrintOptions{FilesScanned: 1}))
	var doc JSONReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, sample(), doc.Findings)
	assert.Equal(t, 2, doc.Alerts)
	assert.Equal(t, 1, doc.Warnings)

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, nil, PrintOptions{}))
	assert.Contains(t, buf.String(), `"findings": []`)
}

func TestWriteJSON_DecodedLayers(t *testing.T) {
	var buf bytes.Buffer
	layers := []DecodedLayer{{Path: "a.js", Layer: 1, Text: "eval(atob(p))"}}
	require.NoError(t, WriteJSON(&buf, sample(), PrintOptions{Decoded: layers}))
	var doc JSONReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, layers, doc.Decoded)

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, sample(), PrintOptions{}))
	assert.NotContains(t, buf.String(), `"decoded"`)
}
