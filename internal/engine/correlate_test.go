package engine

import (
	"testing"

	"github.com/jsvs/jsvs/internal/rules"
	"github.com/jsvs/jsvs/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelate_Window(t *testing.T) {
	tests := []struct {
		name      string
		read      int
		sinkKw    string
		sink      int
		wantAlert bool
	}{
		{"eval at 99", 10, "eval", 109, true},
		{"eval at 100", 10, "eval", 110, false},
		{"eval before read", 50, "eval", 10, false},
		{"execscript at 1", 0, "execscript", 1, true},
		{"execscript far", 0, "execscript", 500, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := []types.Finding{
				{Keyword: "xmlhttpreq.responsetext", Offset: tt.read},
				{Keyword: tt.sinkKw, Offset: tt.sink},
			}
			f, ok := Correlate(fs)
			require.Equal(t, tt.wantAlert, ok)
			if ok {
				assert.Equal(t, CorrelationKeyword, f.Keyword)
				assert.Equal(t, types.SevAlert, f.Severity)
				assert.Equal(t, tt.read, f.Offset)
			}
		})
	}
}

func TestCorrelate_NeedsResponseRead(t *testing.T) {
	_, ok := Correlate([]types.Finding{{Keyword: "eval", Offset: 5}, {Keyword: "execscript", Offset: 6}})
	assert.False(t, ok)
	_, ok = Correlate(nil)
	assert.False(t, ok)
}

func TestCorrelate_ExecScriptWhenEvalOutOfRange(t *testing.T) {
	fs := []types.Finding{
		{Keyword: "eval", Offset: 0},
		{Keyword: "xhr.responsetext", Offset: 20},
		{Keyword: "execscript", Offset: 60},
	}
	_, ok := Correlate(fs)
	assert.True(t, ok)
}

func TestCorrelate_MostRecentOffsetWins(t *testing.T) {
	fs := []types.Finding{
		{Keyword: "xmlhttpreq.responsetext", Offset: 0},
		{Keyword: "xhr.responsetext", Offset: 500},
		{Keyword: "eval", Offset: 50},
	}
	_, ok := Correlate(fs)
	assert.False(t, ok, "the later read at 500 replaces the one at 0")
}

func TestCorrelate_OnlyWithinOneLayer(t *testing.T) {
	fs := []types.Finding{
		{Keyword: "xmlhttpreq.responsetext", Offset: 10, Layer: 0},
		{Keyword: "eval", Offset: 20, Layer: 1},
	}
	_, ok := Correlate(fs)
	assert.False(t, ok, "offsets from different layers are not comparable")

	fs = append(fs, types.Finding{Keyword: "xhr.responsetext", Offset: 5, Layer: 1})
	f, ok := Correlate(fs)
	require.True(t, ok)
	assert.Equal(t, 1, f.Layer)
	assert.Equal(t, "Possible execution of code retrieved from a remote server"+rules.DecodedSuffix, f.Description)
}

func TestCorrelate_OnlyWithinOnePath(t *testing.T) {
	fs := []types.Finding{
		{Path: "a.js", Keyword: "xhr.responsetext", Offset: 10},
		{Path: "b.js", Keyword: "eval", Offset: 20},
	}
	_, ok := Correlate(fs)
	assert.False(t, ok)
}

func TestCorrelate_SingleFindingForManyPairs(t *testing.T) {
	fs := []types.Finding{
		{Keyword: "xhr.responsetext", Offset: 0},
		{Keyword: "eval", Offset: 10},
		{Keyword: "execscript", Offset: 20},
		{Keyword: "xhr.responsetext", Offset: 0, Layer: 1},
		{Keyword: "eval", Offset: 10, Layer: 1},
	}
	f, ok := Correlate(fs)
	require.True(t, ok)
	assert.Equal(t, 0, f.Layer)
}
