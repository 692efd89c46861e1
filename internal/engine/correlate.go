package engine

import (
	"github.com/jsvs/jsvs/internal/rules"
	"github.com/jsvs/jsvs/internal/types"
)

// CorrelationKeyword tags the remote-code-execution finding.
const CorrelationKeyword = "remote-code-exec"

// CorrelationWindow is the exclusive maximum distance, in bytes, from a
// remote response read to a code execution sink.
const CorrelationWindow = 100

type sinkTag int

const (
	tagNone sinkTag = iota
	tagResponseRead
	tagEval
	tagExecScript
)

var sinkTags = map[string]sinkTag{
	"xmlhttpreq.responsetext": tagResponseRead,
	"xhr.responsetext":        tagResponseRead,
	"eval":                    tagEval,
	"execscript":              tagExecScript,
}

// marks keeps the latest offset per tag. Presence is tracked separately, so a
// response read at offset 0 counts.
type marks struct {
	resp, eval, exec          int
	hasResp, hasEval, hasExec bool
}

// offsets from different files or decode layers live in different
// coordinate spaces and are never compared.
type space struct {
	path  string
	layer int
}

// Correlate looks for a remote response read followed closely by eval or
// execScript and returns a single alert when it finds one. Pairs are only
// formed within the same path and decode layer; within one space the most
// recent offset per tag is used.
func Correlate(findings []types.Finding) (types.Finding, bool) {
	bySpace := map[space]*marks{}
	var order []space
	for _, f := range findings {
		tag := sinkTags[f.Keyword]
		if tag == tagNone {
			continue
		}
		key := space{path: f.Path, layer: f.Layer}
		m := bySpace[key]
		if m == nil {
			m = &marks{}
			bySpace[key] = m
			order = append(order, key)
		}
		switch tag {
		case tagResponseRead:
			m.resp, m.hasResp = f.Offset, true
		case tagEval:
			m.eval, m.hasEval = f.Offset, true
		case tagExecScript:
			m.exec, m.hasExec = f.Offset, true
		}
	}
	for _, key := range order {
		m := bySpace[key]
		if !m.hasResp {
			continue
		}
		if (m.hasEval && inWindow(m.resp, m.eval)) || (m.hasExec && inWindow(m.resp, m.exec)) {
			decoded := key.layer > 0
			return types.Finding{
				Path:        key.path,
				Keyword:     CorrelationKeyword,
				Offset:      m.resp,
				Description: rules.Describe("Possible execution of code retrieved from a remote server", decoded),
				Severity:    types.SevAlert,
				Layer:       key.layer,
			}, true
		}
	}
	return types.Finding{}, false
}

// inWindow reports whether sink follows resp within CorrelationWindow. A sink
// placed before the read is out of range.
func inWindow(resp, sink int) bool {
	d := sink - resp
	return d >= 0 && d < CorrelationWindow
}
