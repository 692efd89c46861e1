package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/jsvs/jsvs/internal/detectors"
	"github.com/jsvs/jsvs/internal/rules"
	"github.com/jsvs/jsvs/internal/types"
	"go.uber.org/zap"
)

// Keywords of findings synthesized by the driver itself.
const (
	DepthLimitKeyword = "depth-limit"
	SizeLimitKeyword  = "size-limit"
)

// Defaults applied to zero-valued Limits fields.
const (
	DefaultMaxDepth   = 8
	DefaultMaxBytes   = 32 << 20
	DefaultTimeBudget = 10 * time.Second
)

// Limits bounds the Base64 decode-and-rescan loop.
type Limits struct {
	// MaxDepth is the deepest decoded layer that is scanned (the input
	// text is depth 0).
	MaxDepth int
	// MaxBytes caps the total bytes scanned across all layers of one text,
	// the input included. The input itself is always scanned.
	MaxBytes int64
	// TimeBudget is the wall-clock budget of one ScanText call.
	TimeBudget time.Duration
}

// Config controls a single text scan.
type Config struct {
	Limits Limits
	Logger *zap.Logger
}

func (c Config) withDefaults() Config {
	if c.Limits.MaxDepth <= 0 {
		c.Limits.MaxDepth = DefaultMaxDepth
	}
	if c.Limits.MaxBytes <= 0 {
		c.Limits.MaxBytes = DefaultMaxBytes
	}
	if c.Limits.TimeBudget <= 0 {
		c.Limits.TimeBudget = DefaultTimeBudget
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}

// Result is the outcome of scanning one text buffer and its decoded layers.
type Result struct {
	// Findings in emission order, correlation last.
	Findings []types.Finding
	// Layers holds the scanned text per decode depth; Layers[0] is the input.
	Layers []string
	// Diagnostics explains recovered failures and truncations.
	Diagnostics []string
	// Truncated is set when a limit or the context stopped the decode chain.
	Truncated bool
}

// Scan runs the full detection pipeline over text with default limits.
func Scan(text string) []types.Finding {
	return ScanText(context.Background(), text, Config{}).Findings
}

type layer struct {
	text  string
	depth int
}

// ScanText scans text with the rule table, the hex detector and the Base64
// harvester. Each successfully decoded Base64 payload is queued as the next
// layer and scanned the same way, its findings escalated to alerts. The queue
// is bounded by cfg.Limits and by ctx.
func ScanText(ctx context.Context, text string, cfg Config) Result {
	cfg = cfg.withDefaults()
	log := cfg.Logger
	ctx, cancel := context.WithTimeout(ctx, cfg.Limits.TimeBudget)
	defer cancel()

	var res Result
	var processed int64
	queue := []layer{{text: text}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if err := ctx.Err(); err != nil {
			res.Truncated = true
			res.Diagnostics = append(res.Diagnostics, fmt.Sprintf("layer %d not scanned: %v", cur.depth, err))
			log.Warn("scan stopped", zap.Int("depth", cur.depth), zap.Error(err))
			break
		}
		processed += int64(len(cur.text))
		res.Layers = append(res.Layers, cur.text)

		child, ok := scanPass(cur, &res, log)
		if !ok {
			continue
		}
		// limit findings stay on layer 0; the description names the layer
		switch {
		case child.depth > cfg.Limits.MaxDepth:
			res.Truncated = true
			res.Findings = append(res.Findings, types.Finding{
				Keyword:     DepthLimitKeyword,
				Description: fmt.Sprintf("Base64 nesting exceeds depth limit (%d) below layer %d, deeper layers not scanned", cfg.Limits.MaxDepth, cur.depth),
				Severity:    types.SevWarning,
			})
			res.Diagnostics = append(res.Diagnostics, fmt.Sprintf("layer %d: depth limit %d reached", child.depth, cfg.Limits.MaxDepth))
			log.Debug("depth limit reached", zap.Int("depth", child.depth))
		case processed+int64(len(child.text)) > cfg.Limits.MaxBytes:
			res.Truncated = true
			res.Findings = append(res.Findings, types.Finding{
				Keyword:     SizeLimitKeyword,
				Description: fmt.Sprintf("Decoded Base64 exceeds size limit (%d bytes), layer %d not scanned", cfg.Limits.MaxBytes, child.depth),
				Severity:    types.SevWarning,
			})
			res.Diagnostics = append(res.Diagnostics, fmt.Sprintf("layer %d: size limit %d bytes reached", child.depth, cfg.Limits.MaxBytes))
			log.Debug("size limit reached", zap.Int("depth", child.depth), zap.Int("bytes", len(child.text)))
		default:
			queue = append(queue, child)
		}
	}

	if f, ok := Correlate(res.Findings); ok {
		res.Findings = append(res.Findings, f)
	}
	return res
}

// scanPass runs every detector over one layer and appends its findings. It
// returns the decoded child layer when the Base64 harvest produced text.
func scanPass(cur layer, res *Result, log *zap.Logger) (layer, bool) {
	decoded := cur.depth > 0
	tag := func(fs ...types.Finding) {
		for _, f := range fs {
			f.Layer = cur.depth
			res.Findings = append(res.Findings, f)
		}
	}

	tag(rules.Match(cur.text, decoded)...)
	if f, ok := detectors.Hex(cur.text, decoded); ok {
		tag(f)
	}
	h := detectors.Base64(cur.text, decoded)
	if h.Finding != nil {
		tag(*h.Finding)
	}
	if h.Err != nil {
		res.Diagnostics = append(res.Diagnostics, fmt.Sprintf("layer %d: %v", cur.depth, h.Err))
		log.Debug("base64 payload not decoded", zap.Int("depth", cur.depth), zap.Int("runs", h.Runs), zap.Error(h.Err))
		return layer{}, false
	}
	if !h.OK || h.Decoded == "" {
		return layer{}, false
	}
	log.Debug("decoded base64 layer", zap.Int("depth", cur.depth+1), zap.Int("bytes", len(h.Decoded)))
	return layer{text: h.Decoded, depth: cur.depth + 1}, true
}
