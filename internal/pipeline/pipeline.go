package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/fitcorr/internal/analysis"
	"github.com/KaramelBytes/fitcorr/internal/dataset"
	"github.com/KaramelBytes/fitcorr/internal/memo"
	"github.com/KaramelBytes/fitcorr/internal/metrics"
	"github.com/KaramelBytes/fitcorr/internal/report"
	"github.com/KaramelBytes/fitcorr/internal/source"
	"github.com/google/uuid"
)

// Memo stages.
const (
	StageLoad    = "load"
	StageAnalyze = "analyze"
)

// Pipeline runs load -> clean -> analyze with both derivations memoized by
// content. It is safe for concurrent use.
type Pipeline struct {
	cache   *memo.Cache
	metrics *metrics.Metrics
	logger  *slog.Logger
	opt     dataset.Options
}

// New wires a pipeline. opt is fixed for the pipeline's lifetime.
func New(cache *memo.Cache, m *metrics.Metrics, logger *slog.Logger, opt dataset.Options) *Pipeline {
	return &Pipeline{
		cache:   cache,
		metrics: m,
		logger:  logger.With(slog.String("component", "pipeline")),
		opt:     opt,
	}
}

// Output is the result of one successful run.
type Output struct {
	RunID  string
	Table  *dataset.Table
	Result *analysis.Result
	// Cached reports whether both stages were served from the memo cache.
	Cached bool
}

// Document assembles the presentation document for this run.
func (o *Output) Document() *report.Document {
	return report.New(o.RunID, o.Table, o.Result)
}

// RunFile reads path and runs the pipeline on its bytes.
func (p *Pipeline) RunFile(ctx context.Context, path string) (*Output, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		p.metrics.ObserveRun(metrics.ResultError, 0)
		return nil, fmt.Errorf("read data file: %w", err)
	}
	return p.Run(ctx, path, data)
}

// Run analyzes data. name selects the decoder by extension and labels the report.
func (p *Pipeline) Run(ctx context.Context, name string, data []byte) (*Output, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := p.logger.With(slog.String("run_id", runID), slog.String("file", filepath.Base(name)))

	out, err := p.run(ctx, name, data, log)
	result := classify(err)
	p.metrics.ObserveRun(result, time.Since(start))
	if err != nil {
		log.WarnContext(ctx, "analysis failed", slog.String("result", result), slog.String("error", err.Error()))
		return nil, err
	}
	out.RunID = runID
	log.InfoContext(ctx, "analysis complete",
		slog.Int("rows", out.Table.Rows()),
		slog.Int("columns", len(out.Table.Columns)),
		slog.String("positive", out.Result.Positive.Pair.String()),
		slog.Float64("positive_r", out.Result.Positive.R),
		slog.String("negative", out.Result.Negative.Pair.String()),
		slog.Float64("negative_r", out.Result.Negative.R),
		slog.Bool("cached", out.Cached),
		slog.Duration("elapsed", time.Since(start)))
	return out, nil
}

func (p *Pipeline) run(ctx context.Context, name string, data []byte, log *slog.Logger) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src := p.opt.Source
	loadKey := memo.NewKey(StageLoad).
		String(filepath.Base(name)).
		String(strings.ToLower(filepath.Ext(name))).
		Bytes(data).
		Int(int(src.Delimiter)).
		Int(int(p.opt.DecimalSeparator)).
		String(src.SheetName).
		Int(src.SheetIndex).
		Sum()
	v, loadHit, err := p.cache.Do(StageLoad, loadKey, tableCost, func() (interface{}, error) {
		return dataset.Load(name, data, p.opt)
	})
	if err != nil {
		return nil, err
	}
	tbl := v.(*dataset.Table)
	log.DebugContext(ctx, "table ready", slog.Bool("cache_hit", loadHit), slog.String("key", loadKey[:12]))
	if err := tbl.RequireData(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fp := tbl.Fingerprint()
	v, analyzeHit, err := p.cache.Do(StageAnalyze, fp, resultCost, func() (interface{}, error) {
		return analysis.Analyze(tbl)
	})
	if err != nil {
		return nil, err
	}
	log.DebugContext(ctx, "analysis ready", slog.Bool("cache_hit", analyzeHit), slog.String("key", fp[:12]))
	return &Output{Table: tbl, Result: v.(*analysis.Result), Cached: loadHit && analyzeHit}, nil
}

func classify(err error) string {
	if err == nil {
		return metrics.ResultOK
	}
	var pe *source.ParseError
	var ee *dataset.EmptyResultError
	var ie *analysis.InsufficientDataError
	switch {
	case errors.As(err, &pe):
		return metrics.ResultParseError
	case errors.As(err, &ee):
		return metrics.ResultEmpty
	case errors.As(err, &ie):
		return metrics.ResultInsufficient
	default:
		return metrics.ResultError
	}
}

func tableCost(v interface{}) int64 {
	t := v.(*dataset.Table)
	cells := 0
	for _, c := range t.Columns {
		cells += len(c.Values)
	}
	return int64(8*cells + 8*len(t.SourceRows) + 256)
}

func resultCost(v interface{}) int64 {
	n := int64(len(v.(*analysis.Result).Matrix.Columns))
	return 16*n*n + 256
}
