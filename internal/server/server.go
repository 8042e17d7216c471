// Package server exposes analysis results as a small JSON dashboard API.
// Every request re-runs the memoized pipeline against the configured file,
// so edits to the file show up on the next request.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/KaramelBytes/fitcorr/internal/analysis"
	"github.com/KaramelBytes/fitcorr/internal/pipeline"
	"github.com/KaramelBytes/fitcorr/internal/plot"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Analyzer runs the analysis pipeline on a file.
type Analyzer interface {
	RunFile(ctx context.Context, path string) (*pipeline.Output, error)
}

// Server serves one data file.
type Server struct {
	analyzer Analyzer
	dataPath string
	gatherer prometheus.Gatherer
	logger   *slog.Logger
	timeout  time.Duration
}

// New builds a server for dataPath. gatherer backs /metrics.
func New(a Analyzer, dataPath string, gatherer prometheus.Gatherer, logger *slog.Logger) *Server {
	return &Server{
		analyzer: a,
		dataPath: dataPath,
		gatherer: gatherer,
		logger:   logger.With(slog.String("component", "server")),
		timeout:  30 * time.Second,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/summary", s.summary)
		r.Get("/matrix", s.matrix)
		r.Get("/heatmap", s.heatmap)
		r.Route("/pairs/{kind}", func(r chi.Router) {
			r.Get("/", s.pair)
			r.Get("/scatter.png", s.scatter)
		})
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.notFound(w, r, "no route for "+r.URL.Path)
	})
	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", slog.String("addr", addr), slog.String("file", s.dataPath))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

// SummaryResponse is the body of GET /api/summary.
type SummaryResponse struct {
	RunID      string           `json:"run_id"`
	Source     string           `json:"source"`
	RowsRead   int              `json:"rows_read"`
	Rows       int              `json:"rows"`
	Columns    []string         `json:"columns"`
	Positive   analysis.Extreme `json:"positive"`
	Negative   analysis.Extreme `json:"negative"`
	Degenerate bool             `json:"degenerate"`
	Pairs      int              `json:"pairs"`
	Notes      []string         `json:"notes,omitempty"`
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	out, err := s.analyzer.RunFile(r.Context(), s.dataPath)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	doc := out.Document()
	render.JSON(w, r, SummaryResponse{
		RunID:      doc.RunID,
		Source:     doc.Source,
		RowsRead:   doc.RowsRead,
		Rows:       doc.Rows,
		Columns:    out.Table.Names(),
		Positive:   out.Result.Positive,
		Negative:   out.Result.Negative,
		Degenerate: out.Result.Degenerate,
		Pairs:      out.Result.Pairs,
		Notes:      doc.Notes,
	})
}

func (s *Server) matrix(w http.ResponseWriter, r *http.Request) {
	out, err := s.analyzer.RunFile(r.Context(), s.dataPath)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, out.Result.Matrix)
}

func (s *Server) heatmap(w http.ResponseWriter, r *http.Request) {
	out, err := s.analyzer.RunFile(r.Context(), s.dataPath)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	cells := out.Result.Heatmap()
	if cells == nil {
		cells = []analysis.Cell{}
	}
	render.JSON(w, r, cells)
}

// PairResponse is the body of GET /api/pairs/{kind}.
type PairResponse struct {
	Kind       string           `json:"kind"`
	Pair       analysis.Extreme `json:"pair"`
	Degenerate bool             `json:"degenerate"`
	Points     []analysis.Point `json:"points"`
}

// extreme resolves {kind} against a run. ok is false for an unknown kind.
func extreme(kind string, res *analysis.Result) (analysis.Extreme, bool) {
	switch kind {
	case "positive":
		return res.Positive, true
	case "negative":
		return res.Negative, true
	}
	return analysis.Extreme{}, false
}

func (s *Server) pair(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	out, err := s.analyzer.RunFile(r.Context(), s.dataPath)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	e, ok := extreme(kind, out.Result)
	if !ok {
		s.notFound(w, r, fmt.Sprintf("unknown pair kind %q (want positive or negative)", kind))
		return
	}
	pts := analysis.Points(out.Table, e.Pair)
	if pts == nil {
		pts = []analysis.Point{}
	}
	render.JSON(w, r, PairResponse{Kind: kind, Pair: e, Degenerate: out.Result.Degenerate, Points: pts})
}

func (s *Server) scatter(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	out, err := s.analyzer.RunFile(r.Context(), s.dataPath)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	e, ok := extreme(kind, out.Result)
	if !ok {
		s.notFound(w, r, fmt.Sprintf("unknown pair kind %q (want positive or negative)", kind))
		return
	}
	var buf bytes.Buffer
	err = plot.Scatter(&buf, analysis.Points(out.Table, e.Pair), plot.Options{
		Title: fmt.Sprintf("%s (r = %.4f)", e.Pair, e.R),
		XName: e.A,
		YName: e.B,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}
