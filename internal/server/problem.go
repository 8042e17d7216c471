package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/KaramelBytes/fitcorr/internal/analysis"
	"github.com/KaramelBytes/fitcorr/internal/dataset"
	"github.com/KaramelBytes/fitcorr/internal/source"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// Problem types.
const (
	TypeParse        = "/problems/parse-error"
	TypeEmpty        = "/problems/empty-result"
	TypeInsufficient = "/problems/insufficient-data"
	TypeNotFound     = "/problems/not-found"
	TypeTimeout      = "/problems/timeout"
	TypeInternal     = "/problems/internal"
)

// Problem is an RFC 7807 problem details body.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	TraceID  string `json:"trace_id,omitempty"`
}

// Render implements render.Renderer.
func (p *Problem) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, p.Status)
	return nil
}

// toProblem maps pipeline errors onto HTTP problems.
func toProblem(err error, r *http.Request) *Problem {
	p := &Problem{Detail: err.Error(), Instance: r.URL.Path, TraceID: middleware.GetReqID(r.Context())}
	var pe *source.ParseError
	var ee *dataset.EmptyResultError
	var ie *analysis.InsufficientDataError
	switch {
	case errors.As(err, &pe):
		p.Type, p.Title, p.Status = TypeParse, "Data file could not be parsed", http.StatusUnprocessableEntity
	case errors.As(err, &ee):
		p.Type, p.Title, p.Status = TypeEmpty, "No usable data", http.StatusUnprocessableEntity
	case errors.As(err, &ie):
		p.Type, p.Title, p.Status = TypeInsufficient, "Insufficient data", http.StatusUnprocessableEntity
	case errors.Is(err, os.ErrNotExist):
		p.Type, p.Title, p.Status = TypeNotFound, "Data file not found", http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		p.Type, p.Title, p.Status = TypeTimeout, "Request timeout", http.StatusGatewayTimeout
	default:
		p.Type, p.Title, p.Status = TypeInternal, "Internal server error", http.StatusInternalServerError
		p.Detail = "an unexpected error occurred"
	}
	return p
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	p := toProblem(err, r)
	level := slog.LevelWarn
	if p.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	s.logger.Log(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.Int("status", p.Status),
		slog.String("request_id", p.TraceID),
		slog.String("path", r.URL.Path))
	_ = render.Render(w, r, p)
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request, detail string) {
	_ = render.Render(w, r, &Problem{
		Type:     TypeNotFound,
		Title:    "Not found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: r.URL.Path,
		TraceID:  middleware.GetReqID(r.Context()),
	})
}
