// Package control serves a small HTTP API for driving a running session.
package control

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/verte-zerg/typewright/internal/engine"
)

// Controller is the subset of engine operations exposed over HTTP. Calls
// may block until the engine's execution context runs them.
type Controller interface {
	Snapshot(ctx context.Context) (engine.Snapshot, error)
	Pause(ctx context.Context) (bool, error)
	Resume(ctx context.Context, countdown int) (bool, error)
	Stop(ctx context.Context) error
}

// Status is the JSON form of an engine snapshot.
type Status struct {
	State           string     `json:"state"`
	Message         string     `json:"message"`
	Countdown       int        `json:"countdown"`
	Thinking        bool       `json:"thinking"`
	Progress        float64    `json:"progress"`
	Cursor          int        `json:"cursor"`
	Total           int        `json:"total"`
	Target          string     `json:"target,omitempty"`
	PauseReason     string     `json:"pause_reason,omitempty"`
	LastCompletedAt *time.Time `json:"last_completed_at,omitempty"`
	LastDurationMs  int64      `json:"last_duration_ms,omitempty"`
}

// NewStatus converts a snapshot.
func NewStatus(s engine.Snapshot) Status {
	st := Status{
		State:          s.State.String(),
		Message:        s.Message,
		Countdown:      s.Countdown,
		Thinking:       s.Thinking,
		Progress:       s.Progress,
		Cursor:         s.Cursor,
		Total:          s.Total,
		Target:         string(s.Target),
		PauseReason:    string(s.PauseReason),
		LastDurationMs: s.LastDuration.Milliseconds(),
	}
	if !s.LastCompletedAt.IsZero() {
		t := s.LastCompletedAt
		st.LastCompletedAt = &t
	}
	return st
}

type server struct {
	ctl             Controller
	resumeCountdown int
	logger          *slog.Logger
}

// NewHandler routes the control API. gatherer backs GET /metrics; nil
// leaves the route out.
func NewHandler(ctl Controller, resumeCountdown int, gatherer prometheus.Gatherer, logger *slog.Logger) http.Handler {
	s := &server{ctl: ctl, resumeCountdown: resumeCountdown, logger: logger}
	r := chi.NewRouter()
	r.Get("/status", s.status)
	r.Post("/pause", s.pause)
	r.Post("/resume", s.resume)
	r.Post("/stop", s.stop)
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func (s *server) status(w http.ResponseWriter, r *http.Request) {
	snap, err := s.ctl.Snapshot(r.Context())
	if err != nil {
		s.unavailable(w, err)
		return
	}
	s.writeStatus(w, http.StatusOK, snap)
}

func (s *server) pause(w http.ResponseWriter, r *http.Request) {
	ok, err := s.ctl.Pause(r.Context())
	s.transition(w, r, ok, err, "not typing")
}

func (s *server) resume(w http.ResponseWriter, r *http.Request) {
	countdown := s.resumeCountdown
	if v := r.URL.Query().Get("countdown"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "countdown must be a non-negative integer", http.StatusBadRequest)
			return
		}
		countdown = n
	}
	ok, err := s.ctl.Resume(r.Context(), countdown)
	s.transition(w, r, ok, err, "not paused")
}

func (s *server) stop(w http.ResponseWriter, r *http.Request) {
	err := s.ctl.Stop(r.Context())
	s.transition(w, r, true, err, "")
}

func (s *server) transition(w http.ResponseWriter, r *http.Request, ok bool, err error, conflict string) {
	if err != nil {
		s.unavailable(w, err)
		return
	}
	snap, err := s.ctl.Snapshot(r.Context())
	if err != nil {
		s.unavailable(w, err)
		return
	}
	code := http.StatusOK
	if !ok {
		s.logger.Debug("control request rejected", "path", r.URL.Path, "state", snap.State.String())
		code = http.StatusConflict
		snap.Message = conflict
	}
	s.writeStatus(w, code, snap)
}

func (s *server) unavailable(w http.ResponseWriter, err error) {
	s.logger.Warn("control request failed", "err", err)
	http.Error(w, "engine unavailable", http.StatusServiceUnavailable)
}

func (s *server) writeStatus(w http.ResponseWriter, code int, snap engine.Snapshot) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(NewStatus(snap)); err != nil {
		s.logger.Error("status encode failed", "err", err)
	}
}
