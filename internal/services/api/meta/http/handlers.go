// Package http provides meta endpoints
package http

import (
	stdctx "context"
	"net/http"
	"time"

	"github.com/maurolguin1/ig-moderation/internal/core/version"
	"github.com/maurolguin1/ig-moderation/internal/modkit/httpkit"
	phttp "github.com/maurolguin1/ig-moderation/internal/platform/net/http"
	"github.com/maurolguin1/ig-moderation/internal/platform/store"
)

// Readiness states
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	StatusFail     = "fail"
	StatusSkipped  = "skipped"
	StatusUnknown  = "unknown"
)

// Seam is one backend the readiness probe pings; a nil V is reported as skipped
type Seam struct {
	Name     string
	V        any
	Optional bool
}

// Deps are the handler dependencies
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	Seams       []Seam

	// PingTimeout bounds the whole readiness probe, 0 means 2s
	PingTimeout time.Duration

	// Modules lists the mounted modules, nil reports none
	Modules func() []string
}

type handlers struct {
	deps Deps
}

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	h := &handlers{deps: d}

	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/service", h.service)
}

// Healthz answers 200 unless a required backend fails to ping, then 503
func Healthz(d Deps) http.HandlerFunc {
	h := &handlers{deps: d}
	return func(w http.ResponseWriter, r *http.Request) {
		res := h.probe(r.Context())
		status := http.StatusOK
		if res.Status == StatusFail {
			status = http.StatusServiceUnavailable
		}
		phttp.JSON(w, status, res)
	}
}

// HealthResponse is the health payload
type HealthResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
	Started string `json:"started"`
	Now     string `json:"now"`
}

// ReadyCheck describes a single dependency check
type ReadyCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ReadyResponse summarizes readiness
type ReadyResponse struct {
	Status string       `json:"status"`
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"`
}

// ServiceResponse describes service info
type ServiceResponse struct {
	Name    string   `json:"name"`
	Started string   `json:"started"`
	Uptime  int64    `json:"uptime"`
	Modules []string `json:"modules"`
}

func (h *handlers) health(_ *http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Now:     time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (h *handlers) ready(r *http.Request) (any, error) {
	return h.probe(r.Context()), nil
}

func (h *handlers) version(_ *http.Request) (any, error) {
	return version.Info(), nil
}

func (h *handlers) service(_ *http.Request) (any, error) {
	mods := []string{}
	if h.deps.Modules != nil {
		mods = h.deps.Modules()
	}
	return ServiceResponse{
		Name:    h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Uptime:  int64(time.Since(h.deps.StartedAt) / time.Second),
		Modules: mods,
	}, nil
}

// probe pings every seam; a failing optional seam only degrades
func (h *handlers) probe(parent stdctx.Context) ReadyResponse {
	timeout := h.deps.PingTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := stdctx.WithTimeout(parent, timeout)
	defer cancel()

	overall := StatusOK
	checks := make([]ReadyCheck, 0, len(h.deps.Seams))
	for _, s := range h.deps.Seams {
		c := check(ctx, s)
		checks = append(checks, c)
		switch {
		case c.Status == StatusFail && !s.Optional:
			overall = StatusFail
		case c.Status != StatusOK && c.Status != StatusSkipped && overall == StatusOK:
			overall = StatusDegraded
		}
	}
	return ReadyResponse{
		Status: overall,
		Checks: checks,
		Now:    time.Now().UTC().Format(time.RFC3339),
	}
}

func check(ctx stdctx.Context, s Seam) ReadyCheck {
	if s.V == nil {
		return ReadyCheck{Name: s.Name, Status: StatusSkipped}
	}
	p, ok := s.V.(store.Pinger)
	if !ok {
		return ReadyCheck{Name: s.Name, Status: StatusUnknown}
	}
	if err := p.Ping(ctx); err != nil {
		return ReadyCheck{Name: s.Name, Status: StatusFail, Error: err.Error()}
	}
	return ReadyCheck{Name: s.Name, Status: StatusOK}
}
