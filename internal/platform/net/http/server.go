package http

import (
	"context"
	"errors"
	"net"
	stdhttp "net/http"
	"sync"
	"time"

	"github.com/maurolguin1/ig-moderation/internal/platform/config"
	"github.com/maurolguin1/ig-moderation/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// Server wraps a chi mux and an http.Server
type Server struct {
	mux *chi.Mux
	srv *stdhttp.Server

	mu    sync.Mutex
	bound net.Addr
}

// NewServer reads API_PORT and the API_ timeouts. opts receive the *chi.Mux before any route is mounted
func NewServer(cfg config.Conf, opts ...func(*chi.Mux)) *Server {
	a := cfg.Prefix("API_")
	m := chi.NewRouter()
	for _, o := range opts {
		o(m)
	}
	return &Server{
		mux: m,
		srv: &stdhttp.Server{
			Addr:              a.MayString("PORT", ":4000"),
			Handler:           m,
			ReadHeaderTimeout: a.MayDuration("READ_HEADER_TIMEOUT", 10*time.Second),
			IdleTimeout:       a.MayDuration("IDLE_TIMEOUT", 2*time.Minute),
		},
	}
}

// Router returns a Router facade over the internal chi mux
func (s *Server) Router() Router { return AdaptChi(s.mux) }

// Addr returns the bound address once Run is listening, the configured one before
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bound != nil {
		return s.bound.String()
	}
	return s.srv.Addr
}

// Run listens and blocks until Shutdown; ErrServerClosed is reported as nil
func (s *Server) Run(ctx context.Context) error {
	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.bound = ln.Addr()
	s.mu.Unlock()

	logger.Named("http").Info().Str("addr", ln.Addr().String()).Msg("http listening")
	if err := s.srv.Serve(ln); !errors.Is(err, stdhttp.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error { return s.srv.Shutdown(ctx) }
