// Package logger owns the process-wide zerolog logger and the ctx fields
// (request_id, job_id) that follow a request or import job through the code
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"

	"github.com/maurolguin1/ig-moderation/internal/core/version"
	"github.com/maurolguin1/ig-moderation/internal/platform/config/raw"
)

// Logger is the project logging type
type Logger = zerolog.Logger

// Options configures the root logger. Format "console" is human readable,
// anything else writes JSON lines.
type Options struct {
	Level       string
	Format      string
	Service     string
	Writer      io.Writer // stdout when nil
	WithCaller  bool
	SampleEvery int // keep 1 in N events when > 1
}

// FromEnv reads LOG_* through raw, since config itself logs.
func FromEnv() Options {
	c := raw.New().Prefix("LOG_")
	return Options{
		Level:       c.Get("LEVEL", "debug"),
		Format:      strings.ToLower(c.Get("FORMAT", "console")),
		Service:     c.Get("SERVICE", ""),
		WithCaller:  c.GetBool("CALLER", false),
		SampleEvery: c.GetInt("SAMPLE_EVERY", 0),
	}
}

var (
	once sync.Once
	root atomic.Pointer[zerolog.Logger]
)

// Init builds the root logger. Only the first call has an effect; Get
// initializes from the environment when nothing called Init.
func Init(opt Options) {
	once.Do(func() {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		zerolog.TimeFieldFormat = time.RFC3339Nano

		w := opt.Writer
		if w == nil {
			w = os.Stdout
		}
		if opt.Format == "console" {
			w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
		}

		b := zerolog.New(w).Level(parseLevel(opt.Level)).With().Timestamp().
			Str("version", version.Info().Version)
		if opt.Service != "" {
			b = b.Str("service", opt.Service)
		}
		if opt.WithCaller {
			b = b.Caller()
		}
		l := b.Logger()
		if opt.SampleEvery > 1 {
			l = l.Sample(&zerolog.BasicSampler{N: uint32(opt.SampleEvery)})
		}
		root.Store(&l)
	})
}

// Get returns the root logger
func Get() *Logger {
	if l := root.Load(); l != nil {
		return l
	}
	Init(FromEnv())
	return root.Load()
}

// parseLevel accepts zerolog level names plus "warning"; anything else is debug
func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || s == "" {
		return zerolog.DebugLevel
	}
	return lvl
}

type ctxKey int

const (
	keyRequestID ctxKey = iota
	keyJobID
)

// WithRequest stores the request and job ids on ctx; blanks are skipped
func WithRequest(ctx context.Context, reqID, jobID string) context.Context {
	if reqID != "" {
		ctx = context.WithValue(ctx, keyRequestID, reqID)
	}
	return WithJob(ctx, jobID)
}

// WithJob tags every line logged through C(ctx) with the import job id
func WithJob(ctx context.Context, jobID string) context.Context {
	if jobID == "" {
		return ctx
	}
	return context.WithValue(ctx, keyJobID, jobID)
}

// C is the root logger with ctx's ids attached
func C(ctx context.Context) *Logger {
	l := From(*Get(), ctx)
	return &l
}

// From attaches ctx's ids to l, keeping l's own fields
func From(l Logger, ctx context.Context) Logger {
	b := l.With()
	for _, f := range []struct {
		key  ctxKey
		name string
	}{{keyRequestID, "request_id"}, {keyJobID, "job_id"}} {
		if s, _ := ctx.Value(f.key).(string); s != "" {
			b = b.Str(f.name, s)
		}
	}
	return b.Logger()
}

// Named returns a child logger tagged with component
func Named(component string) *Logger {
	if component == "" {
		return Get()
	}
	l := Get().With().Str("component", component).Logger()
	return &l
}
