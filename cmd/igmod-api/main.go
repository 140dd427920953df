// Command igmod-api serves the import, search, export and metrics API
package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/maurolguin1/ig-moderation/internal/platform/config"
	"github.com/maurolguin1/ig-moderation/internal/platform/logger"
	phttp "github.com/maurolguin1/ig-moderation/internal/platform/net/http"
	"github.com/maurolguin1/ig-moderation/internal/platform/store"

	"github.com/maurolguin1/ig-moderation/internal/services/api"
)

func main() {
	// a missing .env is fine; real deployments set the environment
	_ = godotenv.Load()
	logger.Init(logger.FromEnv())
	l := logger.Get()

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := config.New()
	st, err := store.Open(ctx, store.ConfigFromEnv(root, "igmod-api"), store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	gctx, gcancel := context.WithTimeout(ctx, root.MayDuration("API_BOOT_GUARD_TIMEOUT", 10*time.Second))
	if err := st.Guard(gctx); err != nil {
		l.Warn().Err(err).Msg("backends not ready at boot; /meta/ready will report them")
	}
	gcancel()

	// http server (reads API_PORT)
	srv := phttp.NewServer(root)
	api.Mount(srv.Router(), api.Options{
		Config:         root,
		Store:          st,
		Logger:         l,
		EnableProfiler: root.MayBool("API_PROFILER", false),
	})

	errc := make(chan error, 1)
	go func() { errc <- srv.Run(ctx) }()

	select {
	case err := <-errc:
		if err != nil {
			l.Error().Err(err).Msg("http server stopped")
		}
	case <-ctx.Done():
		l.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), root.MayDuration("API_SHUTDOWN_TIMEOUT", 15*time.Second))
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			l.Error().Err(err).Msg("http shutdown")
		}
	}
}
