// Package cli defines the cobra command tree for igmod-import
package cli

import (
	"context"
	"encoding/json"
	"io"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/maurolguin1/ig-moderation/internal/modkit"
	"github.com/maurolguin1/ig-moderation/internal/platform/config"
	"github.com/maurolguin1/ig-moderation/internal/platform/logger"
	"github.com/maurolguin1/ig-moderation/internal/platform/store"
	"github.com/maurolguin1/ig-moderation/internal/services/importer/domain"

	importmod "github.com/maurolguin1/ig-moderation/internal/services/importer/module"
)

// AppName tags store clients opened by the CLI
const AppName = "igmod-import"

var flagEnvFile string

// openService connects the backends and builds the import coordinator; swapped in tests
var openService = func(ctx context.Context) (domain.ServicePort, func(), error) {
	root := config.New()
	st, err := store.Open(ctx, store.ConfigFromEnv(root, AppName), store.WithLogger(*logger.Get()))
	if err != nil {
		return nil, nil, err
	}
	if err := st.Guard(ctx); err != nil {
		_ = st.Close(context.Background())
		return nil, nil, err
	}
	svc := importmod.NewService(modkit.NewDeps(root, st), importmod.FromConfig(root))
	closeFn := func() {
		if err := st.Close(context.Background()); err != nil {
			logger.Get().Error().Err(err).Msg("failed to close store")
		}
	}
	return svc, closeFn, nil
}

// NewRootCmd creates the root command with global flags
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "igmod-import",
		Short:         "Import comment spreadsheets and inspect import jobs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if flagEnvFile == "" {
				// a missing .env is fine; the environment may already be set
				_ = godotenv.Load()
				return nil
			}
			return godotenv.Load(flagEnvFile)
		},
	}

	root.PersistentFlags().StringVar(&flagEnvFile, "env-file", "", "dotenv file to load before connecting (default: ./.env when present)")

	root.AddCommand(
		newImportCmd(),
		newJobsCmd(),
		newLogCmd(),
	)
	return root
}

// withService opens the service for one command run
func withService(ctx context.Context, fn func(svc domain.ServicePort) error) error {
	svc, closeFn, err := openService(ctx)
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(svc)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
