// Command igmod-import imports comment spreadsheets without the HTTP API
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/maurolguin1/ig-moderation/internal/cli"
	"github.com/maurolguin1/ig-moderation/internal/platform/logger"
)

func main() {
	logger.Init(logger.FromEnv())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := cli.NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
