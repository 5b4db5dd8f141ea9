package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/kirillkom/knowledge-ingest/internal/bootstrap"
	"github.com/kirillkom/knowledge-ingest/internal/config"
	"github.com/kirillkom/knowledge-ingest/internal/observability/logging"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.ApplyFlags(config.Load(), "ingest", args, os.Stderr)
	logger := logging.NewJSONLogger("knowledge-ingest", cfg.LogLevel)
	if err != nil {
		logger.Error("config_error", "error", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("config_error", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(cfg, logger)
	if err != nil {
		logger.Error("bootstrap_error", "error", err)
		return 1
	}
	defer app.Close()

	report, err := app.Run(ctx)
	if err != nil {
		logger.Error("ingest_error", "error", err)
		return 1
	}

	for _, f := range report.Failures {
		logger.Warn("file_failed", "run_id", report.RunID, "path", f.Path, "outcome", f.Outcome, "error", f.Error)
	}
	return 0
}
