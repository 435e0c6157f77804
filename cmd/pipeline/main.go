package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/David-Botos/churn-pipeline/pkg/config"
	"github.com/David-Botos/churn-pipeline/pkg/pipeline"
)

// main runs ingest, transform and publish in sequence.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := pipeline.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := pipeline.New(cfg, logger.Named("pipeline"))
	if err != nil {
		logger.Fatal("Failed to initialize pipeline", zap.Error(err))
	}

	if err := p.RunAll(ctx); err != nil {
		logger.Error("Pipeline failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}
