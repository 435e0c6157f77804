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

// main loads the engineered dataset into the configured warehouse.
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

	p, err := pipeline.New(cfg, logger.Named("publish"))
	if err != nil {
		logger.Fatal("Failed to initialize pipeline", zap.Error(err))
	}

	result, err := p.Publish(ctx)
	if err != nil {
		logger.Error("Publish failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	if result != nil {
		logger.Info("Engineered dataset published",
			zap.String("table", result.Table),
			zap.String("load_id", result.LoadID),
			zap.Int64("rows", result.RowsWritten))
	}
}
