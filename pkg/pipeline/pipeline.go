// pkg/pipeline/pipeline.go
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/David-Botos/churn-pipeline/pkg/acquire"
	"github.com/David-Botos/churn-pipeline/pkg/cleaner"
	"github.com/David-Botos/churn-pipeline/pkg/config"
	"github.com/David-Botos/churn-pipeline/pkg/connector"
	"github.com/David-Botos/churn-pipeline/pkg/features"
	"github.com/David-Botos/churn-pipeline/pkg/publish"
)

// Option customizes a Pipeline
type Option func(*Pipeline)

// WithSource replaces the Kaggle dataset source
func WithSource(source acquire.Source) Option {
	return func(p *Pipeline) {
		p.source = source
	}
}

// WithSink replaces the configured warehouse connector
func WithSink(sink publish.Sink) Option {
	return func(p *Pipeline) {
		p.sink = sink
	}
}

// Pipeline runs the stages of the churn dataset pipeline
type Pipeline struct {
	cfg     *config.Config
	logger  *zap.Logger
	runID   string
	source  acquire.Source
	sink    publish.Sink
	metrics *RunMetrics
}

// New creates a Pipeline for one run. Every log line carries the run_id.
func New(cfg *config.Config, logger *zap.Logger, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	runID := uuid.New().String()
	logger = logger.With(zap.String("run_id", runID))

	p := &Pipeline{
		cfg:     cfg,
		logger:  logger,
		runID:   runID,
		metrics: NewRunMetrics(runID, logger.Named("metrics")),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.source == nil {
		p.source = acquire.NewKaggleSource(
			cfg.KaggleBaseURL,
			cfg.KaggleUsername,
			cfg.KaggleKey,
			cfg.DownloadTimeout,
			logger,
		)
	}

	return p, nil
}

// RunID returns the identifier of this run
func (p *Pipeline) RunID() string {
	return p.runID
}

// Metrics returns the per-stage metrics collected so far
func (p *Pipeline) Metrics() *RunMetrics {
	return p.metrics
}

func (p *Pipeline) acquirer() (*acquire.Acquirer, error) {
	return acquire.NewAcquirer(p.source, p.cfg.DatasetID, p.cfg.RawDir, p.cfg.ArchiveMember, p.logger)
}

func (p *Pipeline) runStage(stage string, fn func(sm *StageMetrics) error) error {
	sm := p.metrics.StartStage(stage)
	err := fn(sm)
	p.metrics.EndStage(sm, err)
	return err
}

// Download fetches the dataset unconditionally and returns the raw path
func (p *Pipeline) Download(ctx context.Context) (string, error) {
	var rawPath string
	err := p.runStage(StageDownload, func(sm *StageMetrics) error {
		acq, err := p.acquirer()
		if err != nil {
			return err
		}
		rawPath, err = acq.Acquire(ctx)
		return err
	})
	return rawPath, err
}

// Ingest cleans the raw dataset, downloading it first only when the raw
// file is absent
func (p *Pipeline) Ingest(ctx context.Context) (*cleaner.Report, error) {
	var report *cleaner.Report
	err := p.runStage(StageIngest, func(sm *StageMetrics) error {
		acq, err := p.acquirer()
		if err != nil {
			return err
		}
		if _, statErr := os.Stat(acq.RawPath()); statErr != nil {
			p.logger.Warn("Raw dataset not found, it will be downloaded",
				zap.String("path", acq.RawPath()))
		}

		dataCleaner, err := cleaner.NewDataCleaner(acq, p.logger)
		if err != nil {
			return err
		}
		report, err = dataCleaner.Run(ctx, cleaner.OutputPaths{
			CleanedPath:  p.cfg.CleanedPath,
			MetadataPath: p.cfg.MetadataPath,
			AuditPath:    p.cfg.AuditPath,
		})
		if err != nil {
			return err
		}
		sm.RowsRead = int64(report.RowsRead)
		sm.RowsWritten = int64(report.RowsKept)
		return nil
	})
	return report, err
}

// Transform derives features from the cleaned table
func (p *Pipeline) Transform(ctx context.Context) (*features.Result, error) {
	var result *features.Result
	err := p.runStage(StageTransform, func(sm *StageMetrics) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		engineer, err := features.NewEngineer(p.cfg.DropIdentifier, p.logger)
		if err != nil {
			return err
		}
		result, err = engineer.TransformFile(p.cfg.CleanedPath, p.cfg.EngineeredPath)
		if err != nil {
			return err
		}
		sm.RowsRead = int64(result.Rows)
		sm.RowsWritten = int64(result.Rows)
		return nil
	})
	return result, err
}

// Publish loads the engineered table into the configured warehouse. It
// returns a nil result when no publish target is configured.
func (p *Pipeline) Publish(ctx context.Context) (*publish.Result, error) {
	var result *publish.Result
	err := p.runStage(StagePublish, func(sm *StageMetrics) error {
		sink, closeSink, err := p.openSink(ctx)
		if err != nil {
			return err
		}
		if sink == nil {
			p.logger.Info("No publish target configured, skipping publish")
			sm.Skipped = true
			return nil
		}
		defer closeSink()

		publisher, err := publish.NewPublisher(sink, p.cfg.PublishTable, p.logger)
		if err != nil {
			return err
		}
		result, err = publisher.Publish(ctx, p.cfg.EngineeredPath)
		if err != nil {
			return err
		}
		sm.RowsRead = int64(result.RowsRead)
		sm.RowsWritten = result.RowsWritten
		return nil
	})
	return result, err
}

// openSink returns the injected sink or connects to the configured target
func (p *Pipeline) openSink(ctx context.Context) (publish.Sink, func(), error) {
	if p.sink != nil {
		return p.sink, func() {}, nil
	}

	factory := connector.NewConnectorFactory(p.cfg, p.logger)
	conn, err := factory.CreateTargetConnector(ctx)
	if err != nil {
		return nil, nil, err
	}
	if conn == nil {
		return nil, nil, nil
	}

	closeConn := func() {
		if err := conn.Close(); err != nil {
			p.logger.Warn("Failed to close connector", zap.Error(err))
		}
	}
	if err := conn.Validate(ctx); err != nil {
		closeConn()
		return nil, nil, fmt.Errorf("failed to validate publish target: %w", err)
	}
	return conn, closeConn, nil
}

// RunAll runs ingest, transform and publish in order, stopping at the
// first failure
func (p *Pipeline) RunAll(ctx context.Context) error {
	defer func() {
		p.logger.Info("Pipeline finished", zap.String("summary", p.metrics.Summary()))
	}()

	if _, err := p.Ingest(ctx); err != nil {
		return fmt.Errorf("%s stage: %w", StageIngest, err)
	}
	if _, err := p.Transform(ctx); err != nil {
		return fmt.Errorf("%s stage: %w", StageTransform, err)
	}
	if _, err := p.Publish(ctx); err != nil {
		return fmt.Errorf("%s stage: %w", StagePublish, err)
	}
	return nil
}
