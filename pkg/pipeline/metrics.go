// pkg/pipeline/metrics.go
package pipeline

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Stage names
const (
	StageDownload  = "download"
	StageIngest    = "ingest"
	StageTransform = "transform"
	StagePublish   = "publish"
)

// StageMetrics tracks one stage execution
type StageMetrics struct {
	Stage       string
	StartTime   time.Time
	EndTime     time.Time
	RowsRead    int64
	RowsWritten int64
	Skipped     bool
	Err         string
}

// Duration returns the stage duration
func (sm *StageMetrics) Duration() time.Duration {
	if sm.EndTime.IsZero() {
		return time.Since(sm.StartTime)
	}
	return sm.EndTime.Sub(sm.StartTime)
}

// Succeeded reports whether the stage finished without error
func (sm *StageMetrics) Succeeded() bool {
	return !sm.EndTime.IsZero() && sm.Err == ""
}

// RunMetrics tracks every stage of a pipeline run
type RunMetrics struct {
	mu     sync.Mutex
	logger *zap.Logger
	RunID  string
	Stages []*StageMetrics
}

// NewRunMetrics creates a metrics tracker for one run
func NewRunMetrics(runID string, logger *zap.Logger) *RunMetrics {
	return &RunMetrics{
		RunID:  runID,
		logger: logger,
		Stages: make([]*StageMetrics, 0, 4),
	}
}

// StartStage begins tracking a stage
func (rm *RunMetrics) StartStage(stage string) *StageMetrics {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	sm := &StageMetrics{Stage: stage, StartTime: time.Now()}
	rm.Stages = append(rm.Stages, sm)

	if rm.logger != nil {
		rm.logger.Info("Stage started", zap.String("stage", stage))
	}
	return sm
}

// EndStage completes tracking of a stage and logs its outcome
func (rm *RunMetrics) EndStage(sm *StageMetrics, err error) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	sm.EndTime = time.Now()
	if err != nil {
		sm.Err = err.Error()
	}

	if rm.logger == nil {
		return
	}
	fields := []zap.Field{
		zap.String("stage", sm.Stage),
		zap.Duration("duration", sm.Duration()),
		zap.Int64("rows_read", sm.RowsRead),
		zap.Int64("rows_written", sm.RowsWritten),
	}
	if sm.Skipped {
		fields = append(fields, zap.Bool("skipped", true))
	}
	if err != nil {
		rm.logger.Error("Stage failed", append(fields, zap.Error(err))...)
		return
	}
	rm.logger.Info("Stage completed", fields...)
}

// Stage returns the most recent metrics recorded for a stage
func (rm *RunMetrics) Stage(stage string) (*StageMetrics, bool) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	for i := len(rm.Stages) - 1; i >= 0; i-- {
		if rm.Stages[i].Stage == stage {
			return rm.Stages[i], true
		}
	}
	return nil, false
}

// Summary returns a one-line description of the run
func (rm *RunMetrics) Summary() string {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	var total time.Duration
	failed := 0
	for _, sm := range rm.Stages {
		total += sm.Duration()
		if sm.Err != "" {
			failed++
		}
	}
	return fmt.Sprintf("run %s: %d stages, %d failed, %s",
		rm.RunID, len(rm.Stages), failed, formatDuration(total))
}

// formatDuration formats a duration to a human-readable string
func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}
