package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/David-Botos/churn-pipeline/pkg/config"
	"github.com/David-Botos/churn-pipeline/pkg/converter"
	"github.com/David-Botos/churn-pipeline/pkg/dataset"
	"github.com/David-Botos/churn-pipeline/pkg/model"
)

const rawFixture = `customerID,gender,tenure,TechSupport,PaperlessBilling,StreamingTV,StreamingMovies,MonthlyCharges,TotalCharges,Churn
7590-VHVEG,Female,1,No,Yes,No,No,29.85,29.85,No
5575-GNVDE,Male,34,Yes,No,Yes,No,56.95,1889.5,No
3668-QPYBK,Male,0,No,Yes,No,Yes,53.85, ,Yes
9237-HQITU,Female,73,No internet service,Yes,No internet service,No internet service,70.70,5000.1,Yes
`

// stubSource serves a fixed archive, or fails every call
type stubSource struct {
	archive []byte
	err     error
	calls   int
}

func (s *stubSource) Download(_ context.Context, _ string, w io.Writer) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	_, err := w.Write(s.archive)
	return err
}

// recordingSink keeps published rows in memory
type recordingSink struct {
	table string
	rows  [][]interface{}
}

func (r *recordingSink) Dialect() converter.Dialect { return converter.DialectPostgres }

func (r *recordingSink) RecreateTable(_ context.Context, table string, _ []string) error {
	r.table = table
	return nil
}

func (r *recordingSink) LoadRows(_ context.Context, _ string, _ []string, rows [][]interface{}) (int64, error) {
	r.rows = append(r.rows, rows...)
	return int64(len(rows)), nil
}

func zipArchive(t *testing.T, name, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(name)
	require.NoError(t, err)
	_, err = io.WriteString(w, content)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

type PipelineSuite struct {
	suite.Suite
	cfg    *config.Config
	logs   *observer.ObservedLogs
	logger *zap.Logger
}

func TestPipelineSuite(t *testing.T) {
	suite.Run(t, new(PipelineSuite))
}

func (s *PipelineSuite) SetupTest() {
	dir := s.T().TempDir()
	s.cfg = &config.Config{
		DatasetID:       "blastchar/telco-customer-churn",
		ArchiveMember:   "WA_Fn-UseC_-Telco-Customer-Churn.csv",
		RawDir:          filepath.Join(dir, "raw"),
		CleanedPath:     filepath.Join(dir, "processed", "cleaned_telco.csv"),
		MetadataPath:    filepath.Join(dir, "processed", "column_metadata.csv"),
		AuditPath:       filepath.Join(dir, "processed", "cleaning_audit.csv"),
		EngineeredPath:  filepath.Join(dir, "processed", "engineered_data.csv"),
		DropIdentifier:  true,
		PublishTarget:   config.PublishTargetNone,
		PublishTable:    "engineered_churn",
		ChunkSize:       1000,
		DownloadTimeout: 1,
	}

	core, logs := observer.New(zapcore.DebugLevel)
	s.logs = logs
	s.logger = zap.New(core)
}

func (s *PipelineSuite) writeRaw() {
	s.Require().NoError(os.MkdirAll(s.cfg.RawDir, 0o755))
	s.Require().NoError(os.WriteFile(s.cfg.RawPath(), []byte(rawFixture), 0o644))
}

func (s *PipelineSuite) newPipeline(opts ...Option) *Pipeline {
	p, err := New(s.cfg, s.logger, opts...)
	s.Require().NoError(err)
	return p
}

// TestRunAllSkipsDownloadWhenRawPresent verifies no network access happens
// once the raw file exists, and that every stage produces its output.
func (s *PipelineSuite) TestRunAllSkipsDownloadWhenRawPresent() {
	s.writeRaw()
	source := &stubSource{err: errors.New("network access attempted")}
	sink := &recordingSink{}

	p := s.newPipeline(WithSource(source), WithSink(sink))
	s.Require().NoError(p.RunAll(context.Background()))

	s.Zero(source.calls)
	s.FileExists(s.cfg.CleanedPath)
	s.FileExists(s.cfg.MetadataPath)
	s.FileExists(s.cfg.EngineeredPath)
	s.Equal("engineered_churn", sink.table)
	s.Len(sink.rows, 3)

	engineered, err := dataset.ReadCSV(s.cfg.EngineeredPath)
	s.Require().NoError(err)
	s.False(engineered.HasColumn("customerid"))
	s.Equal("72+", engineered.Rows[2]["tenure_group"])
	s.Equal("", engineered.Rows[2]["techsupport"])

	for _, stage := range []string{StageIngest, StageTransform, StagePublish} {
		sm, ok := p.Metrics().Stage(stage)
		s.Require().True(ok, stage)
		s.True(sm.Succeeded(), stage)
	}
	ingest, _ := p.Metrics().Stage(StageIngest)
	s.Equal(int64(4), ingest.RowsRead)
	s.Equal(int64(3), ingest.RowsWritten)
}

// TestIngestDownloadsWhenRawAbsent verifies the acquisition fallback.
func (s *PipelineSuite) TestIngestDownloadsWhenRawAbsent() {
	source := &stubSource{archive: zipArchive(s.T(), s.cfg.ArchiveMember, rawFixture)}

	report, err := s.newPipeline(WithSource(source)).Ingest(context.Background())
	s.Require().NoError(err)
	s.Equal(1, source.calls)
	s.Equal(3, report.RowsKept)
	s.FileExists(s.cfg.RawPath())
}

// TestFailurePropagation verifies a failed acquisition stops the run
// without leaving stage outputs behind.
func (s *PipelineSuite) TestFailurePropagation() {
	source := &stubSource{err: errors.New("connection refused")}
	p := s.newPipeline(WithSource(source))

	err := p.RunAll(context.Background())

	var acqErr *model.AcquisitionError
	s.Require().ErrorAs(err, &acqErr)
	s.NoFileExists(s.cfg.RawPath())
	s.NoFileExists(s.cfg.CleanedPath)
	s.NoFileExists(s.cfg.EngineeredPath)

	sm, ok := p.Metrics().Stage(StageIngest)
	s.Require().True(ok)
	s.False(sm.Succeeded())
	_, ran := p.Metrics().Stage(StageTransform)
	s.False(ran)
}

// TestTransformWithoutCleanedInput verifies a LoadError from a missing input.
func (s *PipelineSuite) TestTransformWithoutCleanedInput() {
	_, err := s.newPipeline(WithSource(&stubSource{})).Transform(context.Background())

	var loadErr *model.LoadError
	s.Require().ErrorAs(err, &loadErr)
	s.NoFileExists(s.cfg.EngineeredPath)
}

// TestPublishSkippedWithoutTarget verifies publishing is optional.
func (s *PipelineSuite) TestPublishSkippedWithoutTarget() {
	p := s.newPipeline(WithSource(&stubSource{}))

	result, err := p.Publish(context.Background())
	s.Require().NoError(err)
	s.Nil(result)

	sm, ok := p.Metrics().Stage(StagePublish)
	s.Require().True(ok)
	s.True(sm.Skipped)
}

// TestDownload verifies the download stage always fetches.
func (s *PipelineSuite) TestDownload() {
	s.writeRaw()
	source := &stubSource{archive: zipArchive(s.T(), s.cfg.ArchiveMember, "customerID,Churn\nA,No\n")}

	path, err := s.newPipeline(WithSource(source)).Download(context.Background())
	s.Require().NoError(err)
	s.Equal(1, source.calls)

	data, err := os.ReadFile(path)
	s.Require().NoError(err)
	s.Equal("customerID,Churn\nA,No\n", string(data))
}

// TestLogsCarryRunID verifies every entry is tagged with the run identifier.
func (s *PipelineSuite) TestLogsCarryRunID() {
	p := s.newPipeline(WithSource(&stubSource{}))
	_, _ = p.Publish(context.Background())

	entries := s.logs.All()
	s.Require().NotEmpty(entries)
	for _, entry := range entries {
		s.Equal(p.RunID(), entry.ContextMap()["run_id"], entry.Message)
	}
}

func TestNewValidation(t *testing.T) {
	_, err := New(nil, zaptest.NewLogger(t))
	assert.Error(t, err)

	_, err = New(&config.Config{}, nil)
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("debug", LogFormatConsole)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = NewLogger("warn", LogFormatJSON)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))

	_, err = NewLogger("loud", LogFormatJSON)
	assert.Error(t, err)

	_, err = NewLogger("info", "xml")
	assert.Error(t, err)
}

func TestRunMetricsSummary(t *testing.T) {
	metrics := NewRunMetrics("run-1", zaptest.NewLogger(t))

	ok := metrics.StartStage(StageIngest)
	metrics.EndStage(ok, nil)
	failed := metrics.StartStage(StageTransform)
	metrics.EndStage(failed, errors.New("boom"))

	assert.True(t, ok.Succeeded())
	assert.False(t, failed.Succeeded())
	assert.Equal(t, "boom", failed.Err)
	assert.Contains(t, metrics.Summary(), "run run-1: 2 stages, 1 failed")
}
