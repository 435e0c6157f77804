// pkg/acquire/acquire.go
package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/David-Botos/churn-pipeline/pkg/config"
	"github.com/David-Botos/churn-pipeline/pkg/model"
)

// Source streams a dataset archive from an external provider
type Source interface {
	Download(ctx context.Context, datasetID string, w io.Writer) error
}

// Ensurer makes the raw dataset available locally and returns its path
type Ensurer interface {
	EnsureRaw(ctx context.Context) (string, error)
}

// Acquirer downloads the dataset archive and extracts the raw file
type Acquirer struct {
	source    Source
	datasetID string
	destDir   string
	member    string
	logger    *zap.Logger
}

// NewAcquirer creates an Acquirer writing config.RawFileName into destDir.
// member names the archive entry to extract.
func NewAcquirer(source Source, datasetID, destDir, member string, logger *zap.Logger) (*Acquirer, error) {
	if source == nil {
		return nil, errors.New("dataset source cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if datasetID == "" || destDir == "" {
		return nil, errors.New("dataset identifier and destination directory are required")
	}

	return &Acquirer{
		source:    source,
		datasetID: datasetID,
		destDir:   destDir,
		member:    member,
		logger:    logger.Named("acquire"),
	}, nil
}

// RawPath returns where the acquired dataset is stored
func (a *Acquirer) RawPath() string {
	return filepath.Join(a.destDir, config.RawFileName)
}

// EnsureRaw returns the raw path, acquiring the dataset only if no file
// exists there yet
func (a *Acquirer) EnsureRaw(ctx context.Context) (string, error) {
	path := a.RawPath()
	if _, err := os.Stat(path); err == nil {
		a.logger.Info("Raw dataset already present, skipping download",
			zap.String("path", path))
		return path, nil
	}
	return a.Acquire(ctx)
}

// Acquire downloads the archive, extracts the dataset file under its
// pipeline name and removes the archive. It runs unconditionally.
func (a *Acquirer) Acquire(ctx context.Context) (string, error) {
	a.logger.Info("Downloading dataset",
		zap.String("dataset", a.datasetID),
		zap.String("destination", a.destDir))

	if err := os.MkdirAll(a.destDir, 0o755); err != nil {
		return "", a.fail("cannot create destination directory", err)
	}

	archive, err := os.CreateTemp(a.destDir, ".download-*.zip")
	if err != nil {
		return "", a.fail("cannot create temporary archive", err)
	}
	archiveName := archive.Name()
	defer os.Remove(archiveName)

	if err := a.source.Download(ctx, a.datasetID, archive); err != nil {
		archive.Close()
		var acqErr *model.AcquisitionError
		if errors.As(err, &acqErr) {
			return "", err
		}
		return "", a.fail("download failed", err)
	}
	if err := archive.Close(); err != nil {
		return "", a.fail("cannot finalize archive", err)
	}

	path := a.RawPath()
	memberName, err := extractMember(archiveName, a.member, path)
	if err != nil {
		return "", a.fail("archive extraction failed", err)
	}

	a.logger.Info("Downloaded and extracted dataset",
		zap.String("dataset", a.datasetID),
		zap.String("member", memberName),
		zap.String("path", path))
	return path, nil
}

func (a *Acquirer) fail(reason string, err error) error {
	return &model.AcquisitionError{
		Dataset: a.datasetID,
		Reason:  reason,
		Err:     err,
	}
}

// errMemberNotFound is returned when the archive lacks the expected file
var errMemberNotFound = errors.New("expected file not found in archive")

func wrapMemberNotFound(member string) error {
	return fmt.Errorf("%w: %s", errMemberNotFound, member)
}
