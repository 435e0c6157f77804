package acquire

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/David-Botos/churn-pipeline/pkg/config"
	"github.com/David-Botos/churn-pipeline/pkg/model"
)

const (
	testDataset = "blastchar/telco-customer-churn"
	testMember  = "WA_Fn-UseC_-Telco-Customer-Churn.csv"
	testCSV     = "customerID,Churn\n7590-VHVEG,No\n"
)

func buildArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = io.WriteString(w, content)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// archiveSource serves a fixed archive and counts downloads
type archiveSource struct {
	archive []byte
	err     error
	calls   int
}

func (s *archiveSource) Download(_ context.Context, _ string, w io.Writer) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	_, err := w.Write(s.archive)
	return err
}

// failingSource fails the test if any download is attempted
type failingSource struct {
	t *testing.T
}

func (s failingSource) Download(context.Context, string, io.Writer) error {
	s.t.Fatal("unexpected network access")
	return errors.New("unexpected network access")
}

func newAcquirer(t *testing.T, source Source, dir string) *Acquirer {
	t.Helper()
	acq, err := NewAcquirer(source, testDataset, dir, testMember, zaptest.NewLogger(t))
	require.NoError(t, err)
	return acq
}

func TestAcquireExtractsMember(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "raw")
	source := &archiveSource{archive: buildArchive(t, map[string]string{
		testMember:   testCSV,
		"readme.txt": "ignored",
	})}

	path, err := newAcquirer(t, source, dir).Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, config.RawFileName), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, testCSV, string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "archive should be removed after extraction")
}

func TestAcquireSingleCSVFallback(t *testing.T) {
	dir := t.TempDir()
	source := &archiveSource{archive: buildArchive(t, map[string]string{
		"data/renamed.csv": testCSV,
	})}

	path, err := newAcquirer(t, source, dir).Acquire(context.Background())
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestAcquireFailures(t *testing.T) {
	cases := []struct {
		name   string
		source *archiveSource
	}{
		{
			name: "member missing",
			source: &archiveSource{archive: buildArchive(t, map[string]string{
				"a.csv": testCSV,
				"b.csv": testCSV,
			})},
		},
		{
			name:   "malformed archive",
			source: &archiveSource{archive: []byte("not a zip")},
		},
		{
			name:   "source unreachable",
			source: &archiveSource{err: errors.New("connection refused")},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			acq := newAcquirer(t, tc.source, dir)

			_, err := acq.Acquire(context.Background())

			var acqErr *model.AcquisitionError
			require.ErrorAs(t, err, &acqErr)
			assert.Equal(t, testDataset, acqErr.Dataset)
			assert.NoFileExists(t, acq.RawPath())

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestEnsureRawSkipsWhenPresent(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, config.RawFileName)
	require.NoError(t, os.WriteFile(existing, []byte(testCSV), 0o644))

	path, err := newAcquirer(t, failingSource{t: t}, dir).EnsureRaw(context.Background())
	require.NoError(t, err)
	assert.Equal(t, existing, path)
}

func TestEnsureRawDownloadsWhenAbsent(t *testing.T) {
	dir := t.TempDir()
	source := &archiveSource{archive: buildArchive(t, map[string]string{testMember: testCSV})}
	acq := newAcquirer(t, source, dir)

	_, err := acq.EnsureRaw(context.Background())
	require.NoError(t, err)
	_, err = acq.EnsureRaw(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, source.calls)
}

func TestNewAcquirerValidation(t *testing.T) {
	_, err := NewAcquirer(nil, testDataset, t.TempDir(), testMember, zaptest.NewLogger(t))
	assert.Error(t, err)

	_, err = NewAcquirer(&archiveSource{}, "", t.TempDir(), testMember, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestKaggleSourceDownload(t *testing.T) {
	archive := []byte("PK-archive-bytes")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, key, ok := r.BasicAuth()
		if !ok || user != "alice" || key != "secret" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if r.URL.Path != "/api/v1/datasets/download/"+testDataset {
			http.NotFound(w, r)
			return
		}
		w.Write(archive)
	}))
	defer server.Close()

	t.Run("streams archive with basic auth", func(t *testing.T) {
		source := NewKaggleSource(server.URL+"/api/v1/", "alice", "secret", 5*time.Second, zaptest.NewLogger(t))

		var buf bytes.Buffer
		require.NoError(t, source.Download(context.Background(), testDataset, &buf))
		assert.Equal(t, archive, buf.Bytes())
	})

	t.Run("maps non-200 status to acquisition error", func(t *testing.T) {
		source := NewKaggleSource(server.URL+"/api/v1", "alice", "wrong", 5*time.Second, zaptest.NewLogger(t))

		err := source.Download(context.Background(), testDataset, io.Discard)
		var acqErr *model.AcquisitionError
		require.ErrorAs(t, err, &acqErr)
		assert.Equal(t, "unexpected status 401", acqErr.Reason)
	})

	t.Run("rejects malformed dataset identifier", func(t *testing.T) {
		source := NewKaggleSource(server.URL, "alice", "secret", 5*time.Second, zaptest.NewLogger(t))

		err := source.Download(context.Background(), "no-slash", io.Discard)
		var acqErr *model.AcquisitionError
		require.ErrorAs(t, err, &acqErr)
	})

	t.Run("maps unreachable host to acquisition error", func(t *testing.T) {
		closed := httptest.NewServer(http.NotFoundHandler())
		closed.Close()
		source := NewKaggleSource(closed.URL, "", "", time.Second, zaptest.NewLogger(t))

		err := source.Download(context.Background(), testDataset, io.Discard)
		var acqErr *model.AcquisitionError
		require.ErrorAs(t, err, &acqErr)
		assert.Equal(t, "source unreachable", acqErr.Reason)
	})
}
