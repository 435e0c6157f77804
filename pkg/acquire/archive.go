// pkg/acquire/archive.go
package acquire

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

// extractMember copies one entry of a zip archive to dest. The entry is
// matched by base name; when member is not present and the archive holds
// exactly one CSV file, that file is used. The returned string is the
// entry actually extracted.
func extractMember(archivePath, member, dest string) (string, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", fmt.Errorf("malformed archive: %w", err)
	}
	defer reader.Close()

	entry := findEntry(reader.File, member)
	if entry == nil {
		return "", wrapMemberNotFound(member)
	}

	src, err := entry.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", entry.Name, err)
	}
	defer src.Close()

	if err := writeAtomically(dest, src); err != nil {
		return "", err
	}
	return entry.Name, nil
}

func findEntry(files []*zip.File, member string) *zip.File {
	var csvFiles []*zip.File
	for _, f := range files {
		if f.FileInfo().IsDir() {
			continue
		}
		if member != "" && path.Base(f.Name) == member {
			return f
		}
		if strings.EqualFold(path.Ext(f.Name), ".csv") {
			csvFiles = append(csvFiles, f)
		}
	}
	if len(csvFiles) == 1 {
		return csvFiles[0]
	}
	return nil
}

func writeAtomically(dest string, src io.Reader) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if _, err = io.Copy(tmp, src); err != nil {
		return fmt.Errorf("failed to extract: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, dest)
}
