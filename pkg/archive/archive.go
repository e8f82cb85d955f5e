// Package archive stages setup bundles that arrive as ZIP files. The
// archive is extracted next to itself into a scratch directory, the import
// consumes the scratch directory like any plain folder, and the scratch
// directory is removed afterwards.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/errors"
)

// Mocked out for unit testing.
var fs = afero.NewOsFs()

// Stage extracts `zipPath` into a scratch directory and returns its path
// along with a cleanup function. The cleanup never fails the run; a scratch
// directory that can't be removed is only logged.
func Stage(zipPath string) (string, func(), error) {
	base := filepath.Base(zipPath)
	scratch := filepath.Join(filepath.Dir(zipPath), strings.TrimSuffix(base, filepath.Ext(base)))

	if err := Extract(zipPath, scratch); err != nil {
		return "", nil, errors.WithContext(err, "extract archive")
	}

	cleanup := func() {
		if err := fs.RemoveAll(scratch); err != nil {
			log.WithError(err).WithField("path", scratch).Warn("Failed to remove scratch directory")
		}
	}
	return scratch, cleanup, nil
}

// Extract unpacks the ZIP archive at `zipPath` into `destDir`, preserving
// entry modification times. Entries that would escape the destination
// directory are rejected.
func Extract(zipPath, destDir string) error {
	f, err := fs.Open(zipPath)
	if err != nil {
		return errors.WithContext(err, "open archive")
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return errors.WithContext(err, "stat archive")
	}

	reader, err := zip.NewReader(f, info.Size())
	if err != nil {
		return errors.WithContext(err, "read archive")
	}

	for _, entry := range reader.File {
		if err := extractEntry(entry, destDir); err != nil {
			return errors.WithContext(err, fmt.Sprintf("extract %q", entry.Name))
		}
	}
	return nil
}

func extractEntry(entry *zip.File, destDir string) error {
	dest := filepath.Join(destDir, filepath.FromSlash(entry.Name))

	// Reject entries that traverse out of the destination.
	rel, err := filepath.Rel(destDir, dest)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return errors.New("entry path escapes destination")
	}

	if entry.FileInfo().IsDir() {
		return fs.MkdirAll(dest, 0755)
	}

	if err := fs.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return errors.WithContext(err, "create parent dir")
	}

	in, err := entry.Open()
	if err != nil {
		return errors.WithContext(err, "open entry")
	}
	defer in.Close()

	out, err := fs.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, entry.Mode())
	if err != nil {
		return errors.WithContext(err, "create file")
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.WithContext(err, "copy contents")
	}
	if err := out.Close(); err != nil {
		return errors.WithContext(err, "close file")
	}

	if !entry.Modified.IsZero() {
		if err := fs.Chtimes(dest, entry.Modified, entry.Modified); err != nil {
			return errors.WithContext(err, "preserve modtime")
		}
	}
	return nil
}
