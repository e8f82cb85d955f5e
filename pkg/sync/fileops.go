package sync

import (
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/errors"
)

// CopyFile copies a single file, creating parent directories as needed and
// preserving the source's modification time. Fingerprint comparisons depend
// on content only, but the bidirectional merge resolves conflicts by mtime,
// so losing timestamps during a copy would flip later conflict decisions.
func CopyFile(fs afero.Fs, src, dst string) error {
	srcInfo, err := fs.Stat(src)
	if err != nil {
		return errors.WithContext(err, "stat source")
	}

	if err := fs.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.WithContext(err, "create parent dir")
	}

	in, err := fs.Open(src)
	if err != nil {
		return errors.WithContext(err, "open source")
	}
	defer in.Close()

	out, err := fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, srcInfo.Mode())
	if err != nil {
		return errors.WithContext(err, "open destination")
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.WithContext(err, "copy contents")
	}
	if err := out.Close(); err != nil {
		return errors.WithContext(err, "close destination")
	}

	if err := fs.Chtimes(dst, srcInfo.ModTime(), srcInfo.ModTime()); err != nil {
		return errors.WithContext(err, "preserve modtime")
	}

	log.WithFields(log.Fields{
		"src": src,
		"dst": dst,
	}).Debug("Copied file")
	return nil
}

// CopyTree copies a directory wholesale, no extension filter, preserving
// file modification times. Used when an entire subtree exists on only one
// side: the bidirectional merge and first-time imports.
func CopyTree(fs afero.Fs, src, dst string) (copied int, err error) {
	if err := fs.MkdirAll(dst, 0755); err != nil {
		return 0, errors.WithContext(err, "create dir")
	}

	nodes, err := List(fs, src)
	if err != nil {
		return 0, err
	}

	for _, node := range nodes {
		s := filepath.Join(src, node.Name)
		d := filepath.Join(dst, node.Name)
		if node.Kind == KindDir {
			n, err := CopyTree(fs, s, d)
			copied += n
			if err != nil {
				return copied, err
			}
			continue
		}

		if err := CopyFile(fs, s, d); err != nil {
			return copied, err
		}
		copied++
	}
	return copied, nil
}
