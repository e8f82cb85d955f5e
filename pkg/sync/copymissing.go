package sync

import (
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/errors"
)

// CopyMissing copies eligible files from `src` into `dst` only where no file
// exists yet. Presence alone gates the copy: an existing destination file is
// never overwritten or even compared, so edits a driver made to their own
// copy survive every future run. Nothing is ever deleted.
func CopyMissing(fs afero.Fs, src, dst string, policy Policy) (Result, error) {
	if exists, err := afero.DirExists(fs, src); err != nil || !exists {
		return Result{}, errors.FileNotFound{Path: src}
	}

	if err := fs.MkdirAll(dst, 0755); err != nil {
		return Result{}, errors.WithContext(err, "create destination")
	}

	nodes, err := List(fs, src)
	if err != nil {
		return Result{}, err
	}

	var result Result
	for _, node := range nodes {
		s := filepath.Join(src, node.Name)
		d := filepath.Join(dst, node.Name)

		if node.Kind == KindDir {
			sub, err := CopyMissing(fs, s, d, policy)
			result.add(sub)
			if err != nil {
				log.WithError(err).WithField("dir", s).Warn("Failed to copy subdirectory")
			}
			continue
		}

		if !policy.Eligible(node.Name) {
			result.Skipped++
			continue
		}

		exists, err := afero.Exists(fs, d)
		if err != nil || exists {
			continue
		}
		if err := CopyFile(fs, s, d); err != nil {
			log.WithError(err).WithField("file", s).Warn("Failed to copy file")
			result.Skipped++
			continue
		}
		result.Copied++
	}
	return result, nil
}
