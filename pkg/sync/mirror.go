package sync

import (
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/errors"
	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/fingerprint"
)

// Mirror makes `dst` converge to the eligible contents of `src`. Directories
// are recursed into, eligible files are copied when absent or different, and
// (when policy.DeleteExtras is set) destination entries with no eligible
// source counterpart are removed.
//
// A missing source root returns errors.FileNotFound so callers can skip the
// item and keep processing its siblings. Failures on individual files are
// logged and skipped. Mirror is idempotent: a second run over unchanged trees
// does nothing.
func Mirror(fs afero.Fs, src, dst string, policy Policy) (Result, error) {
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
			if policy.ignoredDir(node.Name) {
				continue
			}
			sub, err := Mirror(fs, s, d, policy)
			result.add(sub)
			if err != nil {
				log.WithError(err).WithField("dir", s).Warn("Failed to mirror subdirectory")
			}
			continue
		}

		if !policy.Eligible(node.Name) {
			result.Skipped++
			continue
		}

		if !needsCopy(fs, s, d, policy.Algorithm) {
			continue
		}
		if err := CopyFile(fs, s, d); err != nil {
			log.WithError(err).WithField("file", s).Warn("Failed to copy file")
			result.Skipped++
			continue
		}
		result.Copied++
	}

	if policy.DeleteExtras {
		deleted, err := deleteExtras(fs, src, dst, policy)
		result.Deleted += deleted
		if err != nil {
			return result, err
		}
	}
	return result, nil
}

// needsCopy reports whether the destination file is absent or differs from
// the source by fingerprint. When both files are unreadable the fingerprints
// are equally absent and no copy is attempted; when only one is, the
// mismatch forces a copy and the copy itself surfaces the underlying error.
func needsCopy(fs afero.Fs, src, dst string, algo fingerprint.Algorithm) bool {
	exists, err := afero.Exists(fs, dst)
	if err != nil || !exists {
		return true
	}

	srcFp, _ := fingerprint.File(fs, src, algo)
	dstFp, _ := fingerprint.File(fs, dst, algo)
	return srcFp != dstFp
}

// deleteExtras removes destination entries that have no counterpart in the
// filtered source set. Files that are themselves ineligible under the current
// filter are also removed; this repairs destinations that were populated
// under a looser filter in an earlier run.
func deleteExtras(fs afero.Fs, src, dst string, policy Policy) (int, error) {
	nodes, err := List(fs, dst)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, node := range nodes {
		if policy.ignoredDir(node.Name) {
			continue
		}

		s := filepath.Join(src, node.Name)
		d := filepath.Join(dst, node.Name)
		srcExists, _ := afero.Exists(fs, s)

		var remove func(string) error
		if node.Kind == KindDir {
			if srcExists {
				continue
			}
			remove = fs.RemoveAll
		} else {
			if srcExists && policy.Eligible(node.Name) {
				continue
			}
			remove = fs.Remove
		}

		if err := remove(d); err != nil && !os.IsNotExist(err) {
			log.WithError(err).WithField("path", d).Warn("Failed to delete extra entry")
			continue
		}
		log.WithField("path", d).Debug("Deleted extra entry")
		deleted++
	}
	return deleted, nil
}
