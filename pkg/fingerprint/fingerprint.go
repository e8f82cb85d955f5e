// Package fingerprint computes content digests of setup files. The digests
// are only used to decide whether two files have the same contents, never for
// anything security sensitive.
package fingerprint

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"

	"github.com/spf13/afero"

	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/errors"
)

// Algorithm selects the hash function used to fingerprint files.
type Algorithm string

const (
	MD5    Algorithm = "md5"
	SHA256 Algorithm = "sha256"
)

// ParseAlgorithm parses the config representation of an algorithm. An empty
// string selects MD5, matching the historical default.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case "":
		return MD5, nil
	case MD5:
		return MD5, nil
	case SHA256:
		return SHA256, nil
	}
	return "", errors.New(fmt.Sprintf("unknown hash algorithm %q", s))
}

func (algo Algorithm) hasher() hash.Hash {
	if algo == SHA256 {
		return sha256.New()
	}
	return md5.New()
}

// File returns the hex digest of the file at `path`. The file is streamed
// through the hasher, so memory use is constant regardless of file size.
//
// When the file can't be read (permissions, removed mid-sync, broken
// symlink), File reports `false` rather than an error. Callers treat a
// missing fingerprint the same as a missing file and move on, so one bad
// entry never aborts a whole sync run.
func File(fs afero.Fs, path string, algo Algorithm) (string, bool) {
	f, err := fs.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	hasher := algo.hasher()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", false
	}
	return hex.EncodeToString(hasher.Sum(nil)), true
}
