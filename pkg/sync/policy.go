package sync

import (
	"path/filepath"
	"strings"

	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/fingerprint"
)

// SetupExtension is the file suffix of a setup export. The default policy
// only propagates these files so that screenshots, notes and other clutter
// dropped into a shared folder don't spread through the whole catalog.
const SetupExtension = ".sto"

// Policy controls which files an algorithm touches and how they're compared.
type Policy struct {
	// Algorithm selects the fingerprint function used for equality checks.
	Algorithm fingerprint.Algorithm

	// Extensions is the set of file extensions eligible for copying and
	// deletion. Matching is case-insensitive. An empty set accepts every
	// file.
	Extensions []string

	// DeleteExtras removes destination entries whose source counterpart is
	// absent, or which are ineligible under the current filter. Only Mirror
	// honors it.
	DeleteExtras bool

	// IgnoreDirs lists directory names that are skipped entirely, on both
	// the copy and the delete side.
	IgnoreDirs []string
}

// Default returns the production policy: setup files only, compared by MD5.
func Default() Policy {
	return Policy{
		Algorithm:  fingerprint.MD5,
		Extensions: []string{SetupExtension},
	}
}

// Eligible reports whether a file with the given name passes the extension
// filter.
func (p Policy) Eligible(name string) bool {
	if len(p.Extensions) == 0 {
		return true
	}

	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range p.Extensions {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}

func (p Policy) ignoredDir(name string) bool {
	for _, dir := range p.IgnoreDirs {
		if name == dir {
			return true
		}
	}
	return false
}

// Result summarizes what one algorithm invocation did to the filesystem.
type Result struct {
	Copied  int
	Deleted int
	Skipped int
}

// add folds the result of a recursive call into the parent's result.
func (r *Result) add(other Result) {
	r.Copied += other.Copied
	r.Deleted += other.Deleted
	r.Skipped += other.Skipped
}
