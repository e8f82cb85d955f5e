// Package groups keeps equivalence groups of items converged. Cars in a
// group share a chassis, so a setup made for one member works for all of
// them; the sync either fans a canonical member's subtree out to the rest or
// pairwise-merges subtrees whose source of truth is distributed.
package groups

import (
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/catalog"
	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/distribute"
	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/fingerprint"
	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/sync"
)

// FanOut picks the canonical source within a group -- the first member, in
// declared order, whose `srcSubtree` exists and is non-empty -- and mirrors
// it onto every member's `destSubtree`. The two subtree names are usually
// equal, in which case the canonical member itself is left untouched. A
// group with no candidate is skipped entirely.
func FanOut(fs afero.Fs, root string, group catalog.EquivalenceGroup, srcSubtree, destSubtree string, policy sync.Policy) error {
	source := ""
	for _, member := range group.Members {
		candidate := filepath.Join(root, member, srcSubtree)
		if nonEmptyDir(fs, candidate) {
			source = candidate
			break
		}
	}
	if source == "" {
		log.WithFields(log.Fields{
			"group":   group.Name,
			"subtree": srcSubtree,
		}).Debug("No member has the subtree. Skipping group.")
		return nil
	}

	for _, member := range group.Members {
		dest := filepath.Join(root, member, destSubtree)
		if dest == source {
			continue
		}
		if _, err := sync.Mirror(fs, source, dest, policy); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"group": group.Name,
				"dest":  dest,
			}).Warn("Failed to fan out to group member")
		}
	}
	return nil
}

// MergeAll runs a pairwise bidirectional merge across every ordered pair of
// paths. One pass per run: with three or more peers in simultaneous
// disagreement a single sweep may not reach a fixed point, but the merge is
// idempotent and successive runs converge.
func MergeAll(fs afero.Fs, paths []string, algo fingerprint.Algorithm) {
	for i := 0; i < len(paths); i++ {
		for j := i + 1; j < len(paths); j++ {
			if _, err := sync.Bidirectional(fs, paths[i], paths[j], algo); err != nil {
				log.WithError(err).WithFields(log.Fields{
					"a": paths[i],
					"b": paths[j],
				}).Warn("Failed to merge peers")
			}
		}
	}
}

// SourceMerge keeps the source subtree consistent across a group's members
// before distribution runs. In driver-folder mode each member contributes
// its common pool and every roster overlay as separate peers; otherwise the
// whole subtree is one peer.
func SourceMerge(fs afero.Fs, root string, group catalog.EquivalenceGroup, subtree string,
	roster []string, driverStyle bool, algo fingerprint.Algorithm) {

	var paths []string
	for _, member := range group.Members {
		base := filepath.Join(root, member, subtree)
		if !driverStyle {
			if exists, _ := afero.DirExists(fs, base); exists {
				paths = append(paths, base)
			}
			continue
		}

		common := filepath.Join(base, distribute.CommonDir)
		if exists, _ := afero.DirExists(fs, common); exists {
			paths = append(paths, common)
		}
		for _, name := range roster {
			overlay := filepath.Join(base, distribute.DriversDir, name)
			if exists, _ := afero.DirExists(fs, overlay); exists {
				paths = append(paths, overlay)
			}
		}
	}
	MergeAll(fs, paths, algo)
}

// AuxMerge reconciles a shared auxiliary subtree (telemetry data packs)
// whose source of truth is distributed: instances live both under an
// externally-populated folder and under each member's team destination.
// There's no canonical pick here, so every discovered instance is merged
// pairwise with every other.
func AuxMerge(fs afero.Fs, root string, group catalog.EquivalenceGroup,
	destName, auxName, subtree string, algo fingerprint.Algorithm) {

	var paths []string
	for _, member := range group.Members {
		aux := filepath.Join(root, member, auxName, subtree)
		if exists, _ := afero.DirExists(fs, aux); exists {
			paths = append(paths, aux)
		}
		dest := filepath.Join(root, member, destName, subtree)
		if exists, _ := afero.DirExists(fs, dest); exists {
			paths = append(paths, dest)
		}
	}
	MergeAll(fs, paths, algo)
}

func nonEmptyDir(fs afero.Fs, path string) bool {
	exists, err := afero.DirExists(fs, path)
	if err != nil || !exists {
		return false
	}
	empty, err := afero.IsEmpty(fs, path)
	return err == nil && !empty
}
