package sync

import (
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/errors"
	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/fingerprint"
)

// Bidirectional merges two peer trees so that both end up with the union of
// their contents. Entries unique to one side are copied to the other,
// subtrees included. Entries present on both sides with differing
// fingerprints are resolved in favor of the later modification time; on a
// tie `a` wins.
//
// No extension filter applies: the trees handed to a merge are already
// scoped to a single item class. Both roots are created if absent. The merge
// is idempotent, so chained pairwise merges across a group converge over
// successive runs even when three or more peers disagree at once.
func Bidirectional(fs afero.Fs, a, b string, algo fingerprint.Algorithm) (Result, error) {
	if err := fs.MkdirAll(a, 0755); err != nil {
		return Result{}, errors.WithContext(err, "create peer")
	}
	if err := fs.MkdirAll(b, 0755); err != nil {
		return Result{}, errors.WithContext(err, "create peer")
	}

	nodesA, err := List(fs, a)
	if err != nil {
		return Result{}, err
	}
	nodesB, err := List(fs, b)
	if err != nil {
		return Result{}, err
	}

	inA := map[string]Node{}
	for _, node := range nodesA {
		inA[node.Name] = node
	}
	inB := map[string]Node{}
	for _, node := range nodesB {
		inB[node.Name] = node
	}

	var result Result
	for _, node := range nodesA {
		if _, ok := inB[node.Name]; !ok {
			result.add(propagate(fs, filepath.Join(a, node.Name), filepath.Join(b, node.Name), node.Kind))
		}
	}
	for _, node := range nodesB {
		if _, ok := inA[node.Name]; !ok {
			result.add(propagate(fs, filepath.Join(b, node.Name), filepath.Join(a, node.Name), node.Kind))
		}
	}

	for _, nodeA := range nodesA {
		nodeB, ok := inB[nodeA.Name]
		if !ok {
			continue
		}

		pa := filepath.Join(a, nodeA.Name)
		pb := filepath.Join(b, nodeA.Name)

		if nodeA.Kind != nodeB.Kind {
			log.WithFields(log.Fields{
				"a": pa,
				"b": pb,
			}).Warn("Peers disagree on entry kind. Skipping.")
			result.Skipped++
			continue
		}

		if nodeA.Kind == KindDir {
			sub, err := Bidirectional(fs, pa, pb, algo)
			result.add(sub)
			if err != nil {
				log.WithError(err).WithField("dir", pa).Warn("Failed to merge subdirectory")
			}
			continue
		}

		result.add(resolveConflict(fs, pa, pb, nodeA, nodeB, algo))
	}
	return result, nil
}

// propagate copies an entry that exists on one side only.
func propagate(fs afero.Fs, src, dst string, kind NodeKind) Result {
	if kind == KindDir {
		copied, err := CopyTree(fs, src, dst)
		if err != nil {
			log.WithError(err).WithField("dir", src).Warn("Failed to propagate subtree")
		}
		return Result{Copied: copied}
	}

	if err := CopyFile(fs, src, dst); err != nil {
		log.WithError(err).WithField("file", src).Warn("Failed to propagate file")
		return Result{Skipped: 1}
	}
	return Result{Copied: 1}
}

// resolveConflict reconciles a file present on both sides. Equal fingerprints
// are a no-op. If either fingerprint is unreadable the pair is left alone;
// the file is likely mid-write and the next run will see a settled state.
func resolveConflict(fs afero.Fs, pa, pb string, nodeA, nodeB Node, algo fingerprint.Algorithm) Result {
	fpA, okA := fingerprint.File(fs, pa, algo)
	fpB, okB := fingerprint.File(fs, pb, algo)
	if !okA || !okB || fpA == fpB {
		return Result{}
	}

	src, dst := pa, pb
	if nodeB.ModTime.After(nodeA.ModTime) {
		src, dst = pb, pa
	}

	if err := CopyFile(fs, src, dst); err != nil {
		log.WithError(err).WithField("file", src).Warn("Failed to resolve conflict")
		return Result{Skipped: 1}
	}
	log.WithFields(log.Fields{
		"winner": src,
		"loser":  dst,
	}).Debug("Resolved conflict by modification time")
	return Result{Copied: 1}
}
