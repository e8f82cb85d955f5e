package sync

import (
	"time"

	"github.com/spf13/afero"

	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/errors"
)

// NodeKind classifies a filesystem entry.
type NodeKind int

const (
	KindFile NodeKind = iota
	KindDir
)

// A Node is one immediate child of a directory. Fingerprints are computed
// lazily by the algorithms, not by the walker, so listing a directory never
// reads file contents.
type Node struct {
	Name    string
	Kind    NodeKind
	ModTime time.Time
}

// List returns the immediate children of `dir`, sorted by name. Recursion is
// driven by the algorithms; the walker itself only ever looks one level deep,
// which keeps memory bounded by the widest directory rather than the whole
// tree.
func List(fs afero.Fs, dir string) ([]Node, error) {
	infos, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, errors.WithContext(err, "list dir")
	}

	nodes := make([]Node, 0, len(infos))
	for _, info := range infos {
		kind := KindFile
		if info.IsDir() {
			kind = KindDir
		}
		nodes = append(nodes, Node{
			Name:    info.Name(),
			Kind:    kind,
			ModTime: info.ModTime(),
		})
	}
	return nodes, nil
}
