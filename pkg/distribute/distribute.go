// Package distribute maintains the team destination layout for one item: a
// shared common pool that mirrors the source exactly, plus one overlay per
// roster driver that is seeded from the pool but never overwritten, so each
// driver's own tweaks accumulate safely.
package distribute

import (
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/sync"
)

const (
	// CommonDir holds the setups shared by the whole team.
	CommonDir = "Common Setups"

	// DriversDir holds one overlay directory per roster driver.
	DriversDir = "Drivers"

	// DataPacksDir holds telemetry data packs, which are distributed
	// additively rather than mirrored.
	DataPacksDir = "Data packs"
)

// Team reconciles `<item>/<srcName>` into `<item>/<destName>`. With an empty
// roster the destination is a plain mirror of the source. With a roster, the
// source is mirrored into the common pool and copy-missing'd into each
// driver overlay. `driverStyle` means the source itself is organised into
// common pool and overlays, and the pieces are propagated one to one.
//
// An absent or empty source is a skip, not an error: sibling items still
// process.
func Team(fs afero.Fs, itemDir, srcName, destName string, roster []string,
	driverStyle bool, policy sync.Policy) {

	src := filepath.Join(itemDir, srcName)
	destRoot := filepath.Join(itemDir, destName)
	if !nonEmptyDir(fs, src) {
		return
	}

	mirror := policy
	mirror.DeleteExtras = true

	switch {
	case len(roster) > 0 && driverStyle:
		teamDriverStyle(fs, src, destRoot, roster, policy)

	case len(roster) > 0:
		if _, err := sync.Mirror(fs, src, filepath.Join(destRoot, CommonDir), mirror); err != nil {
			log.WithError(err).WithField("item", itemDir).Warn("Failed to mirror common pool")
		}
		for _, name := range roster {
			overlay := filepath.Join(destRoot, DriversDir, name)
			if _, err := sync.CopyMissing(fs, src, overlay, policy); err != nil {
				log.WithError(err).WithField("overlay", overlay).Warn("Failed to seed overlay")
			}
		}

	default:
		if _, err := sync.Mirror(fs, src, destRoot, mirror); err != nil {
			log.WithError(err).WithField("item", itemDir).Warn("Failed to mirror destination")
		}
	}
}

// teamDriverStyle propagates a source that is already shaped as common pool
// plus overlays. Data packs travel additively; the top level is mirrored
// around the special directories; a stray top-level data packs directory at
// the destination is removed because its contents belong under the pool.
func teamDriverStyle(fs afero.Fs, src, destRoot string, roster []string, policy sync.Policy) {
	mirror := policy
	mirror.DeleteExtras = true

	additive := policy
	additive.DeleteExtras = false

	srcCommon := filepath.Join(src, CommonDir)
	commonExists, _ := afero.DirExists(fs, srcCommon)
	if commonExists {
		if _, err := sync.Mirror(fs, srcCommon, filepath.Join(destRoot, CommonDir), mirror); err != nil {
			log.WithError(err).Warn("Failed to mirror common pool")
		}
	}

	for _, name := range roster {
		srcOverlay := filepath.Join(src, DriversDir, name)
		overlay := filepath.Join(destRoot, DriversDir, name)

		seedFrom := ""
		if exists, _ := afero.DirExists(fs, srcOverlay); exists {
			seedFrom = srcOverlay
		} else if commonExists {
			seedFrom = srcCommon
		}
		if seedFrom == "" {
			continue
		}
		if _, err := sync.CopyMissing(fs, seedFrom, overlay, policy); err != nil {
			log.WithError(err).WithField("overlay", overlay).Warn("Failed to seed overlay")
		}
	}

	srcPacks := filepath.Join(src, DataPacksDir)
	if exists, _ := afero.DirExists(fs, srcPacks); exists {
		if _, err := sync.Mirror(fs, srcPacks, filepath.Join(destRoot, CommonDir, DataPacksDir), additive); err != nil {
			log.WithError(err).Warn("Failed to sync data packs into common pool")
		}
		for _, name := range roster {
			dst := filepath.Join(destRoot, DriversDir, name, DataPacksDir)
			if _, err := sync.Mirror(fs, srcPacks, dst, additive); err != nil {
				log.WithError(err).WithField("overlay", name).Warn("Failed to sync data packs into overlay")
			}
		}
	}

	top := mirror
	top.IgnoreDirs = []string{DataPacksDir, CommonDir, DriversDir}
	if _, err := sync.Mirror(fs, src, destRoot, top); err != nil {
		log.WithError(err).Warn("Failed to mirror destination top level")
	}

	strayPacks := filepath.Join(destRoot, DataPacksDir)
	if exists, _ := afero.DirExists(fs, strayPacks); exists {
		if err := fs.RemoveAll(strayPacks); err != nil {
			log.WithError(err).WithField("path", strayPacks).Warn("Failed to remove stray data packs")
		}
	}
}

// PruneOverlays deletes every overlay under `<item>/<destName>/Drivers`
// whose name isn't in the roster. This is the only deletion point of the
// distribution and it must run before overlays are seeded, so a renamed
// roster entry can't be repopulated in the same run. A nil roster disables
// pruning entirely.
func PruneOverlays(fs afero.Fs, itemDir, destName string, roster []string) {
	if roster == nil {
		return
	}

	known := map[string]bool{}
	for _, name := range roster {
		known[name] = true
	}

	root := filepath.Join(itemDir, destName, DriversDir)
	infos, err := afero.ReadDir(fs, root)
	if err != nil {
		return
	}

	for _, info := range infos {
		if known[info.Name()] {
			continue
		}
		path := filepath.Join(root, info.Name())
		if err := fs.RemoveAll(path); err != nil {
			log.WithError(err).WithField("path", path).Warn("Failed to prune overlay")
			continue
		}
		log.WithField("path", path).Info("Pruned overlay not in roster")
	}
}

func nonEmptyDir(fs afero.Fs, path string) bool {
	exists, err := afero.DirExists(fs, path)
	if err != nil || !exists {
		return false
	}
	empty, err := afero.IsEmpty(fs, path)
	return err == nil && !empty
}
