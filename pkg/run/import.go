package run

import (
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/catalog"
	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/config"
	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/distribute"
	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/errors"
	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/sync"
)

// ImportSource walks the top-level folders of an import drop, resolves each
// folder's label to a catalog item and merges its contents into both the
// personal and team subtrees under `<supplier>/<season>`. With driver
// folders enabled the contents land in the common pool and every roster
// overlay instead. Unresolved labels are skipped for this run.
func ImportSource(fs afero.Fs, source string, cfg config.Config,
	resolver *catalog.Resolver, policy sync.Policy) error {

	infos, err := afero.ReadDir(fs, source)
	if err != nil {
		return errors.WithContext(err, "list import source")
	}

	roster := cfg.Roster()
	leaf := filepath.Join(cfg.SupplierFolder, cfg.SeasonFolder)

	for _, info := range infos {
		if !info.IsDir() {
			continue
		}

		item, ok := resolver.Resolve(info.Name())
		if !ok {
			log.WithField("folder", info.Name()).Warn("Unrecognised import folder, skipping")
			continue
		}

		src := filepath.Join(source, info.Name())
		itemDir := filepath.Join(cfg.CatalogRoot, item)

		for _, base := range []string{
			filepath.Join(itemDir, cfg.PersonalFolder),
			filepath.Join(itemDir, cfg.TeamFolder),
		} {
			if roster != nil {
				importDir(fs, src, filepath.Join(base, distribute.CommonDir, leaf), policy)
				for _, name := range roster {
					importDir(fs, src,
						filepath.Join(base, distribute.DriversDir, name, leaf), policy)
				}
			} else {
				importDir(fs, src, filepath.Join(base, leaf), policy)
			}
		}
	}
	return nil
}

// importDir merges one import folder into `dest`. A subdirectory the
// destination doesn't have yet is copied wholesale; one that already exists
// is reconciled as an exact mirror. Loose files are copied unconditionally
// so a re-import refreshes stale setups.
func importDir(fs afero.Fs, src, dest string, policy sync.Policy) {
	if err := fs.MkdirAll(dest, 0755); err != nil {
		log.WithError(err).WithField("path", dest).Warn("Failed to create import destination")
		return
	}

	infos, err := afero.ReadDir(fs, src)
	if err != nil {
		log.WithError(err).WithField("path", src).Warn("Failed to list import folder")
		return
	}

	mirror := policy
	mirror.DeleteExtras = true

	for _, info := range infos {
		s := filepath.Join(src, info.Name())
		d := filepath.Join(dest, info.Name())

		if info.IsDir() {
			if exists, _ := afero.DirExists(fs, d); !exists {
				if _, err := sync.CopyTree(fs, s, d); err != nil {
					log.WithError(err).WithField("path", d).Warn("Failed to import directory")
				}
			} else if _, err := sync.Mirror(fs, s, d, mirror); err != nil {
				log.WithError(err).WithField("path", d).Warn("Failed to import directory")
			}
			continue
		}

		if !policy.Eligible(info.Name()) {
			continue
		}
		if err := sync.CopyFile(fs, s, d); err != nil {
			log.WithError(err).WithField("path", d).Warn("Failed to import file")
		}
	}
}
