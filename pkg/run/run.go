// Package run orchestrates a full pass over the setup catalog: back up the
// catalog root, import any configured setup drop, then drive the
// reconciliation pipeline across every item and equivalence group.
package run

import (
	"path/filepath"

	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/archive"
	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/catalog"
	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/config"
	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/distribute"
	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/errors"
	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/garage61"
	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/groups"
	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/sync"
)

// auxDir is the folder populated by the Garage 61 desktop app. Its data
// packs have no canonical home, so grouped items merge them pairwise.
const auxDir = "Garage 61"

// Deps are the run's injectable collaborators. The zero value is filled
// with production defaults, so callers only set the fields they need to
// control (tests inject a memory filesystem and a canned roster).
type Deps struct {
	Fs    afero.Fs
	Clock clockwork.Clock

	// Resolver maps import folder labels to catalog items. When nil, a
	// resolver backed by the mapping override file is built; it never
	// prompts.
	Resolver *catalog.Resolver

	// Roster supplies the remote driver roster. When nil and the remote
	// lookup is enabled, the production Garage 61 client is used.
	Roster garage61.Provider

	// SaveConfig persists a config whose roster was refreshed remotely.
	SaveConfig func(config.Config) error
}

func (deps Deps) withDefaults() Deps {
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.SaveConfig == nil {
		deps.SaveConfig = func(cfg config.Config) error {
			return config.Write(cfg, "")
		}
	}
	return deps
}

// Run executes one full pass: backup, import, then Sync. Import trouble is
// logged and the sync still runs, matching the rule that a partial pass must
// never block the reconciliation of what's already in the catalog.
func Run(cfg config.Config, deps Deps) error {
	deps = deps.withDefaults()

	if err := cfg.Validate(); err != nil {
		return errors.NewFriendlyError("Invalid configuration: %s.\n"+
			"Run `setups-sync config init` to create a configuration.", err)
	}
	if exists, err := afero.DirExists(deps.Fs, cfg.CatalogRoot); err != nil || !exists {
		return errors.NewFriendlyError(
			"The catalog root %q does not exist. Nothing to do.", cfg.CatalogRoot)
	}

	policy, err := cfg.Policy()
	if err != nil {
		return err
	}

	start := deps.Clock.Now()

	if cfg.BackupEnabled && cfg.BackupFolder != "" {
		Backup(deps.Fs, cfg.CatalogRoot, cfg.BackupFolder, policy)
	}

	if err := runImport(cfg, deps, policy); err != nil {
		log.WithError(err).Warn("Import failed, continuing with sync")
	}

	if err := Sync(cfg, deps); err != nil {
		return err
	}

	log.WithField("took", deps.Clock.Now().Sub(start)).Info("Run complete")
	return nil
}

// Backup copies files missing from the backup folder. Existing backups are
// never overwritten or deleted, so the backup only ever grows.
func Backup(fs afero.Fs, root, backupFolder string, policy sync.Policy) {
	result, err := sync.CopyMissing(fs, root, backupFolder, policy)
	if err != nil {
		log.WithError(err).Warn("Backup failed")
		return
	}
	log.WithField("copied", result.Copied).Info("Backup complete")
}

func runImport(cfg config.Config, deps Deps, policy sync.Policy) error {
	switch cfg.SourceType {
	case "zip":
		if exists, _ := afero.Exists(deps.Fs, cfg.ZipFile); !exists {
			log.WithField("path", cfg.ZipFile).Info("Zip file not found, skipping import")
			return nil
		}
		scratch, cleanup, err := archive.Stage(cfg.ZipFile)
		if err != nil {
			return err
		}
		defer cleanup()
		return ImportSource(deps.Fs, scratch, cfg, resolver(cfg, deps), policy)

	case "folder":
		if exists, _ := afero.DirExists(deps.Fs, cfg.SourceFolder); !exists {
			log.WithField("path", cfg.SourceFolder).Info("Source folder not found, skipping import")
			return nil
		}
		return ImportSource(deps.Fs, cfg.SourceFolder, cfg, resolver(cfg, deps), policy)

	default:
		log.Info("No import selected")
		return nil
	}
}

func resolver(cfg config.Config, deps Deps) *catalog.Resolver {
	if deps.Resolver != nil {
		return deps.Resolver
	}

	mappingPath, err := config.GetMappingPath()
	if err != nil {
		log.WithError(err).Warn("Failed to locate mapping overrides")
		mappingPath = ""
	}
	store, err := catalog.LoadMappingStore(deps.Fs, mappingPath)
	if err != nil {
		log.WithError(err).Warn("Failed to load mapping overrides")
		store, _ = catalog.LoadMappingStore(afero.NewMemMapFs(), "mapping.yaml")
	}
	return catalog.NewResolver(store, nil)
}

// Sync drives the reconciliation pipeline: refresh the roster, fold external
// folders into the source, prune stale overlays, converge each equivalence
// group's source, distribute source to destination per item, and finally
// handle data packs for the flat (non driver-folder) layout.
func Sync(cfg config.Config, deps Deps) error {
	deps = deps.withDefaults()

	if cfg.SyncSource == "" || cfg.SyncDestination == "" {
		log.Info("Sync source or destination not configured, skipping")
		return nil
	}

	policy, err := cfg.Policy()
	if err != nil {
		return err
	}
	fs := deps.Fs

	cfg = refreshRoster(cfg, deps)
	roster := cfg.Roster()
	driverStyle := cfg.UseDriverFolders

	if cfg.UseExternal && len(cfg.ExtraFolders) > 0 {
		mergeExternal(fs, cfg, roster, policy)
	}

	items, err := catalog.Items(fs, cfg.CatalogRoot)
	if err != nil {
		return err
	}

	// Pruning runs before any overlay is seeded so a driver dropped from
	// the roster can't be repopulated in the same pass.
	for _, item := range items {
		distribute.PruneOverlays(fs, filepath.Join(cfg.CatalogRoot, item),
			cfg.SyncDestination, roster)
	}

	for _, group := range catalog.Groups() {
		groups.SourceMerge(fs, cfg.CatalogRoot, group, cfg.SyncSource,
			roster, driverStyle, policy.Algorithm)
	}

	for _, item := range items {
		distribute.Team(fs, filepath.Join(cfg.CatalogRoot, item),
			cfg.SyncSource, cfg.SyncDestination, roster, driverStyle, policy)
	}

	if !driverStyle {
		srcPacks := filepath.Join(cfg.SyncSource, distribute.DataPacksDir)
		destPacks := filepath.Join(cfg.SyncDestination, distribute.DataPacksDir)

		packs := policy
		packs.DeleteExtras = true
		for _, group := range catalog.Groups() {
			if err := groups.FanOut(fs, cfg.CatalogRoot, group, srcPacks, destPacks, packs); err != nil {
				log.WithError(err).WithField("group", group.Name).Warn("Failed to fan out data packs")
			}
		}
		for _, item := range items {
			distribute.Team(fs, filepath.Join(cfg.CatalogRoot, item),
				srcPacks, destPacks, nil, false, policy)
		}
		for _, group := range catalog.Groups() {
			groups.AuxMerge(fs, cfg.CatalogRoot, group, cfg.SyncDestination,
				auxDir, distribute.DataPacksDir, policy.Algorithm)
		}
	}
	return nil
}

// refreshRoster replaces the configured driver list with the remote team
// roster and persists the result. A failed lookup keeps the previous list;
// treating it as an empty roster would prune every overlay.
func refreshRoster(cfg config.Config, deps Deps) config.Config {
	if !cfg.Garage61.Enabled || cfg.Garage61.TeamID == "" {
		return cfg
	}

	provider := deps.Roster
	if provider == nil {
		provider = garage61.New(cfg.Garage61.APIKey)
	}

	names, err := provider.Drivers(cfg.Garage61.TeamID)
	if err != nil {
		log.WithError(err).Warn("Failed to fetch team roster, keeping configured drivers")
		return cfg
	}

	cfg.Drivers = names
	if err := deps.SaveConfig(cfg); err != nil {
		log.WithError(err).Warn("Failed to persist refreshed roster")
	}
	return cfg
}

// mergeExternal folds externally populated folders into each item's sync
// source without deleting anything already there. A folder living inside
// the sync destination is consumed: its staging copy is removed once
// merged.
func mergeExternal(fs afero.Fs, cfg config.Config, roster []string, policy sync.Policy) {
	items, err := catalog.Items(fs, cfg.CatalogRoot)
	if err != nil {
		log.WithError(err).Warn("Failed to list catalog for external merge")
		return
	}

	for _, item := range items {
		itemDir := filepath.Join(cfg.CatalogRoot, item)
		for _, folder := range cfg.ExtraFolders {
			ext := filepath.Join(itemDir, folder.Name)
			consume := false
			if folder.Location == "dest" {
				ext = filepath.Join(itemDir, cfg.SyncDestination, folder.Name)
				consume = true
			}
			if exists, _ := afero.DirExists(fs, ext); !exists {
				continue
			}

			src := filepath.Join(itemDir, cfg.SyncSource)
			if roster != nil {
				mergeInto(fs, ext, filepath.Join(src, distribute.CommonDir, folder.Name), policy)
				for _, name := range roster {
					mergeInto(fs, ext,
						filepath.Join(src, distribute.DriversDir, name, folder.Name), policy)
				}
			} else {
				mergeInto(fs, ext, filepath.Join(src, folder.Name), policy)
			}

			if consume {
				if err := fs.RemoveAll(ext); err != nil {
					log.WithError(err).WithField("path", ext).Warn("Failed to consume external folder")
				}
			}
		}
	}
}

func mergeInto(fs afero.Fs, ext, dst string, policy sync.Policy) {
	if _, err := sync.Mirror(fs, ext, dst, policy); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"external": ext,
			"dst":      dst,
		}).Warn("Failed to merge external folder")
	}
}
