package run

import (
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nishizumi-maho/nishizumi-setups-sync/cmd/util"
	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/config"
	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/errors"
	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/fswatch"
	runner "github.com/nishizumi-maho/nishizumi-setups-sync/pkg/run"
)

// New creates a new `run` command.
func New() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Back up, import and sync the setup catalog",
		Long: "Execute one full pass: back up the catalog, import the configured\n" +
			"zip file or source folder, then reconcile every car's setup folders.",
		Run: func(_ *cobra.Command, _ []string) {
			cfg, err := util.ParseConfig()
			if err != nil {
				util.HandleFatalError(err)
			}
			util.SetupFileLogging(cfg)

			deps := runner.Deps{SaveConfig: util.SaveConfig}
			if err := runner.Run(cfg, deps); err != nil {
				util.HandleFatalError(err)
			}

			if !watch {
				return
			}

			target, err := watchTarget(cfg)
			if err != nil {
				util.HandleFatalError(err)
			}
			updates, err := fswatch.Watch(target)
			if err != nil {
				util.HandleFatalError(err)
			}
			log.WithField("path", target).Info("Watching the import source for changes")

			for range updates {
				if err := runner.Run(cfg, deps); err != nil {
					log.WithError(err).Error("Run failed")
				}
			}
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false,
		"Keep running and re-sync whenever the import source changes.")
	return cmd
}

// watchTarget picks the directory watch mode monitors: the configured import
// source. The catalog root is deliberately not watched -- the pipeline
// writes into it, so watching it would re-trigger a run from the run's own
// output.
func watchTarget(cfg config.Config) (string, error) {
	switch cfg.SourceType {
	case "zip":
		if cfg.ZipFile == "" {
			return "", errors.NewFriendlyError("Watch mode needs a zip file.\n" +
				"Set zipFile in the config file.")
		}
		return filepath.Dir(cfg.ZipFile), nil

	case "folder":
		if cfg.SourceFolder == "" {
			return "", errors.NewFriendlyError("Watch mode needs a source folder.\n" +
				"Set sourceFolder in the config file.")
		}
		return cfg.SourceFolder, nil
	}

	return "", errors.NewFriendlyError("Watch mode needs an import source.\n" +
		"Set sourceType to \"zip\" or \"folder\" in the config file.")
}
