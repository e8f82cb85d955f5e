package backup

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/nishizumi-maho/nishizumi-setups-sync/cmd/util"
	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/errors"
	runner "github.com/nishizumi-maho/nishizumi-setups-sync/pkg/run"
)

// New creates a new `backup` command.
func New() *cobra.Command {
	var to string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Back up the setup catalog",
		Long: "Copy files missing from the backup folder. Files already backed\n" +
			"up are never overwritten or deleted, so the backup only grows.",
		Run: func(_ *cobra.Command, _ []string) {
			cfg, err := util.ParseConfig()
			if err != nil {
				util.HandleFatalError(err)
			}
			util.SetupFileLogging(cfg)

			if to == "" {
				to = cfg.BackupFolder
			}
			if to == "" {
				util.HandleFatalError(errors.NewFriendlyError(
					"No backup folder configured.\n" +
						"Pass --to, or set backupFolder in the config file."))
			}

			policy, err := cfg.Policy()
			if err != nil {
				util.HandleFatalError(err)
			}
			runner.Backup(afero.NewOsFs(), cfg.CatalogRoot, to, policy)
		},
	}
	cmd.Flags().StringVar(&to, "to", "",
		"Back up into this folder instead of the configured one.")
	return cmd
}
