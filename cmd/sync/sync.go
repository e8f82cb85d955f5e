package sync

import (
	"github.com/spf13/cobra"

	"github.com/nishizumi-maho/nishizumi-setups-sync/cmd/util"
	runner "github.com/nishizumi-maho/nishizumi-setups-sync/pkg/run"
)

// New creates a new `sync` command.
func New() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Reconcile the setup catalog without importing",
		Long: "Run only the reconciliation pipeline: refresh the roster, merge\n" +
			"external folders, converge equivalence groups and distribute the\n" +
			"sync source to the destination. No backup and no import.",
		Run: func(_ *cobra.Command, _ []string) {
			cfg, err := util.ParseConfig()
			if err != nil {
				util.HandleFatalError(err)
			}
			util.SetupFileLogging(cfg)

			deps := runner.Deps{SaveConfig: util.SaveConfig}
			if err := runner.Sync(cfg, deps); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
}
