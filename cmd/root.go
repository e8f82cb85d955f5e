package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	backupCmd "github.com/nishizumi-maho/nishizumi-setups-sync/cmd/backup"
	configCmd "github.com/nishizumi-maho/nishizumi-setups-sync/cmd/config"
	"github.com/nishizumi-maho/nishizumi-setups-sync/cmd/drivers"
	importCmd "github.com/nishizumi-maho/nishizumi-setups-sync/cmd/import"
	runCmd "github.com/nishizumi-maho/nishizumi-setups-sync/cmd/run"
	syncCmd "github.com/nishizumi-maho/nishizumi-setups-sync/cmd/sync"
	updateCmd "github.com/nishizumi-maho/nishizumi-setups-sync/cmd/update"
	"github.com/nishizumi-maho/nishizumi-setups-sync/cmd/util"
	versionCmd "github.com/nishizumi-maho/nishizumi-setups-sync/cmd/version"
)

// verboseLogKey is the environment variable used to enable verbose logging.
// When it's set to `true`, Debug events are logged, rather than just Info and
// above.
const verboseLogKey = "SETUPS_SYNC_LOG_VERBOSE"

// Execute runs the main CLI process.
func Execute() {
	if os.Getenv(verboseLogKey) == "true" {
		log.SetLevel(log.DebugLevel)
	}

	rootCmd := &cobra.Command{
		Use:          "setups-sync",
		Short:        "Keep a team's iRacing setup folders in sync",
		SilenceUsage: true,

		// The call to rootCmd.Execute prints the error, so we silence errors
		// here to avoid double printing.
		SilenceErrors: true,
	}
	rootCmd.AddCommand(
		backupCmd.New(),
		configCmd.New(),
		drivers.New(),
		importCmd.New(),
		runCmd.New(),
		syncCmd.New(),
		updateCmd.New(),
		versionCmd.New(),
	)

	if err := rootCmd.Execute(); err != nil {
		util.HandleFatalError(err)
	}
}
