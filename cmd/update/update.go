package update

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nishizumi-maho/nishizumi-setups-sync/cmd/util"
	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/errors"
	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/update"
	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/version"
)

// New creates a new `update` command.
func New() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update setups-sync to the latest release",
		Long: "Check the release manifest for a newer version of setups-sync\n" +
			"and download it next to the current binary.",
		Run: func(_ *cobra.Command, _ []string) {
			if err := run(yes); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false,
		"Download the update without prompting.")
	return cmd
}

func run(yes bool) error {
	release, available, err := update.Check(update.DefaultManifestURL, version.Version)
	if err != nil {
		return errors.WithContext(err, "check for update")
	}
	if !available {
		fmt.Println("setups-sync is up to date.")
		return nil
	}

	fmt.Printf("Version %s is available (local version: %s).\n",
		release.Version, version.Version)

	if !yes {
		shouldUpdate, err := util.PromptYesOrNo("Download it now?")
		if err != nil {
			return errors.WithContext(err, "update prompt")
		}
		if !shouldUpdate {
			fmt.Println("Update aborted.")
			return nil
		}
	}

	dest, err := downloadDest()
	if err != nil {
		return err
	}
	if err := update.Download(release.DownloadURL, dest); err != nil {
		return errors.WithContext(err, "download update")
	}

	fmt.Printf("Downloaded version %s to %q.\n", release.Version, dest)
	return nil
}

// downloadDest places the new binary next to the running one rather than
// overwriting it, so a half-finished download can't brick the install.
func downloadDest() (string, error) {
	executable, err := os.Executable()
	if err != nil {
		return "", errors.WithContext(err, "locate executable")
	}
	return executable + ".new", nil
}
