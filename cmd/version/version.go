package version

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/update"
	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/version"
)

// New creates a new `version` command.
func New() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the local and latest released version of setups-sync.",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("local version:  %s\n", version.Version)

			release, _, err := update.Check(update.DefaultManifestURL, version.Version)
			if err != nil {
				log.WithError(err).Debug("Failed to fetch release manifest")
				return
			}
			fmt.Printf("latest release: %s\n", release.Version)
		},
	}
}
