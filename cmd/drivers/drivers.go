package drivers

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nishizumi-maho/nishizumi-setups-sync/cmd/util"
	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/config"
	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/errors"
	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/garage61"
)

// New creates a new `drivers` command.
func New() *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "drivers",
		Short: "Show the driver roster",
		Long: "Print the driver roster used for per-driver setup folders.\n" +
			"With --refresh, the roster is fetched from Garage 61 and saved\n" +
			"to the config file first.",
		Run: func(_ *cobra.Command, _ []string) {
			cfg, err := util.ParseConfig()
			if err != nil {
				util.HandleFatalError(err)
			}

			if refresh {
				cfg, err = refreshRoster(cfg)
				if err != nil {
					util.HandleFatalError(err)
				}
			}

			if len(cfg.Drivers) == 0 {
				fmt.Println("No drivers configured.")
				return
			}
			for _, name := range cfg.Drivers {
				fmt.Println(name)
			}
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false,
		"Fetch the roster from Garage 61 and save it to the config.")
	return cmd
}

func refreshRoster(cfg config.Config) (config.Config, error) {
	if !cfg.Garage61.Enabled || cfg.Garage61.TeamID == "" {
		return config.Config{}, errors.NewFriendlyError(
			"The Garage 61 roster lookup is not configured.\n" +
				"Set garage61.enabled and garage61.teamId in the config file.")
	}

	names, err := garage61.New(cfg.Garage61.APIKey).Drivers(cfg.Garage61.TeamID)
	if err != nil {
		return config.Config{}, errors.WithContext(err, "fetch roster")
	}

	cfg.Drivers = names
	if err := util.SaveConfig(cfg); err != nil {
		return config.Config{}, errors.WithContext(err, "save config")
	}
	return cfg, nil
}
