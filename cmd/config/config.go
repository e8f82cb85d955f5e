package config

import (
	"fmt"
	"io"
	"os"

	"github.com/ghodss/yaml"
	"github.com/spf13/cobra"

	"github.com/nishizumi-maho/nishizumi-setups-sync/cmd/util"
	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/config"
	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/errors"
)

// Mocked for unit testing.
var (
	stdout      io.Writer = os.Stdout
	parseConfig           = util.ParseConfig
	saveConfig            = util.SaveConfig
)

// New creates a new `config` command.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the setups-sync configuration",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter configuration file",
		Run: func(_ *cobra.Command, _ []string) {
			if err := runInit(force); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false,
		"Overwrite an existing configuration file.")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		Run: func(_ *cobra.Command, _ []string) {
			if err := runShow(); err != nil {
				util.HandleFatalError(err)
			}
		},
	}

	// Scriptable getters for the fields other tools care about.
	type getterSpec struct {
		use, short string
		fn         func(config.Config) string
	}

	getters := []getterSpec{
		{
			use:   "get-catalog-root",
			short: "Get the configured catalog root",
			fn:    func(cfg config.Config) string { return cfg.CatalogRoot },
		},
		{
			use:   "get-sync-source",
			short: "Get the configured sync source folder name",
			fn:    func(cfg config.Config) string { return cfg.SyncSource },
		},
		{
			use:   "get-sync-destination",
			short: "Get the configured sync destination folder name",
			fn:    func(cfg config.Config) string { return cfg.SyncDestination },
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	for _, getter := range getters {
		getter := getter
		cmd.AddCommand(&cobra.Command{
			Use:   getter.use,
			Short: getter.short,
			Run: func(_ *cobra.Command, _ []string) {
				cfg, err := parseConfig()
				if err != nil {
					util.HandleFatalError(err)
				}
				fmt.Fprintln(stdout, getter.fn(cfg))
			},
		})
	}
	return cmd
}

func runInit(force bool) error {
	if _, err := parseConfig(); err == nil && !force {
		return errors.NewFriendlyError(
			"A configuration file already exists.\n" +
				"Re-run with --force to overwrite it.")
	}

	if err := saveConfig(config.Default()); err != nil {
		return errors.WithContext(err, "write config")
	}

	fmt.Fprintf(stdout, "Wrote a starter configuration to %q.\n"+
		"Edit it to point at your iRacing setups folder.\n", config.Path)
	return nil
}

func runShow() error {
	cfg, err := parseConfig()
	if err != nil {
		return err
	}

	contents, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WithContext(err, "marshal config")
	}

	fmt.Fprint(stdout, string(contents))
	return nil
}
