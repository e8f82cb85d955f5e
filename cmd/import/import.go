package importcmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/nishizumi-maho/nishizumi-setups-sync/cmd/util"
	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/archive"
	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/catalog"
	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/config"
	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/errors"
	runner "github.com/nishizumi-maho/nishizumi-setups-sync/pkg/run"
)

// New creates a new `import` command.
func New() *cobra.Command {
	return &cobra.Command{
		Use:   "import [path]",
		Short: "Import a setup drop into the catalog",
		Long: "Import a zip file or folder of setups into the catalog. Folders\n" +
			"whose car can't be identified are prompted for interactively, and\n" +
			"the answers are remembered for future imports.\n\n" +
			"With no argument, the source configured in the config file is used.",
		Args: cobra.MaximumNArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			cfg, err := util.ParseConfig()
			if err != nil {
				util.HandleFatalError(err)
			}
			util.SetupFileLogging(cfg)

			source := ""
			if len(args) == 1 {
				source = args[0]
			}
			if err := runImport(cfg, source); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
}

func runImport(cfg config.Config, source string) error {
	fs := afero.NewOsFs()

	if source == "" {
		switch cfg.SourceType {
		case "zip":
			source = cfg.ZipFile
		case "folder":
			source = cfg.SourceFolder
		}
	}
	if source == "" {
		return errors.NewFriendlyError("No import source configured.\n" +
			"Pass a path, or set sourceType in the config file.")
	}
	if exists, err := afero.Exists(fs, source); err != nil || !exists {
		return errors.NewFriendlyError("The import source %q does not exist.", source)
	}

	if strings.EqualFold(filepath.Ext(source), ".zip") {
		scratch, cleanup, err := archive.Stage(source)
		if err != nil {
			return err
		}
		defer cleanup()
		source = scratch
	}

	resolver, err := interactiveResolver(fs)
	if err != nil {
		return err
	}

	policy, err := cfg.Policy()
	if err != nil {
		return err
	}
	return runner.ImportSource(fs, source, cfg, resolver, policy)
}

// interactiveResolver prompts for folders that neither the override file
// nor the built-in car map can place, and persists the answers.
func interactiveResolver(fs afero.Fs) (*catalog.Resolver, error) {
	mappingPath, err := config.GetMappingPath()
	if err != nil {
		return nil, errors.WithContext(err, "locate mapping overrides")
	}

	store, err := catalog.LoadMappingStore(fs, mappingPath)
	if err != nil {
		return nil, errors.WithContext(err, "load mapping overrides")
	}

	prompt := func(label string) (string, bool) {
		return util.PromptString(fmt.Sprintf(
			"Which car folder should %q be imported into? (empty to skip)", label))
	}
	return catalog.NewResolver(store, prompt), nil
}
