// Package config loads and persists the user's setups-sync configuration.
// The config file is YAML with a version field so future layout changes can
// be detected instead of silently misparsed.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ghodss/yaml"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"

	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/catalog"
	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/errors"
	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/fingerprint"
	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/sync"
)

const (
	// Path is the default path to the setups-sync config.
	Path = "~/.setups-sync.yaml"

	// MappingPath is the default path to the custom car-mapping overrides.
	MappingPath = "~/.setups-sync-mapping.yaml"

	// SupportedVersion is the config layout this binary understands. Files
	// without a version field default to it.
	SupportedVersion = "v1"
)

// parseConfigErrTemplate is a template for when the CLI fails to parse yaml
// configuration files. This can happen for a multitude of reasons, including
// extraneous fields and incorrect field types. However, the yaml library
// constructs errors in a way that loses context, and so we can only pass the
// error message on.
const parseConfigErrTemplate = "Configuration file could not be parsed. " +
	"Please review %q.\n" +
	"Common pitfalls include:\n" +
	" - Using the wrong types for fields\n" +
	" - Having extra fields inside the config file\n\n" +
	"For reference, here is the error from the parser:\n" +
	"%s"

// ExtraFolder is an externally populated folder that gets merged into the
// sync source. Location is either "car" (directly inside the item
// directory) or "dest" (inside the sync destination; consumed after the
// merge).
type ExtraFolder struct {
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
}

// UnmarshalJSON accepts both the current object form and the legacy form
// where an entry was a bare folder name.
func (f *ExtraFolder) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		f.Name = name
		f.Location = "car"
		return nil
	}

	type extraFolder ExtraFolder
	var parsed extraFolder
	if err := json.Unmarshal(data, &parsed); err != nil {
		return err
	}
	*f = ExtraFolder(parsed)
	if f.Location == "" {
		f.Location = "car"
	}
	return nil
}

// Garage61 holds the remote roster lookup settings.
type Garage61 struct {
	Enabled bool   `json:"enabled,omitempty"`
	TeamID  string `json:"teamId,omitempty"`
	APIKey  string `json:"apiKey,omitempty"`
}

// Config is the fully resolved configuration for one run.
type Config struct {
	Version string `json:"version,omitempty"`

	// CatalogRoot is the iRacing setups directory that holds one
	// subdirectory per car.
	CatalogRoot string `json:"catalogRoot"`

	// SourceType selects the import source: "zip", "folder" or "none".
	SourceType   string `json:"sourceType,omitempty"`
	ZipFile      string `json:"zipFile,omitempty"`
	SourceFolder string `json:"sourceFolder,omitempty"`

	TeamFolder     string `json:"teamFolder,omitempty"`
	PersonalFolder string `json:"personalFolder,omitempty"`
	SupplierFolder string `json:"supplierFolder,omitempty"`
	SeasonFolder   string `json:"seasonFolder,omitempty"`

	// SyncSource/SyncDestination name the per-item subtrees reconciled by
	// the team sync.
	SyncSource      string `json:"syncSource,omitempty"`
	SyncDestination string `json:"syncDestination,omitempty"`

	HashAlgorithm string `json:"hashAlgorithm,omitempty"`

	// CopyAll disables the .sto extension filter.
	CopyAll bool `json:"copyAll,omitempty"`

	UseExternal  bool          `json:"useExternal,omitempty"`
	ExtraFolders []ExtraFolder `json:"extraFolders,omitempty"`

	UseDriverFolders bool     `json:"useDriverFolders,omitempty"`
	Drivers          []string `json:"drivers,omitempty"`

	BackupEnabled bool   `json:"backupEnabled,omitempty"`
	BackupFolder  string `json:"backupFolder,omitempty"`

	EnableLogging bool   `json:"enableLogging,omitempty"`
	LogFile       string `json:"logFile,omitempty"`

	Garage61 Garage61 `json:"garage61,omitempty"`

	// ExternalFolder is the deprecated single-folder form of ExtraFolders.
	ExternalFolder string `json:"externalFolder,omitempty"`
}

// Default returns the config an interactive `config init` starts from.
func Default() Config {
	return Config{
		Version:         SupportedVersion,
		SourceType:      "zip",
		TeamFolder:      "Example Team",
		PersonalFolder:  "My Personal Folder",
		SupplierFolder:  "Example Supplier",
		SeasonFolder:    "Example Season",
		SyncSource:      "Example Source",
		SyncDestination: "Example Destination",
		HashAlgorithm:   string(fingerprint.MD5),
		LogFile:         "setups-sync.log",
	}
}

type incompatibleVersionError struct {
	path, exp, actual string
}

func (err incompatibleVersionError) Error() string {
	return err.FriendlyMessage()
}

func (err incompatibleVersionError) FriendlyMessage() string {
	return fmt.Sprintf("The configuration file %q is incompatible "+
		"with this version of setups-sync.\n"+
		"Expected version %q, but got %q.", err.path, err.exp, err.actual)
}

// Parse reads the config at `path` (the default path when empty). A missing
// file returns errors.FileNotFound so callers can point the user at
// `config init`.
func Parse(path string) (Config, error) {
	path, err := expandPath(path, Path)
	if err != nil {
		return Config{}, errors.WithContext(err, "expand config path")
	}

	configBytes, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, errors.FileNotFound{Path: path}
		}
		return Config{}, errors.WithContext(err, "read file")
	}

	config := Config{Version: SupportedVersion}
	if err := yaml.Unmarshal(configBytes, &config); err != nil {
		return Config{}, errors.NewFriendlyError(parseConfigErrTemplate, path, err)
	}

	if config.Version != SupportedVersion {
		return Config{}, incompatibleVersionError{path, SupportedVersion, config.Version}
	}

	// Do a strict unmarshal to check for any extra fields. We do a non-strict
	// unmarshal first so that we can catch version errors before erroring on
	// extra fields.
	if err := yaml.UnmarshalStrict(configBytes, &config, yaml.DisallowUnknownFields); err != nil {
		return Config{}, errors.NewFriendlyError(parseConfigErrTemplate, path, err)
	}

	config.migrate()

	config.CatalogRoot, err = homedir.Expand(config.CatalogRoot)
	if err != nil {
		return Config{}, errors.WithContext(err, "expand catalog root")
	}
	config.BackupFolder, err = homedir.Expand(config.BackupFolder)
	if err != nil {
		return Config{}, errors.WithContext(err, "expand backup folder")
	}
	return config, nil
}

// Write persists the config to `path` (the default path when empty).
func Write(config Config, path string) error {
	path, err := expandPath(path, Path)
	if err != nil {
		return errors.WithContext(err, "expand config path")
	}

	config.Version = SupportedVersion
	config.ExternalFolder = ""

	yamlBytes, err := yaml.Marshal(config)
	if err != nil {
		return errors.WithContext(err, "marshal")
	}

	if err := afero.WriteFile(fs, path, yamlBytes, 0644); err != nil {
		return errors.WithContext(err, "write")
	}
	return nil
}

// migrate folds deprecated fields into their current form.
func (c *Config) migrate() {
	if c.ExternalFolder != "" {
		found := false
		for _, folder := range c.ExtraFolders {
			if folder.Name == c.ExternalFolder {
				found = true
				break
			}
		}
		if !found {
			c.ExtraFolders = append(c.ExtraFolders, ExtraFolder{
				Name:     c.ExternalFolder,
				Location: "car",
			})
		}
		c.ExternalFolder = ""
	}
}

// Validate checks the fields every pipeline entry point depends on.
func (c Config) Validate() error {
	if c.CatalogRoot == "" {
		return errors.MissingFieldError{Field: "catalogRoot"}
	}
	return nil
}

// Policy builds the sync policy implied by the config. DeleteExtras is left
// unset; each algorithm invocation decides it.
func (c Config) Policy() (sync.Policy, error) {
	algo, err := fingerprint.ParseAlgorithm(c.HashAlgorithm)
	if err != nil {
		return sync.Policy{}, err
	}

	policy := sync.Policy{Algorithm: algo}
	if !c.CopyAll {
		policy.Extensions = []string{sync.SetupExtension}
	}
	return policy, nil
}

// Roster returns the cleaned driver roster, or nil when driver folders are
// disabled. Order is preserved and duplicates and empty names dropped; the
// roster is an ordered set.
func (c Config) Roster() []string {
	if !c.UseDriverFolders {
		return nil
	}

	seen := map[string]bool{}
	roster := []string{}
	for _, name := range c.Drivers {
		cleaned := catalog.CleanName(name)
		if cleaned == "" || seen[cleaned] {
			continue
		}
		seen[cleaned] = true
		roster = append(roster, cleaned)
	}
	return roster
}

func expandPath(path, fallback string) (string, error) {
	if path == "" {
		path = fallback
	}
	return homedir.Expand(path)
}

// GetMappingPath returns the expanded path to the mapping override file.
func GetMappingPath() (string, error) {
	return homedir.Expand(MappingPath)
}
