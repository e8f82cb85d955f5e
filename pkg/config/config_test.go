package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/errors"
	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/fingerprint"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expCheck func(t *testing.T, cfg Config)
		expError bool
	}{
		{
			name: "Minimal",
			input: `
version: v1
catalogRoot: /setups
syncSource: Team A
syncDestination: Team B
`,
			expCheck: func(t *testing.T, cfg Config) {
				assert.Equal(t, "/setups", cfg.CatalogRoot)
				assert.Equal(t, "Team A", cfg.SyncSource)
				assert.Equal(t, "Team B", cfg.SyncDestination)
			},
		},
		{
			name: "LegacyExternalFolder",
			input: `
version: v1
catalogRoot: /setups
externalFolder: Coach Dave
`,
			expCheck: func(t *testing.T, cfg Config) {
				require.Len(t, cfg.ExtraFolders, 1)
				assert.Equal(t, ExtraFolder{Name: "Coach Dave", Location: "car"}, cfg.ExtraFolders[0])
				assert.Empty(t, cfg.ExternalFolder)
			},
		},
		{
			name: "ExtraFolderForms",
			input: `
version: v1
catalogRoot: /setups
extraFolders:
  - Bare Name
  - name: Garage 61
    location: dest
`,
			expCheck: func(t *testing.T, cfg Config) {
				assert.Equal(t, []ExtraFolder{
					{Name: "Bare Name", Location: "car"},
					{Name: "Garage 61", Location: "dest"},
				}, cfg.ExtraFolders)
			},
		},
		{
			name: "IncorrectVersion",
			input: `
version: v9
catalogRoot: /setups
`,
			expError: true,
		},
		{
			name: "ExtraFields",
			input: `
version: v1
catalogRoot: /setups
unknownField: true
`,
			expError: true,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			fs = afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, "config.yaml", []byte(test.input), 0644))

			cfg, err := Parse("config.yaml")
			if test.expError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			test.expCheck(t, cfg)
		})
	}
}

func TestParseMissingFile(t *testing.T) {
	fs = afero.NewMemMapFs()
	_, err := Parse("missing.yaml")
	assert.Equal(t, errors.FileNotFound{Path: "missing.yaml"}, err)
}

func TestWriteRoundTrip(t *testing.T) {
	fs = afero.NewMemMapFs()
	cfg := Default()
	cfg.CatalogRoot = "/setups"
	cfg.Drivers = []string{"alice", "bob"}

	require.NoError(t, Write(cfg, "config.yaml"))

	parsed, err := Parse("config.yaml")
	require.NoError(t, err)
	assert.Equal(t, cfg.CatalogRoot, parsed.CatalogRoot)
	assert.Equal(t, cfg.Drivers, parsed.Drivers)
	assert.Equal(t, SupportedVersion, parsed.Version)
}

func TestPolicy(t *testing.T) {
	cfg := Default()
	policy, err := cfg.Policy()
	require.NoError(t, err)
	assert.Equal(t, fingerprint.MD5, policy.Algorithm)
	assert.Equal(t, []string{".sto"}, policy.Extensions)
	assert.False(t, policy.DeleteExtras)

	cfg.CopyAll = true
	cfg.HashAlgorithm = "sha256"
	policy, err = cfg.Policy()
	require.NoError(t, err)
	assert.Equal(t, fingerprint.SHA256, policy.Algorithm)
	assert.Empty(t, policy.Extensions)
}

func TestRoster(t *testing.T) {
	cfg := Config{
		UseDriverFolders: true,
		Drivers:          []string{" alice ", "bob/", "alice", ""},
	}
	assert.Equal(t, []string{"alice", "bob"}, cfg.Roster())

	cfg.UseDriverFolders = false
	assert.Nil(t, cfg.Roster())
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.Equal(t, errors.MissingFieldError{Field: "catalogRoot"}, cfg.Validate())

	cfg.CatalogRoot = "/home/maho/setups"
	assert.NoError(t, cfg.Validate())
}
