package config

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/config"
)

func TestGetters(t *testing.T) {
	parseConfig = func() (config.Config, error) {
		return config.Config{
			CatalogRoot:     "/home/maho/setups",
			SyncSource:      "Team",
			SyncDestination: "Synced",
		}, nil
	}

	tests := []struct {
		use string
		exp string
	}{
		{use: "get-catalog-root", exp: "/home/maho/setups\n"},
		{use: "get-sync-source", exp: "Team\n"},
		{use: "get-sync-destination", exp: "Synced\n"},
	}

	for _, test := range tests {
		test := test
		t.Run(test.use, func(t *testing.T) {
			out := &bytes.Buffer{}
			stdout = out

			cmd := New()
			cmd.SetArgs([]string{test.use})
			require.NoError(t, cmd.Execute())
			assert.Equal(t, test.exp, out.String())
		})
	}
}

func TestInitRefusesToOverwrite(t *testing.T) {
	parseConfig = func() (config.Config, error) {
		return config.Config{}, nil
	}

	saved := false
	saveConfig = func(config.Config) error {
		saved = true
		return nil
	}
	stdout = &bytes.Buffer{}

	err := runInit(false)
	assert.Error(t, err)
	assert.False(t, saved)

	require.NoError(t, runInit(true))
	assert.True(t, saved)
}

func TestInitWritesDefault(t *testing.T) {
	parseConfig = func() (config.Config, error) {
		return config.Config{}, fmt.Errorf("no config")
	}

	var saved config.Config
	saveConfig = func(cfg config.Config) error {
		saved = cfg
		return nil
	}
	stdout = &bytes.Buffer{}

	require.NoError(t, runInit(false))
	assert.Equal(t, config.Default(), saved)
}
