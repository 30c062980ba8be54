//go:build !(rp2040 || rp2350)

package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sensorhub-go/services/config"
)

func TestLoadConfigProfile(t *testing.T) {
	cfg, err := loadConfig("", config.ProfilePicoHW)
	require.NoError(t, err)
	assert.Equal(t, config.ProfilePicoHW, cfg.Profile)

	_, err = loadConfig("", "nope")
	assert.True(t, errors.Is(err, config.ErrConfig))
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hub.yaml")
	require.NoError(t, os.WriteFile(path, []byte("light:\n  backend: hw\n"), 0o600))

	cfg, err := loadConfig(path, config.ProfileSim)
	require.NoError(t, err)
	assert.Equal(t, "hw", cfg.Light.Backend)
	assert.Equal(t, "sim", cfg.Temperature.Backend)
}
