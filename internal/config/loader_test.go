package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesOnlySetFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timeout_seconds: 45\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
	assert.Equal(t, "en_US", cfg.Locale, "unset fields keep the default")
}

func TestLoadAllFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := "locale: fr_FR\ntimeout_seconds: 90\ndefault_working_directory: /srv/cfti\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "fr_FR", cfg.Locale)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
	assert.Equal(t, "/srv/cfti", cfg.DefaultWorkingDirectory)
}

func TestLoadMalformedYAMLErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("not: [valid: yaml"), 0o644))

	_, err := Load(path)
	var loadErr *LoadError
	assert.ErrorAs(t, err, &loadErr)
}
