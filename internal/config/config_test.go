package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXDGPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")

	assert.Equal(t, filepath.Join("/tmp/xdg-config", "pokedon", "config.toml"), GetConfigFilePath())
	assert.Equal(t, filepath.Join("/tmp/xdg-cache", "pokedon"), GetCacheDir())
}

func TestLoadConfigCreatesDefault(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultWorkers, cfg.Generate.Workers)
	assert.False(t, cfg.Verbose)
	assert.FileExists(t, GetConfigFilePath())
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pokedon.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
verbose = true

[generate]
template = "template.json"
configs_dir = "/abs/configs"
id_key = "id"
require_keys = ["name", "stats.hp"]
strict = true
workers = 0
`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "id", cfg.Generate.IDKey)
	assert.Equal(t, []string{"name", "stats.hp"}, cfg.Generate.RequireKeys)
	assert.True(t, cfg.Generate.Strict)
	assert.Equal(t, DefaultWorkers, cfg.Generate.Workers)

	assert.Equal(t, filepath.Join(dir, "template.json"), cfg.ResolvePath(cfg.Generate.Template))
	assert.Equal(t, "/abs/configs", cfg.ResolvePath(cfg.Generate.ConfigsDir))
	assert.Equal(t, "", cfg.ResolvePath(cfg.Generate.Defaults))
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("verbose = = 1"), 0644))

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "error decoding config file")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.Generate.OutDir = "out"
	cfg.Generate.Workers = 8
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "out", loaded.Generate.OutDir)
	assert.Equal(t, 8, loaded.Generate.Workers)
	assert.Empty(t, loaded.Generate.RequireKeys)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "out"), loaded.ResolvePath(loaded.Generate.OutDir))
}
