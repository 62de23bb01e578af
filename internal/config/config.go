package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DefaultWorkers is the number of cards rendered concurrently
const DefaultWorkers = 4

// Config represents the application configuration
type Config struct {
	Verbose  bool           `toml:"verbose"`
	Generate GenerateConfig `toml:"generate"`

	// directory of the loaded file, used to resolve relative paths
	dir string
}

// GenerateConfig holds the defaults for the generate and validate commands
type GenerateConfig struct {
	Template    string   `toml:"template"`
	Defaults    string   `toml:"defaults"`
	ConfigsDir  string   `toml:"configs_dir"`
	PicturesDir string   `toml:"pictures_dir"`
	OutDir      string   `toml:"out_dir"`
	Bundle      string   `toml:"bundle"`
	IDKey       string   `toml:"id_key"`
	RequireKeys []string `toml:"require_keys"`
	Strict      bool     `toml:"strict"`
	Workers     int      `toml:"workers"`
}

// GetXDGConfigHome returns XDG_CONFIG_HOME or default path
func GetXDGConfigHome() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return xdgConfig
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config")
}

// GetXDGCacheHome returns XDG_CACHE_HOME or default path
func GetXDGCacheHome() string {
	if xdgCache := os.Getenv("XDG_CACHE_HOME"); xdgCache != "" {
		return xdgCache
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".cache")
}

// GetConfigFilePath returns the path to the config file
func GetConfigFilePath() string {
	return filepath.Join(GetXDGConfigHome(), "pokedon", "config.toml")
}

// GetCacheDir returns the directory for generated caches
func GetCacheDir() string {
	return filepath.Join(GetXDGCacheHome(), "pokedon")
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Generate: GenerateConfig{
			Workers: DefaultWorkers,
		},
	}
}

// LoadConfig loads the config file at path, or the default location when
// path is empty. A default file is created if none exists.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = GetConfigFilePath()
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefaultConfig(path)
	}

	config := Default()
	if _, err := toml.DecodeFile(path, config); err != nil {
		return nil, fmt.Errorf("error decoding config file: %w", err)
	}
	if config.Generate.Workers <= 0 {
		config.Generate.Workers = DefaultWorkers
	}
	config.dir = filepath.Dir(path)

	return config, nil
}

// createDefaultConfig creates a default config file
func createDefaultConfig(path string) (*Config, error) {
	config := Default()
	if err := config.Save(path); err != nil {
		return nil, err
	}
	return config, nil
}

// Save writes the config to path as TOML
func (c *Config) Save(path string) error {
	// Ensure the config directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating config file: %w", err)
	}
	defer file.Close()

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}

	c.dir = filepath.Dir(path)
	return nil
}

// ResolvePath makes a path from the config file absolute, relative to the
// file's directory. Empty and absolute paths are returned unchanged.
func (c *Config) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	return filepath.Join(c.dir, p)
}
