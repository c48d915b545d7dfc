package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (CSHAKE_*)
// 2. Config file (.cshake/config.yml or .cshake/config.yaml)
// 3. Default values
//
// The result is not validated; flags may still change it. Call Validate once
// every layer has been applied.
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	configDir := filepath.Join(l.rootDir, ".cshake")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	// CSHAKE_EXTRACT_OUTPUT_DIR -> extract.output_dir
	v.SetEnvPrefix("CSHAKE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("paths.source_root")
	v.BindEnv("paths.sources")
	v.BindEnv("paths.ignore")
	v.BindEnv("paths.respect_gitignore")

	v.BindEnv("extract.entry_symbols")
	v.BindEnv("extract.output_dir")

	v.BindEnv("include.dirs")
	v.BindEnv("include.system_dirs")

	v.BindEnv("watch.debounce")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("paths.source_root", defaults.Paths.SourceRoot)
	v.SetDefault("paths.sources", defaults.Paths.Sources)
	v.SetDefault("paths.ignore", defaults.Paths.Ignore)
	v.SetDefault("paths.respect_gitignore", defaults.Paths.RespectGitignore)

	v.SetDefault("extract.entry_symbols", defaults.Extract.EntrySymbols)
	v.SetDefault("extract.output_dir", defaults.Extract.OutputDir)

	v.SetDefault("include.dirs", defaults.Include.Dirs)
	v.SetDefault("include.system_dirs", defaults.Include.SystemDirs)

	v.SetDefault("watch.debounce", defaults.Watch.Debounce)
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
