// Package config handles configuration loading and management for refparity.
// It supports XDG config paths, project-level overrides, and environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// DefaultWorkers is the reference worker-pool size.
const DefaultWorkers = 8

// Config holds all configuration for refparity.
type Config struct {
	Cache    CacheConfig    `mapstructure:"cache"`
	Source   SourceConfig   `mapstructure:"source"`
	Run      RunConfig      `mapstructure:"run"`
	Producer ProducerConfig `mapstructure:"producer"`
	Debug    DebugConfig    `mapstructure:"debug"`
}

// CacheConfig locates the artifact cache.
type CacheConfig struct {
	// Root is the directory artifact pairs live under.
	Root string `mapstructure:"root"`
}

// SourceConfig controls input file discovery.
type SourceConfig struct {
	// Root is the directory tree to enumerate source files from.
	Root string `mapstructure:"root"`
	// Extensions lists the recognized source file extensions.
	Extensions []string `mapstructure:"extensions"`
}

// RunConfig holds scheduling options for a verification run.
type RunConfig struct {
	// Workers is the fixed worker-pool size.
	Workers int `mapstructure:"workers"`
	// FailFast enables best-effort fail-fast dispatch suppression.
	FailFast bool `mapstructure:"fail_fast"`
	// Shuffle randomizes input file order before dispatch.
	Shuffle bool `mapstructure:"shuffle"`
	// Seed seeds the shuffle so a failing order can be replayed.
	// Zero means derive from the clock.
	Seed int64 `mapstructure:"seed"`
}

// ProducerConfig describes the optional external command that refreshes
// artifacts before a run.
type ProducerConfig struct {
	// Command is run with the source root as its argument; empty disables
	// the hook.
	Command string `mapstructure:"command"`
}

// DebugConfig holds debug logging settings.
type DebugConfig struct {
	// LogPath is the debug log file; empty disables debug logging.
	LogPath string `mapstructure:"log_path"`
}

// Load loads configuration from XDG paths, project overrides, and environment
// variables.
// Precedence (highest to lowest):
// 1. Environment variables (FAIL_FAST, SHUFFLE, REFPARITY_*)
// 2. Project config (.refparity.yaml in current directory or parent)
// 3. User config (~/.config/refparity/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Load user config from XDG path
	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	// Load project config if present
	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			// Merge project config (takes precedence)
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	// Environment variable overrides
	v.AutomaticEnv()
	v.SetEnvPrefix("")

	// Map specific environment variables
	v.BindEnv("run.fail_fast", "FAIL_FAST")
	v.BindEnv("run.shuffle", "SHUFFLE")
	v.BindEnv("run.workers", "REFPARITY_WORKERS")
	v.BindEnv("run.seed", "REFPARITY_SEED")
	v.BindEnv("cache.root", "REFPARITY_CACHE_DIR")
	v.BindEnv("debug.log_path", "REFPARITY_DEBUG_LOG")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Expand ${VAR} references in path settings
	cfg.Cache.Root = os.ExpandEnv(cfg.Cache.Root)
	cfg.Source.Root = os.ExpandEnv(cfg.Source.Root)

	if cfg.Run.Workers <= 0 {
		cfg.Run.Workers = DefaultWorkers
	}

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Cache.Root = os.ExpandEnv(cfg.Cache.Root)
	cfg.Source.Root = os.ExpandEnv(cfg.Source.Root)

	if cfg.Run.Workers <= 0 {
		cfg.Run.Workers = DefaultWorkers
	}

	return cfg, nil
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("cache.root", defaultCacheRoot())
	v.SetDefault("source.root", ".")
	v.SetDefault("source.extensions", []string{".rb"})
	v.SetDefault("run.workers", DefaultWorkers)
	v.SetDefault("run.fail_fast", false)
	v.SetDefault("run.shuffle", false)
	v.SetDefault("run.seed", 0)
	v.SetDefault("producer.command", "")
	v.SetDefault("debug.log_path", "")
}

// defaultCacheRoot returns the XDG cache directory for refparity.
func defaultCacheRoot() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "refparity")
	}
	return filepath.Join(".", ".refparity-cache")
}

// getUserConfigDir returns the XDG config directory for refparity.
func getUserConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "refparity")
	}

	// Fall back to ~/.config/refparity
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "refparity")
	}
	return filepath.Join(home, ".config", "refparity")
}

// findProjectConfig searches for .refparity.yaml in the current directory
// and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".refparity.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Cache: CacheConfig{Root: defaultCacheRoot()},
		Source: SourceConfig{
			Root:       ".",
			Extensions: []string{".rb"},
		},
		Run: RunConfig{Workers: DefaultWorkers},
	}
}
