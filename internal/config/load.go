package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
)

// envPrefix is the prefix for environment overrides, e.g.
// TASKDECK_API_BASE_URL.
const envPrefix = "taskdeck"

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.config/taskdeck/config.toml)
// 3. Project config file (taskdeck.toml in current directory)
// 4. Environment variables (TASKDECK_*)
// 5. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{}

	setDefaults(cfg)

	if path := findUserConfigFile(); path != "" {
		if err := loadConfigFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", path, err)
		}
	}

	if path := findProjectConfigFile(); path != "" {
		if err := loadConfigFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", path, err)
		}
	}

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	if err := parseFlags(cfg, fs, args); err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findUserConfigFile looks for the per-user config file.
func findUserConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(home, ".config", "taskdeck", "config.toml")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// findProjectConfigFile looks for taskdeck.toml in the current directory.
func findProjectConfigFile() string {
	if _, err := os.Stat("taskdeck.toml"); err != nil {
		return ""
	}
	return "taskdeck.toml"
}

// loadConfigFile merges only the keys present in the TOML file into cfg,
// so absent keys keep their value from earlier layers.
func loadConfigFile(cfg *Config, path string) error {
	temp := &Config{}
	meta, err := toml.DecodeFile(path, temp)
	if err != nil {
		return err
	}
	for _, key := range meta.Keys() {
		switch key.String() {
		case "api_base_url":
			cfg.APIBaseURL = temp.APIBaseURL
		case "page_size":
			cfg.PageSize = temp.PageSize
		case "board_page_size":
			cfg.BoardPageSize = temp.BoardPageSize
		case "timeout_seconds":
			cfg.TimeoutSeconds = temp.TimeoutSeconds
		case "log_level":
			cfg.LogLevel = temp.LogLevel
		case "log_format":
			cfg.LogFormat = temp.LogFormat
		case "stub_addr":
			cfg.StubAddr = temp.StubAddr
		case "seed_file":
			cfg.SeedFile = temp.SeedFile
		}
	}
	return nil
}

// parseFlags registers flags pre-seeded with the current values so unset
// flags change nothing.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string) error {
	fs.StringVar(&cfg.APIBaseURL, "api", cfg.APIBaseURL, "Task service base URL")
	fs.IntVar(&cfg.PageSize, "page-size", cfg.PageSize, "List view page size")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug|info|warn|error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text|json|logfmt)")
	return fs.Parse(args)
}

func validate(cfg *Config) error {
	if cfg.APIBaseURL == "" {
		return fmt.Errorf("api base URL must not be empty")
	}
	if cfg.PageSize < 1 {
		return fmt.Errorf("page size must be positive, got %d", cfg.PageSize)
	}
	if cfg.BoardPageSize < cfg.PageSize {
		return fmt.Errorf("board page size %d must be at least the page size %d", cfg.BoardPageSize, cfg.PageSize)
	}
	if cfg.TimeoutSeconds < 1 {
		return fmt.Errorf("timeout must be positive, got %d", cfg.TimeoutSeconds)
	}
	return nil
}
