// Package config handles configuration loading and defaults.
package config

import "time"

// Default values.
const (
	DefaultAPIBaseURL    = "http://localhost:8081/api"
	DefaultPageSize      = 10
	DefaultBoardPageSize = 200
	DefaultTimeout       = 10
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
	DefaultStubAddr      = "localhost:8081"
)

// Config holds the full configuration for taskdeck. Values layer as
// defaults, then the user config file, then the project config file,
// then TASKDECK_* environment variables, then CLI flags.
type Config struct {
	// APIBaseURL is the root of the remote task service.
	APIBaseURL string `toml:"api_base_url" envconfig:"API_BASE_URL"`

	// PageSize is the page size of the paginated list view.
	PageSize int `toml:"page_size" envconfig:"PAGE_SIZE"`

	// BoardPageSize is the enlarged page size requested by the calendar
	// and kanban views to approximate loading all tasks, since neither
	// view is paginated.
	BoardPageSize int `toml:"board_page_size" envconfig:"BOARD_PAGE_SIZE"`

	// TimeoutSeconds bounds each remote call.
	TimeoutSeconds int `toml:"timeout_seconds" envconfig:"TIMEOUT_SECONDS"`

	// Logging configuration.
	LogLevel  string `toml:"log_level" envconfig:"LOG_LEVEL"`
	LogFormat string `toml:"log_format" envconfig:"LOG_FORMAT"`

	// Stub server settings (taskdeck stub).
	StubAddr string `toml:"stub_addr" envconfig:"STUB_ADDR"`
	SeedFile string `toml:"seed_file" envconfig:"SEED_FILE"`
}

// Timeout returns the per-call timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func setDefaults(cfg *Config) {
	cfg.APIBaseURL = DefaultAPIBaseURL
	cfg.PageSize = DefaultPageSize
	cfg.BoardPageSize = DefaultBoardPageSize
	cfg.TimeoutSeconds = DefaultTimeout
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.StubAddr = DefaultStubAddr
}
