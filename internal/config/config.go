// Package config defines tiewatch configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and TIEWATCH_ env vars.
// - Errors are wrapped with this package's sentinel kinds.
package config

import (
	"fmt"
	"runtime"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// APIURL is the GraphQL endpoint of the results feed.
	APIURL string `koanf:"api_url"`

	// APIToken is the bearer token for the results feed.
	APIToken string `koanf:"api_token"`

	// EventSlug selects the bracket event, e.g. "tournament/x/event/y".
	EventSlug string `koanf:"event_slug"`

	// PhaseName keeps only sets of the phase with this name.
	PhaseName string `koanf:"phase_name"`

	// PerPage is the number of sets requested per feed page.
	PerPage int `koanf:"per_page"`

	// RequestsPerMinute caps the feed request rate.
	RequestsPerMinute int `koanf:"requests_per_minute"`

	// RequestTimeoutMS bounds a single feed request.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// MaxRetries is how often a transient feed failure is retried.
	MaxRetries int `koanf:"max_retries"`

	// UserAgent is sent with every feed request.
	UserAgent string `koanf:"user_agent"`

	// WorkerCount sets the number of analysis workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the analysis job queue.
	QueueSize int `koanf:"queue_size"`

	// MaxPending refuses groups with more pending matches than this.
	MaxPending int `koanf:"max_pending"`

	// Addr configures the HTTP listen address of serve mode, e.g. ":9080".
	Addr string `koanf:"addr"`

	// FixtureFile, when set, replaces the remote feed with a local file.
	FixtureFile string `koanf:"fixture_file"`

	// RefreshIntervalS re-runs the analysis this often in serve mode.
	// Zero analyses once at startup.
	RefreshIntervalS int `koanf:"refresh_interval_s"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		APIURL:            "https://api.start.gg/gql/alpha",
		PhaseName:         "Groups",
		PerPage:           50,
		RequestsPerMinute: 80,
		RequestTimeoutMS:  30_000,
		MaxRetries:        3,
		UserAgent:         "tiewatch/0.1",
		WorkerCount:       runtime.NumCPU(),
		QueueSize:         1024,
		MaxPending:        20,
		Addr:              ":9080",
	}
}

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// RefreshInterval returns RefreshIntervalS as a duration.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalS) * time.Second
}

// Validate checks value ranges. It does not require feed credentials; the
// command that talks to the feed checks those.
func (c *Config) Validate() error {
	switch {
	case c.PerPage < 1:
		return fmt.Errorf("%w: per_page must be positive", ErrInvalidConfig)
	case c.RequestsPerMinute < 1:
		return fmt.Errorf("%w: requests_per_minute must be positive", ErrInvalidConfig)
	case c.RequestTimeoutMS < 1:
		return fmt.Errorf("%w: request_timeout_ms must be positive", ErrInvalidConfig)
	case c.MaxRetries < 0:
		return fmt.Errorf("%w: max_retries must not be negative", ErrInvalidConfig)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.MaxPending < 1:
		return fmt.Errorf("%w: max_pending must be positive", ErrInvalidConfig)
	case c.RefreshIntervalS < 0:
		return fmt.Errorf("%w: refresh_interval_s must not be negative", ErrInvalidConfig)
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	return nil
}

// RequireFeed checks the settings needed to reach the remote feed.
func (c *Config) RequireFeed() error {
	if c.FixtureFile != "" {
		return nil
	}
	switch {
	case c.APIURL == "":
		return fmt.Errorf("%w: api_url must not be empty", ErrInvalidConfig)
	case c.APIToken == "":
		return fmt.Errorf("%w: api_token must not be empty", ErrInvalidConfig)
	case c.EventSlug == "":
		return fmt.Errorf("%w: event_slug must not be empty", ErrInvalidConfig)
	}
	return nil
}
