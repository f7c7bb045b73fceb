// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
)

// Built-in timing defaults, applied when neither the config file nor a flag
// sets a value.
const (
	defaultCooldownMinutes   = 5
	defaultTimeoutSeconds    = 15
	defaultRetries           = 3
	defaultRetryDelaySeconds = 2
)

// DefaultDetailBaseURL is the site detail page listing links point at when
// the feed provides none and no override is configured.
const DefaultDetailBaseURL = "https://www.casavella.ch/proprieta"

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via
// CLI flags.
//
// The timing fields are pointers so that an explicit zero — "0 disables the
// cooldown", "no retries" — is distinguishable from an unset field and
// survives the defaults merge.
type Config struct {
	// Feed
	FeedURL       string `json:"feed_url,omitempty" validate:"omitempty,url"`
	Dialect       string `json:"dialect,omitempty" validate:"omitempty,oneof=miogest immobili"`
	DetailBaseURL string `json:"detail_base_url,omitempty" validate:"omitempty,url"`
	ContactURL    string `json:"contact_url,omitempty" validate:"omitempty,url"`

	// Paths
	Template  string `json:"template,omitempty"`   // Path to site template
	Output    string `json:"output,omitempty"`     // Path the generated page is written to
	RunRecord string `json:"run_record,omitempty"` // Path of the last-build record file
	SiteDir   string `json:"site_dir,omitempty"`   // Working copy the publish sink commits in

	// Timing
	CooldownMinutes   *int `json:"cooldown_minutes,omitempty" validate:"omitempty,gte=0"`
	TimeoutSeconds    *int `json:"timeout_seconds,omitempty" validate:"omitempty,gte=0"`
	Retries           *int `json:"retries,omitempty" validate:"omitempty,gte=0"`
	RetryDelaySeconds *int `json:"retry_delay_seconds,omitempty" validate:"omitempty,gte=0"`

	// Behavior
	NoPublish   bool   `json:"no_publish,omitempty"`
	Verbose     bool   `json:"verbose,omitempty"`
	DatabaseURL string `json:"database_url,omitempty"` // Optional PostgreSQL URL for run records
	ListenAddr  string `json:"listen_addr,omitempty"`  // Address of the serve command
}

// DefaultConfig returns the built-in defaults applied beneath config file
// and flag values.
func DefaultConfig() Config {
	return Config{
		Dialect:           "miogest",
		DetailBaseURL:     DefaultDetailBaseURL,
		Template:          "template.html",
		Output:            "index.html",
		RunRecord:         "last-build.json",
		SiteDir:           ".",
		CooldownMinutes:   intPtr(defaultCooldownMinutes),
		TimeoutSeconds:    intPtr(defaultTimeoutSeconds),
		Retries:           intPtr(defaultRetries),
		RetryDelaySeconds: intPtr(defaultRetryDelaySeconds),
		ListenAddr:        ":8080",
	}
}

func intPtr(v int) *int {
	return &v
}

// Cooldown returns the configured cooldown as a duration. Zero disables it.
func (c *Config) Cooldown() time.Duration {
	if c.CooldownMinutes == nil {
		return defaultCooldownMinutes * time.Minute
	}
	return time.Duration(*c.CooldownMinutes) * time.Minute
}

// Timeout returns the configured per-request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds == nil {
		return defaultTimeoutSeconds * time.Second
	}
	return time.Duration(*c.TimeoutSeconds) * time.Second
}

// RetryAttempts returns the configured fetch attempt budget.
func (c *Config) RetryAttempts() int {
	if c.Retries == nil {
		return defaultRetries
	}
	return *c.Retries
}

// RetryDelay returns the configured base retry delay as a duration.
func (c *Config) RetryDelay() time.Duration {
	if c.RetryDelaySeconds == nil {
		return defaultRetryDelaySeconds * time.Second
	}
	return time.Duration(*c.RetryDelaySeconds) * time.Second
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check that referenced files exist — a missing template
// is a build failure with fallback semantics, decided by the pipeline, not
// a configuration error.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) && len(invalid) > 0 {
			f := invalid[0]
			return fmt.Errorf("config error: field %q fails %q validation", f.Field(), f.Tag())
		}
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// MergeWithDefaults returns a new Config with unset fields filled from
// defaults. This is used to apply config file values as defaults for CLI
// flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.FeedURL == "" {
		result.FeedURL = defaults.FeedURL
	}
	if result.Dialect == "" {
		result.Dialect = defaults.Dialect
	}
	if result.DetailBaseURL == "" {
		result.DetailBaseURL = defaults.DetailBaseURL
	}
	if result.ContactURL == "" {
		result.ContactURL = defaults.ContactURL
	}
	if result.Template == "" {
		result.Template = defaults.Template
	}
	if result.Output == "" {
		result.Output = defaults.Output
	}
	if result.RunRecord == "" {
		result.RunRecord = defaults.RunRecord
	}
	if result.SiteDir == "" {
		result.SiteDir = defaults.SiteDir
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.ListenAddr == "" {
		result.ListenAddr = defaults.ListenAddr
	}

	// Timing fields: use default only when unset. An explicit zero is a
	// real value (cooldown disabled, no retries) and must survive.
	if result.CooldownMinutes == nil {
		result.CooldownMinutes = defaults.CooldownMinutes
	}
	if result.TimeoutSeconds == nil {
		result.TimeoutSeconds = defaults.TimeoutSeconds
	}
	if result.Retries == nil {
		result.Retries = defaults.Retries
	}
	if result.RetryDelaySeconds == nil {
		result.RetryDelaySeconds = defaults.RetryDelaySeconds
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
