// Package config holds the client SDK configuration: where the platform
// API lives, where the session record is persisted, and the lifecycle
// tuning knobs. Values come from an optional YAML file with environment
// variables taking precedence.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	apiURLEnvVar      = "PLANFORGE_API_URL"
	dataDirEnvVar     = "PLANFORGE_DATA_DIR"
	httpTimeoutEnvVar = "PLANFORGE_HTTP_TIMEOUT"
	initDelayEnvVar   = "PLANFORGE_INIT_DELAY"

	defaultAPIURL      = "https://api.planforge.example"
	defaultHTTPTimeout = 15 * time.Second
	defaultInitDelay   = 150 * time.Millisecond
	defaultRemember    = 30 * 24 * time.Hour
)

// Config is the resolved SDK configuration.
type Config struct {
	APIBaseURL     string        // Platform API root
	DataDir        string        // Directory for the persisted session record
	HTTPTimeout    time.Duration // Per-request timeout
	InitDelay      time.Duration // Delay before session restoration starts
	RememberWindow time.Duration // "Stay signed in" validity window
}

// Default returns the built-in configuration with env overrides applied.
func Default() Config {
	cfg := Config{
		APIBaseURL:     defaultAPIURL,
		DataDir:        "./data",
		HTTPTimeout:    defaultHTTPTimeout,
		InitDelay:      defaultInitDelay,
		RememberWindow: defaultRemember,
	}
	cfg.applyEnv()
	return cfg
}

// fileConfig is the YAML shape; durations are Go duration strings ("15s").
type fileConfig struct {
	APIBaseURL     string `yaml:"api_base_url"`
	DataDir        string `yaml:"data_dir"`
	HTTPTimeout    string `yaml:"http_timeout"`
	InitDelay      string `yaml:"init_delay"`
	RememberWindow string `yaml:"remember_window"`
}

// Load reads the YAML file at path on top of the defaults. Environment
// variables override both.
func Load(path string) (Config, error) {
	cfg := Config{
		APIBaseURL:     defaultAPIURL,
		DataDir:        "./data",
		HTTPTimeout:    defaultHTTPTimeout,
		InitDelay:      defaultInitDelay,
		RememberWindow: defaultRemember,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "[config.Load] read config file")
	}

	fc := fileConfig{}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return Config{}, errors.Wrap(err, "[config.Load] parse config file")
	}

	if fc.APIBaseURL != "" {
		cfg.APIBaseURL = fc.APIBaseURL
	}
	if fc.DataDir != "" {
		cfg.DataDir = fc.DataDir
	}
	if err := setDuration(&cfg.HTTPTimeout, fc.HTTPTimeout); err != nil {
		return Config{}, errors.Wrap(err, "[config.Load] http_timeout")
	}
	if err := setDuration(&cfg.InitDelay, fc.InitDelay); err != nil {
		return Config{}, errors.Wrap(err, "[config.Load] init_delay")
	}
	if err := setDuration(&cfg.RememberWindow, fc.RememberWindow); err != nil {
		return Config{}, errors.Wrap(err, "[config.Load] remember_window")
	}

	cfg.applyEnv()
	return cfg, nil
}

func setDuration(dst *time.Duration, raw string) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}

// SessionRecordPath is the file the credential store persists to.
func (c Config) SessionRecordPath() string {
	return filepath.Join(c.DataDir, "session.json")
}

func (c *Config) applyEnv() {
	c.APIBaseURL = getEnv(apiURLEnvVar, c.APIBaseURL)
	c.DataDir = getEnv(dataDirEnvVar, c.DataDir)
	applyEnvDuration(&c.HTTPTimeout, httpTimeoutEnvVar)
	applyEnvDuration(&c.InitDelay, initDelayEnvVar)
}

// applyEnvDuration overrides dst when the variable holds a parseable Go
// duration; an unparseable value keeps the configured one.
func applyEnvDuration(dst *time.Duration, envVar string) {
	raw := os.Getenv(envVar)
	if raw == "" {
		return
	}
	if d, err := time.ParseDuration(raw); err == nil {
		*dst = d
	}
}

func getEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
