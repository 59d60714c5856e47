package config

import "time"

// Config holds every setting for both the server daemon and the dashboard
// client. Values are immutable after Load; thresholds in particular are read
// once at startup and never reloaded.
type Config struct {
	Debug   bool `mapstructure:"debug"`
	Verbose bool `mapstructure:"verbose"`

	// Port is the HTTP listen port of the server.
	Port int `mapstructure:"port"`

	// WebDir is the directory holding the dashboard shell. Empty disables
	// static serving.
	WebDir string `mapstructure:"web_dir"`

	PerLoadLimit float64 `mapstructure:"per_load_limit_mw"`
	TotalLimit   float64 `mapstructure:"total_limit_mw"`

	MQTT      MQTT      `mapstructure:"mqtt"`
	Dashboard Dashboard `mapstructure:"dashboard"`
}

// MQTT configures the optional sensor ingestion bridge.
type MQTT struct {
	Enabled  bool   `mapstructure:"enabled"`
	Broker   string `mapstructure:"broker"`
	Topic    string `mapstructure:"topic"`
	ClientID string `mapstructure:"client_id"`
}

// Dashboard configures the polling client.
type Dashboard struct {
	BaseURL        string        `mapstructure:"base_url"`
	CacheDB        string        `mapstructure:"cache_db"`
	CacheName      string        `mapstructure:"cache_name"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// Option defines a configuration option that can be passed to Load
type Option func(*options) error

// options holds internal configuration options
type options struct {
	configPath string
	envPrefix  string
}

// WithConfigFile specifies an explicit configuration file path
func WithConfigFile(path string) Option {
	return func(o *options) error {
		o.configPath = path
		return nil
	}
}

// WithEnvPrefix specifies a custom environment variable prefix
// Default is "ENERGYMON"
func WithEnvPrefix(prefix string) Option {
	return func(o *options) error {
		o.envPrefix = prefix
		return nil
	}
}
