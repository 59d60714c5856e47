package config

import (
	"strings"
	"time"

	"codeberg.org/mutker/energymon/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultPort           = 3000
	DefaultPerLoadLimit   = 600.0
	DefaultTotalLimit     = 1200.0
	DefaultEnvPrefix      = "ENERGYMON"
	DefaultCacheName      = "energy-ui-v1"
	DefaultBaseURL        = "http://localhost:3000"
	DefaultRequestTimeout = 2 * time.Second
	DefaultMQTTBroker     = "tcp://localhost:1883"
	DefaultMQTTTopic      = "energymon/samples"
	DefaultMQTTClientID   = "energymon"

	configName = "energymon"
	configType = "toml"
)

// flag name -> config key
var flagKeys = map[string]string{
	"debug":           "debug",
	"verbose":         "verbose",
	"port":            "port",
	"web-dir":         "web_dir",
	"per-load-limit":  "per_load_limit_mw",
	"total-limit":     "total_limit_mw",
	"mqtt":            "mqtt.enabled",
	"mqtt-broker":     "mqtt.broker",
	"mqtt-topic":      "mqtt.topic",
	"base-url":        "dashboard.base_url",
	"cache-db":        "dashboard.cache_db",
	"cache-name":      "dashboard.cache_name",
	"request-timeout": "dashboard.request_timeout",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("verbose", false)
	v.SetDefault("port", DefaultPort)
	v.SetDefault("web_dir", "")
	v.SetDefault("per_load_limit_mw", DefaultPerLoadLimit)
	v.SetDefault("total_limit_mw", DefaultTotalLimit)
	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", DefaultMQTTBroker)
	v.SetDefault("mqtt.topic", DefaultMQTTTopic)
	v.SetDefault("mqtt.client_id", DefaultMQTTClientID)
	v.SetDefault("dashboard.base_url", DefaultBaseURL)
	v.SetDefault("dashboard.cache_db", "")
	v.SetDefault("dashboard.cache_name", DefaultCacheName)
	v.SetDefault("dashboard.request_timeout", DefaultRequestTimeout)
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet(configName, pflag.ContinueOnError)
	fs.String("config", "", "Path to configuration file")
	fs.Bool("debug", false, "Enable debugging mode")
	fs.Bool("verbose", false, "Enable verbose logging")
	fs.Int("port", DefaultPort, "HTTP listen port")
	fs.String("web-dir", "", "Directory served as the dashboard shell")
	fs.Float64("per-load-limit", DefaultPerLoadLimit, "Per-load power limit in mW")
	fs.Float64("total-limit", DefaultTotalLimit, "Total power limit in mW")
	fs.Bool("mqtt", false, "Enable the MQTT ingestion bridge")
	fs.String("mqtt-broker", DefaultMQTTBroker, "MQTT broker address")
	fs.String("mqtt-topic", DefaultMQTTTopic, "MQTT topic carrying sensor samples")
	fs.String("base-url", DefaultBaseURL, "Dashboard: server base URL")
	fs.String("cache-db", "", "Dashboard: SQLite path for the offline cache (empty keeps it in memory)")
	fs.String("cache-name", DefaultCacheName, "Dashboard: offline cache generation name")
	fs.Duration("request-timeout", DefaultRequestTimeout, "Dashboard: per-request timeout")
	return fs
}

// Load reads configuration from defaults, an optional TOML file, the
// ENERGYMON_PORT environment variable and command line flags, in increasing
// order of precedence.
func Load(args []string, opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := options{envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	if path, _ := fs.GetString("config"); path != "" {
		o.configPath = path
	}

	if o.configPath != "" {
		v.SetConfigFile(o.configPath)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath("/etc/energymon")
		v.AddConfigPath(".")
	}
	v.SetConfigType(configType)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	// The listen port is the only setting taken from the environment.
	if err := v.BindEnv("port", strings.ToUpper(o.envPrefix)+"_PORT"); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	for name, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return nil, errFactory.Wrap(errors.ErrBindFlags, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the loaded values for consistency
func (c *Config) Validate() error {
	errFactory := errors.New()

	type invalidField struct {
		Field string
		Value any
	}

	switch {
	case c.Port <= 0 || c.Port > 65535:
		return errFactory.WithData(errors.ErrInvalidConfig, invalidField{"port", c.Port})
	case c.PerLoadLimit <= 0:
		return errFactory.WithData(errors.ErrInvalidConfig, invalidField{"per_load_limit_mw", c.PerLoadLimit})
	case c.TotalLimit <= 0:
		return errFactory.WithData(errors.ErrInvalidConfig, invalidField{"total_limit_mw", c.TotalLimit})
	case c.Dashboard.CacheName == "":
		return errFactory.WithData(errors.ErrInvalidConfig, invalidField{"dashboard.cache_name", c.Dashboard.CacheName})
	case c.Dashboard.RequestTimeout < 0:
		return errFactory.WithData(errors.ErrInvalidConfig, invalidField{"dashboard.request_timeout", c.Dashboard.RequestTimeout})
	case c.MQTT.Enabled && (c.MQTT.Broker == "" || c.MQTT.Topic == ""):
		return errFactory.WithData(errors.ErrInvalidConfig, invalidField{"mqtt", c.MQTT})
	}

	return nil
}
