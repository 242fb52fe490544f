// Package config loads runtime settings from the environment, with an
// optional YAML file underneath. Every key has a default so the binary
// runs with no configuration at all.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Addr string `mapstructure:"addr"`

	TargetURL    string        `mapstructure:"target_url"`
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`

	DefaultIntervalSeconds int `mapstructure:"default_interval_seconds"`

	LogFile     string `mapstructure:"log_file"`
	AppLogDir   string `mapstructure:"app_log_dir"`
	DatabaseURL string `mapstructure:"database_url"`

	ReadOnly     bool `mapstructure:"read_only"`
	ExposeRawLog bool `mapstructure:"expose_raw_log"`

	RateLimitPerMin int `mapstructure:"rate_limit_per_min"`
	RateLimitBurst  int `mapstructure:"rate_limit_burst"`

	SlackWebhookURL   string        `mapstructure:"slack_webhook_url"`
	NotifyWebhookURL  string        `mapstructure:"notify_webhook_url"`
	AlertOnRecovery   bool          `mapstructure:"alert_on_recovery"`
	AlertCooldown     time.Duration `mapstructure:"alert_cooldown"`
	AlertPollInterval time.Duration `mapstructure:"alert_poll_interval"`
}

// Load reads config.yaml (working directory or configs/) when present,
// then lets CLASHTEST_* environment variables override it.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("configs")

	v.SetEnvPrefix("CLASHTEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", "127.0.0.1:8080")

	v.SetDefault("target_url", "https://www.google.com/generate_204")
	v.SetDefault("probe_timeout", "5s")

	v.SetDefault("default_interval_seconds", 30)

	v.SetDefault("log_file", "connectivity_log.txt")
	v.SetDefault("app_log_dir", "logs")
	v.SetDefault("database_url", "")

	v.SetDefault("read_only", false)
	v.SetDefault("expose_raw_log", true)

	v.SetDefault("rate_limit_per_min", 120)
	v.SetDefault("rate_limit_burst", 60)

	v.SetDefault("slack_webhook_url", "")
	v.SetDefault("notify_webhook_url", "")
	v.SetDefault("alert_on_recovery", true)
	v.SetDefault("alert_cooldown", "10m")
	v.SetDefault("alert_poll_interval", "30s")
}

// normalize rejects settings the monitor cannot run with and clamps
// the rest into their working ranges.
func normalize(cfg *Config) error {
	if cfg.Addr == "" {
		return errors.New("addr is required")
	}
	u, err := url.Parse(cfg.TargetURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("target_url %q is not a usable http(s) URL", cfg.TargetURL)
	}

	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 5 * time.Second
	}
	if cfg.DefaultIntervalSeconds < 1 {
		cfg.DefaultIntervalSeconds = 30
	}
	if cfg.RateLimitPerMin < 0 {
		cfg.RateLimitPerMin = 0
	}
	if cfg.RateLimitPerMin > 0 && cfg.RateLimitBurst < 1 {
		cfg.RateLimitBurst = cfg.RateLimitPerMin
	}
	if cfg.AlertCooldown < 0 {
		cfg.AlertCooldown = 0
	}
	if cfg.AlertPollInterval <= 0 {
		cfg.AlertPollInterval = 30 * time.Second
	}
	return nil
}
