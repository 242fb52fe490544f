package config_test

import (
	"testing"
	"time"

	"github.com/neosoob/clash-test/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != "127.0.0.1:8080" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.TargetURL != "https://www.google.com/generate_204" {
		t.Errorf("TargetURL = %q", cfg.TargetURL)
	}
	if cfg.ProbeTimeout != 5*time.Second {
		t.Errorf("ProbeTimeout = %v", cfg.ProbeTimeout)
	}
	if cfg.DefaultIntervalSeconds != 30 {
		t.Errorf("DefaultIntervalSeconds = %d", cfg.DefaultIntervalSeconds)
	}
	if cfg.LogFile != "connectivity_log.txt" {
		t.Errorf("LogFile = %q", cfg.LogFile)
	}
	if cfg.DatabaseURL != "" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.ReadOnly {
		t.Error("ReadOnly should default to false")
	}
	if !cfg.ExposeRawLog {
		t.Error("ExposeRawLog should default to true")
	}
	if !cfg.AlertOnRecovery {
		t.Error("AlertOnRecovery should default to true")
	}
	if cfg.AlertCooldown != 10*time.Minute {
		t.Errorf("AlertCooldown = %v", cfg.AlertCooldown)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CLASHTEST_ADDR", "0.0.0.0:9090")
	t.Setenv("CLASHTEST_TARGET_URL", "http://router.local/ping")
	t.Setenv("CLASHTEST_PROBE_TIMEOUT", "10s")
	t.Setenv("CLASHTEST_DEFAULT_INTERVAL_SECONDS", "120")
	t.Setenv("CLASHTEST_LOG_FILE", "/var/log/clash-test/probes.txt")
	t.Setenv("CLASHTEST_READ_ONLY", "true")
	t.Setenv("CLASHTEST_EXPOSE_RAW_LOG", "false")
	t.Setenv("CLASHTEST_SLACK_WEBHOOK_URL", "https://hooks.slack.com/services/T/B/X")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != "0.0.0.0:9090" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.TargetURL != "http://router.local/ping" {
		t.Errorf("TargetURL = %q", cfg.TargetURL)
	}
	if cfg.ProbeTimeout != 10*time.Second {
		t.Errorf("ProbeTimeout = %v", cfg.ProbeTimeout)
	}
	if cfg.DefaultIntervalSeconds != 120 {
		t.Errorf("DefaultIntervalSeconds = %d", cfg.DefaultIntervalSeconds)
	}
	if cfg.LogFile != "/var/log/clash-test/probes.txt" {
		t.Errorf("LogFile = %q", cfg.LogFile)
	}
	if !cfg.ReadOnly {
		t.Error("ReadOnly should be true")
	}
	if cfg.ExposeRawLog {
		t.Error("ExposeRawLog should be false")
	}
	if cfg.SlackWebhookURL != "https://hooks.slack.com/services/T/B/X" {
		t.Errorf("SlackWebhookURL = %q", cfg.SlackWebhookURL)
	}
}

func TestLoadRejectsBadTargetURL(t *testing.T) {
	t.Setenv("CLASHTEST_TARGET_URL", "not a url")
	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for unparseable target_url")
	}

	t.Setenv("CLASHTEST_TARGET_URL", "ftp://example.com/file")
	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for non-http scheme")
	}
}

func TestLoadClampsValues(t *testing.T) {
	t.Setenv("CLASHTEST_DEFAULT_INTERVAL_SECONDS", "0")
	t.Setenv("CLASHTEST_PROBE_TIMEOUT", "0s")
	t.Setenv("CLASHTEST_RATE_LIMIT_PER_MIN", "10")
	t.Setenv("CLASHTEST_RATE_LIMIT_BURST", "0")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultIntervalSeconds != 30 {
		t.Errorf("DefaultIntervalSeconds = %d, want default 30", cfg.DefaultIntervalSeconds)
	}
	if cfg.ProbeTimeout != 5*time.Second {
		t.Errorf("ProbeTimeout = %v, want default 5s", cfg.ProbeTimeout)
	}
	if cfg.RateLimitBurst != 10 {
		t.Errorf("RateLimitBurst = %d, want rate_limit_per_min", cfg.RateLimitBurst)
	}
}
