package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("config-does-not-exist")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.AppName != "catalog-service" {
		t.Errorf("Expected app name 'catalog-service', got %q", cfg.AppName)
	}
	if cfg.Export.IntervalS != 3600 {
		t.Errorf("Expected default interval 3600, got %d", cfg.Export.IntervalS)
	}
	if cfg.Export.Language != "en" {
		t.Errorf("Expected default language 'en', got %q", cfg.Export.Language)
	}
	if cfg.Export.RunTimeout != 15*time.Minute {
		t.Errorf("Expected default run timeout 15m, got %v", cfg.Export.RunTimeout)
	}
	if cfg.Export.ThreadCount != 1 {
		t.Errorf("Expected default thread count 1, got %d", cfg.Export.ThreadCount)
	}
	if cfg.S3.Host != "s3.amazonaws.com" {
		t.Errorf("Expected default S3 host, got %q", cfg.S3.Host)
	}
	if cfg.ExportConfigured() {
		t.Error("Expected export to be unconfigured by default")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("EXPORT_ENABLED", "true")
	t.Setenv("EXPORT_INTERVAL_S", "600")
	t.Setenv("EXPORT_LANGUAGE", "ru")
	t.Setenv("EXPORT_RUN_TIMEOUT", "2m")
	t.Setenv("EXPORT_THREAD_COUNT", "3")
	t.Setenv("S3_REGION", "eu-west-1")
	t.Setenv("S3_BUCKET", "catalogs")
	t.Setenv("S3_KEY", "key")
	t.Setenv("S3_SECRET", "secret")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load("config-does-not-exist")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.ExportInterval() != 10*time.Minute {
		t.Errorf("Expected 10m interval, got %v", cfg.ExportInterval())
	}
	if cfg.Export.Language != "ru" {
		t.Errorf("Expected language 'ru', got %q", cfg.Export.Language)
	}
	if cfg.Export.RunTimeout != 2*time.Minute {
		t.Errorf("Expected run timeout 2m, got %v", cfg.Export.RunTimeout)
	}
	if cfg.ExportPoolSize() != 4 {
		t.Errorf("Expected worker pool size 4, got %d", cfg.ExportPoolSize())
	}
	if !cfg.ExportConfigured() {
		t.Error("Expected export to be configured")
	}
	if len(cfg.Kafka.Brokers) != 2 {
		t.Errorf("Expected 2 brokers, got %v", cfg.Kafka.Brokers)
	}
}

func TestConfig_ExportConfigured(t *testing.T) {
	configured := func() *Config {
		var c Config
		c.Export.Enabled = true
		c.Export.FileName = "catalog"
		c.S3.Region = "eu-west-1"
		c.S3.Bucket = "catalogs"
		c.S3.Key = "key"
		c.S3.Secret = "secret"
		return &c
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   bool
	}{
		{"complete", func(c *Config) {}, true},
		{"disabled", func(c *Config) { c.Export.Enabled = false }, false},
		{"no bucket", func(c *Config) { c.S3.Bucket = "" }, false},
		{"no key", func(c *Config) { c.S3.Key = "" }, false},
		{"no secret", func(c *Config) { c.S3.Secret = "" }, false},
		{"no region", func(c *Config) { c.S3.Region = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := configured()
			tt.mutate(c)
			if got := c.ExportConfigured(); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestConfig_ExportIntervalDefault(t *testing.T) {
	var c Config
	if got := c.ExportInterval(); got != time.Hour {
		t.Errorf("Expected 1h for unset interval, got %v", got)
	}
}

func TestConfig_ExportPoolSize(t *testing.T) {
	tests := []struct {
		threads int
		want    int
	}{
		{0, 2},
		{1, 2},
		{4, 5},
		{-3, 2},
	}

	for _, tt := range tests {
		var c Config
		c.Export.ThreadCount = tt.threads
		if got := c.ExportPoolSize(); got != tt.want {
			t.Errorf("Expected pool size %d for %d threads, got %d", tt.want, tt.threads, got)
		}
	}
}
