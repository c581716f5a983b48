package common

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	if cfg.Matcher.FuzzyThreshold != 0.8 {
		t.Errorf("fuzzy threshold = %v, want 0.8", cfg.Matcher.FuzzyThreshold)
	}
	if cfg.Matcher.MinWorkItemID != 1000 || cfg.Matcher.MaxWorkItemID != 999999 {
		t.Errorf("id bounds = [%d, %d], want [1000, 999999]", cfg.Matcher.MinWorkItemID, cfg.Matcher.MaxWorkItemID)
	}
	if len(cfg.Matcher.TypePreference) == 0 || cfg.Matcher.TypePreference[0] != "Bug" {
		t.Errorf("type preference = %v, want Bug first", cfg.Matcher.TypePreference)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"threshold above one", func(c *Config) { c.Matcher.FuzzyThreshold = 1.2 }},
		{"negative threshold", func(c *Config) { c.Matcher.FuzzyThreshold = -0.5 }},
		{"zero min id", func(c *Config) { c.Matcher.MinWorkItemID = 0 }},
		{"max below min", func(c *Config) { c.Matcher.MaxWorkItemID = 10 }},
		{"empty type preference", func(c *Config) { c.Matcher.TypePreference = nil }},
		{"zero clockify page size", func(c *Config) { c.Clockify.PageSize = 0 }},
		{"negative clockify page size", func(c *Config) { c.Clockify.PageSize = -50 }},
		{"zero devops batch size", func(c *Config) { c.DevOps.BatchSize = 0 }},
		{"negative devops batch size", func(c *Config) { c.DevOps.BatchSize = -1 }},
		{"unknown report format", func(c *Config) { c.Report.Formats = []string{"pdf"} }},
		{"unknown log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"unknown log output", func(c *Config) { c.Logging.Output = "syslog" }},
		{"empty database path", func(c *Config) { c.Storage.DatabasePath = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("Validate accepted %s", tt.name)
			}
		})
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[reconciler]
name = "worklog-reconciler"
port = 9090

[matcher]
fuzzy_enabled = false
fuzzy_threshold = 0.9
min_work_item_id = 2000
max_work_item_id = 500000
type_preference = ["Task", "Bug"]

[report]
formats = ["csv", "xlsx"]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Reconciler.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Reconciler.Port)
	}
	if cfg.Matcher.FuzzyEnabled || cfg.Matcher.FuzzyThreshold != 0.9 {
		t.Errorf("matcher = %+v, want fuzzy disabled at threshold 0.9", cfg.Matcher)
	}
	if cfg.Matcher.MinWorkItemID != 2000 || cfg.Matcher.MaxWorkItemID != 500000 {
		t.Errorf("id bounds = [%d, %d], want [2000, 500000]", cfg.Matcher.MinWorkItemID, cfg.Matcher.MaxWorkItemID)
	}
	if len(cfg.Report.Formats) != 2 || cfg.Report.Formats[0] != "csv" {
		t.Errorf("formats = %v, want [csv xlsx]", cfg.Report.Formats)
	}

	// Untouched sections keep their defaults
	if cfg.Clockify.BaseURL != "https://api.clockify.me/api/v1" {
		t.Errorf("clockify base url = %s, want default", cfg.Clockify.BaseURL)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("LoadConfig succeeded for a missing explicit path")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CLOCKIFY_API_KEY", "key-from-env")
	t.Setenv("ADO_ORGANIZATION", "contoso")
	t.Setenv("SERVER_PORT", "7070")

	cfg := DefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Clockify.APIKey != "key-from-env" {
		t.Errorf("api key = %s, want env override", cfg.Clockify.APIKey)
	}
	if cfg.DevOps.Organization != "contoso" {
		t.Errorf("organization = %s, want contoso", cfg.DevOps.Organization)
	}
	if cfg.Reconciler.Port != 7070 {
		t.Errorf("port = %d, want 7070", cfg.Reconciler.Port)
	}
}
