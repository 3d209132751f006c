package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestLoad тестирует загрузку YAML конфигурации с подстановкой ENV.
func TestLoad(t *testing.T) {
	content := `
garage61:
  token: ${TEST_G61_TOKEN}
  rate_limit: 30

cache:
  staleness_ttl: 5m

matcher:
  accept_threshold: 0.5

tools:
  list_cars:
    limit: 10
  get_team_fastest_lap:
    enabled: false

app:
  debug: true
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	t.Setenv("TEST_G61_TOKEN", "secret-token")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Garage61.Token != "secret-token" {
		t.Errorf("expected env-expanded token, got %q", cfg.Garage61.Token)
	}
	if cfg.Garage61.RateLimit != 30 {
		t.Errorf("expected rate_limit 30, got %d", cfg.Garage61.RateLimit)
	}
	if cfg.Cache.TTL() != 5*time.Minute {
		t.Errorf("expected ttl 5m, got %v", cfg.Cache.TTL())
	}
	if cfg.Matcher.AcceptThreshold != 0.5 {
		t.Errorf("expected accept_threshold 0.5, got %v", cfg.Matcher.AcceptThreshold)
	}
	if !cfg.App.Debug {
		t.Error("expected debug true")
	}

	if got := cfg.GetTool("list_cars").Limit; got != 10 {
		t.Errorf("expected list_cars limit 10, got %d", got)
	}
	if cfg.GetTool("get_team_fastest_lap").IsEnabled() {
		t.Error("expected get_team_fastest_lap disabled")
	}
	if !cfg.GetTool("list_tracks").IsEnabled() {
		t.Error("unconfigured tool must default to enabled")
	}
}

// TestLoadMissingFile тестирует ошибку при отсутствии файла.
func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

// TestLoadRequiresToken тестирует обязательность токена.
func TestLoadRequiresToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("garage61:\n  base_url: https://example.com\n"), 0644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for missing token")
	}
}

// TestLoadFromEnv тестирует минимальную конфигурацию из окружения.
func TestLoadFromEnv(t *testing.T) {
	t.Setenv("GARAGE61_TOKEN", "env-token")
	t.Setenv("GARAGE61_BASE_URL", "https://staging.garage61.net/api/v1")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}
	if cfg.Garage61.Token != "env-token" {
		t.Errorf("expected env token, got %q", cfg.Garage61.Token)
	}
	if cfg.Garage61.BaseURL != "https://staging.garage61.net/api/v1" {
		t.Errorf("unexpected base url: %q", cfg.Garage61.BaseURL)
	}
}

// TestGarage61Defaults тестирует заполнение дефолтов.
func TestGarage61Defaults(t *testing.T) {
	cfg := Garage61Config{Token: "x"}
	d := cfg.GetDefaults()

	if d.BaseURL != "https://garage61.net/api/v1" {
		t.Errorf("unexpected default base url: %q", d.BaseURL)
	}
	if d.RateLimit != 60 || d.BurstLimit != 5 || d.RetryAttempts != 3 {
		t.Errorf("unexpected defaults: %+v", d)
	}
	if d.Timeout != "30s" {
		t.Errorf("unexpected default timeout: %q", d.Timeout)
	}
	if d.Token != "x" {
		t.Error("defaults must not overwrite set values")
	}
}

// TestCacheTTLFallback тестирует дефолт TTL при невалидном значении.
func TestCacheTTLFallback(t *testing.T) {
	tests := []struct {
		ttl  string
		want time.Duration
	}{
		{"", 15 * time.Minute},
		{"garbage", 15 * time.Minute},
		{"1h", time.Hour},
	}

	for _, tt := range tests {
		c := CacheConfig{StalenessTTL: tt.ttl}
		if got := c.TTL(); got != tt.want {
			t.Errorf("TTL(%q) = %v, want %v", tt.ttl, got, tt.want)
		}
	}
}

// TestMatcherDefaults тестирует дефолты матчера.
func TestMatcherDefaults(t *testing.T) {
	d := (&MatcherConfig{}).GetDefaults()

	if d.AcceptThreshold != 0.4 {
		t.Errorf("unexpected accept_threshold: %v", d.AcceptThreshold)
	}
	if d.MaxAlternatives != 5 {
		t.Errorf("unexpected max_alternatives: %d", d.MaxAlternatives)
	}
	if d.GenerationWeight != 0.15 || d.VariantWeight != 0.1 {
		t.Errorf("unexpected weights: %+v", d)
	}
}
