package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 9000
data:
  path: "/srv/events.csv"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Data.Path != "/srv/events.csv" {
		t.Errorf("data path = %s", cfg.Data.Path)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
	if cfg.Recommend.LocationFallback != FallbackSubstring {
		t.Errorf("location_fallback = %q, want %q", cfg.Recommend.LocationFallback, FallbackSubstring)
	}
}

func TestLoad_debugTrue(t *testing.T) {
	path := writeConfig(t, `
debug: true
server:
  port: 8080
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug should be true when set in config")
	}
}

func TestLoad_missingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoad_invalidFallback(t *testing.T) {
	path := writeConfig(t, `
recommend:
  location_fallback: "teleport"
`)
	if _, err := Load(path); err == nil {
		t.Error("expected error for unknown location_fallback")
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	path := writeConfig(t, `
data:
  path: "./data/locations.csv"
model:
  bundle_path: "./data/models/bundle.tbj"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	dir := filepath.Dir(path)
	if want := filepath.Join(dir, "data", "locations.csv"); cfg.Data.Path != want {
		t.Errorf("data.path = %s, want %s", cfg.Data.Path, want)
	}
	if want := filepath.Join(dir, "data", "models", "bundle.tbj"); cfg.Model.BundlePath != want {
		t.Errorf("model.bundle_path = %s, want %s", cfg.Model.BundlePath, want)
	}
}

func TestLoad_envOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
recommend:
  neighbors: 3
`)
	t.Setenv("TABIJI_SERVER__PORT", "9100")
	t.Setenv("TABIJI_RECOMMEND__LOCATION_FALLBACK", "nearby")
	t.Setenv("TABIJI_DEBUG", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("port = %d, want 9100 from env", cfg.Server.Port)
	}
	if cfg.Recommend.LocationFallback != FallbackNearby {
		t.Errorf("location_fallback = %q, want nearby", cfg.Recommend.LocationFallback)
	}
	if !cfg.Debug {
		t.Error("debug should be true from env")
	}
	if cfg.Recommend.Neighbors != 3 {
		t.Errorf("neighbors = %d, file value should survive env layering", cfg.Recommend.Neighbors)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Port != 8000 {
		t.Errorf("default port: got %d", cfg.Server.Port)
	}
	if cfg.Data.Columns.EventName != "Event Name" || cfg.Data.Columns.Location != "Location" {
		t.Errorf("default columns: got %+v", cfg.Data.Columns)
	}
	if cfg.Recommend.Neighbors != 5 || cfg.Recommend.Candidates != 5 || cfg.Recommend.Limit != 5 {
		t.Errorf("default recommend sizes: got %+v", cfg.Recommend)
	}
	if cfg.Recommend.ScoreThreshold == nil || *cfg.Recommend.ScoreThreshold != 50 {
		t.Errorf("default score_threshold: got %v", cfg.Recommend.ScoreThreshold)
	}
	if cfg.Server.CORS.AllowCredentials == nil || !*cfg.Server.CORS.AllowCredentials {
		t.Error("allow_credentials should default to true")
	}
	if cfg.Server.RateLimit.WindowSeconds != 0 {
		t.Error("rate limit window should stay unset when limiting is disabled")
	}
}

func TestApplyDefaults_RateLimitWindow(t *testing.T) {
	cfg := &Config{Server: ServerConfig{RateLimit: RateLimitConfig{Requests: 10}}}
	ApplyDefaults(cfg)
	if cfg.Server.RateLimit.WindowSeconds != 60 {
		t.Errorf("window_seconds = %d, want 60", cfg.Server.RateLimit.WindowSeconds)
	}
}

func TestModelConfig_BuildOnStartOrDefault(t *testing.T) {
	t.Run("nil_returns_true", func(t *testing.T) {
		m := &ModelConfig{}
		if !m.BuildOnStartOrDefault() {
			t.Error("BuildOnStartOrDefault() = false, want true")
		}
	})
	t.Run("false_returns_false", func(t *testing.T) {
		f := false
		m := &ModelConfig{BuildOnStart: &f}
		if m.BuildOnStartOrDefault() {
			t.Error("BuildOnStartOrDefault() = true, want false")
		}
	})
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "saved.yaml")
	cfg := Default()
	cfg.Server.Port = 9090
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("loaded port: got %d", loaded.Server.Port)
	}
}

func TestLoad_scoreThreshold(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    float64
		wantErr bool
	}{
		{"unset uses default", "server:\n  port: 8000\n", 50, false},
		{"explicit zero is kept", "recommend:\n  score_threshold: 0\n", 0, false},
		{"explicit value", "recommend:\n  score_threshold: 72.5\n", 72.5, false},
		{"above range", "recommend:\n  score_threshold: 101\n", 0, true},
		{"negative", "recommend:\n  score_threshold: -1\n", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.content))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got := cfg.Recommend.ScoreThresholdOrDefault(); got != tt.want {
				t.Errorf("score threshold = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoad_scoreThresholdZeroFromEnv(t *testing.T) {
	path := writeConfig(t, "recommend:\n  score_threshold: 60\n")
	t.Setenv("TABIJI_RECOMMEND__SCORE_THRESHOLD", "0")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := cfg.Recommend.ScoreThresholdOrDefault(); got != 0 {
		t.Errorf("score threshold = %v, want 0 from environment", got)
	}
}
