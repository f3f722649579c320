// Package config provides configuration loading and structs for the tabiji server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"

	"github.com/hyperjump/tabiji/internal/recommend"
)

// EnvPrefix is the prefix of environment variables that override file settings.
// Nested keys are separated by a double underscore: TABIJI_SERVER__PORT=9000.
const EnvPrefix = "TABIJI_"

// Location fallback modes.
const (
	FallbackSubstring = recommend.FallbackSubstring
	FallbackNearby    = recommend.FallbackNearby
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug" koanf:"debug"`
	Server    ServerConfig    `yaml:"server" koanf:"server"`
	Data      DataConfig      `yaml:"data" koanf:"data"`
	Storage   StorageConfig   `yaml:"storage" koanf:"storage"`
	Model     ModelConfig     `yaml:"model" koanf:"model"`
	Recommend RecommendConfig `yaml:"recommend" koanf:"recommend"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string          `yaml:"host" koanf:"host"`
	Port           int             `yaml:"port" koanf:"port"`
	TimeoutSeconds int             `yaml:"timeout_seconds" koanf:"timeout_seconds"`
	CORS           CORSConfig      `yaml:"cors" koanf:"cors"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" koanf:"rate_limit"`
}

// CORSConfig holds cross-origin settings. Empty origins means allow all.
type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins" koanf:"allowed_origins"`
	AllowCredentials *bool    `yaml:"allow_credentials" koanf:"allow_credentials"`
}

// RateLimitConfig limits requests per client IP. Requests <= 0 disables limiting.
type RateLimitConfig struct {
	Requests      int `yaml:"requests" koanf:"requests"`
	WindowSeconds int `yaml:"window_seconds" koanf:"window_seconds"`
}

// DataConfig describes where the dataset lives and how its columns are named.
type DataConfig struct {
	Path    string        `yaml:"path" koanf:"path"`
	Format  string        `yaml:"format" koanf:"format"`
	Sheet   string        `yaml:"sheet" koanf:"sheet"`
	Columns ColumnsConfig `yaml:"columns" koanf:"columns"`
}

// ColumnsConfig maps record fields to source column names.
type ColumnsConfig struct {
	EventName string `yaml:"event_name" koanf:"event_name"`
	Location  string `yaml:"location" koanf:"location"`
	Latitude  string `yaml:"latitude" koanf:"latitude"`
	Longitude string `yaml:"longitude" koanf:"longitude"`
}

// StorageConfig holds the SQLite database used by "tabiji import".
type StorageConfig struct {
	DatabasePath string `yaml:"database_path" koanf:"database_path"`
}

// ModelConfig holds model bundle settings.
type ModelConfig struct {
	BundlePath   string `yaml:"bundle_path" koanf:"bundle_path"`
	BuildOnStart *bool  `yaml:"build_on_start" koanf:"build_on_start"`
}

// BuildOnStartOrDefault returns whether a missing bundle is built at startup; defaults to true.
func (m *ModelConfig) BuildOnStartOrDefault() bool {
	if m.BuildOnStart != nil {
		return *m.BuildOnStart
	}
	return true
}

// RecommendConfig holds recommender tuning.
type RecommendConfig struct {
	Neighbors        int      `yaml:"neighbors" koanf:"neighbors"`
	Candidates       int      `yaml:"candidates" koanf:"candidates"`
	ScoreThreshold   *float64 `yaml:"score_threshold" koanf:"score_threshold"`
	Limit            int      `yaml:"limit" koanf:"limit"`
	LocationFallback string   `yaml:"location_fallback" koanf:"location_fallback"`
	CacheSize        int      `yaml:"cache_size" koanf:"cache_size"`
}

// ScoreThresholdOrDefault returns the fuzzy score a best match must exceed; defaults to 50.
// An explicit 0 accepts any match with a positive score.
func (r *RecommendConfig) ScoreThresholdOrDefault() float64 {
	if r.ScoreThreshold != nil {
		return *r.ScoreThreshold
	}
	return defaultScoreThreshold
}

// Load reads and parses the config file at path, applies TABIJI_ environment overrides,
// expands paths, and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := applyEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment: %w", err)
	}

	ApplyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configDir := filepath.Dir(path)
	cfg.Data.Path = expandPath(cfg.Data.Path, configDir)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Model.BundlePath = expandPath(cfg.Model.BundlePath, configDir)

	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate reports settings that defaults cannot repair.
func (c *Config) Validate() error {
	switch c.Recommend.LocationFallback {
	case FallbackSubstring, FallbackNearby:
	default:
		return fmt.Errorf("invalid recommend.location_fallback %q (supported: %s, %s)",
			c.Recommend.LocationFallback, FallbackSubstring, FallbackNearby)
	}
	if t := c.Recommend.ScoreThresholdOrDefault(); t < 0 || t > 100 {
		return fmt.Errorf("recommend.score_threshold must be within 0-100, got %v", t)
	}
	return nil
}

// applyEnv layers TABIJI_* variables over cfg. Only keys present in the environment change.
func applyEnv(cfg *Config) error {
	k := koanf.New(".")
	provider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	})
	if err := k.Load(provider, nil); err != nil {
		return err
	}
	if len(k.Keys()) == 0 {
		return nil
	}
	return k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"})
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
