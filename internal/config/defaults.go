package config

const defaultScoreThreshold = 50.0

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.TimeoutSeconds == 0 {
		cfg.Server.TimeoutSeconds = 30
	}
	// Wildcard origins with credentials, matching the browser frontend this serves.
	if cfg.Server.CORS.AllowCredentials == nil {
		t := true
		cfg.Server.CORS.AllowCredentials = &t
	}
	if cfg.Server.RateLimit.Requests > 0 && cfg.Server.RateLimit.WindowSeconds == 0 {
		cfg.Server.RateLimit.WindowSeconds = 60
	}
	if cfg.Data.Path == "" {
		cfg.Data.Path = "/usr/local/var/tabiji/data/locations.csv"
	}
	if cfg.Data.Columns.EventName == "" {
		cfg.Data.Columns.EventName = "Event Name"
	}
	if cfg.Data.Columns.Location == "" {
		cfg.Data.Columns.Location = "Location"
	}
	if cfg.Data.Columns.Latitude == "" {
		cfg.Data.Columns.Latitude = "Latitude"
	}
	if cfg.Data.Columns.Longitude == "" {
		cfg.Data.Columns.Longitude = "Longitude"
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/tabiji/data/db/records.db"
	}
	if cfg.Model.BundlePath == "" {
		cfg.Model.BundlePath = "/usr/local/var/tabiji/data/models/bundle.tbj"
	}
	if cfg.Recommend.Neighbors == 0 {
		cfg.Recommend.Neighbors = 5
	}
	if cfg.Recommend.Candidates == 0 {
		cfg.Recommend.Candidates = 5
	}
	if cfg.Recommend.ScoreThreshold == nil {
		t := defaultScoreThreshold
		cfg.Recommend.ScoreThreshold = &t
	}
	if cfg.Recommend.Limit == 0 {
		cfg.Recommend.Limit = 5
	}
	if cfg.Recommend.LocationFallback == "" {
		cfg.Recommend.LocationFallback = FallbackSubstring
	}
	if cfg.Recommend.CacheSize == 0 {
		cfg.Recommend.CacheSize = 1024
	}
}

// Default returns a config with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
