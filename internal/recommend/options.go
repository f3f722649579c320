package recommend

import (
	"go.uber.org/zap"

	"github.com/hyperjump/tabiji/pkg/metrics"
)

// Location fallback modes.
const (
	// FallbackSubstring goes from the exact tier straight to the substring tier. The
	// coordinate tier is only reached with a seed that equals the query exactly, which
	// the exact tier has already ruled out.
	FallbackSubstring = "substring"
	// FallbackNearby seeds the coordinate tier with the best fuzzy match among location
	// names, so a close spelling returns geographically nearby records.
	FallbackNearby = "nearby"
)

const (
	defaultNeighbors      = 5
	defaultCandidates     = 5
	defaultLimit          = 5
	defaultScoreThreshold = 50.0
	defaultCacheSize      = 1024
)

// Option configures a Recommender.
type Option func(*Recommender)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(r *Recommender) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMetrics sets the metrics manager that recommendation outcomes are counted on.
func WithMetrics(m *metrics.Manager) Option {
	return func(r *Recommender) { r.metrics = m }
}

// WithNeighbors sets how many nearest neighbors are returned.
func WithNeighbors(k int) Option {
	return func(r *Recommender) {
		if k > 0 {
			r.neighbors = k
		}
	}
}

// WithCandidates sets how many fuzzy candidates are ranked before the best is taken.
func WithCandidates(n int) Option {
	return func(r *Recommender) {
		if n > 0 {
			r.candidates = n
		}
	}
}

// WithLimit sets how many records the exact and substring location tiers return.
func WithLimit(n int) Option {
	return func(r *Recommender) {
		if n > 0 {
			r.limit = n
		}
	}
}

// WithScoreThreshold sets the fuzzy score a best match must exceed (0-100).
func WithScoreThreshold(t float64) Option {
	return func(r *Recommender) {
		if t >= 0 && t <= 100 {
			r.threshold = t
		}
	}
}

// WithLocationFallback selects FallbackSubstring or FallbackNearby.
func WithLocationFallback(mode string) Option {
	return func(r *Recommender) {
		if mode == FallbackSubstring || mode == FallbackNearby {
			r.fallback = mode
		}
	}
}

// WithCacheSize sets the capacity of the event query cache; 0 disables it.
func WithCacheSize(n int) Option {
	return func(r *Recommender) {
		if n >= 0 {
			r.cacheSize = n
		}
	}
}
