// Package recommend answers event and location queries over a loaded dataset and model bundle.
package recommend

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/tabiji/internal/cache"
	"github.com/hyperjump/tabiji/internal/fuzzy"
	"github.com/hyperjump/tabiji/internal/model"
	"github.com/hyperjump/tabiji/internal/models"
	"github.com/hyperjump/tabiji/pkg/metrics"
)

const cancelCheckInterval = 1024

// noMatch is cached for queries whose best fuzzy score is under the threshold.
const noMatch = -1

// Recommender is the read-only context shared by every request. It is built once at
// startup; the only mutable part is the query cache, which never changes results.
type Recommender struct {
	ds     *models.Dataset
	bundle *model.Bundle

	events         *fuzzy.Choices
	firstEvent     map[string]int
	locations      *fuzzy.Choices
	foldedLocation []string

	cache *cache.LRU[string, int]

	neighbors  int
	candidates int
	limit      int
	threshold  float64
	fallback   string
	cacheSize  int

	logger  *zap.Logger
	metrics *metrics.Manager
}

// New validates bundle against ds and returns a Recommender over both.
func New(ds *models.Dataset, bundle *model.Bundle, opts ...Option) (*Recommender, error) {
	if err := bundle.Validate(ds); err != nil {
		return nil, err
	}
	r := &Recommender{
		ds:         ds,
		bundle:     bundle,
		neighbors:  defaultNeighbors,
		candidates: defaultCandidates,
		limit:      defaultLimit,
		threshold:  defaultScoreThreshold,
		fallback:   FallbackSubstring,
		cacheSize:  defaultCacheSize,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	names := ds.EventNames()
	r.events = fuzzy.NewChoices(names, fuzzy.DefaultProcess)
	r.firstEvent = make(map[string]int, len(names))
	for i, name := range names {
		if _, ok := r.firstEvent[name]; !ok {
			r.firstEvent[name] = i
		}
	}
	locations := ds.LocationNames()
	r.locations = fuzzy.NewChoices(locations, fuzzy.DefaultProcess)
	r.foldedLocation = make([]string, len(locations))
	for i, loc := range locations {
		r.foldedLocation[i] = strings.ToLower(loc)
	}
	r.cache = cache.New[string, int](r.cacheSize)
	return r, nil
}

// Events resolves query to the most similar event name and returns the records nearest
// to it in TF-IDF space, nearest first. The bool is false when no event name scores
// above the threshold.
func (r *Recommender) Events(ctx context.Context, query string) ([]models.Record, bool, error) {
	idx, err := r.resolveEvent(ctx, query)
	if err != nil {
		r.metrics.RecordRecommendation(metrics.KindEvents, metrics.OutcomeError)
		return nil, false, err
	}
	if idx == noMatch {
		r.metrics.RecordRecommendation(metrics.KindEvents, metrics.OutcomeNoMatch)
		return nil, false, nil
	}
	nbrs, err := r.bundle.EventIndex.SearchRow(ctx, idx, r.neighbors)
	if err != nil {
		r.metrics.RecordRecommendation(metrics.KindEvents, metrics.OutcomeError)
		return nil, false, fmt.Errorf("event neighbors of row %d: %w", idx, err)
	}
	rows := make([]int, len(nbrs))
	for i, n := range nbrs {
		rows[i] = n.Row
	}
	r.metrics.RecordRecommendation(metrics.KindEvents, metrics.OutcomeMatch)
	return r.ds.Records(rows), true, nil
}

// resolveEvent returns the row of the first record named like the best fuzzy match for
// query, or noMatch.
func (r *Recommender) resolveEvent(ctx context.Context, query string) (int, error) {
	key := r.events.Process(query)
	if idx, ok := r.cache.Get(key); ok {
		r.metrics.RecordCacheLookup(true)
		return idx, nil
	}
	r.metrics.RecordCacheLookup(false)

	matches, err := fuzzy.Extract(ctx, query, r.events, fuzzy.WRatio, r.candidates)
	if err != nil {
		return 0, err
	}
	if len(matches) == 0 || matches[0].Score <= r.threshold {
		r.logger.Debug("no event match", zap.String("query", query), zap.Int("candidates", len(matches)))
		r.cache.Set(key, noMatch)
		return noMatch, nil
	}
	best := matches[0]
	idx, ok := r.firstEvent[best.Choice]
	if !ok {
		return 0, fmt.Errorf("matched event %q is not in the dataset", best.Choice)
	}
	r.logger.Debug("event match",
		zap.String("query", query),
		zap.String("match", best.Choice),
		zap.Float64("score", best.Score),
		zap.Int("row", idx))
	r.cache.Set(key, idx)
	return idx, nil
}

// Locations returns records for location: exact case-insensitive matches, else records
// near a seed record, else case-insensitive substring matches. No match is an empty
// slice, not an error.
func (r *Recommender) Locations(ctx context.Context, location string) ([]models.Record, error) {
	exact, err := r.scan(ctx, r.ds.Len(), r.limit, func(i int) bool {
		return strings.EqualFold(r.ds.At(i).Location, location)
	})
	if err != nil {
		r.metrics.RecordRecommendation(metrics.KindLocations, metrics.OutcomeError)
		return nil, err
	}
	if len(exact) > 0 {
		r.metrics.RecordRecommendation(metrics.KindLocations, metrics.OutcomeExact)
		return r.ds.Records(exact), nil
	}

	seed, ok, err := r.locationSeed(ctx, location)
	if err != nil {
		r.metrics.RecordRecommendation(metrics.KindLocations, metrics.OutcomeError)
		return nil, err
	}
	if ok {
		nbrs, err := r.bundle.LocationIndex.SearchRow(ctx, seed, r.neighbors)
		if err != nil {
			r.metrics.RecordRecommendation(metrics.KindLocations, metrics.OutcomeError)
			return nil, fmt.Errorf("location neighbors of row %d: %w", seed, err)
		}
		rows := make([]int, len(nbrs))
		for i, n := range nbrs {
			rows[i] = n.Row
		}
		r.metrics.RecordRecommendation(metrics.KindLocations, metrics.OutcomeNearby)
		return r.ds.Records(rows), nil
	}

	folded := strings.ToLower(location)
	substr, err := r.scan(ctx, len(r.foldedLocation), r.limit, func(i int) bool {
		return strings.Contains(r.foldedLocation[i], folded)
	})
	if err != nil {
		r.metrics.RecordRecommendation(metrics.KindLocations, metrics.OutcomeError)
		return nil, err
	}
	if len(substr) == 0 {
		r.metrics.RecordRecommendation(metrics.KindLocations, metrics.OutcomeNoMatch)
	} else {
		r.metrics.RecordRecommendation(metrics.KindLocations, metrics.OutcomeSubstring)
	}
	return r.ds.Records(substr), nil
}

// locationSeed picks the record the coordinate tier searches around.
func (r *Recommender) locationSeed(ctx context.Context, location string) (int, bool, error) {
	if r.fallback == FallbackNearby {
		best, ok, err := fuzzy.ExtractOne(ctx, location, r.locations, fuzzy.WRatio)
		if err != nil || !ok || best.Score <= r.threshold {
			return 0, false, err
		}
		r.logger.Debug("location seed",
			zap.String("location", location),
			zap.String("match", best.Choice),
			zap.Float64("score", best.Score))
		return best.Index, true, nil
	}
	rows, err := r.scan(ctx, r.ds.Len(), 1, func(i int) bool {
		return strings.EqualFold(r.ds.At(i).Location, location)
	})
	if err != nil || len(rows) == 0 {
		return 0, false, err
	}
	return rows[0], true, nil
}

// scan returns the first limit rows below n for which match is true, in row order.
func (r *Recommender) scan(ctx context.Context, n, limit int, match func(i int) bool) ([]int, error) {
	var rows []int
	for i := 0; i < n && len(rows) < limit; i++ {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if match(i) {
			rows = append(rows, i)
		}
	}
	return rows, nil
}

// Status describes the dataset and bundle the recommender serves.
func (r *Recommender) Status() models.Status {
	return models.Status{
		Records:        r.ds.Len(),
		VocabularySize: r.bundle.Vectorizer.VocabularySize(),
		BundleID:       r.bundle.ID,
		BuiltAt:        r.bundle.BuiltAt,
		EventIndex:     r.bundle.EventIndex.Kind(),
		LocationIndex:  r.bundle.LocationIndex.Kind(),
	}
}

// Dataset returns the dataset the recommender serves.
func (r *Recommender) Dataset() *models.Dataset {
	return r.ds
}
