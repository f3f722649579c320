// Package model builds, persists and validates the fitted artifacts behind the recommenders.
package model

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hyperjump/tabiji/internal/models"
	"github.com/hyperjump/tabiji/internal/neighbors"
	"github.com/hyperjump/tabiji/internal/vectorize"
)

var (
	// ErrIncompleteBundle is returned when a required artifact is missing.
	ErrIncompleteBundle = errors.New("incomplete model bundle")
	// ErrRowMismatch is returned when artifact row counts differ from the dataset.
	ErrRowMismatch = errors.New("model bundle rows do not match dataset")
	// ErrBadBundle is returned when a bundle file cannot be decoded.
	ErrBadBundle = errors.New("unreadable model bundle")
	// ErrEmptyDataset is returned when building from a dataset with no records.
	ErrEmptyDataset = errors.New("dataset has no records")
)

// Bundle holds the four fitted artifacts. All are required and row-aligned with the
// dataset they were built from.
type Bundle struct {
	ID            string
	BuiltAt       time.Time
	Vectorizer    *vectorize.TfidfVectorizer
	EventMatrix   *vectorize.Matrix
	EventIndex    *neighbors.SparseIndex
	LocationIndex *neighbors.HaversineIndex
}

// Option configures Build.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger sets a logger for build progress.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Build fits the vectorizer on event names and both neighbor indexes. The event and
// location sides are fitted concurrently.
func Build(ctx context.Context, ds *models.Dataset, opts ...Option) (*Bundle, error) {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if ds.Len() == 0 {
		return nil, ErrEmptyDataset
	}
	start := time.Now()

	b := &Bundle{ID: uuid.NewString(), BuiltAt: start.UTC()}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v := vectorize.NewTfidfVectorizer()
		m, err := v.FitTransform(ds.EventNames())
		if err != nil {
			return fmt.Errorf("fit vectorizer: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		idx, err := neighbors.NewSparseIndex(m)
		if err != nil {
			return fmt.Errorf("fit event index: %w", err)
		}
		b.Vectorizer, b.EventMatrix, b.EventIndex = v, m, idx
		return nil
	})
	g.Go(func() error {
		points := make([]neighbors.Point, ds.Len())
		for i := range points {
			r := ds.At(i)
			points[i] = neighbors.PointFromDegrees(r.Latitude, r.Longitude)
		}
		idx, err := neighbors.NewHaversineIndex(points)
		if err != nil {
			return fmt.Errorf("fit location index: %w", err)
		}
		b.LocationIndex = idx
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	o.logger.Info("model built",
		zap.String("bundle_id", b.ID),
		zap.Int("records", ds.Len()),
		zap.Int("vocabulary", b.Vectorizer.VocabularySize()),
		zap.Duration("elapsed", time.Since(start)))
	return b, nil
}

// Validate checks that every artifact is present and row-aligned with ds.
func (b *Bundle) Validate(ds *models.Dataset) error {
	if b == nil {
		return fmt.Errorf("%w: nil bundle", ErrIncompleteBundle)
	}
	var missing []string
	if !b.Vectorizer.Fitted() {
		missing = append(missing, "vectorizer")
	}
	if b.EventMatrix == nil {
		missing = append(missing, "event matrix")
	}
	if b.EventIndex == nil {
		missing = append(missing, "event index")
	}
	if b.LocationIndex == nil {
		missing = append(missing, "location index")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncompleteBundle, strings.Join(missing, ", "))
	}

	want := ds.Len()
	for _, c := range []struct {
		name string
		rows int
	}{
		{"event matrix", b.EventMatrix.Rows()},
		{"event index", b.EventIndex.Len()},
		{"location index", b.LocationIndex.Len()},
	} {
		if c.rows != want {
			return fmt.Errorf("%w: %s has %d rows, dataset has %d", ErrRowMismatch, c.name, c.rows, want)
		}
	}
	if b.EventMatrix.Cols != b.Vectorizer.VocabularySize() {
		return fmt.Errorf("%w: event matrix has %d columns, vocabulary has %d terms",
			ErrRowMismatch, b.EventMatrix.Cols, b.Vectorizer.VocabularySize())
	}
	return nil
}
