// Package storage defines the persistence interface for dataset records.
package storage

import (
	"context"

	"github.com/hyperjump/tabiji/internal/models"
)

// Storage holds one dataset: its records in row order, its column names and a log of
// the imports that replaced it.
type Storage interface {
	// ReplaceRecords swaps the stored dataset for ds in one transaction and logs the import.
	ReplaceRecords(ctx context.Context, source string, ds *models.Dataset) (*models.Import, error)
	ListRecords(ctx context.Context) ([]models.Record, error)
	Columns(ctx context.Context) ([]string, error)
	CountRecords(ctx context.Context) (int64, error)
	LastImport(ctx context.Context) (*models.Import, error)

	Close() error
}
