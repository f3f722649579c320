package dataset

import (
	"context"
	"fmt"
	"os"

	"github.com/hyperjump/tabiji/internal/models"
	"github.com/hyperjump/tabiji/internal/storage"
)

// loadSQLite reads a record store written by storage.ReplaceRecords. Column mapping
// was applied at import time, so none is needed here.
func loadSQLite(ctx context.Context, path string) (*models.Dataset, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open record store: %w", err)
	}
	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return FromStorage(ctx, store)
}

// FromStorage loads every stored record in row order.
func FromStorage(ctx context.Context, store storage.Storage) (*models.Dataset, error) {
	records, err := store.ListRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	columns, err := store.Columns(ctx)
	if err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}
	return models.NewDataset(records, columns), nil
}
