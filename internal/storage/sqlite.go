// Package storage provides SQLite implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/tabiji/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		row_num INTEGER PRIMARY KEY,
		event_name TEXT NOT NULL,
		location TEXT NOT NULL,
		latitude REAL NOT NULL,
		longitude REAL NOT NULL,
		attributes TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_records_location ON records(location COLLATE NOCASE);

	CREATE TABLE IF NOT EXISTS record_columns (
		position INTEGER PRIMARY KEY,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS imports (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		row_count INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_imports_created_at ON imports(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// ReplaceRecords deletes every stored record and inserts ds in row order.
func (s *SQLiteStorage) ReplaceRecords(ctx context.Context, source string, ds *models.Dataset) (*models.Import, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM record_columns`); err != nil {
		return nil, err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (row_num, event_name, location, latitude, longitude, attributes)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	for i := 0; i < ds.Len(); i++ {
		r := ds.At(i)
		var attrs any
		if len(r.Attributes) > 0 {
			b, err := json.Marshal(r.Attributes)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal attributes of row %d: %w", i, err)
			}
			attrs = string(b)
		}
		if _, err := stmt.ExecContext(ctx, r.Index, r.EventName, r.Location, r.Latitude, r.Longitude, attrs); err != nil {
			return nil, err
		}
	}

	for pos, name := range ds.Columns() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO record_columns (position, name) VALUES (?, ?)`, pos, name,
		); err != nil {
			return nil, err
		}
	}

	imp := &models.Import{
		ID:        uuid.NewString(),
		Source:    source,
		Rows:      ds.Len(),
		CreatedAt: time.Now().UTC(),
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO imports (id, source, row_count, created_at) VALUES (?, ?, ?, ?)`,
		imp.ID, imp.Source, imp.Rows, imp.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return imp, nil
}

// ListRecords returns every record ordered by row.
func (s *SQLiteStorage) ListRecords(ctx context.Context) ([]models.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT row_num, event_name, location, latitude, longitude, attributes
		 FROM records ORDER BY row_num`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		var r models.Record
		var attrs sql.NullString
		if err := rows.Scan(&r.Index, &r.EventName, &r.Location, &r.Latitude, &r.Longitude, &attrs); err != nil {
			return nil, err
		}
		if attrs.Valid && attrs.String != "" {
			if err := json.Unmarshal([]byte(attrs.String), &r.Attributes); err != nil {
				return nil, fmt.Errorf("failed to unmarshal attributes of row %d: %w", r.Index, err)
			}
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Columns returns the source column names in their original order.
func (s *SQLiteStorage) Columns(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM record_columns ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// CountRecords returns the total number of records.
func (s *SQLiteStorage) CountRecords(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&count)
	return count, err
}

// LastImport returns the most recent import, or nil when nothing was imported.
func (s *SQLiteStorage) LastImport(ctx context.Context) (*models.Import, error) {
	var imp models.Import
	err := s.db.QueryRowContext(ctx,
		`SELECT id, source, row_count, created_at FROM imports ORDER BY created_at DESC, rowid DESC LIMIT 1`,
	).Scan(&imp.ID, &imp.Source, &imp.Rows, &imp.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &imp, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
