// Package dataset loads the record table from CSV, XLSX or SQLite sources.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hyperjump/tabiji/internal/models"
)

var (
	// ErrMissingColumn is returned when a required column is absent from the header.
	ErrMissingColumn = errors.New("missing required column")
	// ErrBadRow is returned when a row cannot be parsed, e.g. a non-numeric latitude.
	ErrBadRow = errors.New("bad row")
	// ErrUnsupportedFormat is returned for sources that are not CSV, XLSX or SQLite.
	ErrUnsupportedFormat = errors.New("unsupported data format")
)

// Supported formats.
const (
	FormatCSV    = "csv"
	FormatXLSX   = "xlsx"
	FormatSQLite = "sqlite"
)

// Columns maps the four required fields to header names in the source.
type Columns struct {
	EventName string
	Location  string
	Latitude  string
	Longitude string
}

// DefaultColumns returns the header names used when none are configured.
func DefaultColumns() Columns {
	return Columns{
		EventName: "Event Name",
		Location:  "Location",
		Latitude:  "Latitude",
		Longitude: "Longitude",
	}
}

func (c Columns) withDefaults() Columns {
	d := DefaultColumns()
	if c.EventName == "" {
		c.EventName = d.EventName
	}
	if c.Location == "" {
		c.Location = d.Location
	}
	if c.Latitude == "" {
		c.Latitude = d.Latitude
	}
	if c.Longitude == "" {
		c.Longitude = d.Longitude
	}
	return c
}

// Source describes where to load records from. An empty Format is inferred from the
// file extension. Sheet selects the XLSX worksheet (default: first sheet).
type Source struct {
	Path    string
	Format  string
	Sheet   string
	Columns Columns
}

// Load reads every row of src in file order.
func Load(ctx context.Context, src Source) (*models.Dataset, error) {
	format, err := ResolveFormat(src.Path, src.Format)
	if err != nil {
		return nil, err
	}
	cols := src.Columns.withDefaults()
	switch format {
	case FormatCSV:
		return loadCSV(ctx, src.Path, cols)
	case FormatXLSX:
		return loadXLSX(ctx, src.Path, src.Sheet, cols)
	default:
		return loadSQLite(ctx, src.Path)
	}
}

// ResolveFormat returns format when set, otherwise the format implied by path's extension.
func ResolveFormat(path, format string) (string, error) {
	if format != "" {
		switch f := strings.ToLower(format); f {
		case FormatCSV, FormatXLSX, FormatSQLite:
			return f, nil
		default:
			return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
		}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}
