// Package cli provides CLI output for tabiji.
package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/hyperjump/tabiji/internal/models"
	"github.com/hyperjump/tabiji/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is the same JSON the HTTP API returns.
	OutputJSON OutputFormat = "json"
)

const maxNameLen = 60

// ParseOutputFormat returns the OutputFormat named by s.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputText, OutputJSON:
		return OutputFormat(s), nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

// WriteEvents writes event recommendations. When matched is false the JSON form is null,
// as on the HTTP API.
func WriteEvents(w io.Writer, records []models.Record, matched bool, format OutputFormat) error {
	if format == OutputJSON {
		if !matched {
			return writeJSON(w, nil)
		}
		return writeJSON(w, records)
	}
	if !matched {
		_, err := fmt.Fprintln(w, "No matching event found")
		return err
	}
	return writeRecordsText(w, records)
}

// WriteLocations writes location recommendations. An empty result is [] in JSON.
func WriteLocations(w io.Writer, records []models.Record, format OutputFormat) error {
	if format == OutputJSON {
		if records == nil {
			records = []models.Record{}
		}
		return writeJSON(w, records)
	}
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No matching location found")
		return err
	}
	return writeRecordsText(w, records)
}

func writeRecordsText(w io.Writer, records []models.Record) error {
	if _, err := fmt.Fprintf(w, "\nFound %d records\n\n", len(records)); err != nil {
		return err
	}
	for rank, r := range records {
		if _, err := fmt.Fprintf(w, "%2d. [row %d] %s\n    %s (%.4f, %.4f)\n",
			rank+1, r.Index, utils.Truncate(r.EventName, maxNameLen),
			utils.Truncate(r.Location, maxNameLen), r.Latitude, r.Longitude); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

// WriteStatus writes a status report.
func WriteStatus(w io.Writer, status *models.Status, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, status)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "records:            %d\n", status.Records)
	fmt.Fprintf(&b, "vocabulary_size:    %d   # distinct event-name terms\n", status.VocabularySize)
	if status.BundleID != "" {
		fmt.Fprintf(&b, "bundle_id:          %s\n", status.BundleID)
	}
	if !status.BuiltAt.IsZero() {
		fmt.Fprintf(&b, "built_at:           %s\n", status.BuiltAt.Format(time.RFC3339))
	}
	fmt.Fprintf(&b, "event_index:        %s\n", status.EventIndex)
	fmt.Fprintf(&b, "location_index:     %s\n", status.LocationIndex)
	if status.DiskUsageBytes != nil {
		fmt.Fprintf(&b, "disk_usage_bytes:   %d   # data + bundle on disk\n", *status.DiskUsageBytes)
	}
	if status.DataPath != "" || status.BundlePath != "" {
		b.WriteString("\n# paths\n")
		if status.DataPath != "" {
			fmt.Fprintf(&b, "data_path:          %s\n", status.DataPath)
		}
		if status.BundlePath != "" {
			fmt.Fprintf(&b, "bundle_path:        %s\n", status.BundlePath)
		}
	}
	if imp := status.LastImport; imp != nil {
		b.WriteString("\n# last import\n")
		fmt.Fprintf(&b, "import_id:          %s\n", imp.ID)
		fmt.Fprintf(&b, "source:             %s\n", imp.Source)
		fmt.Fprintf(&b, "rows:               %d\n", imp.Rows)
		fmt.Fprintf(&b, "created_at:         %s\n", imp.CreatedAt.Format(time.RFC3339))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
