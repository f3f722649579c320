package dataset

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/hyperjump/tabiji/internal/models"
)

const cancelCheckInterval = 1024

// FromRows builds a dataset from a header and data rows. Rows shorter than the header
// are padded with empty cells; blank rows are skipped. Columns other than the four
// mapped ones are kept verbatim in Record.Attributes.
func FromRows(ctx context.Context, header []string, rows [][]string, cols Columns) (*models.Dataset, error) {
	cols = cols.withDefaults()
	header = cleanHeader(header)

	pos := make(map[string]int, len(header))
	for i, name := range header {
		if _, dup := pos[name]; !dup {
			pos[name] = i
		}
	}
	var missing []string
	lookup := func(name string) int {
		i, ok := pos[name]
		if !ok {
			missing = append(missing, strconv.Quote(name))
		}
		return i
	}
	eventCol := lookup(cols.EventName)
	locationCol := lookup(cols.Location)
	latCol := lookup(cols.Latitude)
	lonCol := lookup(cols.Longitude)
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	mapped := map[int]bool{eventCol: true, locationCol: true, latCol: true, lonCol: true}

	records := make([]models.Record, 0, len(rows))
	for n, row := range rows {
		if n%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if blank(row) {
			continue
		}
		cell := func(i int) string {
			if i < len(row) {
				return row[i]
			}
			return ""
		}
		// line numbers count the header as line 1
		line := n + 2
		lat, err := parseCoordinate(cell(latCol))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %s %q: %v", ErrBadRow, line, cols.Latitude, cell(latCol), err)
		}
		lon, err := parseCoordinate(cell(lonCol))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %s %q: %v", ErrBadRow, line, cols.Longitude, cell(lonCol), err)
		}
		rec := models.Record{
			EventName: cell(eventCol),
			Location:  cell(locationCol),
			Latitude:  lat,
			Longitude: lon,
		}
		for i, name := range header {
			if mapped[i] {
				continue
			}
			if rec.Attributes == nil {
				rec.Attributes = make(map[string]string)
			}
			rec.Attributes[name] = cell(i)
		}
		records = append(records, rec)
	}
	return models.NewDataset(records, header), nil
}

func cleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		out[i] = strings.TrimSpace(h)
	}
	return out
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseCoordinate(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	return strconv.ParseFloat(s, 64)
}
