// Package models defines core data structures for dataset records, queries, and responses.
package models

import "maps"

// Record is one row of the dataset. Index is its position in the dataset and is the
// only identity a record has; event and location names are not unique.
type Record struct {
	Index      int               `json:"index"`
	EventName  string            `json:"event_name"`
	Location   string            `json:"location"`
	Latitude   float64           `json:"latitude"`
	Longitude  float64           `json:"longitude"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Dataset is an ordered, read-only sequence of records. It is built once by a loader
// and shared by every request; nothing mutates it after NewDataset returns.
type Dataset struct {
	records []Record
	columns []string
}

// NewDataset takes ownership of records and renumbers Index to match slice position.
// columns lists the source column names in file order.
func NewDataset(records []Record, columns []string) *Dataset {
	for i := range records {
		records[i].Index = i
	}
	return &Dataset{records: records, columns: append([]string(nil), columns...)}
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// At returns the record at row i. It panics when i is out of range, like a slice index.
// The Attributes map is shared with the dataset and must not be modified; use Records
// for a copy that callers own.
func (d *Dataset) At(i int) Record {
	return d.records[i]
}

// Records returns copies of the records at the given rows, in the order given.
func (d *Dataset) Records(rows []int) []Record {
	out := make([]Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, d.records[r].clone())
	}
	return out
}

// All returns a copy of every record in dataset order.
func (d *Dataset) All() []Record {
	out := make([]Record, len(d.records))
	for i, r := range d.records {
		out[i] = r.clone()
	}
	return out
}

func (r Record) clone() Record {
	r.Attributes = maps.Clone(r.Attributes)
	return r
}

// EventNames returns event names in dataset order.
func (d *Dataset) EventNames() []string {
	names := make([]string, len(d.records))
	for i, r := range d.records {
		names[i] = r.EventName
	}
	return names
}

// LocationNames returns location names in dataset order.
func (d *Dataset) LocationNames() []string {
	names := make([]string, len(d.records))
	for i, r := range d.records {
		names[i] = r.Location
	}
	return names
}

// Columns returns the source column names.
func (d *Dataset) Columns() []string {
	return append([]string(nil), d.columns...)
}
