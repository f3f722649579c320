package models

import "time"

// Status describes the loaded dataset and model bundle.
type Status struct {
	Records        int       `json:"records"`
	VocabularySize int       `json:"vocabulary_size"`
	BundleID       string    `json:"bundle_id"`
	BuiltAt        time.Time `json:"built_at"`
	EventIndex     string    `json:"event_index"`
	LocationIndex  string    `json:"location_index"`
	DataPath       string    `json:"data_path,omitempty"`
	BundlePath     string    `json:"bundle_path,omitempty"`
	DiskUsageBytes *int64    `json:"disk_usage_bytes,omitempty"`
	LastImport     *Import   `json:"last_import,omitempty"`
}

// Import records one load of a tabular file into the record store.
type Import struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Rows      int       `json:"rows"`
	CreatedAt time.Time `json:"created_at"`
}
