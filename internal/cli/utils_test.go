package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/hyperjump/tabiji/internal/models"
)

func sampleRecords() []models.Record {
	return []models.Record{
		{Index: 3, EventName: "Summer Jazz Festival", Location: "Tokyo", Latitude: 35.6762, Longitude: 139.6503},
		{Index: 7, EventName: "Jazz Night", Location: "Osaka", Latitude: 34.6937, Longitude: 135.5023},
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"text", OutputText, false},
		{"json", OutputJSON, false},
		{"compact", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOutputFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteEvents_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteEvents(&buf, sampleRecords(), true, OutputJSON); err != nil {
		t.Fatalf("WriteEvents(json): %v", err)
	}
	var decoded []models.Record
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if len(decoded) != 2 || decoded[0].Index != 3 || decoded[1].EventName != "Jazz Night" {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestWriteEvents_noMatch(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteEvents(&buf, nil, false, OutputJSON); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(buf.String()); got != "null" {
		t.Errorf("json no-match = %q, want null", got)
	}

	buf.Reset()
	if err := WriteEvents(&buf, nil, false, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No matching event") {
		t.Errorf("text no-match = %q", buf.String())
	}
}

func TestWriteEvents_text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteEvents(&buf, sampleRecords(), true, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, sub := range []string{"Found 2 records", "[row 3]", "Summer Jazz Festival", "Tokyo", "35.6762", "[row 7]"} {
		if !strings.Contains(out, sub) {
			t.Errorf("text output missing %q:\n%s", sub, out)
		}
	}
	if strings.Index(out, "row 3") > strings.Index(out, "row 7") {
		t.Errorf("records out of order:\n%s", out)
	}
}

func TestWriteEvents_truncatesLongNames(t *testing.T) {
	long := strings.Repeat("a", 100)
	var buf bytes.Buffer
	if err := WriteEvents(&buf, []models.Record{{EventName: long, Location: "x"}}, true, OutputText); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), long) {
		t.Error("expected long event name to be truncated")
	}
	if !strings.Contains(buf.String(), strings.Repeat("a", maxNameLen)+"...") {
		t.Errorf("truncated name missing:\n%s", buf.String())
	}
}

func TestWriteLocations_emptyJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteLocations(&buf, nil, OutputJSON); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("json empty = %q, want []", got)
	}

	buf.Reset()
	if err := WriteLocations(&buf, []models.Record{}, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No matching location") {
		t.Errorf("text empty = %q", buf.String())
	}
}

func TestWriteStatus(t *testing.T) {
	disk := int64(2048)
	status := &models.Status{
		Records:        8,
		VocabularySize: 12,
		BundleID:       "b-1",
		BuiltAt:        time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		EventIndex:     "brute_euclidean",
		LocationIndex:  "brute_haversine",
		DataPath:       "/srv/events.csv",
		DiskUsageBytes: &disk,
		LastImport:     &models.Import{ID: "imp-1", Source: "/srv/events.xlsx", Rows: 8},
	}

	var buf bytes.Buffer
	if err := WriteStatus(&buf, status, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, sub := range []string{"records:            8", "vocabulary_size:    12", "b-1", "2026-01-02T03:04:05Z",
		"brute_euclidean", "brute_haversine", "2048", "/srv/events.csv", "imp-1", "/srv/events.xlsx"} {
		if !strings.Contains(out, sub) {
			t.Errorf("text output missing %q:\n%s", sub, out)
		}
	}
	if strings.Contains(out, "bundle_path") {
		t.Errorf("empty bundle path should be omitted:\n%s", out)
	}

	buf.Reset()
	if err := WriteStatus(&buf, status, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded models.Status
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("status JSON: %v", err)
	}
	if decoded.Records != 8 || decoded.LastImport == nil || decoded.LastImport.ID != "imp-1" {
		t.Errorf("decoded = %+v", decoded)
	}
}
