package models

import (
	"testing"
)

func TestNewDataset_renumbersIndex(t *testing.T) {
	ds := NewDataset([]Record{
		{Index: 7, EventName: "a"},
		{Index: 7, EventName: "b"},
	}, []string{"Event Name"})
	if ds.Len() != 2 {
		t.Fatalf("Len=%d", ds.Len())
	}
	for i := 0; i < ds.Len(); i++ {
		if ds.At(i).Index != i {
			t.Errorf("row %d has Index %d", i, ds.At(i).Index)
		}
	}
}

func TestDataset_Records(t *testing.T) {
	ds := NewDataset([]Record{{EventName: "a"}, {EventName: "b"}, {EventName: "c"}}, nil)
	got := ds.Records([]int{2, 0})
	if len(got) != 2 || got[0].EventName != "c" || got[1].EventName != "a" {
		t.Errorf("Records = %+v", got)
	}
	names := ds.EventNames()
	if len(names) != 3 || names[1] != "b" {
		t.Errorf("EventNames = %v", names)
	}
}

func TestDataset_NilLen(t *testing.T) {
	var ds *Dataset
	if ds.Len() != 0 {
		t.Error("nil dataset should have length 0")
	}
}

func TestValidateText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{"empty", "", true},
		{"one char", "a", true},
		{"two chars", "ab", false},
		{"two runes", "東京", false},
		{"one multibyte rune", "東", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateText("query", tt.text)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateText(%q) error = %v, wantErr %v", tt.text, err, tt.wantErr)
			}
		})
	}
}

func TestDataset_RecordsDoNotShareAttributes(t *testing.T) {
	ds := NewDataset([]Record{
		{EventName: "Jazz Night", Attributes: map[string]string{"Category": "music"}},
		{EventName: "Food Fair"},
	}, []string{"Event Name", "Category"})

	got := ds.Records([]int{0, 1})
	got[0].Attributes["Category"] = "changed"
	got[0].Attributes["Extra"] = "x"
	if got[1].Attributes != nil {
		t.Errorf("nil attributes should stay nil, got %v", got[1].Attributes)
	}

	all := ds.All()
	all[0].Attributes["Category"] = "changed again"

	attrs := ds.At(0).Attributes
	if attrs["Category"] != "music" || len(attrs) != 1 {
		t.Errorf("dataset attributes changed through a returned record: %v", attrs)
	}
}
