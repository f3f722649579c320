package fuzzy

import (
	"context"
	"testing"
)

func TestExtract(t *testing.T) {
	choices := NewChoices([]string{"Jazz Night", "Rock Concert", "Jazz Night", "Food Fair"}, DefaultProcess)
	matches, err := Extract(context.Background(), "jazz night", choices, WRatio, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Index != 0 || matches[1].Index != 2 {
		t.Errorf("ties should keep choice order, got indexes %d, %d", matches[0].Index, matches[1].Index)
	}
	if matches[0].Score != 100 || matches[0].Choice != "Jazz Night" {
		t.Errorf("top match = %+v", matches[0])
	}
}

func TestExtract_sortedByScore(t *testing.T) {
	choices := NewChoices([]string{"Food Fair", "Rock Concert", "Rock Concerts"}, DefaultProcess)
	matches, err := Extract(context.Background(), "rock concerts", choices, nil, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matches))
	}
	if matches[0].Index != 2 {
		t.Errorf("exact match should rank first, got %+v", matches[0])
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Score > matches[i-1].Score {
			t.Errorf("matches not sorted: %v", matches)
		}
	}
}

func TestExtract_skipsEmptyChoices(t *testing.T) {
	choices := NewChoices([]string{"", "!!!", "Jazz"}, DefaultProcess)
	matches, err := Extract(context.Background(), "jazz", choices, WRatio, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 || matches[0].Index != 2 {
		t.Errorf("expected only the non-empty choice, got %+v", matches)
	}
}

func TestExtract_noChoicesOrLimit(t *testing.T) {
	ctx := context.Background()
	if m, err := Extract(ctx, "x", NewChoices(nil, nil), WRatio, 5); err != nil || m != nil {
		t.Errorf("empty choices: got %v, %v", m, err)
	}
	if m, err := Extract(ctx, "x", NewChoices([]string{"x"}, nil), WRatio, 0); err != nil || m != nil {
		t.Errorf("zero limit: got %v, %v", m, err)
	}
}

func TestExtract_cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Extract(ctx, "jazz", NewChoices([]string{"jazz"}, nil), WRatio, 1)
	if err == nil {
		t.Error("expected context error")
	}
}

func TestExtractOne(t *testing.T) {
	choices := NewChoices([]string{"Paris", "London"}, DefaultProcess)
	m, ok, err := ExtractOne(context.Background(), "londn", choices, WRatio)
	if err != nil || !ok {
		t.Fatalf("ExtractOne: ok=%v err=%v", ok, err)
	}
	if m.Choice != "London" {
		t.Errorf("best = %q, want London", m.Choice)
	}
	if _, ok, _ := ExtractOne(context.Background(), "x", NewChoices(nil, nil), WRatio); ok {
		t.Error("expected no match for empty choices")
	}
}
