package fuzzy

import (
	"math"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestDefaultProcess(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  Jazz Night!  ", "jazz night"},
		{"Rock-n-Roll", "rock n roll"},
		{"TOKYO", "tokyo"},
		{"...", ""},
		{"東京 Tower", "東京 tower"},
	}
	for _, tt := range tests {
		if got := DefaultProcess(tt.in); got != tt.want {
			t.Errorf("DefaultProcess(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "abc", "abc", 100},
		{"both empty", "", "", 100},
		{"one empty", "abc", "", 0},
		{"kitten sitting", "kitten", "sitting", 100 * (1 - 5.0/13.0)},
		{"disjoint", "abc", "xyz", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Ratio(tt.a, tt.b); !approx(got, tt.want) {
				t.Errorf("Ratio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestPartialRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"substring", "fuzzy", "fuzzy wuzzy bear", 100},
		{"argument order", "fuzzy wuzzy bear", "fuzzy", 100},
		{"trailing punctuation", "this is a test", "this is a test!", 100},
		{"both empty", "", "", 100},
		{"one empty", "", "abc", 0},
		{"disjoint", "abc", "xyzxyz", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PartialRatio(tt.a, tt.b); !approx(got, tt.want) {
				t.Errorf("PartialRatio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestTokenRatios(t *testing.T) {
	if got := TokenSortRatio("fuzzy wuzzy was a bear", "wuzzy fuzzy was a bear"); got != 100 {
		t.Errorf("TokenSortRatio = %v, want 100", got)
	}
	if got := TokenSetRatio("fuzzy was a bear", "fuzzy fuzzy was a bear"); got != 100 {
		t.Errorf("TokenSetRatio = %v, want 100", got)
	}
	if got := TokenSetRatio("jazz night", "rock fair"); got >= 50 {
		t.Errorf("TokenSetRatio of unrelated tokens = %v, want < 50", got)
	}
	if got := PartialTokenRatio("jazz night", "summer jazz"); got != 100 {
		t.Errorf("PartialTokenRatio with shared token = %v, want 100", got)
	}
}

func TestWRatio(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		min, max float64
	}{
		{"empty query", "", "jazz", 0, 0},
		{"empty choice", "jazz", "", 0, 0},
		{"identical", "paris", "paris", 100, 100},
		{"word inside longer name", "jazz", "summer jazz festival", 90, 90},
		{"typo", "jaz festival", "jazz festival", 90, 100},
		{"unrelated", "qqqq", "jazz festival", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WRatio(tt.a, tt.b)
			if got < tt.min-1e-9 || got > tt.max+1e-9 {
				t.Errorf("WRatio(%q, %q) = %v, want within [%v, %v]", tt.a, tt.b, got, tt.min, tt.max)
			}
		})
	}
}
