package search

import "testing"

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"merge", "merge", 0},
		{"merg", "merge", 1},
		{"crop", "drop", 1},
		{"crop", "droop", 2},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"café", "cafe", 1},
		{"日本語", "日本", 1},
	}

	for _, tt := range tests {
		if got := Levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("Levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
		if got := Levenshtein(tt.b, tt.a); got != tt.want {
			t.Errorf("Levenshtein(%q, %q) = %d, want %d (symmetry)", tt.b, tt.a, got, tt.want)
		}
	}
}

func TestWithinDistance(t *testing.T) {
	if _, ok := withinDistance([]rune("pdf"), []rune("combine"), 2); ok {
		t.Error("expected length gap to reject the pair")
	}
	if d, ok := withinDistance([]rune("vidoe"), []rune("video"), 2); !ok || d != 2 {
		t.Errorf("withinDistance(vidoe, video) = %d, %v; want 2, true", d, ok)
	}
	if _, ok := withinDistance([]rune("abcd"), []rune("wxyz"), 2); ok {
		t.Error("expected distance 4 to be rejected")
	}
}

func BenchmarkLevenshtein(b *testing.B) {
	for i := 0; i < b.N; i++ {
		Levenshtein("background", "backgrounds")
	}
}
