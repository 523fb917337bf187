package driver

import "testing"

func TestIndexWord(t *testing.T) {
	tests := []struct {
		text, word string
		want       int
	}{
		{"module m", "M", 7},
		{"mm, m", "m", 4},
		{"integer :: x_1, x", "X", 16},
		{"İ, x", "x", 4}, // İ changes byte length under full lowering
		{"ΣΣ x", "X", 5},
		{"xy", "x", -1},
		{"x", "", -1},
	}
	for _, tt := range tests {
		if got := indexWord(tt.text, tt.word); got != tt.want {
			t.Errorf("indexWord(%q, %q) = %d, want %d", tt.text, tt.word, got, tt.want)
		}
	}
}
