package source

import (
	"testing"
)

func TestSpanCover(t *testing.T) {
	tests := []struct {
		name     string
		span     Span
		other    Span
		expected Span
	}{
		{
			name:     "disjoint spans in one file",
			span:     Span{File: 1, Start: 10, End: 20},
			other:    Span{File: 1, Start: 30, End: 40},
			expected: Span{File: 1, Start: 10, End: 40},
		},
		{
			name:     "other inside span",
			span:     Span{File: 1, Start: 10, End: 20},
			other:    Span{File: 1, Start: 12, End: 14},
			expected: Span{File: 1, Start: 10, End: 20},
		},
		{
			name:     "other starts earlier",
			span:     Span{File: 1, Start: 10, End: 20},
			other:    Span{File: 1, Start: 2, End: 11},
			expected: Span{File: 1, Start: 2, End: 20},
		},
		{
			name:     "different files keep receiver",
			span:     Span{File: 1, Start: 10, End: 20},
			other:    Span{File: 2, Start: 0, End: 100},
			expected: Span{File: 1, Start: 10, End: 20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.span.Cover(tt.other); got != tt.expected {
				t.Errorf("Cover() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestSpanContains(t *testing.T) {
	outer := Span{File: 3, Start: 5, End: 50}
	if !outer.Contains(Span{File: 3, Start: 5, End: 50}) {
		t.Errorf("span must contain itself")
	}
	if !outer.Contains(Span{File: 3, Start: 10, End: 12}) {
		t.Errorf("expected inner span to be contained")
	}
	if outer.Contains(Span{File: 3, Start: 4, End: 12}) {
		t.Errorf("span starting before outer must not be contained")
	}
	if outer.Contains(Span{File: 4, Start: 10, End: 12}) {
		t.Errorf("span in another file must not be contained")
	}
}

func TestSpanBefore(t *testing.T) {
	a := Span{File: 1, Start: 4, End: 6}
	b := Span{File: 1, Start: 4, End: 9}
	c := Span{File: 2, Start: 0, End: 1}
	if !a.Before(b) || b.Before(a) {
		t.Errorf("expected %v before %v", a, b)
	}
	if !b.Before(c) || c.Before(b) {
		t.Errorf("expected file order to dominate: %v before %v", b, c)
	}
	if a.Before(a) {
		t.Errorf("span must not be before itself")
	}
}
