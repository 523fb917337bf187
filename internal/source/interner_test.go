package source

import "testing"

func TestInternerBasic(t *testing.T) {
	interner := NewInterner()

	if s, ok := interner.Lookup(NoStringID); !ok || s != "" {
		t.Errorf("NoStringID must map to the empty string, got %q, ok=%v", s, ok)
	}

	id1 := interner.Intern("hello")
	id2 := interner.Intern("hello")
	if id1 == NoStringID || id1 != id2 {
		t.Fatalf("Intern must be idempotent: %d != %d", id1, id2)
	}
	if id3 := interner.Intern("world"); id3 == id1 {
		t.Errorf("distinct strings must get distinct ids")
	}
	if interner.Len() != 3 {
		t.Errorf("Len = %d, expected 3", interner.Len())
	}
}

func TestInternerNamesAreCaseInsensitive(t *testing.T) {
	interner := NewInterner()

	upper := interner.InternName("Velocity")
	lower := interner.InternName("velocity")
	if upper != lower {
		t.Fatalf("Fortran names must fold: %d != %d", upper, lower)
	}
	if got := interner.MustLookup(upper); got != "velocity" {
		t.Errorf("stored name = %q", got)
	}

	if id, ok := interner.FindName("VELOCITY"); !ok || id != upper {
		t.Errorf("FindName = %d,%v", id, ok)
	}
	if _, ok := interner.FindName("missing"); ok {
		t.Errorf("FindName must not insert")
	}
	if _, ok := interner.FindName("missing"); ok {
		t.Errorf("FindName must stay a pure query")
	}
}

func TestFoldNormalizesComposition(t *testing.T) {
	// "é" as e + combining acute folds to the precomposed form
	if Fold("Cafe\u0301") != Fold("CAF\u00c9") {
		t.Errorf("expected NFC folding to unify composed and decomposed forms")
	}
}
