package diag

import (
	"testing"

	"fsema/internal/source"
)

func TestBagSortAndDedup(t *testing.T) {
	bag := NewBag(0)
	r := NewDedupReporter(BagReporter{Bag: bag})

	ReportWarning(r, SemaImportOnlyMixed, source.Span{File: 1, Start: 9, End: 10}, "later").Emit()
	ReportError(r, SemaImportNoneNotAlone, source.Span{File: 1, Start: 2, End: 3}, "first").Emit()
	ReportError(r, SemaImportNoneNotAlone, source.Span{File: 1, Start: 2, End: 3}, "first").Emit()

	if bag.Len() != 2 || r.Dropped() != 1 {
		t.Fatalf("expected 2 diagnostics and 1 repeat, got %d and %d", bag.Len(), r.Dropped())
	}
	bag.Sort()
	items := bag.Items()
	if items[0].Message != "first" || items[1].Message != "later" {
		t.Errorf("unexpected order: %q, %q", items[0].Message, items[1].Message)
	}
	if !bag.HasErrors() || bag.Errors() != 1 {
		t.Errorf("HasErrors=%v Errors=%d", bag.HasErrors(), bag.Errors())
	}
}

func TestBagLimit(t *testing.T) {
	bag := NewBag(1)
	if !bag.Add(New(SevError, SemaError, source.Span{}, "a")) {
		t.Fatalf("first Add must succeed")
	}
	if bag.Add(New(SevError, SemaError, source.Span{}, "b")) {
		t.Fatalf("Add beyond limit must fail")
	}

	other := NewBag(0)
	other.Add(New(SevError, SemaError, source.Span{}, "c"))
	other.Add(New(SevError, SemaError, source.Span{}, "d"))
	bag.Merge(other)
	if bag.Len() != 3 || bag.Cap() != 3 {
		t.Errorf("Merge: Len=%d Cap=%d", bag.Len(), bag.Cap())
	}
}

func TestReportBuilderEmitsOnce(t *testing.T) {
	bag := NewBag(0)
	b := ReportError(BagReporter{Bag: bag}, SemaImportAllNotAlone, source.Span{}, "all").
		WithNote(source.Span{File: 1}, "previous IMPORT here")
	b.Emit()
	b.Emit()
	if bag.Len() != 1 {
		t.Fatalf("expected a single emission, got %d", bag.Len())
	}
	if len(bag.Items()[0].Notes) != 1 {
		t.Errorf("note lost")
	}

	var nilBuilder *ReportBuilder
	nilBuilder.WithNote(source.Span{}, "x").Emit()
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(0)
	r := NewDedupReporter(BagReporter{Bag: bag})
	for range 3 {
		ReportError(r, SemaUnresolvedSymbol, source.Span{File: 2, Start: 1, End: 4}, "x not found").Emit()
	}
	if bag.Len() != 1 || r.Dropped() != 2 {
		t.Errorf("expected 1 diagnostic and 2 repeats, got %d and %d", bag.Len(), r.Dropped())
	}
	// a repeat must not take the last slot of a limited bag
	limited := NewBag(2)
	lr := NewDedupReporter(BagReporter{Bag: limited})
	ReportError(lr, SemaUnresolvedSymbol, source.Span{}, "x").Emit()
	ReportError(lr, SemaUnresolvedSymbol, source.Span{}, "x").Emit()
	ReportError(lr, SemaUnresolvedSymbol, source.Span{}, "y").Emit()
	if limited.Len() != 2 {
		t.Errorf("limited bag holds %d diagnostics, want 2", limited.Len())
	}
}

func TestFormatShort(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.AddVirtual("m.f90", []byte("module m\n  import, none\nend module\n"))

	diags := []Diagnostic{
		New(SevError, SemaImportNoneNotAlone, source.Span{File: file, Start: 11, End: 23}, "IMPORT,NONE must be\nthe only IMPORT statement").
			WithNote(source.Span{File: file, Start: 0, End: 6}, "scope here"),
		New(SevWarning, SemaLookupMismatch, source.Span{}, "generated"),
	}

	want := "error SEM3100 m.f90:2:3 IMPORT,NONE must be the only IMPORT statement\n" +
		"note SEM3100 m.f90:1:1 scope here\n" +
		"warning SEM3110 <generated> generated"
	if got := FormatShort(diags, fs, true); got != want {
		t.Fatalf("FormatShort:\nwant:\n%s\ngot:\n%s", want, got)
	}
}

func TestCodeID(t *testing.T) {
	cases := map[Code]string{
		SemaImportOnlyMixed: "SEM3102",
		IOLoadFileError:     "IO4001",
		PrjUnitInvalid:      "PRJ5001",
		ObsInternalError:    "ICE6001",
		UnknownCode:         "E0000",
	}
	for code, want := range cases {
		if got := code.ID(); got != want {
			t.Errorf("%d.ID() = %q, want %q", code, got, want)
		}
	}
	if Code(3999).Title() != "Unknown error" {
		t.Errorf("unknown codes must fall back to the generic title")
	}
}
