package symbols

import (
	"slices"
	"testing"

	"fsema/internal/source"
)

func ptr(v int64) *int64 { return &v }

func TestEquivalenceObjectOrdering(t *testing.T) {
	tab := NewTable(Options{})
	m := module(t, tab, "m")
	// created first, so it sorts first whatever its name
	zed := mustSymbol(t, m, "zed", &ObjectDetails{})
	abc := mustSymbol(t, m, "abc", &ObjectDetails{})

	cases := []struct {
		name string
		a, b EquivalenceObject
		less bool
	}{
		{"symbol identity beats subscripts", EquivalenceObject{Symbol: zed, Subscripts: []int64{9}}, EquivalenceObject{Symbol: abc, Subscripts: []int64{1}}, true},
		{"symbol identity beats substring", EquivalenceObject{Symbol: abc}, EquivalenceObject{Symbol: zed, SubstringStart: ptr(1)}, false},
		{"subscripts lexicographic", EquivalenceObject{Symbol: abc, Subscripts: []int64{1, 2}}, EquivalenceObject{Symbol: abc, Subscripts: []int64{1, 3}}, true},
		{"shorter subscript prefix first", EquivalenceObject{Symbol: abc, Subscripts: []int64{1}}, EquivalenceObject{Symbol: abc, Subscripts: []int64{1, 0}}, true},
		{"subscripts before substring", EquivalenceObject{Symbol: abc, Subscripts: []int64{2}, SubstringStart: ptr(1)}, EquivalenceObject{Symbol: abc, Subscripts: []int64{1}, SubstringStart: ptr(5)}, false},
		{"absent substring first", EquivalenceObject{Symbol: abc}, EquivalenceObject{Symbol: abc, SubstringStart: ptr(1)}, true},
		{"substring value", EquivalenceObject{Symbol: abc, SubstringStart: ptr(2)}, EquivalenceObject{Symbol: abc, SubstringStart: ptr(3)}, true},
		{"equal is not less", EquivalenceObject{Symbol: abc, SubstringStart: ptr(2)}, EquivalenceObject{Symbol: abc, SubstringStart: ptr(2)}, false},
	}
	for _, c := range cases {
		if got := c.a.Less(c.b); got != c.less {
			t.Errorf("%s: Less = %v, want %v", c.name, got, c.less)
		}
		if c.a.Less(c.b) && c.b.Less(c.a) {
			t.Errorf("%s: ordering is not antisymmetric", c.name)
		}
	}
	a := EquivalenceObject{Symbol: abc, Subscripts: []int64{1}, SubstringStart: ptr(2)}
	b := EquivalenceObject{Symbol: abc, Subscripts: []int64{1}, SubstringStart: ptr(2)}
	if !a.Equal(b) || a.Equal(EquivalenceObject{Symbol: abc, Subscripts: []int64{1}}) {
		t.Fatalf("Equal mismatch")
	}
}

func TestEquivalenceSetSortAndRender(t *testing.T) {
	tab := NewTable(Options{})
	m := module(t, tab, "m")
	x := mustSymbol(t, m, "x", &ObjectDetails{})
	c := mustSymbol(t, m, "c", &ObjectDetails{})

	set := EquivalenceSet{
		{Symbol: c, SubstringStart: ptr(3)},
		{Symbol: x, Subscripts: []int64{2, 1}},
		{Symbol: x, Subscripts: []int64{1, 5}},
	}
	set.Sort()
	var got []string
	for _, obj := range set {
		got = append(got, obj.AsFortran())
	}
	want := []string{"x(1,5)", "x(2,1)", "c(3:)"}
	if !slices.Equal(got, want) {
		t.Fatalf("sorted set = %v, want %v", got, want)
	}
	m.AddEquivalenceSet(set)
	if sets := m.EquivalenceSets(); len(sets) != 1 || len(sets[0]) != 3 {
		t.Fatalf("EquivalenceSets = %v", sets)
	}
}

func TestMakeCommonBlockIdempotent(t *testing.T) {
	tab := NewTable(Options{})
	m := module(t, tab, "m")
	first := m.MakeCommonBlock("/blk/", source.Span{})
	second := m.MakeCommonBlock("/BLK/", source.Span{})
	if first != second {
		t.Fatalf("MakeCommonBlock must return the same symbol")
	}
	if _, ok := first.Details().(*CommonBlockDetails); !ok {
		t.Fatalf("common block has details %T", first.Details())
	}
	if m.FindCommonBlock("/blk/") != first || m.FindCommonBlock("/other/") != nil {
		t.Fatalf("FindCommonBlock mismatch")
	}
	before := tab.SymbolCount()
	m.MakeCommonBlock("/blk/", source.Span{})
	if tab.SymbolCount() != before {
		t.Fatalf("second MakeCommonBlock allocated a symbol")
	}

	// a variable may share the block's name
	if _, ok := m.MakeSymbol("/blk/", source.Span{}, 0, &ObjectDetails{}); !ok {
		t.Fatalf("common block names must not occupy the symbol table")
	}
	m.MakeCommonBlock("/a/", source.Span{})
	blocks := m.CommonBlocks()
	if len(blocks) != 2 || blocks[0].Name() != "/a/" || blocks[1] != first {
		t.Fatalf("CommonBlocks = %v", blocks)
	}
}

func TestCrayPointers(t *testing.T) {
	tab := NewTable(Options{})
	m := module(t, tab, "m")
	p := mustSymbol(t, m, "p", &ObjectDetails{})
	plain := mustSymbol(t, m, "q", &ObjectDetails{})

	expectInternal(t, "not a Cray pointer", func() { m.AddCrayPointer("target", plain) })

	p.SetFlag(FlagCrayPointer)
	m.AddCrayPointer("Zeta", p)
	m.AddCrayPointer("alpha", p)
	got := m.CrayPointers()
	if len(got) != 2 || got[0].Name != "alpha" || got[1].Name != "zeta" || got[0].Pointer != p {
		t.Fatalf("CrayPointers = %+v", got)
	}
}
