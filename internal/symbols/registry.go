package symbols

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"fsema/internal/source"
)

// EquivalenceObject is one storage unit named in an EQUIVALENCE set.
type EquivalenceObject struct {
	Symbol         *Symbol
	Subscripts     []int64
	SubstringStart *int64
	Span           source.Span
}

// Equal compares symbol identity, subscripts and substring start.
func (o EquivalenceObject) Equal(other EquivalenceObject) bool {
	return o.Compare(other) == 0
}

// Less orders by symbol identity, then subscripts, then substring start.
// Textual order of the source plays no part.
func (o EquivalenceObject) Less(other EquivalenceObject) bool {
	return o.Compare(other) < 0
}

// Compare is the three-way form of Less.
func (o EquivalenceObject) Compare(other EquivalenceObject) int {
	if c := cmp.Compare(symbolID(o.Symbol), symbolID(other.Symbol)); c != 0 {
		return c
	}
	if c := slices.Compare(o.Subscripts, other.Subscripts); c != 0 {
		return c
	}
	switch {
	case o.SubstringStart == nil && other.SubstringStart == nil:
		return 0
	case o.SubstringStart == nil:
		return -1
	case other.SubstringStart == nil:
		return 1
	default:
		return cmp.Compare(*o.SubstringStart, *other.SubstringStart)
	}
}

func symbolID(s *Symbol) SymbolID {
	if s == nil {
		return NoSymbolID
	}
	return s.id
}

// AsFortran renders the object as written in an EQUIVALENCE statement, e.g. "a(1,2)(3:)".
func (o EquivalenceObject) AsFortran() string {
	var sb strings.Builder
	if o.Symbol != nil {
		sb.WriteString(o.Symbol.Name())
	}
	if len(o.Subscripts) > 0 {
		sep := byte('(')
		for _, sub := range o.Subscripts {
			sb.WriteByte(sep)
			sb.WriteString(strconv.FormatInt(sub, 10))
			sep = ','
		}
		sb.WriteByte(')')
	}
	if o.SubstringStart != nil {
		sb.WriteByte('(')
		sb.WriteString(strconv.FormatInt(*o.SubstringStart, 10))
		sb.WriteString(":)")
	}
	return sb.String()
}

// EquivalenceSet is a group of objects whose storage overlaps.
type EquivalenceSet []EquivalenceObject

// Sort puts the set in canonical order.
func (set EquivalenceSet) Sort() {
	slices.SortStableFunc(set, EquivalenceObject.Compare)
}

// AddEquivalenceSet appends set to the scope. The scope takes ownership.
func (s *Scope) AddEquivalenceSet(set EquivalenceSet) {
	s.equivalenceSets = append(s.equivalenceSets, set)
}

func (s *Scope) EquivalenceSets() []EquivalenceSet { return s.equivalenceSets }

// MakeCommonBlock returns the common block named name, creating it on first
// use. Common block names live apart from the ordinary symbol table.
func (s *Scope) MakeCommonBlock(name string, span source.Span) *Symbol {
	text := source.Fold(name)
	id := s.table.strings.Intern(text)
	if found := s.commonBlocks[id]; found != nil {
		return found
	}
	sym := s.table.newSymbol(s, id, text, span)
	sym.details = &CommonBlockDetails{}
	if s.commonBlocks == nil {
		s.commonBlocks = make(map[source.StringID]*Symbol)
	}
	s.commonBlocks[id] = sym
	return sym
}

// FindCommonBlock returns the common block named name, or nil.
func (s *Scope) FindCommonBlock(name string) *Symbol {
	id, ok := s.table.strings.FindName(name)
	if !ok {
		return nil
	}
	return s.commonBlocks[id]
}

// CommonBlocks returns the scope's common blocks ordered by name.
func (s *Scope) CommonBlocks() []*Symbol {
	return sortedByName(s.commonBlocks)
}

// CrayPointer binds a pointee name to its Cray pointer.
type CrayPointer struct {
	Name    string
	Pointer *Symbol
}

// AddCrayPointer records that pointee name is addressed through pointer.
// The pointer symbol must carry FlagCrayPointer.
func (s *Scope) AddCrayPointer(name string, pointer *Symbol) {
	if !pointer.Test(FlagCrayPointer) {
		s.table.fail("AddCrayPointer(%q): %s is not a Cray pointer", name, pointer.Name())
	}
	if s.crayPointers == nil {
		s.crayPointers = make(map[source.StringID]*Symbol)
	}
	id := s.table.strings.InternName(name)
	if _, exists := s.crayPointers[id]; !exists {
		s.crayPointers[id] = pointer
	}
}

// CrayPointers returns the recorded pointees ordered by name.
func (s *Scope) CrayPointers() []CrayPointer {
	out := make([]CrayPointer, 0, len(s.crayPointers))
	for id, ptr := range s.crayPointers {
		out = append(out, CrayPointer{Name: s.table.strings.MustLookup(id), Pointer: ptr})
	}
	slices.SortFunc(out, func(a, b CrayPointer) int { return strings.Compare(a.Name, b.Name) })
	return out
}

func sortedByName(m map[source.StringID]*Symbol) []*Symbol {
	out := make([]*Symbol, 0, len(m))
	for _, sym := range m {
		out = append(out, sym)
	}
	slices.SortFunc(out, func(a, b *Symbol) int { return strings.Compare(a.text, b.text) })
	return out
}
