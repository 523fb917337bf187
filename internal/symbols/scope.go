package symbols

import (
	"slices"

	"fsema/internal/source"
)

// ScopeKind enumerates scope categories.
type ScopeKind uint8

const (
	ScopeGlobal ScopeKind = iota
	ScopeIntrinsicModules
	ScopeModule // modules and submodules
	ScopeMainProgram
	ScopeSubprogram
	ScopeBlockData
	ScopeDerivedType
	ScopeBlockConstruct
	ScopeForall
	ScopeOtherConstruct
	ScopeOtherClause
	ScopeImpliedDos
	scopeKindCount
)

var scopeKindNames = [scopeKindCount]string{
	"Global", "IntrinsicModules", "Module", "MainProgram", "Subprogram",
	"BlockData", "DerivedType", "BlockConstruct", "Forall",
	"OtherConstruct", "OtherClause", "ImpliedDos",
}

func (k ScopeKind) String() string {
	if k < scopeKindCount {
		return scopeKindNames[k]
	}
	return "invalid"
}

// ParseScopeKind matches a kind name case-insensitively. Global and
// IntrinsicModules are not accepted; every table creates them itself.
func ParseScopeKind(s string) (ScopeKind, bool) {
	for i := ScopeModule; i < scopeKindCount; i++ {
		if equalFoldASCII(scopeKindNames[i], s) {
			return i, true
		}
	}
	return 0, false
}

func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		x, y := a[i], b[i]
		if 'A' <= x && x <= 'Z' {
			x += 'a' - 'A'
		}
		if 'A' <= y && y <= 'Z' {
			y += 'a' - 'A'
		}
		if x != y {
			return false
		}
	}
	return true
}

// Scope is a node of the scope tree. Children are appended, never removed,
// and every *Scope stays valid for the life of its Table.
type Scope struct {
	id       ScopeID
	table    *Table
	kind     ScopeKind
	parent   *Scope
	children []*Scope
	symbol   *Symbol

	symbols map[source.StringID]*Symbol

	importKind  ImportKind
	importSet   bool
	importNames map[source.StringID]struct{}

	declTypeSpecs []*DeclTypeSpec
	lengthless    map[lengthlessKey]*DeclTypeSpec // Global only

	equivalenceSets []EquivalenceSet
	commonBlocks    map[source.StringID]*Symbol
	crayPointers    map[source.StringID]*Symbol
	submodules      map[source.StringID]*Scope

	sourceRange source.Span // File == NoFileID until the first range is added

	derivedTypeSpec *DerivedTypeSpec // set on instantiated DerivedType scopes
}

func (s *Scope) ID() ScopeID        { return s.id }
func (s *Scope) Table() *Table      { return s.table }
func (s *Scope) Kind() ScopeKind    { return s.kind }
func (s *Scope) Parent() *Scope     { return s.parent }
func (s *Scope) Children() []*Scope { return s.children }

// Symbol returns the symbol that introduced the scope, or nil.
func (s *Scope) Symbol() *Symbol { return s.symbol }

// GetSymbol is Symbol, except that an instantiated derived type scope
// answers with the type symbol of the spec it realizes.
func (s *Scope) GetSymbol() *Symbol {
	if s.symbol != nil {
		return s.symbol
	}
	if s.derivedTypeSpec != nil {
		return s.derivedTypeSpec.TypeSymbol()
	}
	return nil
}

// DerivedTypeSpec returns the spec this scope instantiates, or nil.
func (s *Scope) DerivedTypeSpec() *DerivedTypeSpec { return s.derivedTypeSpec }

// SourceRange returns the recorded range and whether one exists.
func (s *Scope) SourceRange() (source.Span, bool) {
	return s.sourceRange, s.sourceRange.File != source.NoFileID
}

func (s *Scope) IsGlobal() bool { return s.kind == ScopeGlobal }

// IsTopLevel is true for the Global and IntrinsicModules scopes.
func (s *Scope) IsTopLevel() bool {
	return s.kind == ScopeGlobal || s.kind == ScopeIntrinsicModules
}

func (s *Scope) IsModule() bool {
	return s.kind == ScopeModule && !s.IsSubmodule()
}

func (s *Scope) IsSubmodule() bool {
	d := s.moduleDetails()
	return d != nil && d.IsSubmodule
}

func (s *Scope) IsDerivedType() bool { return s.kind == ScopeDerivedType }

func (s *Scope) IsStmtFunction() bool {
	return s.symbol != nil && s.symbol.Test(FlagStmtFunction)
}

func (s *Scope) moduleDetails() *ModuleDetails {
	if s.kind != ScopeModule || s.symbol == nil {
		return nil
	}
	d, _ := s.symbol.details.(*ModuleDetails)
	return d
}

// MakeScope appends a new child scope. A non-nil sym is linked to it.
func (s *Scope) MakeScope(kind ScopeKind, sym *Symbol) *Scope {
	return s.table.newScope(s, kind, sym)
}

// Contains reports whether other is s or one of its descendants.
func (s *Scope) Contains(other *Scope) bool {
	limit := s.table.scopes.len()
	for scope, steps := other, 0; scope != nil; scope, steps = scope.parent, steps+1 {
		if scope == s {
			return true
		}
		if scope.IsGlobal() {
			return false
		}
		if steps > limit {
			s.table.fail("cycle in scope parent chain at scope %d", scope.id)
		}
	}
	return false
}

// Len returns the number of symbols in the scope's own table.
func (s *Scope) Len() int { return len(s.symbols) }

// MakeSymbol inserts a new symbol. When the name is taken the existing
// symbol is returned with false and nothing changes.
func (s *Scope) MakeSymbol(name string, span source.Span, attrs Attrs, details Details) (*Symbol, bool) {
	text := source.Fold(name)
	id := s.table.strings.Intern(text)
	if existing := s.symbols[id]; existing != nil {
		return existing, false
	}
	sym := s.table.newSymbol(s, id, text, span)
	sym.attrs = attrs
	sym.details = details
	if s.symbols == nil {
		s.symbols = make(map[source.StringID]*Symbol)
	}
	s.symbols[id] = sym
	return sym, true
}

// CopySymbol duplicates sym's name, attributes, flags and details into s.
// It returns nil when s already has a symbol of that name.
func (s *Scope) CopySymbol(sym *Symbol) *Symbol {
	var details Details
	if sym.details != nil {
		details = sym.details.Clone()
	}
	out, created := s.MakeSymbol(sym.text, sym.span, sym.attrs, details)
	if !created {
		return nil
	}
	out.flags = sym.flags
	return out
}

// Lookup returns a symbol of the scope's own table, without host association.
func (s *Scope) Lookup(name string) *Symbol {
	id, ok := s.table.strings.FindName(name)
	if !ok {
		return nil
	}
	return s.symbols[id]
}

// Erase removes name from the scope's table. The symbol record stays in the arena.
func (s *Scope) Erase(name string) bool {
	id, ok := s.table.strings.FindName(name)
	if !ok || s.symbols[id] == nil {
		return false
	}
	delete(s.symbols, id)
	return true
}

// GetSymbols returns the scope's symbols ordered by source position.
func (s *Scope) GetSymbols() []*Symbol {
	out := make([]*Symbol, 0, len(s.symbols))
	for _, sym := range s.symbols {
		out = append(out, sym)
	}
	slices.SortFunc(out, sourceBefore)
	return out
}

// FindSubmodule returns the submodule registered under name, or nil.
func (s *Scope) FindSubmodule(name string) *Scope {
	id, ok := s.table.strings.FindName(name)
	if !ok {
		return nil
	}
	return s.submodules[id]
}

// AddSubmodule registers sub under name. It returns false if the name is taken.
func (s *Scope) AddSubmodule(name string, sub *Scope) bool {
	id := s.table.strings.InternName(name)
	if _, exists := s.submodules[id]; exists {
		return false
	}
	if s.submodules == nil {
		s.submodules = make(map[source.StringID]*Scope)
	}
	s.submodules[id] = sub
	return true
}
