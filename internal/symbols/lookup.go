package symbols

import (
	"fmt"
	"slices"

	"fsema/internal/source"
)

// ImportKind is the host-association policy of a scope.
type ImportKind uint8

const (
	ImportDefault ImportKind = iota
	ImportOnly
	ImportNone
	ImportAll
)

func (k ImportKind) String() string {
	switch k {
	case ImportDefault:
		return "Default"
	case ImportOnly:
		return "Only"
	case ImportNone:
		return "None"
	case ImportAll:
		return "All"
	default:
		return fmt.Sprintf("ImportKind(%d)", k)
	}
}

// ParseImportKind matches a kind name case-insensitively.
func ParseImportKind(s string) (ImportKind, bool) {
	for k := ImportDefault; k <= ImportAll; k++ {
		if equalFoldASCII(k.String(), s) {
			return k, true
		}
	}
	return 0, false
}

// FindSymbol looks name up in s, then in the parent module of a submodule,
// then through host association as permitted by CanImport.
func (s *Scope) FindSymbol(name string) *Symbol {
	id, ok := s.table.strings.FindName(name)
	if !ok {
		return nil
	}
	return s.findSymbol(id)
}

func (s *Scope) findSymbol(id source.StringID) *Symbol {
	limit := s.table.scopes.len()
	for scope, steps := s, 0; scope != nil; steps++ {
		if sym := scope.symbols[id]; sym != nil {
			return sym
		}
		if steps > limit {
			s.table.fail("cycle while resolving %q from scope %d", s.table.strings.MustLookup(id), s.id)
		}
		switch {
		case scope.IsSubmodule():
			// submodules see their parent's names directly
			scope = scope.moduleDetails().Parent
		case scope.canImport(id):
			scope = scope.parent
		default:
			return nil
		}
	}
	return nil
}

// CanImport reports whether name may come from the parent scope.
// Host association stops one level below the top-level scopes; an explicit
// IMPORT,ONLY list still reaches them, so a module can name a global
// entity it imports explicitly.
func (s *Scope) CanImport(name string) bool {
	id, ok := s.table.strings.FindName(name)
	if !ok {
		// never interned, so it cannot be on an ONLY list
		if s.GetImportKind() == ImportOnly {
			return false
		}
		id = source.NoStringID
	}
	return s.canImport(id)
}

func (s *Scope) canImport(id source.StringID) bool {
	if s.IsTopLevel() {
		return false
	}
	kind := s.GetImportKind()
	if s.parent.IsTopLevel() && kind != ImportOnly {
		return false
	}
	switch kind {
	case ImportNone:
		return false
	case ImportAll, ImportDefault:
		return true
	case ImportOnly:
		_, ok := s.importNames[id]
		return ok
	default:
		return false
	}
}

// GetImportKind returns the recorded kind. Without one, interface bodies
// that are not module procedures default to None and everything else to Default.
func (s *Scope) GetImportKind() ImportKind {
	if s.importSet {
		return s.importKind
	}
	if s.symbol != nil && !s.symbol.attrs.Has(AttrModule) {
		if d, ok := s.symbol.details.(*SubprogramDetails); ok && d.IsInterface {
			return ImportNone
		}
	}
	return ImportDefault
}

// SetImportKind records the effect of an IMPORT statement. It returns an
// error, leaving the scope unchanged, when the statement conflicts with
// one seen earlier.
func (s *Scope) SetImportKind(kind ImportKind) error {
	if !s.importSet {
		s.importKind = kind
		s.importSet = true
		return nil
	}
	prev := s.importKind
	if prev == kind {
		return nil
	}
	switch {
	case kind == ImportNone || prev == ImportNone:
		return ErrImportNoneNotAlone
	case kind == ImportAll || prev == ImportAll:
		return ErrImportAllNotAlone
	default:
		// Default mixed with Only
		return ErrImportOnlyMixed
	}
}

// AddImportName records a name listed in IMPORT,ONLY. An empty name is
// not a name and is refused.
func (s *Scope) AddImportName(name string) bool {
	if name == "" {
		return false
	}
	if s.importNames == nil {
		s.importNames = make(map[source.StringID]struct{})
	}
	s.importNames[s.table.strings.InternName(name)] = struct{}{}
	return true
}

// ImportNames returns the recorded IMPORT names, sorted.
func (s *Scope) ImportNames() []string {
	out := make([]string, 0, len(s.importNames))
	for id := range s.importNames {
		out = append(out, s.table.strings.MustLookup(id))
	}
	slices.Sort(out)
	return out
}

// FindComponent looks name up in a derived type and then in the types it
// extends. Calling it on any other kind of scope is a caller bug.
func (s *Scope) FindComponent(name string) *Symbol {
	if !s.IsDerivedType() {
		s.table.fail("FindComponent(%q) called on %s scope %d", name, s.kind, s.id)
	}
	id, ok := s.table.strings.FindName(name)
	if !ok {
		return nil
	}
	limit := s.table.scopes.len()
	for scope, steps := s, 0; scope != nil; scope, steps = scope.GetDerivedTypeParent(), steps+1 {
		if sym := scope.symbols[id]; sym != nil {
			return sym
		}
		if steps > limit {
			s.table.fail("cycle in EXTENDS chain of %s", s.describe())
		}
	}
	return nil
}

// describe names a scope for internal error messages.
func (s *Scope) describe() string {
	if sym := s.GetSymbol(); sym != nil {
		return fmt.Sprintf("%s scope %d (%s)", s.kind, s.id, sym.Name())
	}
	return fmt.Sprintf("%s scope %d", s.kind, s.id)
}
