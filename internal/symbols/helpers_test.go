package symbols

import (
	"strings"
	"testing"

	"fsema/internal/source"
)

type fixture struct {
	table *Table
	fileA source.FileID
	fileB source.FileID
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	fs := source.NewFileSet()
	a := fs.AddVirtual("a.f90", []byte(strings.Repeat("x", 200)))
	b := fs.AddVirtual("b.f90", []byte(strings.Repeat("y", 200)))
	return fixture{table: NewTable(Options{Files: fs}), fileA: a, fileB: b}
}

// expectInternal runs fn and requires an InternalError mentioning want.
func expectInternal(t *testing.T, want string, fn func()) {
	t.Helper()
	var err error
	func() {
		defer RecoverInternal(&err)
		fn()
	}()
	if err == nil {
		t.Fatalf("expected internal error containing %q", want)
	}
	if !strings.Contains(err.Error(), want) {
		t.Fatalf("internal error %q does not mention %q", err, want)
	}
}

func mustSymbol(t *testing.T, s *Scope, name string, details Details) *Symbol {
	t.Helper()
	sym, ok := s.MakeSymbol(name, source.Span{}, 0, details)
	if !ok {
		t.Fatalf("symbol %q already exists in %s", name, s.describe())
	}
	return sym
}

// module creates "module name" under Global.
func module(t *testing.T, tab *Table, name string) *Scope {
	t.Helper()
	sym := mustSymbol(t, tab.Global(), name, &ModuleDetails{})
	return tab.Global().MakeScope(ScopeModule, sym)
}

// derivedType declares a derived type named name in s.
func derivedType(t *testing.T, s *Scope, name string, parent *Symbol) *Scope {
	t.Helper()
	details := &DerivedTypeDetails{}
	if parent != nil {
		details.ParentSpec = NewDerivedTypeSpec(parent)
	}
	sym := mustSymbol(t, s, name, details)
	return s.MakeScope(ScopeDerivedType, sym)
}
