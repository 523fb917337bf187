package symbols

import (
	"testing"

	"fsema/internal/types"
)

func TestLengthlessTypesAreInterned(t *testing.T) {
	tab := NewTable(Options{})
	m := module(t, tab, "m")
	inner := m.MakeScope(ScopeSubprogram, nil)

	i4 := m.MakeNumericType(types.CategoryInteger, 4)
	if inner.MakeNumericType(types.CategoryInteger, 4) != i4 {
		t.Fatalf("equal numeric types must be identical across scopes")
	}
	if m.MakeNumericType(types.CategoryInteger, 8) == i4 || m.MakeNumericType(types.CategoryReal, 4) == i4 {
		t.Fatalf("different kinds or categories must differ")
	}
	if m.MakeLogicalType(4) != inner.MakeLogicalType(4) {
		t.Fatalf("logical types must be interned")
	}
	if m.MakeTypeStarType() != inner.MakeTypeStarType() || m.MakeClassStarType() != inner.MakeClassStarType() {
		t.Fatalf("star types must be interned")
	}
	if len(m.DeclTypes()) != 0 || len(inner.DeclTypes()) != 0 {
		t.Fatalf("lengthless types must live in Global")
	}
	if got := len(tab.Global().DeclTypes()); got != 6 {
		t.Fatalf("Global holds %d types, want 6", got)
	}
	if tab.Global().FindType(&DeclTypeSpec{category: DeclNumeric, numeric: types.CategoryInteger, kind: 4}) != i4 {
		t.Fatalf("FindType must locate the interned descriptor")
	}
	expectInternal(t, "non-numeric", func() { m.MakeNumericType(types.CategoryLogical, 4) })
}

func TestCharacterAndDerivedTypesAreNotShared(t *testing.T) {
	tab := NewTable(Options{})
	m := module(t, tab, "m")
	a := m.MakeCharacterType(types.ExplicitParam(types.IntConst(8)), 1)
	b := m.MakeCharacterType(types.ExplicitParam(types.IntConst(8)), 1)
	if a == b || !a.Equal(b) {
		t.Fatalf("character types must be distinct but structurally equal")
	}

	tsym := mustSymbol(t, m, "t", &DerivedTypeDetails{})
	d1 := m.MakeDerivedType(DeclTypeDerived, NewDerivedTypeSpec(tsym))
	d2 := m.MakeDerivedType(DeclTypeDerived, NewDerivedTypeSpec(tsym))
	if d1 == d2 || !d1.Equal(d2) {
		t.Fatalf("derived types must be distinct but structurally equal")
	}
	if got := len(m.DeclTypes()); got != 4 {
		t.Fatalf("scope holds %d types, want 4", got)
	}
	expectInternal(t, "MakeDerivedType", func() { m.MakeDerivedType(DeclCharacter, NewDerivedTypeSpec(tsym)) })
}

type fakeExpr struct {
	dt    DynamicType
	known bool
	len   types.LenExpr
}

func (e fakeExpr) DynamicType() (DynamicType, bool) { return e.dt, e.known }
func (e fakeExpr) Len() types.LenExpr               { return e.len }

func TestGetType(t *testing.T) {
	tab := NewTable(Options{})
	m := module(t, tab, "m")
	tsym := mustSymbol(t, m, "t", &DerivedTypeDetails{})
	explicitLen := types.ExplicitParam(types.Symbolic("n"))

	cases := []struct {
		name string
		expr fakeExpr
		want string
	}{
		{"unknown", fakeExpr{}, ""},
		{"assumed", fakeExpr{known: true, dt: DynamicType{AssumedType: true}}, "TYPE(*)"},
		{"unlimited", fakeExpr{known: true, dt: DynamicType{UnlimitedPolymorphic: true, Category: types.CategoryDerived}}, "CLASS(*)"},
		{"real", fakeExpr{known: true, dt: DynamicType{Category: types.CategoryReal, Kind: 8}}, "REAL(8)"},
		{"logical", fakeExpr{known: true, dt: DynamicType{Category: types.CategoryLogical, Kind: 1}}, "LOGICAL(1)"},
		{"char param", fakeExpr{known: true, dt: DynamicType{Category: types.CategoryCharacter, Kind: 1, CharLenParam: &explicitLen}}, "CHARACTER(n,1)"},
		{"char computed", fakeExpr{known: true, dt: DynamicType{Category: types.CategoryCharacter, Kind: 1, CharLength: types.IntConst(3)}, len: types.IntConst(9)}, "CHARACTER(3,1)"},
		{"char LEN", fakeExpr{known: true, dt: DynamicType{Category: types.CategoryCharacter, Kind: 1}, len: types.IntConst(9)}, "CHARACTER(9,1)"},
		{"char unknown", fakeExpr{known: true, dt: DynamicType{Category: types.CategoryCharacter, Kind: 1}}, ""},
		{"derived", fakeExpr{known: true, dt: DynamicType{Category: types.CategoryDerived, Derived: NewDerivedTypeSpec(tsym)}}, "TYPE(t)"},
		{"class", fakeExpr{known: true, dt: DynamicType{Category: types.CategoryDerived, Polymorphic: true, Derived: NewDerivedTypeSpec(tsym)}}, "CLASS(t)"},
	}
	for _, c := range cases {
		got := m.GetType(c.expr)
		switch {
		case c.want == "" && got != nil:
			t.Errorf("%s: GetType = %s, want nil", c.name, got)
		case c.want != "" && got == nil:
			t.Errorf("%s: GetType = nil, want %s", c.name, c.want)
		case got != nil && got.String() != c.want:
			t.Errorf("%s: GetType = %s, want %s", c.name, got, c.want)
		}
	}

	// the spec is copied, not shared with the evaluator
	spec := NewDerivedTypeSpec(tsym)
	got := m.GetType(fakeExpr{known: true, dt: DynamicType{Category: types.CategoryDerived, Derived: spec}})
	if got.DerivedTypeSpec() == spec {
		t.Fatalf("GetType must copy the derived type spec")
	}
}

func TestFindInstantiatedDerivedTypeWalksAncestors(t *testing.T) {
	tab := NewTable(Options{})
	m := module(t, tab, "m")
	tsym := mustSymbol(t, m, "t", &DerivedTypeDetails{})
	spec := NewDerivedTypeSpec(tsym).AddParam("k", types.ExplicitParam(types.IntConst(4)))
	decl := m.MakeDerivedType(DeclClassDerived, spec)
	inner := m.MakeScope(ScopeSubprogram, nil).MakeScope(ScopeBlockConstruct, nil)

	probe := NewDerivedTypeSpec(tsym).AddParam("k", types.ExplicitParam(types.IntConst(4)))
	if got := inner.FindInstantiatedDerivedType(probe, DeclClassDerived); got != decl {
		t.Fatalf("expected ancestor descriptor, got %v", got)
	}
	if inner.FindInstantiatedDerivedType(probe, DeclTypeDerived) != nil {
		t.Fatalf("category must participate in the match")
	}
	other := NewDerivedTypeSpec(tsym).AddParam("k", types.ExplicitParam(types.IntConst(8)))
	if inner.FindInstantiatedDerivedType(other, DeclClassDerived) != nil {
		t.Fatalf("parameter values must participate in the match")
	}
}
