package types

import "testing"

func TestParseCategory(t *testing.T) {
	cases := []struct {
		in   string
		want Category
		ok   bool
	}{
		{"INTEGER", CategoryInteger, true},
		{" real ", CategoryReal, true},
		{"Double Precision", CategoryReal, true},
		{"character", CategoryCharacter, true},
		{"logical", CategoryLogical, true},
		{"type", CategoryDerived, true},
		{"class", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseCategory(c.in)
		if ok != c.ok || (ok && got != c.want) {
			t.Errorf("ParseCategory(%q) = %v, %v; want %v, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestCategoryPredicates(t *testing.T) {
	if !CategoryComplex.IsNumeric() || CategoryLogical.IsNumeric() || CategoryCharacter.IsNumeric() {
		t.Fatalf("IsNumeric misclassifies categories")
	}
	if CategoryCharacter.DefaultKind() != 1 || CategoryReal.DefaultKind() != 4 {
		t.Fatalf("unexpected default kinds")
	}
}

func TestParamValueEqual(t *testing.T) {
	cases := []struct {
		name string
		a, b ParamValue
		want bool
	}{
		{"same constant", ExplicitParam(IntConst(8)), ExplicitParam(IntConst(8)), true},
		{"different constant", ExplicitParam(IntConst(8)), ExplicitParam(IntConst(4)), false},
		{"same symbolic", ExplicitParam(Symbolic("n")), ExplicitParam(Symbolic("n")), true},
		{"constant vs symbolic", ExplicitParam(IntConst(8)), ExplicitParam(Symbolic("8")), false},
		{"assumed", AssumedParam(), AssumedParam(), true},
		{"assumed vs deferred", AssumedParam(), DeferredParam(), false},
		{"nil exprs", ExplicitParam(nil), ExplicitParam(nil), true},
	}
	for _, c := range cases {
		if got := c.a.Equal(c.b); got != c.want {
			t.Errorf("%s: Equal = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestParamValueString(t *testing.T) {
	if s := AssumedParam().String(); s != "*" {
		t.Errorf("assumed = %q", s)
	}
	if s := DeferredParam().String(); s != ":" {
		t.Errorf("deferred = %q", s)
	}
	if s := ExplicitParam(IntConst(-3)).String(); s != "-3" {
		t.Errorf("explicit = %q", s)
	}
}
