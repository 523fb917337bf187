package driver

import (
	"fmt"

	"fsema/internal/symbols"
	"fsema/internal/types"
	"fsema/internal/unit"
)

// unitExpr stands in for an analyzed expression described by a unit.
type unitExpr struct {
	dyn    symbols.DynamicType
	known  bool
	length types.LenExpr
}

func (e unitExpr) DynamicType() (symbols.DynamicType, bool) { return e.dyn, e.known }
func (e unitExpr) Len() types.LenExpr                       { return e.length }

func newUnitExpr(scope *symbols.Scope, e unit.Expr) (unitExpr, error) {
	var out unitExpr
	if e.Len != "" {
		out.length = unit.ParseExpr(e.Len)
	}
	switch {
	case e.Assumed:
		out.dyn.AssumedType, out.known = true, true
		return out, nil
	case e.Unlimited:
		out.dyn.UnlimitedPolymorphic, out.known = true, true
		return out, nil
	case e.Category == "":
		// typeless, e.g. a BOZ literal or a NULL()
		return out, nil
	}

	cat, ok := types.ParseCategory(e.Category)
	if !ok {
		return out, fmt.Errorf("%w: expression %q has unknown category %q", errUnitShape, e.Text, e.Category)
	}
	out.dyn.Category, out.known = cat, true
	out.dyn.Kind = e.Kind
	if out.dyn.Kind == 0 {
		out.dyn.Kind = cat.DefaultKind()
	}
	if e.LenParam != "" {
		pv := unit.ParseParamValue(e.LenParam)
		out.dyn.CharLenParam = &pv
	}
	if e.Length != "" {
		out.dyn.CharLength = unit.ParseExpr(e.Length)
	}
	if cat == types.CategoryDerived {
		if e.Derived == "" {
			return out, fmt.Errorf("%w: derived expression %q names no type", errUnitShape, e.Text)
		}
		spec, err := unit.ParseDerivedTypeSpec(scope, e.Derived)
		if err != nil {
			return out, err
		}
		out.dyn.Derived = spec
		out.dyn.Polymorphic = e.Polymorphic
	}
	return out, nil
}
