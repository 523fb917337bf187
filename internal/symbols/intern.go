package symbols

import (
	"fsema/internal/trace"
	"fsema/internal/types"
)

// DeclTypes returns the descriptors owned by s in creation order.
func (s *Scope) DeclTypes() []*DeclTypeSpec { return s.declTypeSpecs }

// FindType returns the first descriptor of s structurally equal to spec.
func (s *Scope) FindType(spec *DeclTypeSpec) *DeclTypeSpec {
	for _, d := range s.declTypeSpecs {
		if d.Equal(spec) {
			return d
		}
	}
	return nil
}

// MakeNumericType returns the interned INTEGER, UNSIGNED, REAL or COMPLEX type.
func (s *Scope) MakeNumericType(category types.Category, kind int) *DeclTypeSpec {
	if !category.IsNumeric() {
		s.table.fail("MakeNumericType called with non-numeric category %s", category)
	}
	return s.table.global.makeLengthless(DeclTypeSpec{category: DeclNumeric, numeric: category, kind: kind})
}

// MakeLogicalType returns the interned LOGICAL type of the given kind.
func (s *Scope) MakeLogicalType(kind int) *DeclTypeSpec {
	return s.table.global.makeLengthless(DeclTypeSpec{category: DeclLogical, kind: kind})
}

// MakeTypeStarType returns the interned TYPE(*).
func (s *Scope) MakeTypeStarType() *DeclTypeSpec {
	return s.table.global.makeLengthless(DeclTypeSpec{category: DeclTypeStar})
}

// MakeClassStarType returns the interned CLASS(*).
func (s *Scope) MakeClassStarType() *DeclTypeSpec {
	return s.table.global.makeLengthless(DeclTypeSpec{category: DeclClassStar})
}

// makeLengthless must be called on the Global scope.
func (s *Scope) makeLengthless(spec DeclTypeSpec) *DeclTypeSpec {
	key := spec.key()
	if found := s.lengthless[key]; found != nil {
		return found
	}
	d := &spec
	s.lengthless[key] = d
	s.declTypeSpecs = append(s.declTypeSpecs, d)
	if s.table.tracer.Level().ShouldEmit(trace.ScopeNode) {
		trace.Point(s.table.tracer, trace.ScopeNode, "type.intern", d.String())
	}
	return d
}

// MakeCharacterType appends a new CHARACTER descriptor to s. Character
// types are never shared, since their length expressions are not
// comparable in general.
func (s *Scope) MakeCharacterType(length types.ParamValue, kind int) *DeclTypeSpec {
	d := &DeclTypeSpec{category: DeclCharacter, length: length, kind: kind}
	s.declTypeSpecs = append(s.declTypeSpecs, d)
	return d
}

// MakeDerivedType appends a new TYPE(spec) or CLASS(spec) descriptor to s.
func (s *Scope) MakeDerivedType(category DeclCategory, spec *DerivedTypeSpec) *DeclTypeSpec {
	if !category.IsDerived() {
		s.table.fail("MakeDerivedType called with category %s", category)
	}
	d := &DeclTypeSpec{category: category, derived: spec}
	s.declTypeSpecs = append(s.declTypeSpecs, d)
	return d
}

// GetType returns the declared type matching an analyzed expression, or
// nil when the expression's type cannot be determined yet.
func (s *Scope) GetType(expr TypedExpr) *DeclTypeSpec {
	dt, ok := expr.DynamicType()
	if !ok {
		return nil
	}
	if dt.AssumedType {
		return s.MakeTypeStarType()
	}
	if dt.UnlimitedPolymorphic {
		return s.MakeClassStarType()
	}
	switch dt.Category {
	case types.CategoryInteger, types.CategoryUnsigned, types.CategoryReal, types.CategoryComplex:
		return s.MakeNumericType(dt.Category, dt.Kind)
	case types.CategoryLogical:
		return s.MakeLogicalType(dt.Kind)
	case types.CategoryCharacter:
		if dt.CharLenParam != nil {
			return s.MakeCharacterType(*dt.CharLenParam, dt.Kind)
		}
		length := dt.CharLength
		if length == nil {
			length = expr.Len()
		}
		if length != nil {
			return s.MakeCharacterType(types.ExplicitParam(length), dt.Kind)
		}
	case types.CategoryDerived:
		if dt.Derived == nil {
			return nil
		}
		category := DeclTypeDerived
		if dt.Polymorphic {
			category = DeclClassDerived
		}
		return s.MakeDerivedType(category, dt.Derived.Clone())
	}
	return nil
}

// FindInstantiatedDerivedType searches s and its ancestors up to Global for
// a descriptor equal to category(spec).
func (s *Scope) FindInstantiatedDerivedType(spec *DerivedTypeSpec, category DeclCategory) *DeclTypeSpec {
	probe := &DeclTypeSpec{category: category, derived: spec}
	for scope := s; scope != nil; scope = scope.parent {
		if found := scope.FindType(probe); found != nil {
			return found
		}
		if scope.IsGlobal() {
			break
		}
	}
	return nil
}

// InstantiateDerivedTypes instantiates every derived descriptor of s.
// It must run after the type parameters of those descriptors are resolved.
func (s *Scope) InstantiateDerivedTypes() {
	n := len(s.declTypeSpecs)
	for i := 0; i < n; i++ {
		d := s.declTypeSpecs[i]
		if d.category.IsDerived() {
			d.derived.Instantiate(s)
		}
	}
}
