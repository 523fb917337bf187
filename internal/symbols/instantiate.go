package symbols

import (
	"fsema/internal/trace"
	"fsema/internal/types"
)

// Instantiate resolves the spec to a scope holding its components and
// returns it. Repeated calls return the same scope. A type without
// parameters is its own instantiation; a parameterized one reuses an equal
// instantiation visible from containing, or gets a new DerivedType scope
// there. Nil is returned while the type symbol has no scope.
func (s *DerivedTypeSpec) Instantiate(containing *Scope) *Scope {
	if s.scope != nil {
		return s.scope
	}
	if s.typeSymbol == nil || s.typeSymbol.scope == nil {
		return nil
	}
	typeScope := s.typeSymbol.scope
	if !typeScope.IsParameterizedDerivedType() {
		s.scope = typeScope
		return s.scope
	}
	if prior := containing.findInstantiation(s); prior != nil {
		s.scope = prior
		return s.scope
	}

	t := containing.table
	inst := t.newScope(containing, ScopeDerivedType, nil)
	inst.derivedTypeSpec = s
	s.scope = inst
	for _, comp := range typeScope.GetSymbols() {
		copied := inst.CopySymbol(comp)
		if copied == nil {
			continue
		}
		if tp, ok := copied.details.(*TypeParamDetails); ok {
			if v, bound := s.Param(comp.Name()); bound && v.IsExplicit() {
				tp.Init = v.Expr()
			}
		}
	}
	if t.tracer.Level().ShouldEmit(trace.ScopeNode) {
		trace.Point(t.tracer, trace.ScopeNode, "type.instantiate", s.String())
	}
	return inst
}

// findInstantiation looks for another, already instantiated spec equal to
// spec in s and its ancestors.
func (s *Scope) findInstantiation(spec *DerivedTypeSpec) *Scope {
	for scope := s; scope != nil; scope = scope.parent {
		for _, d := range scope.declTypeSpecs {
			if !d.category.IsDerived() || d.derived == spec || d.derived.scope == nil {
				continue
			}
			if d.derived.Equal(spec) {
				return d.derived.scope
			}
		}
	}
	return nil
}

// GetDerivedTypeParent returns the scope of the type this derived type
// extends, or nil.
func (s *Scope) GetDerivedTypeParent() *Scope {
	sym := s.GetSymbol()
	if sym == nil {
		return nil
	}
	d, ok := sym.details.(*DerivedTypeDetails)
	if !ok || d.ParentSpec == nil {
		return nil
	}
	if d.ParentSpec.scope != nil {
		return d.ParentSpec.scope
	}
	if d.ParentSpec.typeSymbol != nil {
		return d.ParentSpec.typeSymbol.scope
	}
	return nil
}

// GetDerivedTypeBase follows EXTENDS to the root of the type hierarchy.
func (s *Scope) GetDerivedTypeBase() *Scope {
	limit := s.table.scopes.len()
	child := s
	for steps := 0; ; steps++ {
		parent := child.GetDerivedTypeParent()
		if parent == nil {
			return child
		}
		if steps > limit {
			s.table.fail("cycle in EXTENDS chain of %s", s.describe())
		}
		child = parent
	}
}

// IsParameterizedDerivedType reports whether this derived type or a type
// it extends declares any type parameter.
func (s *Scope) IsParameterizedDerivedType() bool {
	return s.hasTypeParam(func(*TypeParamDetails) bool { return true })
}

// IsDerivedTypeWithLengthParameter reports whether this derived type or a
// type it extends declares a LEN parameter.
func (s *Scope) IsDerivedTypeWithLengthParameter() bool {
	return s.hasTypeParam(func(d *TypeParamDetails) bool { return d.Attr == types.TypeParamLen })
}

// IsDerivedTypeWithKindParameter reports whether this derived type or a
// type it extends declares a KIND parameter.
func (s *Scope) IsDerivedTypeWithKindParameter() bool {
	return s.hasTypeParam(func(d *TypeParamDetails) bool { return d.Attr == types.TypeParamKind })
}

func (s *Scope) hasTypeParam(match func(*TypeParamDetails) bool) bool {
	limit := s.table.scopes.len()
	for scope, steps := s, 0; scope != nil && scope.IsDerivedType(); scope, steps = scope.GetDerivedTypeParent(), steps+1 {
		if steps > limit {
			s.table.fail("cycle in EXTENDS chain of %s", s.describe())
		}
		for _, sym := range scope.symbols {
			if d, ok := sym.details.(*TypeParamDetails); ok && match(d) {
				return true
			}
		}
	}
	return false
}
