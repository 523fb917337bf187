package symbols

import (
	"fmt"
	"strconv"
	"strings"

	"fsema/internal/types"
)

// DeclCategory is the variant tag of a DeclTypeSpec.
type DeclCategory uint8

const (
	DeclNumeric DeclCategory = iota
	DeclLogical
	DeclCharacter
	DeclTypeDerived
	DeclClassDerived
	DeclTypeStar
	DeclClassStar
)

func (c DeclCategory) String() string {
	switch c {
	case DeclNumeric:
		return "Numeric"
	case DeclLogical:
		return "Logical"
	case DeclCharacter:
		return "Character"
	case DeclTypeDerived:
		return "TypeDerived"
	case DeclClassDerived:
		return "ClassDerived"
	case DeclTypeStar:
		return "TypeStar"
	case DeclClassStar:
		return "ClassStar"
	default:
		return fmt.Sprintf("DeclCategory(%d)", c)
	}
}

// IsDerived reports whether the variant carries a DerivedTypeSpec.
func (c DeclCategory) IsDerived() bool {
	return c == DeclTypeDerived || c == DeclClassDerived
}

// DeclTypeSpec is a declared type. Lengthless descriptors are interned in
// the Global scope, so pointer equality is type equality for them.
type DeclTypeSpec struct {
	category DeclCategory
	numeric  types.Category // DeclNumeric only
	kind     int
	length   types.ParamValue // DeclCharacter only
	derived  *DerivedTypeSpec // DeclTypeDerived, DeclClassDerived
}

func (d *DeclTypeSpec) Category() DeclCategory { return d.category }

// NumericCategory is meaningful for DeclNumeric only.
func (d *DeclTypeSpec) NumericCategory() types.Category { return d.numeric }
func (d *DeclTypeSpec) Kind() int                       { return d.kind }
func (d *DeclTypeSpec) Length() types.ParamValue        { return d.length }
func (d *DeclTypeSpec) DerivedTypeSpec() *DerivedTypeSpec {
	return d.derived
}

// IsLengthless reports whether the descriptor can be compared without
// looking at parameter expressions.
func (d *DeclTypeSpec) IsLengthless() bool {
	switch d.category {
	case DeclNumeric, DeclLogical, DeclTypeStar, DeclClassStar:
		return true
	default:
		return false
	}
}

// Equal reports structural equality.
func (d *DeclTypeSpec) Equal(o *DeclTypeSpec) bool {
	if d == o {
		return true
	}
	if d == nil || o == nil || d.category != o.category {
		return false
	}
	switch d.category {
	case DeclNumeric:
		return d.numeric == o.numeric && d.kind == o.kind
	case DeclLogical:
		return d.kind == o.kind
	case DeclCharacter:
		return d.kind == o.kind && d.length.Equal(o.length)
	case DeclTypeDerived, DeclClassDerived:
		return d.derived.Equal(o.derived)
	default:
		return true
	}
}

func (d *DeclTypeSpec) String() string {
	switch d.category {
	case DeclNumeric:
		return d.numeric.String() + "(" + strconv.Itoa(d.kind) + ")"
	case DeclLogical:
		return "LOGICAL(" + strconv.Itoa(d.kind) + ")"
	case DeclCharacter:
		return "CHARACTER(" + d.length.String() + "," + strconv.Itoa(d.kind) + ")"
	case DeclTypeDerived:
		return "TYPE(" + d.derived.String() + ")"
	case DeclClassDerived:
		return "CLASS(" + d.derived.String() + ")"
	case DeclTypeStar:
		return "TYPE(*)"
	case DeclClassStar:
		return "CLASS(*)"
	default:
		return d.category.String()
	}
}

// lengthlessKey is the cache key for interned lengthless types.
type lengthlessKey struct {
	category DeclCategory
	numeric  types.Category
	kind     int
}

func (d *DeclTypeSpec) key() lengthlessKey {
	return lengthlessKey{category: d.category, numeric: d.numeric, kind: d.kind}
}

// TypeParamValue binds a derived-type parameter name to its value.
type TypeParamValue struct {
	Name  string
	Value types.ParamValue
}

// DerivedTypeSpec names a derived type together with its parameter values.
// Instantiate resolves it to the scope holding its components.
type DerivedTypeSpec struct {
	typeSymbol *Symbol
	params     []TypeParamValue
	scope      *Scope
}

// NewDerivedTypeSpec returns an uninstantiated spec for the given type symbol.
func NewDerivedTypeSpec(typeSymbol *Symbol) *DerivedTypeSpec {
	return &DerivedTypeSpec{typeSymbol: typeSymbol}
}

func (s *DerivedTypeSpec) TypeSymbol() *Symbol { return s.typeSymbol }

func (s *DerivedTypeSpec) Name() string {
	if s.typeSymbol == nil {
		return "<anonymous>"
	}
	return s.typeSymbol.Name()
}

// Scope returns the instantiated scope, or nil before instantiation.
func (s *DerivedTypeSpec) Scope() *Scope { return s.scope }

// Params returns the parameter values in the order they were added.
func (s *DerivedTypeSpec) Params() []TypeParamValue { return s.params }

// AddParam sets the value for a type parameter, replacing an earlier one.
func (s *DerivedTypeSpec) AddParam(name string, value types.ParamValue) *DerivedTypeSpec {
	for i := range s.params {
		if s.params[i].Name == name {
			s.params[i].Value = value
			return s
		}
	}
	s.params = append(s.params, TypeParamValue{Name: name, Value: value})
	return s
}

// Param returns the value bound to name.
func (s *DerivedTypeSpec) Param(name string) (types.ParamValue, bool) {
	for _, p := range s.params {
		if p.Name == name {
			return p.Value, true
		}
	}
	return types.ParamValue{}, false
}

// Clone copies the spec, keeping any instantiated scope.
func (s *DerivedTypeSpec) Clone() *DerivedTypeSpec {
	c := *s
	c.params = append([]TypeParamValue(nil), s.params...)
	return &c
}

// Equal reports whether both specs name the same type symbol with the same
// parameter values, regardless of parameter order.
func (s *DerivedTypeSpec) Equal(o *DerivedTypeSpec) bool {
	if s == o {
		return true
	}
	if s == nil || o == nil || s.typeSymbol != o.typeSymbol || len(s.params) != len(o.params) {
		return false
	}
	for _, p := range s.params {
		v, ok := o.Param(p.Name)
		if !ok || !v.Equal(p.Value) {
			return false
		}
	}
	return true
}

func (s *DerivedTypeSpec) String() string {
	if len(s.params) == 0 {
		return s.Name()
	}
	var sb strings.Builder
	sb.WriteString(s.Name())
	sb.WriteString("(")
	for i, p := range s.params {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(p.Name)
		sb.WriteString("=")
		sb.WriteString(p.Value.String())
	}
	sb.WriteString(")")
	return sb.String()
}

// DynamicType is what the expression evaluator knows about a value's type.
type DynamicType struct {
	Category types.Category
	Kind     int
	// CharLenParam is an explicit character length parameter (e.g. from a declaration).
	CharLenParam *types.ParamValue
	// CharLength is a length the evaluator computed.
	CharLength           types.LenExpr
	Derived              *DerivedTypeSpec
	Polymorphic          bool
	AssumedType          bool // TYPE(*)
	UnlimitedPolymorphic bool // CLASS(*)
}

// TypedExpr is an analyzed expression as seen by GetType.
type TypedExpr interface {
	// DynamicType reports the type, or false when it is not yet known.
	DynamicType() (DynamicType, bool)
	// Len returns the LEN of a character expression, or nil.
	Len() types.LenExpr
}
