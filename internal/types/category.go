// Package types holds the vocabulary the expression evaluator shares with the
// symbol table: intrinsic type categories, type-parameter values and the
// opaque length expressions carried by character types.
package types

import (
	"fmt"
	"strings"
)

// Category is the intrinsic type category of a value.
type Category uint8

const (
	CategoryInteger Category = iota
	CategoryUnsigned
	CategoryReal
	CategoryComplex
	CategoryCharacter
	CategoryLogical
	CategoryDerived
)

func (c Category) String() string {
	switch c {
	case CategoryInteger:
		return "INTEGER"
	case CategoryUnsigned:
		return "UNSIGNED"
	case CategoryReal:
		return "REAL"
	case CategoryComplex:
		return "COMPLEX"
	case CategoryCharacter:
		return "CHARACTER"
	case CategoryLogical:
		return "LOGICAL"
	case CategoryDerived:
		return "TYPE"
	default:
		return fmt.Sprintf("Category(%d)", c)
	}
}

// IsNumeric reports whether c is one of the arithmetic categories.
func (c Category) IsNumeric() bool {
	switch c {
	case CategoryInteger, CategoryUnsigned, CategoryReal, CategoryComplex:
		return true
	default:
		return false
	}
}

// DefaultKind returns the kind selected when a declaration omits one.
func (c Category) DefaultKind() int {
	switch c {
	case CategoryCharacter:
		return 1
	case CategoryDerived:
		return 0
	default:
		return 4
	}
}

// ParseCategory maps a case-insensitive intrinsic type keyword to its category.
// "double precision" is accepted as REAL.
func ParseCategory(s string) (Category, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "integer":
		return CategoryInteger, true
	case "unsigned":
		return CategoryUnsigned, true
	case "real", "double precision", "doubleprecision":
		return CategoryReal, true
	case "complex":
		return CategoryComplex, true
	case "character":
		return CategoryCharacter, true
	case "logical":
		return CategoryLogical, true
	case "type":
		return CategoryDerived, true
	default:
		return 0, false
	}
}

// TypeParamAttr distinguishes KIND from LEN derived-type parameters.
type TypeParamAttr uint8

const (
	TypeParamKind TypeParamAttr = iota
	TypeParamLen
)

func (a TypeParamAttr) String() string {
	switch a {
	case TypeParamKind:
		return "KIND"
	case TypeParamLen:
		return "LEN"
	default:
		return fmt.Sprintf("TypeParamAttr(%d)", a)
	}
}
