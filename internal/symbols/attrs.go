package symbols

import (
	"fmt"
	"strings"
)

// Attr is a Fortran entity attribute.
type Attr uint8

const (
	AttrAbstract Attr = iota
	AttrAllocatable
	AttrAsynchronous
	AttrBindC
	AttrContiguous
	AttrDeferred
	AttrElemental
	AttrExternal
	AttrImpure
	AttrIntentIn
	AttrIntentInOut
	AttrIntentOut
	AttrIntrinsic
	AttrModule
	AttrNoPass
	AttrNonOverridable
	AttrOptional
	AttrParameter
	AttrPass
	AttrPointer
	AttrPrivate
	AttrProtected
	AttrPublic
	AttrPure
	AttrRecursive
	AttrSave
	AttrTarget
	AttrValue
	AttrVolatile
	attrCount
)

var attrNames = [attrCount]string{
	"ABSTRACT", "ALLOCATABLE", "ASYNCHRONOUS", "BIND(C)", "CONTIGUOUS",
	"DEFERRED", "ELEMENTAL", "EXTERNAL", "IMPURE", "INTENT(IN)",
	"INTENT(INOUT)", "INTENT(OUT)", "INTRINSIC", "MODULE", "NOPASS",
	"NON_OVERRIDABLE", "OPTIONAL", "PARAMETER", "PASS", "POINTER",
	"PRIVATE", "PROTECTED", "PUBLIC", "PURE", "RECURSIVE",
	"SAVE", "TARGET", "VALUE", "VOLATILE",
}

func (a Attr) String() string {
	if a < attrCount {
		return attrNames[a]
	}
	return fmt.Sprintf("Attr(%d)", a)
}

// ParseAttr accepts the attribute keyword in any case, e.g. "save" or "bind(c)".
func ParseAttr(s string) (Attr, bool) {
	s = strings.ToUpper(strings.ReplaceAll(s, " ", ""))
	for i, name := range attrNames {
		if name == s {
			return Attr(i), true
		}
	}
	return 0, false
}

// Attrs is a set of Attr.
type Attrs uint32

// AttrsOf builds a set from the listed attributes.
func AttrsOf(list ...Attr) Attrs {
	var out Attrs
	for _, a := range list {
		out = out.With(a)
	}
	return out
}

func (s Attrs) Has(a Attr) bool      { return s&(1<<a) != 0 }
func (s Attrs) With(a Attr) Attrs    { return s | 1<<a }
func (s Attrs) Without(a Attr) Attrs { return s &^ (1 << a) }

// String lists the attributes in declaration-keyword order, comma separated.
func (s Attrs) String() string {
	if s == 0 {
		return ""
	}
	parts := make([]string, 0, 4)
	for a := Attr(0); a < attrCount; a++ {
		if s.Has(a) {
			parts = append(parts, attrNames[a])
		}
	}
	return strings.Join(parts, ", ")
}

// Flag marks a symbol property that is not a source-level attribute.
type Flag uint8

const (
	FlagFunction Flag = iota
	FlagSubroutine
	FlagImplicit
	FlagCrayPointer
	FlagCrayPointee
	FlagStmtFunction
	FlagModFile
	FlagError
	flagCount
)

var flagNames = [flagCount]string{
	"Function", "Subroutine", "Implicit", "CrayPointer",
	"CrayPointee", "StmtFunction", "ModFile", "Error",
}

func (f Flag) String() string {
	if f < flagCount {
		return flagNames[f]
	}
	return fmt.Sprintf("Flag(%d)", f)
}

// ParseFlag matches a flag name case-insensitively.
func ParseFlag(s string) (Flag, bool) {
	for i, name := range flagNames {
		if strings.EqualFold(name, s) {
			return Flag(i), true
		}
	}
	return 0, false
}

// Flags is a set of Flag.
type Flags uint16

func (s Flags) Has(f Flag) bool   { return s&(1<<f) != 0 }
func (s Flags) With(f Flag) Flags { return s | 1<<f }

func (s Flags) String() string {
	if s == 0 {
		return ""
	}
	parts := make([]string, 0, 2)
	for f := Flag(0); f < flagCount; f++ {
		if s.Has(f) {
			parts = append(parts, flagNames[f])
		}
	}
	return strings.Join(parts, " ")
}
