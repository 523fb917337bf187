package symbols

import (
	"slices"
	"strings"

	"fsema/internal/types"
)

// Details is the kind-specific payload of a Symbol. The set of variants is
// closed; the evaluator and later passes own the richer information.
type Details interface {
	// Clone returns a copy that shares no mutable state with the receiver.
	Clone() Details
	String() string
	isDetails()
}

// ModuleDetails describe a module or submodule.
type ModuleDetails struct {
	IsSubmodule bool
	// Parent is the module or submodule a submodule extends.
	Parent *Scope
	// Ancestor is the module at the root of the submodule tree.
	Ancestor *Scope
}

func (d *ModuleDetails) Clone() Details { c := *d; return &c }
func (*ModuleDetails) isDetails()       {}

func (d *ModuleDetails) String() string {
	if !d.IsSubmodule {
		return "Module"
	}
	var sb strings.Builder
	sb.WriteString("Submodule")
	if d.Parent != nil && d.Parent.Symbol() != nil {
		sb.WriteString(" parent: ")
		sb.WriteString(d.Parent.Symbol().Name())
	}
	return sb.String()
}

// SubprogramDetails describe a function or subroutine, including interface bodies.
type SubprogramDetails struct {
	IsInterface bool
	IsFunction  bool
}

func (d *SubprogramDetails) Clone() Details { c := *d; return &c }
func (*SubprogramDetails) isDetails()       {}

func (d *SubprogramDetails) String() string {
	s := "Subprogram"
	if d.IsFunction {
		s += " function"
	}
	if d.IsInterface {
		s += " (interface)"
	}
	return s
}

// DerivedTypeDetails describe a derived type definition.
type DerivedTypeDetails struct {
	// ParentSpec is the type named in EXTENDS, or nil.
	ParentSpec *DerivedTypeSpec
}

func (d *DerivedTypeDetails) Clone() Details {
	c := *d
	if d.ParentSpec != nil {
		c.ParentSpec = d.ParentSpec.Clone()
	}
	return &c
}
func (*DerivedTypeDetails) isDetails() {}

func (d *DerivedTypeDetails) String() string {
	if d.ParentSpec == nil {
		return "DerivedType"
	}
	return "DerivedType extends: " + d.ParentSpec.Name()
}

// TypeParamDetails describe a KIND or LEN parameter of a derived type.
type TypeParamDetails struct {
	Attr types.TypeParamAttr
	Type *DeclTypeSpec
	Init types.LenExpr
}

func (d *TypeParamDetails) Clone() Details { c := *d; return &c }
func (*TypeParamDetails) isDetails()       {}

func (d *TypeParamDetails) String() string {
	s := "TypeParam " + d.Attr.String()
	if d.Type != nil {
		s += " type: " + d.Type.String()
	}
	if d.Init != nil {
		s += " init: " + d.Init.String()
	}
	return s
}

// ObjectDetails describe a data object or component.
type ObjectDetails struct {
	Type *DeclTypeSpec
}

func (d *ObjectDetails) Clone() Details { c := *d; return &c }
func (*ObjectDetails) isDetails()       {}

func (d *ObjectDetails) String() string {
	if d.Type == nil {
		return "ObjectEntity"
	}
	return "ObjectEntity type: " + d.Type.String()
}

// CommonBlockDetails list the objects stored in a common block.
type CommonBlockDetails struct {
	Objects []*Symbol
}

func (d *CommonBlockDetails) Clone() Details {
	return &CommonBlockDetails{Objects: slices.Clone(d.Objects)}
}
func (*CommonBlockDetails) isDetails() {}

func (d *CommonBlockDetails) String() string {
	var sb strings.Builder
	sb.WriteString("CommonBlockDetails:")
	for _, obj := range d.Objects {
		sb.WriteString(" ")
		sb.WriteString(obj.Name())
	}
	return sb.String()
}

// MiscDetails cover symbols that carry no structured payload here.
type MiscDetails struct {
	Note string
}

func (d *MiscDetails) Clone() Details { c := *d; return &c }
func (*MiscDetails) isDetails()       {}

func (d *MiscDetails) String() string {
	if d.Note == "" {
		return "Misc"
	}
	return "Misc: " + d.Note
}
