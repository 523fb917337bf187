package types

import "strconv"

// LenExpr is an analyzed integer expression, typically a character length.
// The symbol table never evaluates it; it only renders and compares it.
type LenExpr interface {
	String() string
	// Constant returns the folded value when the expression is a constant.
	Constant() (int64, bool)
}

// IntConst is a folded integer constant.
type IntConst int64

func (c IntConst) String() string          { return strconv.FormatInt(int64(c), 10) }
func (c IntConst) Constant() (int64, bool) { return int64(c), true }

// Symbolic is an expression the evaluator could not fold, kept by its text.
type Symbolic string

func (s Symbolic) String() string        { return string(s) }
func (Symbolic) Constant() (int64, bool) { return 0, false }

// EqualExpr compares two expressions by value when both fold and by text otherwise.
func EqualExpr(a, b LenExpr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	av, aok := a.Constant()
	bv, bok := b.Constant()
	if aok || bok {
		return aok && bok && av == bv
	}
	return a.String() == b.String()
}

// ParamCategory says how a type parameter value was written.
type ParamCategory uint8

const (
	ParamExplicit ParamCategory = iota
	ParamAssumed                // *
	ParamDeferred               // :
)

// ParamValue is the value of a LEN or KIND type parameter.
type ParamValue struct {
	category ParamCategory
	expr     LenExpr
}

// ExplicitParam wraps an expression value.
func ExplicitParam(e LenExpr) ParamValue {
	return ParamValue{category: ParamExplicit, expr: e}
}

// AssumedParam is the "*" value.
func AssumedParam() ParamValue { return ParamValue{category: ParamAssumed} }

// DeferredParam is the ":" value.
func DeferredParam() ParamValue { return ParamValue{category: ParamDeferred} }

func (p ParamValue) Category() ParamCategory { return p.category }
func (p ParamValue) IsExplicit() bool        { return p.category == ParamExplicit }
func (p ParamValue) IsAssumed() bool         { return p.category == ParamAssumed }
func (p ParamValue) IsDeferred() bool        { return p.category == ParamDeferred }

// Expr returns the explicit expression, or nil.
func (p ParamValue) Expr() LenExpr { return p.expr }

// Equal reports structural equality.
func (p ParamValue) Equal(o ParamValue) bool {
	if p.category != o.category {
		return false
	}
	if p.category != ParamExplicit {
		return true
	}
	return EqualExpr(p.expr, o.expr)
}

func (p ParamValue) String() string {
	switch p.category {
	case ParamAssumed:
		return "*"
	case ParamDeferred:
		return ":"
	default:
		if p.expr == nil {
			return "<none>"
		}
		return p.expr.String()
	}
}
