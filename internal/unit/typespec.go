package unit

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"fsema/internal/symbols"
	"fsema/internal/types"
)

var (
	// ErrTypeSyntax marks a malformed type or equivalence string.
	ErrTypeSyntax = errors.New("malformed type")
	// ErrTypeUnresolved marks a derived type or object name not visible from the scope.
	ErrTypeUnresolved = errors.New("unresolved name")
)

// ParseType interprets a declaration type such as "integer(8)",
// "character(len=*)", "type(pt(k=4,n=:))" or "class(*)" in scope.
// Lengthless types are interned; the rest are added to scope.
func ParseType(scope *symbols.Scope, text string) (*symbols.DeclTypeSpec, error) {
	head, args, err := splitCall(strings.ToLower(strings.TrimSpace(text)))
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrTypeSyntax, text, err)
	}
	if head == "double precision" || head == "doubleprecision" {
		if args != "" {
			return nil, fmt.Errorf("%w %q: DOUBLE PRECISION takes no kind", ErrTypeSyntax, text)
		}
		return scope.MakeNumericType(types.CategoryReal, 8), nil
	}
	switch head {
	case "type", "class":
		return parseDerivedDecl(scope, head, args, text)
	case "character":
		return parseCharacter(scope, args, text)
	}
	cat, ok := types.ParseCategory(head)
	if !ok {
		return nil, fmt.Errorf("%w %q: unknown type keyword %q", ErrTypeSyntax, text, head)
	}
	kind := cat.DefaultKind()
	if args != "" {
		kv, err := keywordArgs(args, "kind")
		if err != nil || len(kv) != 1 || kv["kind"] == "" {
			return nil, fmt.Errorf("%w %q: expected a single kind", ErrTypeSyntax, text)
		}
		if kind, err = strconv.Atoi(kv["kind"]); err != nil {
			return nil, fmt.Errorf("%w %q: kind must be an integer", ErrTypeSyntax, text)
		}
	}
	if cat == types.CategoryLogical {
		return scope.MakeLogicalType(kind), nil
	}
	return scope.MakeNumericType(cat, kind), nil
}

func parseCharacter(scope *symbols.Scope, args, text string) (*symbols.DeclTypeSpec, error) {
	length := types.ExplicitParam(types.IntConst(1))
	kind := types.CategoryCharacter.DefaultKind()
	if args != "" {
		kv, err := keywordArgs(args, "len", "kind")
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrTypeSyntax, text, err)
		}
		if v, ok := kv["len"]; ok {
			length = ParseParamValue(v)
		}
		if v, ok := kv["kind"]; ok {
			if kind, err = strconv.Atoi(v); err != nil {
				return nil, fmt.Errorf("%w %q: kind must be an integer", ErrTypeSyntax, text)
			}
		}
	}
	return scope.MakeCharacterType(length, kind), nil
}

func parseDerivedDecl(scope *symbols.Scope, head, args, text string) (*symbols.DeclTypeSpec, error) {
	if args == "*" {
		if head == "type" {
			return scope.MakeTypeStarType(), nil
		}
		return scope.MakeClassStarType(), nil
	}
	spec, err := ParseDerivedTypeSpec(scope, args)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", text, err)
	}
	category := symbols.DeclTypeDerived
	if head == "class" {
		category = symbols.DeclClassDerived
	}
	return scope.MakeDerivedType(category, spec), nil
}

// ParseDerivedTypeSpec interprets "name" or "name(k=4,n=:)"; the type name
// must resolve from scope to a derived type.
func ParseDerivedTypeSpec(scope *symbols.Scope, text string) (*symbols.DerivedTypeSpec, error) {
	name, args, err := splitCall(strings.TrimSpace(text))
	if err != nil || name == "" {
		return nil, fmt.Errorf("%w %q", ErrTypeSyntax, text)
	}
	sym := scope.FindSymbol(name)
	if sym == nil {
		return nil, fmt.Errorf("%w: derived type %q", ErrTypeUnresolved, name)
	}
	if _, ok := sym.Details().(*symbols.DerivedTypeDetails); !ok {
		return nil, fmt.Errorf("%w: %q is not a derived type", ErrTypeUnresolved, name)
	}
	spec := symbols.NewDerivedTypeSpec(sym)
	if args == "" {
		return spec, nil
	}
	for _, part := range splitTop(args) {
		key, value, ok := strings.Cut(part, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("%w %q: type parameters must be named", ErrTypeSyntax, text)
		}
		spec.AddParam(strings.TrimSpace(key), ParseParamValue(value))
	}
	return spec, nil
}

// ParseParamValue maps "*", ":", an integer, or any other text to a parameter value.
func ParseParamValue(text string) types.ParamValue {
	text = strings.TrimSpace(text)
	switch text {
	case "*":
		return types.AssumedParam()
	case ":":
		return types.DeferredParam()
	}
	return types.ExplicitParam(ParseExpr(text))
}

// ParseExpr folds integer literals and keeps anything else symbolic.
func ParseExpr(text string) types.LenExpr {
	text = strings.TrimSpace(text)
	if v, err := strconv.ParseInt(text, 10, 64); err == nil {
		return types.IntConst(v)
	}
	return types.Symbolic(text)
}

// ParseEquivalenceObject interprets "a", "a(1,2)" or "a(1)(3:)".
func ParseEquivalenceObject(scope *symbols.Scope, text string) (symbols.EquivalenceObject, error) {
	var obj symbols.EquivalenceObject
	rest := strings.TrimSpace(text)
	name := rest
	if i := strings.IndexByte(rest, '('); i >= 0 {
		name, rest = rest[:i], rest[i:]
	} else {
		rest = ""
	}
	obj.Symbol = scope.FindSymbol(name)
	if obj.Symbol == nil {
		return obj, fmt.Errorf("%w: %q", ErrTypeUnresolved, name)
	}
	for rest != "" {
		end := strings.IndexByte(rest, ')')
		if rest[0] != '(' || end < 0 {
			return obj, fmt.Errorf("%w %q", ErrTypeSyntax, text)
		}
		inner := rest[1:end]
		rest = strings.TrimSpace(rest[end+1:])
		if start, ok := strings.CutSuffix(inner, ":"); ok {
			if obj.SubstringStart != nil || rest != "" {
				return obj, fmt.Errorf("%w %q: substring must come last", ErrTypeSyntax, text)
			}
			v, err := strconv.ParseInt(strings.TrimSpace(start), 10, 64)
			if err != nil {
				return obj, fmt.Errorf("%w %q: substring start must be an integer", ErrTypeSyntax, text)
			}
			obj.SubstringStart = &v
			continue
		}
		if obj.Subscripts != nil {
			return obj, fmt.Errorf("%w %q: subscripts given twice", ErrTypeSyntax, text)
		}
		obj.Subscripts = []int64{}
		for _, part := range strings.Split(inner, ",") {
			v, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				return obj, fmt.Errorf("%w %q: subscripts must be integers", ErrTypeSyntax, text)
			}
			obj.Subscripts = append(obj.Subscripts, v)
		}
	}
	return obj, nil
}

// splitCall splits "head(args)" into its parts; args is "" without parentheses.
func splitCall(text string) (head, args string, err error) {
	open := strings.IndexByte(text, '(')
	if open < 0 {
		return strings.TrimSpace(text), "", nil
	}
	if !strings.HasSuffix(text, ")") {
		return "", "", errors.New("unbalanced parentheses")
	}
	head = strings.TrimSpace(text[:open])
	args = strings.TrimSpace(text[open+1 : len(text)-1])
	if depth(args) != 0 {
		return "", "", errors.New("unbalanced parentheses")
	}
	return head, args, nil
}

func depth(s string) int {
	d := 0
	for _, r := range s {
		switch r {
		case '(':
			d++
		case ')':
			d--
			if d < 0 {
				return d
			}
		}
	}
	return d
}

// splitTop splits on commas outside parentheses.
func splitTop(s string) []string {
	var parts []string
	d, start := 0, 0
	for i, r := range s {
		switch r {
		case '(':
			d++
		case ')':
			d--
		case ',':
			if d == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	return append(parts, strings.TrimSpace(s[start:]))
}

// keywordArgs maps "8", "kind=8" or "len=*, kind=1" to keyword values.
// Positional arguments take the keywords in order.
func keywordArgs(args string, keywords ...string) (map[string]string, error) {
	out := make(map[string]string, len(keywords))
	for i, part := range splitTop(args) {
		key, value, named := strings.Cut(part, "=")
		if !named {
			if i >= len(keywords) {
				return nil, fmt.Errorf("too many arguments in %q", args)
			}
			key, value = keywords[i], part
		}
		key = strings.TrimSpace(key)
		if !slices.Contains(keywords, key) {
			return nil, fmt.Errorf("unknown keyword %q", key)
		}
		if _, dup := out[key]; dup {
			return nil, fmt.Errorf("%s given twice", key)
		}
		out[key] = strings.TrimSpace(value)
	}
	return out, nil
}
