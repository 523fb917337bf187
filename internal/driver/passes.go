package driver

import (
	"errors"
	"fmt"
	"strings"

	"fortio.org/safecast"

	"fsema/internal/diag"
	"fsema/internal/source"
	"fsema/internal/symbols"
	"fsema/internal/types"
	"fsema/internal/unit"
)

// buildScopes creates every scope of the unit, in unit order, together with
// the symbol naming it and its source ranges. A parent must be declared
// before its children.
func (b *builder) buildScopes() error {
	for i := range b.unit.Scopes {
		spec := &b.unit.Scopes[i]
		parent := b.scopes[spec.ParentPath()]
		if parent == nil {
			diag.ReportError(b.rep, diag.PrjUnknownScope, source.Span{},
				fmt.Sprintf("scope %q: parent %q is not declared before it", spec.Path, spec.ParentPath())).Emit()
			continue
		}
		kind, ok := symbols.ParseScopeKind(spec.Kind)
		if !ok {
			diag.ReportError(b.rep, diag.PrjUnknownScopeKind, source.Span{},
				fmt.Sprintf("scope %q: unknown kind %q", spec.Path, spec.Kind)).Emit()
			continue
		}

		ranges := b.spans(spec.Path, spec.Ranges)
		var sym *symbols.Symbol
		if !spec.Anonymous {
			sym = b.scopeSymbol(spec, kind, parent, ranges)
			if sym == nil {
				continue
			}
		}
		scope := parent.MakeScope(kind, sym)
		b.register(spec.Path, scope)
		b.declared = append(b.declared, declared{spec: spec, scope: scope})

		if md, ok := detailsOf[*symbols.ModuleDetails](sym); ok && md.IsSubmodule {
			if !md.Parent.AddSubmodule(sym.Name(), scope) {
				diag.ReportError(b.rep, diag.SemaDuplicateSymbol, sym.Span(),
					fmt.Sprintf("submodule %q of %q declared twice", sym.Name(), spec.SubmoduleOf)).Emit()
			}
		}
		for _, sp := range ranges {
			scope.AddSourceRange(sp)
		}
	}
	return nil
}

// scopeSymbol declares the symbol a named scope hangs off. Submodules are
// entered in Global beside their parent module.
func (b *builder) scopeSymbol(spec *unit.Scope, kind symbols.ScopeKind, parent *symbols.Scope, ranges []source.Span) *symbols.Symbol {
	name := spec.Symbol
	if name == "" {
		name = spec.Name()
	}
	details, err := b.scopeDetails(spec, kind, parent)
	if err != nil {
		b.reportTypeError(spec.Path, err)
		return nil
	}
	attrs, flags := b.attrs(spec.Path, spec.Attrs, spec.Flags)
	sym, created := parent.MakeSymbol(name, b.nameSpan(name, ranges), attrs, details)
	if !created {
		diag.ReportError(b.rep, diag.SemaDuplicateSymbol, b.nameSpan(name, ranges),
			fmt.Sprintf("scope %q: %q is already declared in %s", spec.Path, name, b.res.ScopePath(parent))).
			WithNote(sym.Span(), "previous declaration here").
			Emit()
		return nil
	}
	for _, f := range flags {
		sym.SetFlag(f)
	}
	return sym
}

func (b *builder) scopeDetails(spec *unit.Scope, kind symbols.ScopeKind, parent *symbols.Scope) (symbols.Details, error) {
	switch kind {
	case symbols.ScopeModule:
		if spec.SubmoduleOf == "" {
			return &symbols.ModuleDetails{}, nil
		}
		host := b.scopes[spec.SubmoduleOf]
		if host == nil || !host.IsModule() && !host.IsSubmodule() {
			return nil, fmt.Errorf("%w: submodule_of %q is not a module", unit.ErrTypeUnresolved, spec.SubmoduleOf)
		}
		if !parent.IsGlobal() {
			return nil, fmt.Errorf("%w: a submodule must be declared at the top level", errUnitShape)
		}
		ancestor := host
		if hd, ok := detailsOf[*symbols.ModuleDetails](host.Symbol()); ok && hd.IsSubmodule {
			ancestor = hd.Ancestor
		}
		if spec.Ancestor != "" {
			if ancestor = b.scopes[spec.Ancestor]; ancestor == nil || !ancestor.IsModule() {
				return nil, fmt.Errorf("%w: ancestor %q is not a module", unit.ErrTypeUnresolved, spec.Ancestor)
			}
		}
		return &symbols.ModuleDetails{IsSubmodule: true, Parent: host, Ancestor: ancestor}, nil
	case symbols.ScopeSubprogram:
		return &symbols.SubprogramDetails{IsInterface: spec.Interface, IsFunction: spec.Function}, nil
	case symbols.ScopeDerivedType:
		d := &symbols.DerivedTypeDetails{}
		if spec.Extends != "" {
			parentSpec, err := unit.ParseDerivedTypeSpec(parent, spec.Extends)
			if err != nil {
				return nil, fmt.Errorf("extends: %w", err)
			}
			d.ParentSpec = parentSpec
		}
		return d, nil
	default:
		return &symbols.MiscDetails{Note: kind.String()}, nil
	}
}

// declare enters the declarations of every scope, then its registries and
// its IMPORT statements. Hosts come before their children, so imported
// names are already declared when an IMPORT names them.
func (b *builder) declare() error {
	for _, d := range b.declared {
		for _, decl := range d.spec.Symbols {
			b.declareSymbol(d, decl)
		}
		b.equivalences(d)
		b.commons(d)
		b.crayPointers(d)
		b.imports(d)
	}
	return nil
}

func (b *builder) declareSymbol(d declared, decl unit.Symbol) {
	details, err := b.declDetails(d.scope, decl)
	if err != nil {
		b.reportTypeError(d.spec.Path+"/"+decl.Name, err)
		return
	}
	var span source.Span
	if decl.At != nil {
		spans := b.spans(d.spec.Path, []unit.Range{*decl.At})
		if len(spans) == 0 {
			return
		}
		span = b.nameSpan(decl.Name, spans)
		d.scope.AddSourceRange(spans[0])
	}
	attrs, flags := b.attrs(d.spec.Path, decl.Attrs, decl.Flags)
	sym, created := d.scope.MakeSymbol(decl.Name, span, attrs, details)
	if !created {
		diag.ReportError(b.rep, diag.SemaDuplicateSymbol, span,
			fmt.Sprintf("%q is already declared in %s", decl.Name, d.spec.Path)).
			WithNote(sym.Span(), "previous declaration here").
			Emit()
		return
	}
	for _, f := range flags {
		sym.SetFlag(f)
	}
}

func (b *builder) declDetails(scope *symbols.Scope, decl unit.Symbol) (symbols.Details, error) {
	switch strings.ToLower(decl.Kind) {
	case "", "object":
		if decl.Type == "" {
			return &symbols.ObjectDetails{}, nil
		}
		t, err := unit.ParseType(scope, decl.Type)
		if err != nil {
			return nil, err
		}
		return &symbols.ObjectDetails{Type: t}, nil
	case "typeparam":
		if !scope.IsDerivedType() {
			return nil, fmt.Errorf("%w: type parameter outside a derived type", errUnitShape)
		}
		tp := &symbols.TypeParamDetails{}
		switch strings.ToLower(decl.Param) {
		case "", "kind":
			tp.Attr = types.TypeParamKind
		case "len":
			tp.Attr = types.TypeParamLen
		default:
			return nil, fmt.Errorf("%w: param must be kind or len, got %q", errUnitShape, decl.Param)
		}
		typ := decl.Type
		if typ == "" {
			typ = "integer"
		}
		t, err := unit.ParseType(scope, typ)
		if err != nil {
			return nil, err
		}
		tp.Type = t
		if decl.Init != "" {
			tp.Init = unit.ParseExpr(decl.Init)
		}
		return tp, nil
	case "subprogram":
		return &symbols.SubprogramDetails{}, nil
	case "misc":
		return &symbols.MiscDetails{Note: decl.Type}, nil
	default:
		return nil, fmt.Errorf("%w: unknown symbol kind %q", errUnitShape, decl.Kind)
	}
}

func (b *builder) equivalences(d declared) {
	for _, group := range d.spec.Equivalence {
		set := make(symbols.EquivalenceSet, 0, len(group))
		for _, text := range group {
			obj, err := unit.ParseEquivalenceObject(d.scope, text)
			if err != nil {
				b.reportTypeError(d.spec.Path, err)
				continue
			}
			obj.Span = obj.Symbol.Span()
			set = append(set, obj)
		}
		if len(set) > 0 {
			d.scope.AddEquivalenceSet(set)
		}
	}
}

func (b *builder) commons(d declared) {
	for _, c := range d.spec.Commons {
		block := d.scope.MakeCommonBlock(c.Name, source.Span{})
		details := block.Details().(*symbols.CommonBlockDetails)
		for _, name := range c.Objects {
			obj := d.scope.Lookup(name)
			if obj == nil {
				diag.ReportError(b.rep, diag.SemaUnresolvedSymbol, source.Span{},
					fmt.Sprintf("common /%s/: %q is not declared in %s", c.Name, name, d.spec.Path)).Emit()
				continue
			}
			details.Objects = append(details.Objects, obj)
		}
	}
}

func (b *builder) crayPointers(d declared) {
	for _, c := range d.spec.Cray {
		ptr := d.scope.Lookup(c.Pointer)
		switch {
		case ptr == nil:
			diag.ReportError(b.rep, diag.SemaUnresolvedSymbol, source.Span{},
				fmt.Sprintf("POINTER (%s, %s): pointer is not declared in %s", c.Pointer, c.Pointee, d.spec.Path)).Emit()
		case !ptr.Test(symbols.FlagCrayPointer):
			diag.ReportError(b.rep, diag.SemaError, ptr.Span(),
				fmt.Sprintf("%q is not a Cray pointer", c.Pointer)).Emit()
		default:
			d.scope.AddCrayPointer(c.Pointee, ptr)
		}
	}
}

func (b *builder) imports(d declared) {
	primary := source.Span{}
	if r, ok := d.scope.SourceRange(); ok {
		primary = r
	}
	for _, imp := range d.spec.Imports {
		kind, ok := symbols.ParseImportKind(imp.Kind)
		if !ok {
			diag.ReportError(b.rep, diag.PrjUnitInvalid, primary,
				fmt.Sprintf("scope %q: unknown IMPORT kind %q", d.spec.Path, imp.Kind)).Emit()
			continue
		}
		if err := d.scope.SetImportKind(kind); err != nil {
			diag.ReportError(b.rep, symbols.ImportErrorCode(err), primary,
				fmt.Sprintf("scope %q: %v", d.spec.Path, err)).Emit()
			continue
		}
		for _, name := range imp.Names {
			if !d.scope.AddImportName(name) {
				diag.ReportError(b.rep, diag.PrjUnitInvalid, primary,
					fmt.Sprintf("scope %q: empty name in IMPORT list", d.spec.Path)).Emit()
				continue
			}
			if d.scope.IsTopLevel() || d.scope.Parent().FindSymbol(name) == nil {
				diag.ReportWarning(b.rep, diag.SemaImportUnknownName, primary,
					fmt.Sprintf("scope %q: IMPORT of %q, which the host does not declare", d.spec.Path, name)).Emit()
			}
		}
	}
}

// internTypes interns the listed types, derives the types of the listed
// expressions, and instantiates derived types where requested.
func (b *builder) internTypes() error {
	for _, d := range b.declared {
		for _, text := range d.spec.Types {
			t, err := unit.ParseType(d.scope, text)
			if err != nil {
				b.reportTypeError(d.spec.Path, err)
				continue
			}
			b.res.Types = append(b.res.Types, TypeResult{Scope: d.spec.Path, Text: text, Type: t})
		}
		for _, e := range d.spec.Exprs {
			expr, err := newUnitExpr(d.scope, e)
			if err != nil {
				b.reportTypeError(d.spec.Path, err)
				continue
			}
			b.res.Types = append(b.res.Types, TypeResult{Scope: d.spec.Path, Text: e.Text, Type: d.scope.GetType(expr)})
		}
		if d.spec.Instantiate {
			d.scope.InstantiateDerivedTypes()
		}
	}
	return nil
}

var errUnitShape = errors.New("invalid unit")

func (b *builder) reportTypeError(where string, err error) {
	code := diag.PrjUnitInvalid
	if errors.Is(err, unit.ErrTypeUnresolved) {
		code = diag.SemaTypeUnresolved
	}
	diag.ReportError(b.rep, code, source.Span{}, fmt.Sprintf("%s: %v", where, err)).Emit()
}

func (b *builder) attrs(where string, attrNames, flagNames []string) (symbols.Attrs, []symbols.Flag) {
	var attrs symbols.Attrs
	for _, name := range attrNames {
		a, ok := symbols.ParseAttr(name)
		if !ok {
			diag.ReportError(b.rep, diag.PrjUnitInvalid, source.Span{},
				fmt.Sprintf("%s: unknown attribute %q", where, name)).Emit()
			continue
		}
		attrs = attrs.With(a)
	}
	flags := make([]symbols.Flag, 0, len(flagNames))
	for _, name := range flagNames {
		f, ok := symbols.ParseFlag(name)
		if !ok {
			diag.ReportError(b.rep, diag.PrjUnitInvalid, source.Span{},
				fmt.Sprintf("%s: unknown flag %q", where, name)).Emit()
			continue
		}
		flags = append(flags, f)
	}
	return attrs, flags
}

// spans resolves unit ranges, reporting the ones that do not fit their file.
func (b *builder) spans(where string, ranges []unit.Range) []source.Span {
	out := make([]source.Span, 0, len(ranges))
	for _, r := range ranges {
		sp, err := b.span(r)
		if err != nil {
			diag.ReportError(b.rep, diag.PrjUnitInvalid, source.Span{},
				fmt.Sprintf("scope %q: %v", where, err)).Emit()
			continue
		}
		out = append(out, sp)
	}
	return out
}

func (b *builder) span(r unit.Range) (source.Span, error) {
	id, ok := b.byName[r.File]
	if !ok {
		return source.Span{}, fmt.Errorf("range names unknown source %q", r.File)
	}
	content := b.files.Get(id).Content
	if r.Match != "" {
		i := strings.Index(string(content), r.Match)
		if i < 0 {
			return source.Span{}, fmt.Errorf("%q does not occur in %s", r.Match, r.File)
		}
		return offsetSpan(id, i, len(r.Match))
	}
	if r.End < r.Start || int(r.End) > len(content) {
		return source.Span{}, fmt.Errorf("range %d..%d lies outside %s", r.Start, r.End, r.File)
	}
	return source.Span{File: id, Start: r.Start, End: r.End}, nil
}

// nameSpan locates name inside the first range, falling back to the whole range.
func (b *builder) nameSpan(name string, ranges []source.Span) source.Span {
	if len(ranges) == 0 {
		return source.Span{}
	}
	r := ranges[0]
	if i := indexWord(b.files.Text(r), name); i >= 0 {
		if sp, err := offsetSpan(r.File, int(r.Start)+i, len(name)); err == nil {
			return sp
		}
	}
	return r
}

// indexWord finds word in text, ignoring ASCII case, where it is not part
// of a longer name. The result is a byte offset into text as given.
func indexWord(text, word string) int {
	if word == "" {
		return -1
	}
	for i := 0; i+len(word) <= len(text); i++ {
		if !hasPrefixFoldASCII(text[i:], word) {
			continue
		}
		end := i + len(word)
		if (i == 0 || !isNameByte(text[i-1])) && (end == len(text) || !isNameByte(text[end])) {
			return i
		}
	}
	return -1
}

func hasPrefixFoldASCII(s, prefix string) bool {
	for j := 0; j < len(prefix); j++ {
		if lowerASCII(s[j]) != lowerASCII(prefix[j]) {
			return false
		}
	}
	return true
}

func lowerASCII(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

func isNameByte(c byte) bool {
	return c == '_' || '0' <= c && c <= '9' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func offsetSpan(file source.FileID, start, n int) (source.Span, error) {
	s, err := safecast.Conv[uint32](start)
	if err != nil {
		return source.Span{}, err
	}
	e, err := safecast.Conv[uint32](start + n)
	if err != nil {
		return source.Span{}, err
	}
	return source.Span{File: file, Start: s, End: e}, nil
}

// detailsOf returns sym's details as T.
func detailsOf[T symbols.Details](sym *symbols.Symbol) (T, bool) {
	var zero T
	if sym == nil {
		return zero, false
	}
	d, ok := sym.Details().(T)
	return d, ok
}
