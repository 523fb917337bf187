package symbols

import (
	"fsema/internal/source"
	"fsema/internal/trace"
)

// Options configure a Table.
type Options struct {
	// Files resolves spans for source-range tracking. A fresh set is used when nil.
	Files *source.FileSet
	// Strings interns folded names. A fresh interner is used when nil.
	Strings *source.Interner
	Tracer  trace.Tracer
	// SymbolLimit caps live symbols; 0 means unlimited.
	SymbolLimit int
}

// Table is one compilation context: the symbol and scope arenas, the scope
// tree rooted at the Global scope, and the index of scope source ranges.
// A Table is not safe for concurrent use.
type Table struct {
	files   *source.FileSet
	strings *source.Interner
	tracer  trace.Tracer

	symbols arena[Symbol]
	scopes  arena[Scope]

	global           *Scope
	intrinsicModules *Scope

	// scopes with a recorded range, per cooked file, in adoption order
	rangeIndex map[source.FileID][]*Scope
}

// NewTable creates a table with its Global and IntrinsicModules scopes.
func NewTable(opts Options) *Table {
	if opts.Files == nil {
		opts.Files = source.NewFileSet()
	}
	if opts.Strings == nil {
		opts.Strings = source.NewInterner()
	}
	if opts.Tracer == nil {
		opts.Tracer = trace.Nop
	}
	t := &Table{
		files:      opts.Files,
		strings:    opts.Strings,
		tracer:     opts.Tracer,
		symbols:    newArena[Symbol]("symbol", opts.SymbolLimit),
		scopes:     newArena[Scope]("scope", 0),
		rangeIndex: make(map[source.FileID][]*Scope),
	}
	t.global = t.newScope(nil, ScopeGlobal, nil)
	t.global.lengthless = make(map[lengthlessKey]*DeclTypeSpec)
	t.intrinsicModules = t.global.MakeScope(ScopeIntrinsicModules, nil)
	return t
}

func (t *Table) Global() *Scope             { return t.global }
func (t *Table) IntrinsicModules() *Scope   { return t.intrinsicModules }
func (t *Table) Files() *source.FileSet     { return t.files }
func (t *Table) Strings() *source.Interner  { return t.strings }
func (t *Table) Tracer() trace.Tracer       { return t.tracer }
func (t *Table) SymbolCount() int           { return t.symbols.len() }
func (t *Table) ScopeCount() int            { return t.scopes.len() }
func (t *Table) Symbol(id SymbolID) *Symbol { return t.symbols.get(uint32(id)) }
func (t *Table) Scope(id ScopeID) *Scope    { return t.scopes.get(uint32(id)) }

// Walk visits every scope in pre-order, children in creation order.
// Returning false from fn skips the scope's subtree.
func (t *Table) Walk(fn func(scope *Scope, depth int) bool) {
	type item struct {
		scope *Scope
		depth int
	}
	stack := []item{{t.global, 0}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(it.scope, it.depth) {
			continue
		}
		for i := len(it.scope.children) - 1; i >= 0; i-- {
			stack = append(stack, item{it.scope.children[i], it.depth + 1})
		}
	}
}

func (t *Table) newScope(parent *Scope, kind ScopeKind, sym *Symbol) *Scope {
	id, s := t.scopes.alloc()
	*s = Scope{
		id:     ScopeID(id),
		table:  t,
		kind:   kind,
		parent: parent,
		symbol: sym,
	}
	if sym != nil {
		sym.scope = s
	}
	if parent != nil {
		parent.children = append(parent.children, s)
	}
	if t.tracer.Level().ShouldEmit(trace.ScopeNode) {
		detail := kind.String()
		if sym != nil {
			detail += " " + sym.Name()
		}
		trace.Point(t.tracer, trace.ScopeNode, "scope.new", detail)
	}
	return s
}

func (t *Table) newSymbol(owner *Scope, name source.StringID, text string, span source.Span) *Symbol {
	id, sym := t.symbols.alloc()
	*sym = Symbol{
		id:    SymbolID(id),
		name:  name,
		text:  text,
		span:  span,
		owner: owner,
	}
	return sym
}

// FindScope returns the innermost scope whose source range contains pos,
// or nil when no recorded range covers it.
func (t *Table) FindScope(pos source.Span) *Scope {
	var best *Scope
	for _, s := range t.rangeIndex[pos.File] {
		if !s.sourceRange.Contains(pos) {
			continue
		}
		n := s.sourceRange.Len()
		if best == nil || n < best.sourceRange.Len() || n == best.sourceRange.Len() && best.Contains(s) {
			best = s
		}
	}
	return best
}
