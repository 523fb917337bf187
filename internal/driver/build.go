// Package driver builds the scope tree a unit description asks for, runs
// the unit's lookups against it, and checks many units in parallel.
package driver

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"fsema/internal/diag"
	"fsema/internal/observ"
	"fsema/internal/source"
	"fsema/internal/symbols"
	"fsema/internal/trace"
	"fsema/internal/unit"
)

// Options control a single Build.
type Options struct {
	// Tracer receives pass spans; the context's tracer is used when nil.
	Tracer trace.Tracer
	// MaxDiagnostics caps the bag; 0 means unlimited.
	MaxDiagnostics int
	// Timings appends an ObsTimings diagnostic with the pass durations.
	Timings bool
	// Observer is notified at every pass boundary.
	Observer PhaseObserver
}

// Result holds everything a Build produced.
type Result struct {
	Unit    *unit.Unit
	Table   *symbols.Table
	Files   *source.FileSet
	Bag     *diag.Bag
	Lookups []LookupResult
	Types   []TypeResult
	Timer   *observ.Timer

	paths map[*symbols.Scope]string
}

// LookupResult is the answer to one unit lookup.
type LookupResult struct {
	Lookup unit.Lookup
	Symbol *symbols.Symbol
	// Owner is the path of the scope owning Symbol; empty when nothing was found.
	Owner string
	// Matched is false when the result contradicts Lookup.Expect.
	Matched bool
}

// TypeResult records a type the unit asked to intern or derive.
type TypeResult struct {
	Scope string
	Text  string
	Type  *symbols.DeclTypeSpec
}

// ScopePath returns the unit path of scope. Scopes the unit did not name,
// such as instantiations, are described by their kind and id.
func (r *Result) ScopePath(scope *symbols.Scope) string {
	if scope == nil {
		return ""
	}
	if p, ok := r.paths[scope]; ok {
		return p
	}
	return scope.Kind().String() + "#" + strconv.FormatUint(uint64(scope.ID()), 10)
}

// Scope returns the scope declared under path, "<global>" or "" for Global.
func (r *Result) Scope(path string) *symbols.Scope {
	if path == "" || path == unit.GlobalPath {
		return r.Table.Global()
	}
	for scope, p := range r.paths {
		if p == path {
			return scope
		}
	}
	return nil
}

// Build creates a fresh Table for u and fills it pass by pass. User errors
// in the unit become diagnostics; a compiler-internal failure aborts the
// build and is returned as an error.
func Build(ctx context.Context, u *unit.Unit, opts Options) (res *Result, err error) {
	if u == nil {
		return nil, errors.New("driver: nil unit")
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.FromContext(ctx)
	}
	span := trace.Begin(tracer, trace.ScopeUnit, "build", trace.CurrentSpan(ctx)).WithExtra("unit", u.Name)
	defer func() {
		if err != nil {
			span.End("failed: " + err.Error())
			return
		}
		span.End("")
	}()
	defer symbols.RecoverInternal(&err)

	files := source.NewFileSet()
	b := &builder{
		ctx:    trace.WithSpan(ctx, span),
		unit:   u,
		tracer: tracer,
		obs:    opts.Observer,
		files:  files,
		byName: make(map[string]source.FileID, len(u.Sources)),
		scopes: make(map[string]*symbols.Scope, len(u.Scopes)+1),
		res: &Result{
			Unit:  u,
			Files: files,
			Bag:   diag.NewBag(opts.MaxDiagnostics),
			Timer: observ.NewTimer(),
			paths: make(map[*symbols.Scope]string, len(u.Scopes)+1),
		},
	}
	b.dedup = diag.NewDedupReporter(diag.BagReporter{Bag: b.res.Bag})
	b.rep = b.dedup
	b.res.Table = symbols.NewTable(symbols.Options{
		Files:       files,
		Tracer:      tracer,
		SymbolLimit: u.SymbolLimit,
	})
	b.register("", b.res.Table.Global())
	b.res.paths[b.res.Table.Global()] = unit.GlobalPath

	passes := []struct {
		name string
		run  func() error
	}{
		{"load", b.load},
		{"scopes", b.buildScopes},
		{"decls", b.declare},
		{"types", b.internTypes},
		{"lookups", b.lookups},
		{"validate", b.validate},
	}
	for _, p := range passes {
		if err := b.pass(p.name, p.run); err != nil {
			return nil, err
		}
	}

	b.res.Bag.Sort()
	if n := b.dedup.Dropped(); n > 0 {
		trace.Point(tracer, trace.ScopeUnit, "dedup", strconv.Itoa(n)+" repeated diagnostics dropped")
	}
	if opts.Timings {
		report := b.res.Timer.Report()
		appendTimingDiagnostic(b.res.Bag, timingPayload{
			Kind:    "unit",
			Path:    u.Path,
			TotalMS: report.TotalMS,
			Phases:  report.Phases,
		})
	}
	return b.res, nil
}

type builder struct {
	ctx    context.Context
	unit   *unit.Unit
	tracer trace.Tracer
	obs    PhaseObserver
	rep    diag.Reporter
	dedup  *diag.DedupReporter
	files  *source.FileSet
	byName map[string]source.FileID
	scopes map[string]*symbols.Scope
	// declared lists the scopes created by the scopes pass, in unit order
	declared []declared
	res      *Result
}

type declared struct {
	spec  *unit.Scope
	scope *symbols.Scope
}

// pass runs one pass under the timer and a trace span, honoring cancellation.
func (b *builder) pass(name string, run func() error) error {
	if err := b.ctx.Err(); err != nil {
		return err
	}
	span := trace.Begin(b.tracer, trace.ScopePass, name, trace.CurrentSpan(b.ctx))
	b.notify(PhaseEvent{Name: name, Status: PhaseStart})
	err := b.res.Timer.Measure(name, run)
	elapsed := span.WithExtra("diagnostics", strconv.Itoa(b.res.Bag.Len())).End("")
	b.notify(PhaseEvent{Name: name, Status: PhaseEnd, Elapsed: elapsed})
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (b *builder) notify(ev PhaseEvent) {
	if b.obs != nil {
		b.obs(ev)
	}
}

func (b *builder) register(path string, scope *symbols.Scope) {
	b.scopes[path] = scope
	if path != "" {
		b.res.paths[scope] = path
	}
}

func (b *builder) load() error {
	for _, src := range b.unit.Sources {
		if src.Text != "" {
			b.byName[src.Path] = b.files.AddVirtual(src.Path, []byte(src.Text))
			continue
		}
		id, err := b.files.Load(b.unit.SourcePath(src.Path))
		if err != nil {
			diag.ReportError(b.rep, diag.IOLoadFileError, source.Span{},
				fmt.Sprintf("failed to load %s: %v", src.Path, err)).Emit()
			continue
		}
		b.byName[src.Path] = id
	}
	return nil
}

func (b *builder) validate() error {
	if err := b.res.Table.Validate(); err != nil {
		return fmt.Errorf("inconsistent scope tree: %w", err)
	}
	return nil
}
