package driver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"fsema/internal/diag"
	"fsema/internal/symbols"
	"fsema/internal/trace"
	"fsema/internal/unit"
)

// UnitReport summarizes one checked unit.
type UnitReport struct {
	Path string
	Name string
	// Result is nil when the unit could not be loaded or the build failed.
	Result     *Result
	Err        error
	Errors     int
	Warnings   int
	Mismatches int
	Elapsed    time.Duration
}

// OK reports whether the unit built cleanly and every lookup matched.
func (r *UnitReport) OK() bool {
	return r.Err == nil && r.Errors == 0 && r.Mismatches == 0
}

// EventKind tells what happened to a unit in a batch.
type EventKind uint8

const (
	EventQueued EventKind = iota
	EventStarted
	EventPhase
	EventDone
)

// Event is a batch progress notification. Index is the unit's position in
// the path list; Report is set on EventDone.
type Event struct {
	Kind   EventKind
	Index  int
	Path   string
	Phase  string
	Report *UnitReport
}

// Sink receives batch events. CheckAll calls it from several goroutines.
type Sink interface {
	OnEvent(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) OnEvent(ev Event) { f(ev) }

// ListUnits returns the sorted *.toml unit files under dir.
func ListUnits(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".toml") {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// CheckAll builds every unit in paths with at most jobs builds in flight.
// Each unit gets its own Table, so builds share nothing. Unit-level
// failures are recorded in the reports; only cancellation aborts the batch.
func CheckAll(ctx context.Context, paths []string, jobs int, sink Sink, opts Options) ([]UnitReport, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	if sink == nil {
		sink = SinkFunc(func(Event) {})
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.FromContext(ctx)
	}
	span := trace.Begin(tracer, trace.ScopeDriver, "check", trace.CurrentSpan(ctx)).
		WithExtra("units", fmt.Sprint(len(paths)))
	defer span.End("")
	ctx = trace.WithSpan(ctx, span)

	for i, path := range paths {
		sink.OnEvent(Event{Kind: EventQueued, Index: i, Path: path})
	}

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	reports := make([]UnitReport, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))

	for i, path := range paths {
		g.Go(func(i int, path string) func() error {
			return func() error {
				// Проверка отмены
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				sink.OnEvent(Event{Kind: EventStarted, Index: i, Path: path})
				unitOpts := opts
				unitOpts.Tracer = tracer
				unitOpts.Observer = func(ev PhaseEvent) {
					if opts.Observer != nil {
						opts.Observer(ev)
					}
					if ev.Status == PhaseStart {
						sink.OnEvent(Event{Kind: EventPhase, Index: i, Path: path, Phase: ev.Name})
					}
				}
				reports[i] = checkOne(gctx, path, unitOpts)
				sink.OnEvent(Event{Kind: EventDone, Index: i, Path: path, Report: &reports[i]})
				return nil
			}
		}(i, path))
	}

	if err := g.Wait(); err != nil {
		return reports, err
	}
	return reports, nil
}

func checkOne(ctx context.Context, path string, opts Options) UnitReport {
	started := time.Now()
	report := UnitReport{Path: path}

	u, err := unit.Load(path)
	if err != nil {
		report.Err = err
		report.Elapsed = time.Since(started)
		return report
	}
	report.Name = u.Name

	res, err := Build(ctx, u, opts)
	if err != nil {
		report.Err = err
		report.Elapsed = time.Since(started)
		return report
	}
	report.Result = res
	for _, d := range res.Bag.Items() {
		switch {
		case d.Severity >= diag.SevError:
			report.Errors++
		case d.Severity == diag.SevWarning:
			report.Warnings++
		}
	}
	for _, l := range res.Lookups {
		if !l.Matched {
			report.Mismatches++
		}
	}
	report.Elapsed = time.Since(started)
	return report
}

// IsInternal reports whether err is a compiler-internal failure rather than
// a problem with the unit.
func IsInternal(err error) bool {
	var ie *symbols.InternalError
	return errors.As(err, &ie)
}
