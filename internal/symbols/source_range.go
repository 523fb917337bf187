package symbols

import (
	"fsema/internal/source"
	"fsema/internal/trace"
)

// AddSourceRange records that span belongs to s and grows the ranges of its
// ancestors to cover it. Climbing stops after a submodule, whose range need
// not lie inside its parent's, and never reaches the top-level scopes.
//
// Empty spans are ignored, as are spans without a file: those are names
// the compiler made up. A span in a file the FileSet does not know, or one
// that would merge two files into a single range, is fatal.
func (s *Scope) AddSourceRange(span source.Span) {
	if span.Empty() || span.File == source.NoFileID {
		return
	}
	t := s.table
	if !t.files.Has(span.File) {
		t.fail("AddSourceRange: span %s is not in any cooked source", span)
	}
	for scope := s; !scope.IsTopLevel(); scope = scope.parent {
		switch scope.sourceRange.File {
		case source.NoFileID:
			scope.sourceRange = span
			t.rangeIndex[span.File] = append(t.rangeIndex[span.File], scope)
		case span.File:
			scope.sourceRange = scope.sourceRange.Cover(span)
		default:
			t.fail("AddSourceRange would have combined ranges from distinct source files \"%s\" and \"%s\"",
				t.files.Describe(scope.sourceRange), t.files.Describe(span))
		}
		if scope.IsSubmodule() {
			break
		}
	}
	if t.tracer.Level().ShouldEmit(trace.ScopeNode) {
		trace.Point(t.tracer, trace.ScopeNode, "scope.range", s.describe()+" += "+span.String())
	}
}
