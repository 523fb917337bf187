// Package testkit holds structural checks over a built scope tree, shared by
// the tests of several packages.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"fsema/internal/source"
	"fsema/internal/symbols"
)

// CheckRangeInvariants verifies the recorded source ranges of a table:
// 1) every range is non-empty and lies within its file's content
// 2) every non-submodule child range lies inside its parent's range
// 3) top-level scopes never carry a range
func CheckRangeInvariants(tab *symbols.Table) error {
	if tab == nil {
		return fmt.Errorf("nil table")
	}
	var firstErr error
	tab.Walk(func(scope *symbols.Scope, _ int) bool {
		if firstErr != nil {
			return false
		}
		firstErr = checkScopeRange(tab.Files(), scope)
		return firstErr == nil
	})
	return firstErr
}

func checkScopeRange(fs *source.FileSet, scope *symbols.Scope) error {
	sp, ok := scope.SourceRange()
	if scope.IsTopLevel() {
		if ok {
			return fmt.Errorf("top-level %s scope has range %v", scope.Kind(), sp)
		}
		return nil
	}
	if ok {
		// 1) range sanity
		if sp.End <= sp.Start {
			return fmt.Errorf("scope %d range is empty: %v", scope.ID(), sp)
		}
		f := fs.Get(sp.File)
		if f == nil {
			return fmt.Errorf("scope %d range points to unknown file %d", scope.ID(), sp.File)
		}
		lenContent, err := safecast.Conv[uint32](len(f.Content))
		if err != nil {
			return fmt.Errorf("len content overflow: %w", err)
		}
		if sp.End > lenContent {
			return fmt.Errorf("scope %d range end beyond content: %d > %d", scope.ID(), sp.End, lenContent)
		}
	}

	// 2) children inside parent
	for _, child := range scope.Children() {
		if child.IsSubmodule() {
			continue
		}
		cr, has := child.SourceRange()
		if !has {
			continue
		}
		if !ok {
			return fmt.Errorf("scope %d has range %v but parent %d has none", child.ID(), cr, scope.ID())
		}
		if !sp.Contains(cr) {
			return fmt.Errorf("scope %d range %v is outside parent %d range %v", child.ID(), cr, scope.ID(), sp)
		}
	}
	return nil
}

// CheckLookupContainment resolves every name from every scope and fails if
// a lookup lands on a symbol whose owner is not an ancestor of the scope,
// the parent module of a submodule on the way excepted.
func CheckLookupContainment(tab *symbols.Table, names []string) error {
	var firstErr error
	tab.Walk(func(scope *symbols.Scope, _ int) bool {
		for _, name := range names {
			sym := scope.FindSymbol(name)
			if sym == nil || visibleFrom(sym.Owner(), scope) {
				continue
			}
			firstErr = fmt.Errorf("FindSymbol(%q) from scope %d returned symbol of scope %d",
				name, scope.ID(), sym.Owner().ID())
			return false
		}
		return firstErr == nil
	})
	return firstErr
}

// visibleFrom reports whether owner is an ancestor of scope, following
// submodules to their parent module.
func visibleFrom(owner, scope *symbols.Scope) bool {
	for s := scope; s != nil; s = s.Parent() {
		if owner.Contains(s) {
			return true
		}
		if s.IsSubmodule() {
			if d, ok := s.Symbol().Details().(*symbols.ModuleDetails); ok && d.Parent != nil {
				return visibleFrom(owner, d.Parent)
			}
		}
	}
	return false
}
