package symbols

import (
	"errors"
	"fmt"
)

// Validate walks the tree checking structural invariants. Returns nil if
// everything is consistent; otherwise aggregates all detected issues.
func (t *Table) Validate() error {
	var errs []error
	seen := make(map[*Scope]struct{}, t.scopes.len())

	t.Walk(func(scope *Scope, _ int) bool {
		if _, dup := seen[scope]; dup {
			errs = append(errs, fmt.Errorf("scope %d reachable twice", scope.id))
			return false
		}
		seen[scope] = struct{}{}

		if scope.table != t {
			errs = append(errs, fmt.Errorf("scope %d belongs to another table", scope.id))
		}
		for _, child := range scope.children {
			if child.parent != scope {
				errs = append(errs, fmt.Errorf("scope %d child %d missing parent backlink", scope.id, child.id))
			}
		}
		if scope.symbol != nil && scope.symbol.scope != scope && scope.derivedTypeSpec == nil {
			errs = append(errs, fmt.Errorf("scope %d symbol %q points at scope %d", scope.id, scope.symbol.text, scopeID(scope.symbol.scope)))
		}

		// Check name index consistency.
		for id, sym := range scope.symbols {
			if sym.owner != scope {
				errs = append(errs, fmt.Errorf("scope %d symbol %q owned by scope %d", scope.id, sym.text, scopeID(sym.owner)))
			}
			if sym.name != id {
				errs = append(errs, fmt.Errorf("scope %d name index %d references symbol %q", scope.id, id, sym.text))
			}
		}
		for id, blk := range scope.commonBlocks {
			if _, ok := blk.details.(*CommonBlockDetails); !ok || blk.name != id {
				errs = append(errs, fmt.Errorf("scope %d common block %q is malformed", scope.id, blk.text))
			}
		}

		if !scope.IsGlobal() {
			for _, d := range scope.declTypeSpecs {
				if d.IsLengthless() {
					errs = append(errs, fmt.Errorf("scope %d owns lengthless type %s", scope.id, d))
				}
			}
		}

		errs = append(errs, t.checkRange(scope)...)
		return true
	})

	if n := t.scopes.len(); len(seen) != n {
		errs = append(errs, fmt.Errorf("%d scopes allocated, %d reachable from Global", n, len(seen)))
	}

	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}

// checkRange verifies that a child's range lies inside its parent's.
// Submodules and children of top-level scopes are exempt.
func (t *Table) checkRange(scope *Scope) []error {
	var errs []error
	for _, child := range scope.children {
		if scope.IsTopLevel() || child.IsSubmodule() {
			continue
		}
		cr, ok := child.SourceRange()
		if !ok {
			continue
		}
		pr, ok := scope.SourceRange()
		if !ok {
			errs = append(errs, fmt.Errorf("scope %d has a range but parent %d has none", child.id, scope.id))
			continue
		}
		if !pr.Contains(cr) {
			errs = append(errs, fmt.Errorf("scope %d range %s not inside parent %d range %s", child.id, cr, scope.id, pr))
		}
	}
	return errs
}

func scopeID(s *Scope) ScopeID {
	if s == nil {
		return NoScopeID
	}
	return s.id
}
