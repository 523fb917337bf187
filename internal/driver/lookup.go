package driver

import (
	"fmt"

	"fsema/internal/diag"
	"fsema/internal/source"
	"fsema/internal/symbols"
	"fsema/internal/unit"
)

// lookups runs the unit's queries against the finished tree.
func (b *builder) lookups() error {
	for _, l := range b.unit.Lookups {
		path := l.Scope
		if path == unit.GlobalPath {
			path = ""
		}
		scope := b.scopes[path]
		if scope == nil {
			diag.ReportError(b.rep, diag.PrjUnknownScope, source.Span{},
				fmt.Sprintf("lookup of %q: unknown scope %q", l.Name, l.Scope)).Emit()
			continue
		}

		var sym *symbols.Symbol
		if l.Component {
			if !scope.IsDerivedType() {
				diag.ReportError(b.rep, diag.PrjUnitInvalid, source.Span{},
					fmt.Sprintf("component lookup of %q in %s, which is not a derived type", l.Name, b.res.ScopePath(scope))).Emit()
				continue
			}
			sym = scope.FindComponent(l.Name)
		} else {
			sym = scope.FindSymbol(l.Name)
		}

		r := LookupResult{Lookup: l, Symbol: sym}
		if sym != nil {
			r.Owner = b.res.ScopePath(sym.Owner())
		}
		r.Matched = expectationHolds(l.Expect, r.Owner)
		b.res.Lookups = append(b.res.Lookups, r)

		switch {
		case !r.Matched:
			diag.ReportError(b.rep, diag.SemaLookupMismatch, symbolSpan(sym),
				fmt.Sprintf("lookup of %q from %s: want %s, got %s", l.Name, b.res.ScopePath(scope), l.Expect, ownerOrNone(r.Owner))).Emit()
		case sym == nil && l.Expect == "" && l.Component:
			diag.ReportWarning(b.rep, diag.SemaComponentNotFound, source.Span{},
				fmt.Sprintf("%s has no component %q", b.res.ScopePath(scope), l.Name)).Emit()
		case sym == nil && l.Expect == "":
			diag.ReportWarning(b.rep, diag.SemaUnresolvedSymbol, source.Span{},
				fmt.Sprintf("%q is not visible from %s", l.Name, b.res.ScopePath(scope))).Emit()
		}
	}
	return nil
}

func expectationHolds(expect, owner string) bool {
	switch expect {
	case "":
		return true
	case unit.ExpectNone:
		return owner == ""
	default:
		return expect == owner
	}
}

func ownerOrNone(owner string) string {
	if owner == "" {
		return unit.ExpectNone
	}
	return owner
}

func symbolSpan(sym *symbols.Symbol) source.Span {
	if sym == nil {
		return source.Span{}
	}
	return sym.Span()
}
