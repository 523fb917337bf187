package symbols

import (
	"strings"

	"fsema/internal/source"
)

// Symbol is a named entity owned by exactly one Scope. Symbols are allocated
// in the table arena and are never moved, so *Symbol is a stable identity.
type Symbol struct {
	id      SymbolID
	name    source.StringID
	text    string // folded name
	span    source.Span
	owner   *Scope
	scope   *Scope // scope this symbol introduces, if any
	attrs   Attrs
	flags   Flags
	details Details
}

func (s *Symbol) ID() SymbolID      { return s.id }
func (s *Symbol) Name() string      { return s.text }
func (s *Symbol) Span() source.Span { return s.span }
func (s *Symbol) Owner() *Scope     { return s.owner }
func (s *Symbol) Scope() *Scope     { return s.scope }
func (s *Symbol) Attrs() Attrs      { return s.attrs }
func (s *Symbol) Flags() Flags      { return s.flags }
func (s *Symbol) Details() Details  { return s.details }
func (s *Symbol) Test(f Flag) bool  { return s.flags.Has(f) }
func (s *Symbol) SetAttrs(a Attrs)  { s.attrs = a }
func (s *Symbol) SetFlag(f Flag)    { s.flags = s.flags.With(f) }

// sourceBefore orders symbols by source position, falling back to creation
// order for names without a position.
func sourceBefore(a, b *Symbol) int {
	if a.span.Before(b.span) {
		return -1
	}
	if b.span.Before(a.span) {
		return 1
	}
	switch {
	case a.id < b.id:
		return -1
	case a.id > b.id:
		return 1
	default:
		return 0
	}
}

// String renders "name, ATTRS (Flags): Details".
func (s *Symbol) String() string {
	var sb strings.Builder
	sb.WriteString(s.text)
	if s.attrs != 0 {
		sb.WriteString(", ")
		sb.WriteString(s.attrs.String())
	}
	if s.flags != 0 {
		sb.WriteString(" (")
		sb.WriteString(s.flags.String())
		sb.WriteString(")")
	}
	if s.details != nil {
		sb.WriteString(": ")
		sb.WriteString(s.details.String())
	}
	return sb.String()
}
