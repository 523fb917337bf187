package symbols

import (
	"fmt"
	"io"
	"strings"
)

// String renders the scope header, its symbols, equivalence sets and
// common blocks, one per line.
func (s *Scope) String() string {
	var sb strings.Builder
	s.write(&sb, "")
	return sb.String()
}

func (s *Scope) write(sb *strings.Builder, indent string) {
	sb.WriteString(indent)
	sb.WriteString(s.kind.String())
	sb.WriteString(" scope: ")
	if s.symbol != nil {
		sb.WriteString(s.symbol.String())
		sb.WriteString(" ")
	}
	if s.derivedTypeSpec != nil {
		sb.WriteString("instantiation of ")
		sb.WriteString(s.derivedTypeSpec.String())
		sb.WriteString(" ")
	}
	fmt.Fprintf(sb, "%d children\n", len(s.children))
	for _, sym := range s.GetSymbols() {
		sb.WriteString(indent)
		sb.WriteString("  ")
		sb.WriteString(sym.String())
		sb.WriteString("\n")
	}
	if len(s.equivalenceSets) > 0 {
		sb.WriteString(indent)
		sb.WriteString("  Equivalence Sets:\n")
		for _, set := range s.equivalenceSets {
			sb.WriteString(indent)
			sb.WriteString("   ")
			for _, obj := range set {
				sb.WriteString(" ")
				sb.WriteString(obj.AsFortran())
			}
			sb.WriteString("\n")
		}
	}
	for _, blk := range s.CommonBlocks() {
		sb.WriteString(indent)
		sb.WriteString("  ")
		sb.WriteString(blk.String())
		sb.WriteString("\n")
	}
}

// Dump writes s and all of its descendants, indenting each level.
func (s *Scope) Dump(w io.Writer) error {
	var sb strings.Builder
	stack := []struct {
		scope *Scope
		depth int
	}{{s, 0}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		top.scope.write(&sb, strings.Repeat("  ", top.depth))
		for i := len(top.scope.children) - 1; i >= 0; i-- {
			stack = append(stack, struct {
				scope *Scope
				depth int
			}{top.scope.children[i], top.depth + 1})
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
