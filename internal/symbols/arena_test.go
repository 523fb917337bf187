package symbols

import (
	"fmt"
	"testing"

	"fsema/internal/source"
)

func TestSymbolPointersSurviveGrowth(t *testing.T) {
	tab := NewTable(Options{})
	g := tab.Global()
	first := mustSymbol(t, g, "first", nil)
	for i := 0; i < 3*chunkSize; i++ {
		mustSymbol(t, g, fmt.Sprintf("v%d", i), nil)
	}
	if g.Lookup("first") != first {
		t.Fatalf("symbol moved after arena growth")
	}
	if tab.Symbol(first.ID()) != first {
		t.Fatalf("lookup by id returned a different record")
	}
	if got := tab.SymbolCount(); got != 3*chunkSize+1 {
		t.Fatalf("SymbolCount = %d", got)
	}
	if tab.Symbol(NoSymbolID) != nil || tab.Symbol(SymbolID(10*chunkSize)) != nil {
		t.Fatalf("invalid ids must resolve to nil")
	}
}

func TestSymbolLimitIsFatal(t *testing.T) {
	tab := NewTable(Options{SymbolLimit: 2})
	g := tab.Global()
	mustSymbol(t, g, "a", nil)
	mustSymbol(t, g, "b", nil)
	expectInternal(t, "symbol arena exhausted", func() {
		g.MakeSymbol("c", source.Span{}, 0, nil)
	})
}
