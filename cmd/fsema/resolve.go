package main

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"fsema/internal/driver"
	"fsema/internal/symbols"
	"fsema/internal/unit"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [flags] <unit.toml> [name...]",
	Short: "Resolve names against a unit's scope tree",
	Long: `Resolve prints the unit's own lookups. Names given on the command line
are looked up from --scope in addition.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().String("scope", unit.GlobalPath, "scope path the extra names are looked up from")
	resolveCmd.Flags().Bool("component", false, "look the extra names up as derived-type components")
}

func runResolve(cmd *cobra.Command, args []string) error {
	g, err := readGlobalFlags(cmd)
	if err != nil {
		return err
	}
	scopePath, err := cmd.Flags().GetString("scope")
	if err != nil {
		return fmt.Errorf("failed to get scope flag: %w", err)
	}
	component, err := cmd.Flags().GetBool("component")
	if err != nil {
		return fmt.Errorf("failed to get component flag: %w", err)
	}

	res, err := buildUnit(cmd, args[0], g)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(res.Lookups)+len(args))
	for _, l := range res.Lookups {
		rows = append(rows, lookupRow(l))
	}
	if names := args[1:]; len(names) > 0 {
		scope := res.Scope(scopePath)
		if scope == nil {
			return fmt.Errorf("unit %s has no scope %q", res.Unit.Name, scopePath)
		}
		if component && !scope.IsDerivedType() {
			return fmt.Errorf("--component needs a derived type scope, %q is %s", scopePath, scope.Kind())
		}
		for _, name := range names {
			var sym *symbols.Symbol
			if component {
				sym = scope.FindComponent(name)
			} else {
				sym = scope.FindSymbol(name)
			}
			l := driver.LookupResult{
				Lookup:  unit.Lookup{Scope: scopePath, Name: name, Component: component},
				Symbol:  sym,
				Matched: true,
			}
			if sym != nil {
				l.Owner = res.ScopePath(sym.Owner())
			}
			rows = append(rows, lookupRow(l))
		}
	}

	out := cmd.OutOrStdout()
	if len(rows) == 0 {
		if !g.quiet {
			fmt.Fprintln(out, "nothing to resolve")
		}
		return nil
	}
	fmt.Fprint(out, formatTable([]string{"SCOPE", "NAME", "OWNER", "RESULT"}, rows))
	printDiagnostics(cmd.ErrOrStderr(), res, g)

	mismatches := 0
	for _, l := range res.Lookups {
		if !l.Matched {
			mismatches++
		}
	}
	if mismatches > 0 {
		return fmt.Errorf("%d lookup(s) did not resolve as expected", mismatches)
	}
	return nil
}

func lookupRow(l driver.LookupResult) []string {
	name := l.Lookup.Name
	if l.Lookup.Component {
		name = "%" + name
	}
	scope := l.Lookup.Scope
	if scope == "" {
		scope = unit.GlobalPath
	}
	owner := l.Owner
	if owner == "" {
		owner = "-"
	}
	result := "ok"
	switch {
	case !l.Matched:
		result = "want " + l.Lookup.Expect
	case l.Symbol == nil:
		result = "not found"
	case l.Symbol.Details() != nil:
		result = l.Symbol.Details().String()
	}
	return []string{scope, name, owner, result}
}

// formatTable aligns columns by display width so wide names line up.
func formatTable(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i == len(cells)-1 {
				b.WriteString(cell)
				break
			}
			b.WriteString(runewidth.FillRight(cell, widths[i]))
			b.WriteString("  ")
		}
		b.WriteString("\n")
	}
	writeRow(header)
	for _, row := range rows {
		writeRow(row)
	}
	return b.String()
}
