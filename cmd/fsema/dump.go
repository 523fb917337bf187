package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [flags] <unit.toml>",
	Short: "Build a unit and print its scope tree",
	Args:  cobra.ExactArgs(1),
	RunE:  runDump,
}

func init() {
	dumpCmd.Flags().String("scope", "", "dump only the subtree at this scope path")
	dumpCmd.Flags().Bool("no-diagnostics", false, "do not print diagnostics after the tree")
}

func runDump(cmd *cobra.Command, args []string) error {
	g, err := readGlobalFlags(cmd)
	if err != nil {
		return err
	}
	scopePath, err := cmd.Flags().GetString("scope")
	if err != nil {
		return fmt.Errorf("failed to get scope flag: %w", err)
	}
	noDiags, err := cmd.Flags().GetBool("no-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get no-diagnostics flag: %w", err)
	}

	res, err := buildUnit(cmd, args[0], g)
	if err != nil {
		return err
	}
	scope := res.Scope(scopePath)
	if scope == nil {
		return fmt.Errorf("unit %s has no scope %q", res.Unit.Name, scopePath)
	}

	out := cmd.OutOrStdout()
	if !g.quiet {
		heading(out, g, "unit %s: %d scopes, %d symbols", res.Unit.Name, res.Table.ScopeCount(), res.Table.SymbolCount())
	}
	if err := scope.Dump(out); err != nil {
		return fmt.Errorf("failed to dump scope tree: %w", err)
	}
	if !noDiags {
		printDiagnostics(cmd.ErrOrStderr(), res, g)
	}
	if g.timings {
		printPassTimings(cmd.ErrOrStderr(), res.Timer.Report())
	}
	if res.Bag.HasErrors() {
		return fmt.Errorf("unit %s has errors", res.Unit.Name)
	}
	return nil
}
