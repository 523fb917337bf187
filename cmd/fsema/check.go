package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"fsema/internal/driver"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <dir|unit.toml>...",
	Short: "Build many units in parallel and report which fail",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().Int("jobs", 0, "max parallel builds (0=auto)")
	checkCmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
	checkCmd.Flags().Bool("diagnostics", false, "print the diagnostics of failing units")
}

func runCheck(cmd *cobra.Command, args []string) error {
	g, err := readGlobalFlags(cmd)
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	showDiags, err := cmd.Flags().GetBool("diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get diagnostics flag: %w", err)
	}

	paths, err := collectUnits(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no unit files found in %v", args)
	}

	opts := g.buildOptions()
	started := time.Now()
	var reports []driver.UnitReport
	if shouldUseTUI(mode, len(paths)) {
		reports, err = runCheckWithUI(cmd.Context(), "fsema check", paths, jobs, opts)
	} else {
		reports, err = driver.CheckAll(cmd.Context(), paths, jobs, nil, opts)
	}
	if err != nil {
		return err
	}

	failed := printCheckSummary(cmd.OutOrStdout(), reports, g, time.Since(started))
	if showDiags {
		for i := range reports {
			r := &reports[i]
			if r.OK() || r.Result == nil {
				continue
			}
			heading(cmd.ErrOrStderr(), g, "%s", r.Path)
			printDiagnostics(cmd.ErrOrStderr(), r.Result, g)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d units failed", failed, len(reports))
	}
	return nil
}

// collectUnits expands directories into their unit files and keeps plain
// file arguments as given.
func collectUnits(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		st, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", arg, err)
		}
		if !st.IsDir() {
			paths = append(paths, arg)
			continue
		}
		found, err := driver.ListUnits(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to list units in %s: %w", arg, err)
		}
		paths = append(paths, found...)
	}
	return paths, nil
}

// printCheckSummary writes one line per unit and returns how many failed.
func printCheckSummary(out io.Writer, reports []driver.UnitReport, g globalFlags, elapsed time.Duration) int {
	failed := 0
	for i := range reports {
		r := &reports[i]
		if r.OK() {
			if !g.quiet {
				fmt.Fprintf(out, "ok    %s (%s)\n", r.Path, r.Elapsed.Round(time.Microsecond))
			}
			continue
		}
		failed++
		status, detail := "FAIL", ""
		switch {
		case driver.IsInternal(r.Err):
			status, detail = "ICE", r.Err.Error()
		case r.Err != nil:
			detail = r.Err.Error()
		default:
			detail = fmt.Sprintf("%d error(s), %d mismatch(es)", r.Errors, r.Mismatches)
		}
		line := fmt.Sprintf("%-5s %s: %s", status, r.Path, detail)
		if g.useColor {
			errorColor.Fprintln(out, line)
		} else {
			fmt.Fprintln(out, line)
		}
	}
	if !g.quiet {
		fmt.Fprintf(out, "%d units, %d failed in %s\n", len(reports), failed, elapsed.Round(time.Millisecond))
	}
	return failed
}
