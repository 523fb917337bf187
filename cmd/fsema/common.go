package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"fsema/internal/diag"
	"fsema/internal/driver"
	"fsema/internal/unit"
)

// globalFlags are the persistent flags every command reads.
type globalFlags struct {
	useColor       bool
	quiet          bool
	timings        bool
	maxDiagnostics int
}

func readGlobalFlags(cmd *cobra.Command) (globalFlags, error) {
	var g globalFlags
	flags := cmd.Root().PersistentFlags()

	colorFlag, err := flags.GetString("color")
	if err != nil {
		return g, fmt.Errorf("failed to get color flag: %w", err)
	}
	switch colorFlag {
	case "on":
		g.useColor = true
	case "off":
	case "auto":
		g.useColor = isTerminal(os.Stdout)
	default:
		return g, fmt.Errorf("invalid --color value %q (expected auto|on|off)", colorFlag)
	}
	color.NoColor = !g.useColor
	if g.quiet, err = flags.GetBool("quiet"); err != nil {
		return g, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if g.timings, err = flags.GetBool("timings"); err != nil {
		return g, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if g.maxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
		return g, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	return g, nil
}

func (g globalFlags) buildOptions() driver.Options {
	return driver.Options{MaxDiagnostics: g.maxDiagnostics}
}

// buildUnit loads and builds the unit at path.
func buildUnit(cmd *cobra.Command, path string, g globalFlags) (*driver.Result, error) {
	u, err := unit.Load(path)
	if err != nil {
		return nil, err
	}
	res, err := driver.Build(cmd.Context(), u, g.buildOptions())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	headingColor = color.New(color.FgCyan, color.Bold)
	dimColor     = color.New(color.Faint)
)

// printDiagnostics writes the result's diagnostics in short form. Info
// diagnostics are dropped in quiet mode.
func printDiagnostics(out io.Writer, res *driver.Result, g globalFlags) {
	items := res.Bag.Items()
	if g.quiet {
		kept := items[:0:0]
		for _, d := range items {
			if d.Severity >= diag.SevWarning {
				kept = append(kept, d)
			}
		}
		items = kept
	}
	if len(items) == 0 {
		return
	}
	text := diag.FormatShort(items, res.Files, true)
	for line := range strings.SplitSeq(strings.TrimRight(text, "\n"), "\n") {
		switch {
		case !g.useColor:
			fmt.Fprintln(out, line)
		case strings.HasPrefix(line, "error"):
			errorColor.Fprintln(out, line)
		case strings.HasPrefix(line, "warning"):
			warningColor.Fprintln(out, line)
		default:
			dimColor.Fprintln(out, line)
		}
	}
	if res.Bag.Full() {
		fmt.Fprintf(out, "diagnostics stopped at %d, raise --max-diagnostics to see more\n", res.Bag.Cap())
	}
}

// heading prints a section title, colored when enabled.
func heading(out io.Writer, g globalFlags, format string, args ...any) {
	title := fmt.Sprintf(format, args...)
	if g.useColor {
		headingColor.Fprintln(out, title)
		return
	}
	fmt.Fprintln(out, title)
}
