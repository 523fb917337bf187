package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"fsema/internal/driver"
	"fsema/internal/snapshot"
	"fsema/internal/unit"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot [flags] [unit.toml]",
	Short: "Write, cache or inspect a msgpack snapshot of a unit's scope tree",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSnapshot,
}

func init() {
	snapshotCmd.Flags().StringP("out", "o", "", "write the snapshot to this file")
	snapshotCmd.Flags().Bool("cache", false, "reuse and fill the on-disk snapshot cache")
	snapshotCmd.Flags().Bool("drop-cache", false, "remove every cached snapshot first")
	snapshotCmd.Flags().String("show", "", "print the summary of a snapshot file")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	g, err := readGlobalFlags(cmd)
	if err != nil {
		return err
	}
	outPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return fmt.Errorf("failed to get out flag: %w", err)
	}
	useCache, err := cmd.Flags().GetBool("cache")
	if err != nil {
		return fmt.Errorf("failed to get cache flag: %w", err)
	}
	dropCache, err := cmd.Flags().GetBool("drop-cache")
	if err != nil {
		return fmt.Errorf("failed to get drop-cache flag: %w", err)
	}
	showPath, err := cmd.Flags().GetString("show")
	if err != nil {
		return fmt.Errorf("failed to get show flag: %w", err)
	}
	out := cmd.OutOrStdout()

	var cache *snapshot.DiskCache
	if useCache || dropCache {
		if cache, err = snapshot.OpenDiskCache("fsema"); err != nil {
			return fmt.Errorf("failed to open snapshot cache: %w", err)
		}
	}
	if dropCache {
		if err := cache.DropAll(); err != nil {
			return fmt.Errorf("failed to drop snapshot cache: %w", err)
		}
		if !g.quiet {
			fmt.Fprintf(out, "dropped cached snapshots in %s\n", cache.Dir())
		}
	}

	if showPath != "" {
		snap, err := readSnapshot(showPath)
		if err != nil {
			return err
		}
		printSnapshot(out, snap)
		return nil
	}
	if len(args) == 0 {
		if dropCache {
			return nil
		}
		return errors.New("snapshot needs a unit file or --show")
	}

	snap, hit, err := loadSnapshot(cmd, args[0], g, cache)
	if err != nil {
		return err
	}
	if outPath == "" {
		printSnapshot(out, snap)
	} else if err := writeSnapshot(outPath, snap); err != nil {
		return err
	}
	if !g.quiet && cache != nil {
		state := "miss"
		if hit {
			state = "hit"
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "cache %s: %s\n", state, args[0])
	}
	return nil
}

// loadSnapshot returns the cached snapshot of the unit at path or builds a
// fresh one, storing it in cache when the build was clean.
func loadSnapshot(cmd *cobra.Command, path string, g globalFlags, cache *snapshot.DiskCache) (*snapshot.Snapshot, bool, error) {
	var key snapshot.Digest
	if cache != nil {
		var err error
		if key, err = snapshot.KeyFile(path); err != nil {
			return nil, false, fmt.Errorf("failed to hash %s: %w", path, err)
		}
		snap, ok, err := cache.Get(key)
		if err != nil {
			return nil, false, fmt.Errorf("failed to read snapshot cache: %w", err)
		}
		if ok {
			return snap, true, nil
		}
	}

	res, err := buildUnit(cmd, path, g)
	if err != nil {
		return nil, false, err
	}
	printDiagnostics(cmd.ErrOrStderr(), res, g)
	if res.Bag.HasErrors() {
		return nil, false, fmt.Errorf("%s has errors, no snapshot taken", path)
	}
	snap := snapshotOf(res)
	if cache != nil {
		if err := cache.Put(key, snap); err != nil {
			return nil, false, fmt.Errorf("failed to store snapshot: %w", err)
		}
	}
	return snap, false, nil
}

func snapshotOf(res *driver.Result) *snapshot.Snapshot {
	snap := snapshot.Take(res.Table)
	snap.Unit = res.Unit.Name
	snap.Timings = res.Timer.Report()
	for _, l := range res.Lookups {
		scope := l.Lookup.Scope
		if scope == "" {
			scope = unit.GlobalPath
		}
		snap.Lookups = append(snap.Lookups, snapshot.Lookup{
			Scope:   scope,
			Name:    l.Lookup.Name,
			Owner:   l.Owner,
			Matched: l.Matched,
		})
	}
	return snap
}

func writeSnapshot(path string, snap *snapshot.Snapshot) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := snapshot.Encode(f, snap); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", path, err)
	}
	return nil
}

func readSnapshot(path string) (*snapshot.Snapshot, error) {
	// #nosec G304 -- path is provided by the user
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	snap, err := snapshot.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	return snap, nil
}

// printSnapshot writes the scope tree of snap, one scope per line.
func printSnapshot(out io.Writer, snap *snapshot.Snapshot) {
	digest := "-"
	if snap.Digest != (snapshot.Digest{}) {
		digest = hex.EncodeToString(snap.Digest[:6])
	}
	fmt.Fprintf(out, "unit %s  digest %s  %d scopes  %d symbols\n",
		valueOrUnknown(snap.Unit), digest, len(snap.Scopes), len(snap.Symbols))
	for _, sc := range snap.Scopes {
		var sb strings.Builder
		sb.WriteString(strings.Repeat("  ", sc.Depth))
		sb.WriteString(sc.Kind)
		if sym := snap.Symbol(sc.Symbol); sym != nil {
			sb.WriteString(" " + sym.Name)
		}
		if sc.Instantiation != "" {
			sb.WriteString(" instantiation of " + sc.Instantiation)
		}
		if sc.Range != nil {
			sb.WriteString(" [" + sc.Range.String() + "]")
		}
		names := make([]string, 0, len(sc.Symbols))
		for _, id := range sc.Symbols {
			if sym := snap.Symbol(id); sym != nil {
				names = append(names, sym.Name)
			}
		}
		if len(names) > 0 {
			sb.WriteString(": " + strings.Join(names, " "))
		}
		fmt.Fprintln(out, sb.String())
	}
	for _, l := range snap.Lookups {
		status := "ok"
		if !l.Matched {
			status = "mismatch"
		}
		fmt.Fprintf(out, "lookup %s in %s -> %s (%s)\n", l.Name, l.Scope, valueOrUnknown(l.Owner), status)
	}
}
