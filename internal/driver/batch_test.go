package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func writeUnit(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestCheckAll(t *testing.T) {
	dir := t.TempDir()
	writeUnit(t, dir, "a_host.toml", hostUnit)
	writeUnit(t, dir, "b_pdt.toml", pdtUnit)
	writeUnit(t, dir, "c_bad.toml", "name = ")
	writeUnit(t, dir, "notes.txt", "not a unit")

	paths, err := ListUnits(dir)
	if err != nil {
		t.Fatalf("ListUnits: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("ListUnits = %v", paths)
	}

	var (
		mu     sync.Mutex
		counts = map[EventKind]int{}
		phases int
	)
	sink := SinkFunc(func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		counts[ev.Kind]++
		if ev.Kind == EventPhase {
			phases++
		}
	})

	reports, err := CheckAll(context.Background(), paths, 2, sink, Options{})
	if err != nil {
		t.Fatalf("CheckAll: %v", err)
	}
	if len(reports) != 3 {
		t.Fatalf("got %d reports", len(reports))
	}
	if !reports[0].OK() || reports[0].Name != "host" || reports[0].Result == nil {
		t.Fatalf("host report = %+v", reports[0])
	}
	if !reports[1].OK() || reports[1].Name != "pdt" {
		t.Fatalf("pdt report = %+v", reports[1])
	}
	if reports[2].OK() || reports[2].Err == nil || reports[2].Result != nil {
		t.Fatalf("bad unit must fail to load: %+v", reports[2])
	}
	if IsInternal(reports[2].Err) {
		t.Fatalf("a malformed unit is not an internal error")
	}
	for _, kind := range []EventKind{EventQueued, EventStarted, EventDone} {
		if counts[kind] != 3 {
			t.Errorf("event %d seen %d times, want 3", kind, counts[kind])
		}
	}
	// two successful builds with six passes each
	if phases != 12 {
		t.Errorf("saw %d phase events, want 12", phases)
	}
}

func TestCheckAllCountsMismatches(t *testing.T) {
	dir := t.TempDir()
	path := writeUnit(t, dir, "u.toml", hostUnit+`
[[lookup]]
scope = "m"
name = "nowhere"
expect = "m"
`)
	reports, err := CheckAll(context.Background(), []string{path}, 0, nil, Options{})
	if err != nil {
		t.Fatalf("CheckAll: %v", err)
	}
	if r := reports[0]; r.OK() || r.Mismatches != 1 || r.Errors != 1 {
		t.Fatalf("report = %+v", r)
	}
}

func TestCheckAllCanceled(t *testing.T) {
	dir := t.TempDir()
	path := writeUnit(t, dir, "u.toml", hostUnit)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := CheckAll(ctx, []string{path}, 1, nil, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("CheckAll on a canceled context = %v", err)
	}
}

func TestCheckAllEmpty(t *testing.T) {
	reports, err := CheckAll(context.Background(), nil, 4, nil, Options{})
	if err != nil || reports != nil {
		t.Fatalf("CheckAll(nil) = %v, %v", reports, err)
	}
}
