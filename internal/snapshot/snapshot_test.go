package snapshot

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"fsema/internal/driver"
	"fsema/internal/symbols"
	"fsema/internal/unit"
)

const legacyUnit = `
name = "legacy"

[[source]]
path = "old.f"
text = """
      subroutine old
      common /blk/ a, b
      equivalence (a, c(2))
      pointer (p, q)
      end
"""

[[scope]]
path = "old"
kind = "subprogram"
equivalence = [["a", "c(2)"]]

  [[scope.range]]
  file = "old.f"
  match = "subroutine old"

  [[scope.decl]]
  name = "a"
  type = "real"
  at = { file = "old.f", match = "a, b" }

  [[scope.decl]]
  name = "b"
  type = "real"

  [[scope.decl]]
  name = "c"
  type = "real"

  [[scope.decl]]
  name = "p"
  type = "integer(8)"
  flags = ["CrayPointer"]

  [[scope.common]]
  name = "blk"
  objects = ["a", "b"]

  [[scope.cray]]
  pointer = "p"
  pointee = "q"

[[scope]]
path = "old/pt"
kind = "derivedtype"

  [[scope.decl]]
  name = "k"
  kind = "typeparam"

[[scope]]
path = "old/blk1"
kind = "blockconstruct"
anonymous = true
types = ["type(pt(k=2))"]
instantiate = true
`

func build(t *testing.T, text string) *symbols.Table {
	t.Helper()
	u, err := unit.Parse([]byte(text))
	if err != nil {
		t.Fatalf("unit.Parse: %v", err)
	}
	res, err := driver.Build(context.Background(), u, driver.Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if res.Bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", res.Bag.Items())
	}
	return res.Table
}

func scopeByKind(snap *Snapshot, kind string) *Scope {
	for i := range snap.Scopes {
		if snap.Scopes[i].Kind == kind {
			return &snap.Scopes[i]
		}
	}
	return nil
}

func TestTakeIsDeterministic(t *testing.T) {
	a := Take(build(t, legacyUnit))
	b := Take(build(t, legacyUnit))
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("snapshots of the same unit differ (-a +b):\n%s", diff)
	}
}

func TestTakeContents(t *testing.T) {
	snap := Take(build(t, legacyUnit))
	if snap.Schema != SchemaVersion || snap.Scopes[0].Kind != "Global" || snap.Scopes[0].Depth != 0 {
		t.Fatalf("first scope = %+v", snap.Scopes[0])
	}
	old := scopeByKind(snap, "Subprogram")
	if old == nil || old.Depth != 1 || old.Range == nil || old.Range.File != "old.f" {
		t.Fatalf("subprogram scope = %+v", old)
	}
	if sym := snap.Symbol(old.Symbol); sym == nil || sym.Name != "old" || sym.Scope != old.ID {
		t.Fatalf("subprogram symbol = %+v", sym)
	}
	var names []string
	for _, id := range old.Symbols {
		names = append(names, snap.Symbol(id).Name)
	}
	// names without a position come first, in creation order
	if diff := cmp.Diff([]string{"pt", "b", "c", "p", "a"}, names); diff != "" {
		t.Fatalf("symbol order (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][]string{{"a", "c(2)"}}, old.Equivalences); diff != "" {
		t.Fatalf("equivalences (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Common{{Name: "blk", Objects: []string{"a", "b"}}}, old.Commons); diff != "" {
		t.Fatalf("commons (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Cray{{Pointee: "q", Pointer: "p"}}, old.Cray); diff != "" {
		t.Fatalf("cray pointers (-want +got):\n%s", diff)
	}

	var inst *Scope
	for i := range snap.Scopes {
		if snap.Scopes[i].Instantiation != "" {
			inst = &snap.Scopes[i]
		}
	}
	if inst == nil || inst.Instantiation != "pt(k=2)" || inst.Symbol != 0 {
		t.Fatalf("instantiation = %+v", inst)
	}
	if parent := snap.Scope(inst.Parent); parent == nil || parent.Kind != "BlockConstruct" {
		t.Fatalf("instantiation parent = %+v", parent)
	}
}

func TestEncodeDecode(t *testing.T) {
	snap := Take(build(t, legacyUnit))
	snap.Unit = "legacy"
	var buf bytes.Buffer
	if err := Encode(&buf, snap); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if diff := cmp.Diff(snap, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("decoded snapshot differs (-want +got):\n%s", diff)
	}

	buf.Reset()
	snap.Schema = SchemaVersion + 1
	if err := Encode(&buf, snap); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := Decode(&buf); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("Decode of a foreign schema = %v", err)
	}
}

func TestDiskCache(t *testing.T) {
	cache, err := OpenDir(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDir: %v", err)
	}
	key := Key([]byte(legacyUnit))
	if _, ok, err := cache.Get(key); ok || err != nil {
		t.Fatalf("Get on an empty cache = %v, %v", ok, err)
	}

	snap := Take(build(t, legacyUnit))
	if err := cache.Put(key, snap); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := cache.Get(key)
	if !ok || err != nil {
		t.Fatalf("Get after Put = %v, %v", ok, err)
	}
	if got.Digest != key {
		t.Fatalf("digest not recorded")
	}
	if diff := cmp.Diff(snap, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("cached snapshot differs (-want +got):\n%s", diff)
	}

	if err := cache.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	if _, ok, _ := cache.Get(key); ok {
		t.Fatalf("DropAll must clear the cache")
	}
	if err := cache.Put(key, snap); err != nil {
		t.Fatalf("Put after DropAll: %v", err)
	}
}

func TestNilCacheIsInert(t *testing.T) {
	var cache *DiskCache
	if err := cache.Put(Digest{}, &Snapshot{}); err != nil {
		t.Fatalf("Put on nil cache: %v", err)
	}
	if _, ok, err := cache.Get(Digest{}); ok || err != nil {
		t.Fatalf("Get on nil cache = %v, %v", ok, err)
	}
}
