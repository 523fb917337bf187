// Package snapshot captures a built scope tree as plain data, serializes it
// with msgpack, and caches it on disk keyed by the unit file's digest.
package snapshot

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vmihailenco/msgpack/v5"

	"fsema/internal/observ"
	"fsema/internal/source"
	"fsema/internal/symbols"
)

// SchemaVersion is bumped whenever the layout of Snapshot changes.
const SchemaVersion uint16 = 1

// ErrSchemaMismatch is returned by Decode for snapshots of another schema.
var ErrSchemaMismatch = errors.New("snapshot schema mismatch")

// Digest is the SHA-256 of a unit file.
type Digest [32]byte

// Key returns the digest of unit file contents.
func Key(data []byte) Digest { return sha256.Sum256(data) }

// KeyFile reads path and returns its digest.
func KeyFile(path string) (Digest, error) {
	// #nosec G304 -- path is provided by the caller
	data, err := os.ReadFile(path)
	if err != nil {
		return Digest{}, err
	}
	return Key(data), nil
}

// Snapshot is a self-contained picture of one Table. Scopes are listed in
// pre-order; references between records use the table's ids.
type Snapshot struct {
	Schema  uint16        `msgpack:"schema"`
	Unit    string        `msgpack:"unit"`
	Digest  Digest        `msgpack:"digest"`
	Scopes  []Scope       `msgpack:"scopes"`
	Symbols []Symbol      `msgpack:"symbols"`
	Lookups []Lookup      `msgpack:"lookups,omitempty"`
	Timings observ.Report `msgpack:"timings"`
}

// Scope mirrors symbols.Scope.
type Scope struct {
	ID            uint32     `msgpack:"id"`
	Parent        uint32     `msgpack:"parent"`
	Depth         int        `msgpack:"depth"`
	Kind          string     `msgpack:"kind"`
	Symbol        uint32     `msgpack:"symbol"`
	Instantiation string     `msgpack:"inst,omitempty"`
	Range         *Range     `msgpack:"range,omitempty"`
	ImportKind    string     `msgpack:"import"`
	ImportNames   []string   `msgpack:"import_names,omitempty"`
	Symbols       []uint32   `msgpack:"symbols,omitempty"`
	Types         []string   `msgpack:"types,omitempty"`
	Equivalences  [][]string `msgpack:"equivalences,omitempty"`
	Commons       []Common   `msgpack:"commons,omitempty"`
	Cray          []Cray     `msgpack:"cray,omitempty"`
}

// Symbol mirrors symbols.Symbol with its details rendered as text.
type Symbol struct {
	ID      uint32 `msgpack:"id"`
	Name    string `msgpack:"name"`
	Owner   uint32 `msgpack:"owner"`
	Scope   uint32 `msgpack:"scope,omitempty"`
	Attrs   string `msgpack:"attrs,omitempty"`
	Flags   string `msgpack:"flags,omitempty"`
	Details string `msgpack:"details,omitempty"`
	Span    *Range `msgpack:"span,omitempty"`
}

// Range is a span with the file named by path.
type Range struct {
	File  string `msgpack:"file"`
	Start uint32 `msgpack:"start"`
	End   uint32 `msgpack:"end"`
}

func (r *Range) String() string {
	if r == nil {
		return "-"
	}
	return fmt.Sprintf("%s:%d-%d", r.File, r.Start, r.End)
}

type Common struct {
	Name    string   `msgpack:"name"`
	Objects []string `msgpack:"objects"`
}

type Cray struct {
	Pointee string `msgpack:"pointee"`
	Pointer string `msgpack:"pointer"`
}

// Lookup records the answer to a unit lookup.
type Lookup struct {
	Scope   string `msgpack:"scope"`
	Name    string `msgpack:"name"`
	Owner   string `msgpack:"owner"`
	Matched bool   `msgpack:"matched"`
}

// Take copies tab into a Snapshot.
func Take(tab *symbols.Table) *Snapshot {
	snap := &Snapshot{Schema: SchemaVersion}
	files := tab.Files()
	tab.Walk(func(scope *symbols.Scope, depth int) bool {
		rec := Scope{
			ID:         uint32(scope.ID()),
			Depth:      depth,
			Kind:       scope.Kind().String(),
			ImportKind: scope.GetImportKind().String(),
		}
		if p := scope.Parent(); p != nil {
			rec.Parent = uint32(p.ID())
		}
		if sym := scope.Symbol(); sym != nil {
			rec.Symbol = uint32(sym.ID())
		}
		if spec := scope.DerivedTypeSpec(); spec != nil {
			rec.Instantiation = spec.String()
		}
		if r, ok := scope.SourceRange(); ok {
			rec.Range = rangeOf(files, r)
		}
		rec.ImportNames = scope.ImportNames()
		for _, sym := range scope.GetSymbols() {
			rec.Symbols = append(rec.Symbols, uint32(sym.ID()))
			snap.Symbols = append(snap.Symbols, symbolOf(files, sym))
		}
		for _, t := range scope.DeclTypes() {
			rec.Types = append(rec.Types, t.String())
		}
		for _, set := range scope.EquivalenceSets() {
			objs := make([]string, len(set))
			for i, obj := range set {
				objs[i] = obj.AsFortran()
			}
			rec.Equivalences = append(rec.Equivalences, objs)
		}
		for _, block := range scope.CommonBlocks() {
			c := Common{Name: block.Name()}
			if d, ok := block.Details().(*symbols.CommonBlockDetails); ok {
				for _, obj := range d.Objects {
					c.Objects = append(c.Objects, obj.Name())
				}
			}
			rec.Commons = append(rec.Commons, c)
		}
		for _, cp := range scope.CrayPointers() {
			rec.Cray = append(rec.Cray, Cray{Pointee: cp.Name, Pointer: cp.Pointer.Name()})
		}
		snap.Scopes = append(snap.Scopes, rec)
		return true
	})
	return snap
}

func symbolOf(files *source.FileSet, sym *symbols.Symbol) Symbol {
	out := Symbol{
		ID:    uint32(sym.ID()),
		Name:  sym.Name(),
		Owner: uint32(sym.Owner().ID()),
	}
	if s := sym.Scope(); s != nil {
		out.Scope = uint32(s.ID())
	}
	if a := sym.Attrs(); a != 0 {
		out.Attrs = a.String()
	}
	if f := sym.Flags(); f != 0 {
		out.Flags = f.String()
	}
	if d := sym.Details(); d != nil {
		out.Details = d.String()
	}
	if sp := sym.Span(); sp.File != source.NoFileID {
		out.Span = rangeOf(files, sp)
	}
	return out
}

func rangeOf(files *source.FileSet, sp source.Span) *Range {
	r := &Range{Start: sp.Start, End: sp.End}
	if f := files.Get(sp.File); f != nil {
		r.File = f.Path
	}
	return r
}

// Encode writes snap as msgpack.
func Encode(w io.Writer, snap *Snapshot) error {
	return msgpack.NewEncoder(w).Encode(snap)
}

// Decode reads a snapshot written by Encode.
func Decode(r io.Reader) (*Snapshot, error) {
	var snap Snapshot
	if err := msgpack.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Schema != SchemaVersion {
		return nil, fmt.Errorf("%w: have %d, want %d", ErrSchemaMismatch, snap.Schema, SchemaVersion)
	}
	return &snap, nil
}

// Scope returns the scope record with id, or nil.
func (s *Snapshot) Scope(id uint32) *Scope {
	for i := range s.Scopes {
		if s.Scopes[i].ID == id {
			return &s.Scopes[i]
		}
	}
	return nil
}

// Symbol returns the symbol record with id, or nil.
func (s *Snapshot) Symbol(id uint32) *Symbol {
	for i := range s.Symbols {
		if s.Symbols[i].ID == id {
			return &s.Symbols[i]
		}
	}
	return nil
}
