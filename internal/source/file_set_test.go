package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetReservesNoFileID(t *testing.T) {
	fs := NewFileSet()
	if fs.Has(NoFileID) {
		t.Fatalf("NoFileID must never name a file")
	}
	if fs.Get(NoFileID) != nil {
		t.Fatalf("Get(NoFileID) must be nil")
	}

	id := fs.AddVirtual("main.f90", []byte("program p\nend program p\n"))
	if id == NoFileID {
		t.Fatalf("first file must not reuse NoFileID")
	}
	if !fs.Has(id) || fs.Len() != 1 {
		t.Fatalf("expected one file, got Len=%d Has=%v", fs.Len(), fs.Has(id))
	}
	if fs.Get(id).Flags&FileVirtual == 0 {
		t.Errorf("expected FileVirtual flag")
	}
}

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("m.f90", []byte("module m\nend module\n"), 0)
	id2 := fs.Add("m.f90", []byte("module m2\nend module\n"), 0)
	if id1 == id2 {
		t.Fatalf("each Add must allocate a new FileID")
	}

	latest, ok := fs.GetLatest("m.f90")
	if !ok || latest != id2 {
		t.Fatalf("GetLatest = %d,%v; expected %d", latest, ok, id2)
	}
	if string(fs.Get(id1).Content) != "module m\nend module\n" {
		t.Errorf("old version must stay readable")
	}
}

func TestFileSetResolveAndDescribe(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("sub.f90", []byte("line one\nline two\n"))

	start, end := fs.Resolve(Span{File: id, Start: 9, End: 13})
	if start != (LineCol{Line: 2, Col: 1}) || end != (LineCol{Line: 2, Col: 5}) {
		t.Errorf("Resolve = %v..%v", start, end)
	}

	if got := fs.Describe(Span{File: id, Start: 9, End: 13}); got != "'sub.f90' at 9 for 4" {
		t.Errorf("Describe = %q", got)
	}
	if got := fs.Describe(Span{File: 42, Start: 0, End: 1}); got != "(unknown source 42)" {
		t.Errorf("Describe(unknown) = %q", got)
	}
	if got := fs.Text(Span{File: id, Start: 5, End: 8}); got != "one" {
		t.Errorf("Text = %q", got)
	}
}

func TestFileSetLoadNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crlf.f90")
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("a\r\nb\r\n")...)
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f := fs.Get(id)
	if string(f.Content) != "a\nb\n" {
		t.Errorf("content = %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Errorf("flags = %b", f.Flags)
	}

	if _, err := fs.Load(filepath.Join(dir, "missing.f90")); err == nil {
		t.Errorf("expected error for missing file")
	}
}

func TestToLineCol(t *testing.T) {
	idx := buildLineIndex([]byte("ab\ncd\nef\n"))
	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{Line: 1, Col: 1}},
		{2, LineCol{Line: 1, Col: 3}}, // the newline closes its own line
		{3, LineCol{Line: 2, Col: 1}},
		{4, LineCol{Line: 2, Col: 2}},
		{6, LineCol{Line: 3, Col: 1}},
		{7, LineCol{Line: 3, Col: 2}},
		{9, LineCol{Line: 4, Col: 1}},
	}
	for _, tt := range tests {
		if got := toLineCol(idx, tt.off); got != tt.want {
			t.Errorf("toLineCol(%d) = %v, want %v", tt.off, got, tt.want)
		}
	}
	if got := toLineCol(nil, 5); got != (LineCol{Line: 1, Col: 6}) {
		t.Errorf("toLineCol without newlines = %v", got)
	}

	fs := NewFileSet()
	id := fs.AddVirtual("m.f90", []byte("module m\n  import, none\nend\n"))
	if start, _ := fs.Resolve(Span{File: id, Start: 11, End: 12}); start != (LineCol{Line: 2, Col: 3}) {
		t.Errorf("Resolve(11) = %v, want 2:3", start)
	}
}
