package unit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleUnit = `
name = "sample"

[[source]]
path = "m.f90"
text = "module m\nend module m\n"

[[scope]]
path = "m"
kind = "module"

  [[scope.range]]
  file = "m.f90"
  match = "module m"

  [[scope.decl]]
  name = "x"
  kind = "object"
  type = "integer(8)"
  attrs = ["save"]

[[scope]]
path = "m/s"
kind = "subprogram"
interface = true

  [[scope.import]]
  kind = "only"
  names = ["x"]

[[lookup]]
scope = "m/s"
name = "x"
expect = "m"
`

func TestParseSample(t *testing.T) {
	u, err := Parse([]byte(sampleUnit))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if u.Name != "sample" || len(u.Sources) != 1 || len(u.Scopes) != 2 || len(u.Lookups) != 1 {
		t.Fatalf("unexpected unit: %+v", u)
	}
	m := u.Scopes[0]
	if m.Name() != "m" || m.ParentPath() != "" || len(m.Ranges) != 1 || m.Ranges[0].Match != "module m" {
		t.Fatalf("scope m decoded wrong: %+v", m)
	}
	if len(m.Symbols) != 1 || m.Symbols[0].Type != "integer(8)" || m.Symbols[0].Attrs[0] != "save" {
		t.Fatalf("decl decoded wrong: %+v", m.Symbols)
	}
	s := u.Scopes[1]
	if s.Name() != "s" || s.ParentPath() != "m" || !s.Interface || s.Imports[0].Names[0] != "x" {
		t.Fatalf("scope m/s decoded wrong: %+v", s)
	}
}

func TestParseRejects(t *testing.T) {
	cases := []struct {
		name, text, want string
	}{
		{"missing name", `[[scope]]` + "\npath = \"m\"\nkind = \"module\"\n", "missing name"},
		{"bad toml", "name = ", "failed to parse TOML"},
		{"unknown key", "name = \"u\"\ncolour = 1\n", "unknown key colour"},
		{"scope without kind", "name = \"u\"\n[[scope]]\npath = \"m\"\n", "missing kind"},
		{"malformed path", "name = \"u\"\n[[scope]]\npath = \"m//s\"\nkind = \"module\"\n", "malformed path"},
		{"duplicate scope", "name = \"u\"\n[[scope]]\npath = \"m\"\nkind = \"module\"\n[[scope]]\npath = \"m\"\nkind = \"module\"\n", "declared twice"},
		{"lookup without name", "name = \"u\"\n[[lookup]]\nscope = \"m\"\n", "missing name"},
	}
	for _, c := range cases {
		_, err := Parse([]byte(c.text))
		if err == nil || !strings.Contains(err.Error(), c.want) {
			t.Errorf("%s: err = %v, want mention of %q", c.name, err, c.want)
		}
	}
}

func TestLoadResolvesSourcePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "unit.toml")
	if err := os.WriteFile(path, []byte(sampleUnit), 0o600); err != nil {
		t.Fatal(err)
	}
	u, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if u.Path != path {
		t.Fatalf("Path = %q", u.Path)
	}
	if got := u.SourcePath("src/a.f90"); got != filepath.Join(dir, "src", "a.f90") {
		t.Fatalf("SourcePath = %q", got)
	}
	if _, err := Load(filepath.Join(dir, "missing.toml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
