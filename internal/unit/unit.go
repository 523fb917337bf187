// Package unit describes a compilation unit for the driver: the cooked
// sources, the scopes the analyser would create with their symbols, and the
// lookups to run against the finished tree. Units are written in TOML.
package unit

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Unit is the decoded form of a unit file.
type Unit struct {
	// Path is the file the unit was loaded from; empty for inline units.
	Path string `toml:"-"`

	Name        string   `toml:"name"`
	SymbolLimit int      `toml:"symbol_limit"`
	Sources     []Source `toml:"source"`
	Scopes      []Scope  `toml:"scope"`
	Lookups     []Lookup `toml:"lookup"`
}

// Source is one cooked source file. Text wins over reading Path from disk.
type Source struct {
	Path string `toml:"path"`
	Text string `toml:"text"`
}

// Scope describes one scope and everything recorded in it.
// Path is the slash-separated chain of scope names below Global, e.g. "m/s".
type Scope struct {
	Path        string     `toml:"path"`
	Kind        string     `toml:"kind"`
	Symbol      string     `toml:"symbol"`
	Anonymous   bool       `toml:"anonymous"`
	Attrs       []string   `toml:"attrs"`
	Flags       []string   `toml:"flags"`
	Interface   bool       `toml:"interface"`
	Function    bool       `toml:"function"`
	SubmoduleOf string     `toml:"submodule_of"`
	Ancestor    string     `toml:"ancestor"`
	Extends     string     `toml:"extends"`
	Imports     []Import   `toml:"import"`
	Ranges      []Range    `toml:"range"`
	Symbols     []Symbol   `toml:"decl"`
	Equivalence [][]string `toml:"equivalence"`
	Commons     []Common   `toml:"common"`
	Cray        []Cray     `toml:"cray"`
	Types       []string   `toml:"types"`
	Exprs       []Expr     `toml:"expr"`
	Instantiate bool       `toml:"instantiate"`
}

// Name returns the last segment of the scope path.
func (s Scope) Name() string {
	if i := strings.LastIndexByte(s.Path, '/'); i >= 0 {
		return s.Path[i+1:]
	}
	return s.Path
}

// ParentPath returns the path of the enclosing scope, "" for Global.
func (s Scope) ParentPath() string {
	if i := strings.LastIndexByte(s.Path, '/'); i >= 0 {
		return s.Path[:i]
	}
	return ""
}

// Import is one IMPORT statement.
type Import struct {
	Kind  string   `toml:"kind"`
	Names []string `toml:"names"`
}

// Range is a piece of source text attributed to a scope. Either Start/End
// offsets or Match, the first occurrence of a literal, select it.
type Range struct {
	File  string `toml:"file"`
	Start uint32 `toml:"start"`
	End   uint32 `toml:"end"`
	Match string `toml:"match"`
}

// Symbol declares a symbol inside a scope.
type Symbol struct {
	Name  string   `toml:"name"`
	Kind  string   `toml:"kind"` // object, typeparam, subprogram, misc
	Type  string   `toml:"type"`
	Attrs []string `toml:"attrs"`
	Flags []string `toml:"flags"`
	Param string   `toml:"param"` // kind or len, for typeparam
	Init  string   `toml:"init"`
	At    *Range   `toml:"at"`
}

// Common declares a common block and its members.
type Common struct {
	Name    string   `toml:"name"`
	Objects []string `toml:"objects"`
}

// Cray binds a pointee to a Cray pointer symbol.
type Cray struct {
	Pointer string `toml:"pointer"`
	Pointee string `toml:"pointee"`
}

// Expr describes an analyzed expression whose declared type is requested.
type Expr struct {
	Text        string `toml:"text"`
	Category    string `toml:"category"`
	Kind        int    `toml:"kind"`
	LenParam    string `toml:"len_param"`
	Length      string `toml:"length"`
	Len         string `toml:"len"`
	Derived     string `toml:"derived"`
	Polymorphic bool   `toml:"polymorphic"`
	Assumed     bool   `toml:"assumed"`
	Unlimited   bool   `toml:"unlimited"`
}

// Lookup is a query run after the tree is built. Expect names the scope
// path that should own the result: "<global>" for Global, "none" for no
// result, and empty for no expectation.
type Lookup struct {
	Scope     string `toml:"scope"`
	Name      string `toml:"name"`
	Component bool   `toml:"component"`
	Expect    string `toml:"expect"`
}

const (
	GlobalPath = "<global>"
	ExpectNone = "none"
)

// Load reads and validates a unit file.
func Load(path string) (*Unit, error) {
	// #nosec G304 -- path is provided by the caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	u, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	u.Path = path
	return u, nil
}

// Parse decodes and validates unit text.
func Parse(data []byte) (*Unit, error) {
	var u Unit
	meta, err := toml.Decode(string(data), &u)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if !meta.IsDefined("name") || strings.TrimSpace(u.Name) == "" {
		return nil, errors.New("missing name")
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %s", undecoded[0])
	}
	if err := u.validate(); err != nil {
		return nil, err
	}
	return &u, nil
}

func (u *Unit) validate() error {
	var errs []error
	seen := make(map[string]bool, len(u.Scopes))
	for i, s := range u.Scopes {
		switch {
		case strings.TrimSpace(s.Path) == "":
			errs = append(errs, fmt.Errorf("scope #%d: missing path", i+1))
		case strings.HasPrefix(s.Path, "/") || strings.HasSuffix(s.Path, "/") || strings.Contains(s.Path, "//"):
			errs = append(errs, fmt.Errorf("scope %q: malformed path", s.Path))
		case seen[s.Path]:
			errs = append(errs, fmt.Errorf("scope %q: declared twice", s.Path))
		}
		seen[s.Path] = true
		if strings.TrimSpace(s.Kind) == "" {
			errs = append(errs, fmt.Errorf("scope %q: missing kind", s.Path))
		}
		for _, sym := range s.Symbols {
			if strings.TrimSpace(sym.Name) == "" {
				errs = append(errs, fmt.Errorf("scope %q: symbol without name", s.Path))
			}
		}
	}
	for i, l := range u.Lookups {
		if strings.TrimSpace(l.Name) == "" {
			errs = append(errs, fmt.Errorf("lookup #%d: missing name", i+1))
		}
	}
	for i, src := range u.Sources {
		if strings.TrimSpace(src.Path) == "" {
			errs = append(errs, fmt.Errorf("source #%d: missing path", i+1))
		}
	}
	return errors.Join(errs...)
}

// SourcePath resolves a source path relative to the unit file.
func (u *Unit) SourcePath(p string) string {
	if u.Path == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(filepath.Dir(u.Path), filepath.FromSlash(p))
}
