package source

import (
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

type StringID uint32

const NoStringID StringID = 0

// Interner maps names to dense ids. Names are stored exactly as given;
// callers that need case-insensitive identity fold before interning.
type Interner struct {
	byID  []string            // индекс -> строка (byID[0] = "" для NoStringID)
	index map[string]StringID // строка -> ID
}

func NewInterner() *Interner {
	return &Interner{
		byID:  []string{""},
		index: map[string]StringID{"": 0},
	}
}

// Fold canonicalizes a Fortran name: NFC-normalized and lower case.
func Fold(name string) string {
	return strings.ToLower(norm.NFC.String(name))
}

// Intern inserts s if needed and returns its ID.
func (i *Interner) Intern(s string) StringID {
	if id, ok := i.index[s]; ok {
		return id
	}

	// собственная копия, чтобы не держать исходный буфер
	cpy := strings.Clone(s)
	id := StringID(len(i.byID))
	i.byID = append(i.byID, cpy)
	i.index[cpy] = id
	return id
}

// InternName folds and interns a source name.
func (i *Interner) InternName(name string) StringID {
	return i.Intern(Fold(name))
}

// FindName returns the ID of an already interned name without inserting it.
func (i *Interner) FindName(name string) (StringID, bool) {
	id, ok := i.index[Fold(name)]
	return id, ok
}

// Lookup returns the string for id, or "" and false if id is unknown.
func (i *Interner) Lookup(id StringID) (string, bool) {
	if !i.Has(id) {
		return "", false
	}
	return i.byID[id], true
}

// MustLookup is Lookup that panics on unknown ids.
func (i *Interner) MustLookup(id StringID) string {
	s, ok := i.Lookup(id)
	if !ok {
		panic("invalid string ID")
	}
	return s
}

func (i *Interner) Has(id StringID) bool {
	return int(id) < len(i.byID)
}

// Len counts interned strings including NoStringID.
func (i *Interner) Len() int {
	return len(i.byID)
}

func (i *Interner) Snapshot() []string {
	return slices.Clone(i.byID)
}
