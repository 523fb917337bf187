package symbols

import (
	"fmt"

	"fortio.org/safecast"
)

// chunkSize is the number of records in one arena block. Blocks are never
// reallocated, so a pointer into the arena stays valid for the table's life.
const chunkSize = 1024

// arena is a chunked, append-only store addressed by dense uint32 ids.
// Slot 0 is a sentinel so that the zero id means "none".
type arena[T any] struct {
	chunks [][]T
	n      int // allocated slots, sentinel included
	limit  int // max live records, 0 = unlimited
	what   string
}

func newArena[T any](what string, limit int) arena[T] {
	a := arena[T]{what: what, limit: limit}
	a.chunks = append(a.chunks, make([]T, chunkSize))
	a.n = 1
	return a
}

// alloc reserves the next slot. Exceeding the limit is fatal.
func (a *arena[T]) alloc() (uint32, *T) {
	if a.limit > 0 && a.n-1 >= a.limit {
		panic(&InternalError{Msg: fmt.Sprintf("%s arena exhausted: limit of %d records reached", a.what, a.limit)})
	}
	if a.n == len(a.chunks)*chunkSize {
		a.chunks = append(a.chunks, make([]T, chunkSize))
	}
	id, err := safecast.Conv[uint32](a.n)
	if err != nil {
		panic(fmt.Errorf("%s arena overflow: %w", a.what, err))
	}
	p := &a.chunks[a.n/chunkSize][a.n%chunkSize]
	a.n++
	return id, p
}

// get returns the record for id or nil when id is not allocated.
func (a *arena[T]) get(id uint32) *T {
	if id == 0 || int(id) >= a.n {
		return nil
	}
	return &a.chunks[id/chunkSize][id%chunkSize]
}

// len reports allocated records excluding the sentinel.
func (a *arena[T]) len() int { return a.n - 1 }
