// Package symbols implements the scope tree and symbol table of a Fortran
// semantic analyser.
//
// A Table owns the Global scope and the arenas every Scope and Symbol is
// allocated from. Lookups return nil when a name is absent. Malformed
// IMPORT combinations are reported as errors; inconsistencies that only a
// compiler bug can cause panic with *InternalError.
package symbols
