package symbols

import (
	"errors"
	"fmt"

	"fsema/internal/diag"
	"fsema/internal/trace"
)

// Errors returned by SetImportKind. The scope is left unchanged when one is returned.
var (
	ErrImportNoneNotAlone = errors.New("IMPORT,NONE must be the only IMPORT statement in a scope")
	ErrImportAllNotAlone  = errors.New("IMPORT,ALL must be the only IMPORT statement in a scope")
	ErrImportOnlyMixed    = errors.New("every IMPORT must have ONLY specifier if one of them does")
)

// ImportErrorCode maps an error from SetImportKind to its diagnostic code.
func ImportErrorCode(err error) diag.Code {
	switch {
	case errors.Is(err, ErrImportNoneNotAlone):
		return diag.SemaImportNoneNotAlone
	case errors.Is(err, ErrImportAllNotAlone):
		return diag.SemaImportAllNotAlone
	case errors.Is(err, ErrImportOnlyMixed):
		return diag.SemaImportOnlyMixed
	default:
		return diag.SemaError
	}
}

// InternalError is raised with panic when the table detects a compiler bug:
// inconsistent source ranges, arena exhaustion, or a contract violation by
// the caller. It never describes a problem in user code.
type InternalError struct {
	Msg string
}

func (e *InternalError) Error() string {
	return "internal error: " + e.Msg
}

// RecoverInternal converts an InternalError panic into *errp. Other panics
// are re-raised. Use it as `defer symbols.RecoverInternal(&err)`.
func RecoverInternal(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	ie, ok := r.(*InternalError)
	if !ok {
		panic(r)
	}
	if errp != nil {
		*errp = ie
	}
}

// fail reports a fatal inconsistency through the tracer and panics.
func (t *Table) fail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	trace.Failure(t.tracer, trace.ScopeNode, "internal", msg)
	panic(&InternalError{Msg: msg})
}
