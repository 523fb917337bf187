package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	// KindSpanBegin marks the start of a logical operation.
	KindSpanBegin Kind = iota + 1
	// KindSpanEnd marks the end of a logical operation.
	KindSpanEnd
	// KindPoint represents an instant event.
	KindPoint
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Scope indicates the granularity level of the event.
// Lower numeric values represent coarser events.
type Scope uint8

const (
	// ScopeDriver covers CLI commands and batch runs.
	ScopeDriver Scope = iota + 1
	// ScopePass covers phases of one unit (load, build, instantiate, lookup).
	ScopePass
	// ScopeUnit covers per-unit bookkeeping.
	ScopeUnit
	// ScopeNode covers individual scopes, symbols and types.
	ScopeNode
)

func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopePass:
		return "pass"
	case ScopeUnit:
		return "unit"
	case ScopeNode:
		return "node"
	default:
		return "unknown"
	}
}

// Event represents a single trace event.
type Event struct {
	Time     time.Time         // wall-clock timestamp
	Seq      uint64            // global sequence number (monotonic)
	Kind     Kind              // event kind
	Scope    Scope             // granularity level
	SpanID   uint64            // unique span identifier
	ParentID uint64            // parent span (0 if root)
	Name     string            // e.g. "build", "unit:demo.toml", "scope.new"
	Detail   string            // optional detail message
	Failure  bool              // emitted at every level except LevelOff
	Extra    map[string]string // extensible key-value pairs
}

// wanted reports whether a tracer at level l records ev.
func (l Level) wanted(ev *Event) bool {
	if ev.Failure {
		return l > LevelOff
	}
	return l.ShouldEmit(ev.Scope)
}
