package driver

import "time"

// PhaseStatus reports whether a pass started or finished.
type PhaseStatus int

const (
	// PhaseStart indicates that a build pass has begun.
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// PhaseEvent describes a pass boundary.
type PhaseEvent struct {
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration
}

// PhaseObserver receives pass events emitted during Build.
type PhaseObserver func(PhaseEvent)
