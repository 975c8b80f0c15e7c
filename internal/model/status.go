package model

import "fmt"

// RunStatus is the lifecycle state of one pipeline run.
type RunStatus string

const (
	StatusPlanned   RunStatus = "planned"
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
	StatusCancelled RunStatus = "cancelled"
)

var terminalRunStatuses = map[RunStatus]bool{
	StatusCompleted: true,
	StatusFailed:    true,
	StatusCancelled: true,
}

// Run status transitions: planned → running → terminal.
// planned → cancelled covers jobs cancelled before their first step.
var validRunTransitions = map[RunStatus]map[RunStatus]bool{
	StatusPlanned: {
		StatusRunning:   true,
		StatusCancelled: true,
	},
	StatusRunning: {
		StatusCompleted: true,
		StatusFailed:    true,
		StatusCancelled: true,
	},
}

func IsTerminal(s RunStatus) bool {
	return terminalRunStatuses[s]
}

func ValidateRunTransition(from, to RunStatus) error {
	if IsTerminal(from) {
		return fmt.Errorf("cannot transition from terminal status %q", from)
	}
	allowed, ok := validRunTransitions[from]
	if !ok {
		return fmt.Errorf("unknown run status %q", from)
	}
	if !allowed[to] {
		return fmt.Errorf("invalid run transition: %q → %q", from, to)
	}
	return nil
}
