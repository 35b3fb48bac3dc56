package worker

import (
	"fmt"
	"time"
)

// Phase is the lifecycle position of a Worker.
type Phase int

const (
	// PhaseIdle means the slot is empty and the worker waits for work.
	PhaseIdle Phase = iota
	// PhaseAssigned means NewWork succeeded and the loop is about to pick the job up.
	PhaseAssigned
	// PhaseRunning means the job is executing.
	PhaseRunning
	// PhaseTerminated is terminal: the goroutine has exited.
	PhaseTerminated
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAssigned:
		return "assigned"
	case PhaseRunning:
		return "running"
	case PhaseTerminated:
		return "terminated"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Busy reports whether a job holds the slot.
func (p Phase) Busy() bool {
	return p == PhaseAssigned || p == PhaseRunning
}

// Status is the structured observability record of a Worker.
type Status struct {
	Phase Phase     `json:"phase"`
	Task  string    `json:"task,omitempty"` // busy label, empty while idle
	Since time.Time `json:"since"`
}

func (s Status) String() string {
	if s.Task == "" {
		return fmt.Sprintf("%v since %v", s.Phase, s.Since.Format(time.RFC3339))
	}
	return fmt.Sprintf("%v %v since %v", s.Phase, s.Task, s.Since.Format(time.RFC3339))
}
