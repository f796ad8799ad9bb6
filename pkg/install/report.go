package install

import (
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/aurorus/pkg/source"
)

// Kind is the type of run a report describes.
type Kind string

const (
	KindInstall Kind = "install"
	KindRemove  Kind = "remove"
)

// Status is the result of one plan step.
type Status string

const (
	StatusInstalled Status = "installed"
	StatusSkipped   Status = "skipped" // already installed at a compatible version
	StatusFailed    Status = "failed"
	StatusNotRun    Status = "not-run" // never attempted (earlier failure or cancellation)
	StatusRemoved   Status = "removed"
)

// Outcome is what happened to one package.
type Outcome struct {
	Name     string
	Origin   source.Origin // empty for removals
	Version  string
	Status   Status
	Reason   string
	Duration time.Duration
}

// Report describes one install or removal run. Outcomes are in plan order
// and cover every step.
type Report struct {
	RunID    string
	Kind     Kind
	Outcomes []Outcome
	Err      error
	Started  time.Time
	Elapsed  time.Duration
}

func newReport(kind Kind) *Report {
	return &Report{
		RunID:   uuid.NewString(),
		Kind:    kind,
		Started: time.Now(),
	}
}

// Count returns the number of outcomes with status s.
func (r *Report) Count(s Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

// Failed returns the failed outcome, if any.
func (r *Report) Failed() (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed {
			return o, true
		}
	}
	return Outcome{}, false
}

// OK reports whether the run completed without error.
func (r *Report) OK() bool { return r.Err == nil }

func (r *Report) finish(err error) *Report {
	r.Err = err
	r.Elapsed = time.Since(r.Started)
	return r
}
