// Package probe generates parametrized compute load on an accelerator device
// and measures the host-observed wall time of each run. It is built to be one
// of several concurrent instances contending for the same device under an
// external device-level scheduler: the contention is the subject under test,
// and the probe neither detects nor coordinates with sibling instances.
package probe

import (
	"github.com/pkg/errors"
)

// Kind selects which load-generation kernel a run dispatches.
type Kind int

//go:generate go tool enumer -type=Kind -trimprefix=Kind -transform=lower workload.go

const (
	KindInvalid Kind = iota
	// KindDelay runs each lane until a cycle threshold derived from a
	// wall-clock duration has elapsed: a duration-controlled load.
	KindDelay
	// KindBusy runs each lane for a fixed iteration count: a work-controlled
	// load whose wall time is an observation, not an input.
	KindBusy
)

// Spec is the validated, immutable description of one workload: a kind plus
// its single numeric parameter.
type Spec struct {
	Kind Kind

	// DurationMS is the requested per-lane duration for KindDelay.
	DurationMS int64
	// Iterations is the per-lane transform count for KindBusy.
	Iterations int64
}

// Delay builds a duration-controlled workload of durationMS milliseconds.
func Delay(durationMS int64) Spec {
	return Spec{Kind: KindDelay, DurationMS: durationMS}
}

// Busy builds a work-controlled workload of iterations transform applications
// per lane.
func Busy(iterations int64) Spec {
	return Spec{Kind: KindBusy, Iterations: iterations}
}

// Validate checks the workload before any device interaction. The parameter
// must be a positive signed integer; negative values (including those
// produced by overflowing text input) are rejected here rather than allowed
// to wrap in an unsigned loop bound.
func (s Spec) Validate() error {
	switch s.Kind {
	case KindDelay:
		if s.DurationMS <= 0 {
			return errors.Errorf("delay duration must be a positive number of milliseconds, got %d", s.DurationMS)
		}
	case KindBusy:
		if s.Iterations <= 0 {
			return errors.Errorf("busy iteration count must be positive, got %d", s.Iterations)
		}
	default:
		return errors.Errorf("invalid workload kind %s", s.Kind)
	}
	return nil
}

// Param returns the active numeric parameter of the workload.
func (s Spec) Param() int64 {
	if s.Kind == KindDelay {
		return s.DurationMS
	}
	return s.Iterations
}

// Label returns the mode-specific label the parameter is reported under.
func (s Spec) Label() string {
	switch s.Kind {
	case KindDelay:
		return "Delay"
	case KindBusy:
		return "Iterations"
	}
	return ""
}
