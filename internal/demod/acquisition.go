package demod

import "fmt"

// LockState is the acquisition progress of one tuning attempt.
type LockState int

const (
	Idle LockState = iota
	Programming
	Polling
	Locked
	TimedOut
	Failed
)

func (s LockState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Programming:
		return "programming"
	case Polling:
		return "polling"
	case Locked:
		return "locked"
	case TimedOut:
		return "timed_out"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether s ends an attempt.
func (s LockState) Terminal() bool {
	return s == Locked || s == TimedOut || s == Failed
}

// Lock bytes read from demod 0x0d.
const (
	LockS2 byte = 0x8f
	LockS1 byte = 0xf7
)

// Acquisition tracks one attempt. States only move forward; a terminal
// state returns to Idle when the next attempt begins.
type Acquisition struct {
	state      LockState
	iterations int
	max        int
	last       byte
}

// NewAcquisition bounds polling to limit observations.
func NewAcquisition(limit int) *Acquisition {
	if limit <= 0 {
		limit = defaultAttempts
	}
	return &Acquisition{max: limit}
}

func (a *Acquisition) transition(from []LockState, to LockState) error {
	for _, f := range from {
		if a.state == f {
			a.state = to
			return nil
		}
	}
	return fmt.Errorf("demod: lock state %s cannot move to %s", a.state, to)
}

// Begin starts a new attempt from Idle or a terminal state.
func (a *Acquisition) Begin() error {
	if a.state.Terminal() {
		a.state = Idle
	}
	if err := a.transition([]LockState{Idle}, Programming); err != nil {
		return err
	}
	a.iterations = 0
	a.last = 0
	return nil
}

// StartPolling marks programming complete.
func (a *Acquisition) StartPolling() error {
	return a.transition([]LockState{Programming}, Polling)
}

// Fail aborts the attempt.
func (a *Acquisition) Fail() {
	if !a.state.Terminal() {
		a.state = Failed
	}
}

// Observe records one 0x0d reading. Only an exact S1 or S2 lock byte
// locks; the attempt times out after max observations.
func (a *Acquisition) Observe(lock byte) LockState {
	if a.state != Polling {
		return a.state
	}
	a.iterations++
	a.last = lock
	switch {
	case lock == LockS2 || lock == LockS1:
		a.state = Locked
	case a.iterations >= a.max:
		a.state = TimedOut
	}
	return a.state
}

func (a *Acquisition) State() LockState { return a.state }
func (a *Acquisition) Iterations() int  { return a.iterations }
func (a *Acquisition) LastByte() byte   { return a.last }
func (a *Acquisition) TimedOut() bool   { return a.state == TimedOut }

// Viterbi reports whether the last observation had the FEC bit set.
func (a *Acquisition) Viterbi() bool { return a.last&0x80 != 0 }
