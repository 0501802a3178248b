// Package scanner turns raw barcode detections into recorded access events.
//
// A Coordinator arms a Decoder, filters its detections through a Session
// state machine, resolves the code to a user and records the event. Each
// accepted detection is handled once, with at most one lookup and one
// record call, and the decoder stays off until the caller re-arms it.
package scanner

import "time"

// DefaultWindow is how long the same code is ignored after it was accepted.
const DefaultWindow = 3000 * time.Millisecond

type State int

const (
	Idle State = iota
	Armed
	Resolving
	Submitting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Resolving:
		return "resolving"
	case Submitting:
		return "submitting"
	}
	return "unknown"
}

// InFlight reports whether a detection is being resolved or submitted.
func (s State) InFlight() bool {
	return s == Resolving || s == Submitting
}

// Decision is what happened to a single detection.
type Decision int

const (
	Accepted Decision = iota
	IgnoredInFlight
	IgnoredDisarmed
	IgnoredEmpty
	IgnoredDebounced
)

func (d Decision) String() string {
	switch d {
	case Accepted:
		return "accepted"
	case IgnoredInFlight:
		return "ignored_in_flight"
	case IgnoredDisarmed:
		return "ignored_disarmed"
	case IgnoredEmpty:
		return "ignored_empty"
	case IgnoredDebounced:
		return "ignored_debounced"
	}
	return "unknown"
}

// Session is the scan state plus the last accepted code. Methods never
// mutate the receiver; they return the next value.
type Session struct {
	State    State
	LastCode string
	LastAt   time.Time
}

// Arm moves Idle to Armed. Other states are unchanged.
func (s Session) Arm() Session {
	if s.State == Idle {
		s.State = Armed
	}
	return s
}

// Disarm moves Armed to Idle. An in-flight session is unchanged.
func (s Session) Disarm() Session {
	if s.State == Armed {
		s.State = Idle
	}
	return s
}

// Detect decides whether code, seen at at, starts a new resolution.
func (s Session) Detect(code string, at time.Time, window time.Duration) (Session, Decision) {
	switch {
	case s.State.InFlight():
		return s, IgnoredInFlight
	case s.State != Armed:
		return s, IgnoredDisarmed
	case code == "":
		return s, IgnoredEmpty
	case code == s.LastCode && at.Sub(s.LastAt) < window:
		return s, IgnoredDebounced
	}

	s.LastCode = code
	s.LastAt = at
	s.State = Resolving
	return s, Accepted
}

// Resolved moves Resolving to Submitting when the user was found. Otherwise
// the session stays Resolving until Finish, so it remains in flight while the
// outcome is reported.
func (s Session) Resolved(found bool) Session {
	if s.State == Resolving && found {
		s.State = Submitting
	}
	return s
}

// Finish ends processing and is the only way out of flight. The last accepted code and time are kept.
func (s Session) Finish() Session {
	s.State = Idle
	return s
}
