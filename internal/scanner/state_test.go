package scanner

import (
	"testing"
	"time"
)

var t0 = time.Date(2026, 5, 4, 7, 30, 0, 0, time.UTC)

func TestSession_Detect(t *testing.T) {
	armed := Session{State: Armed}
	seen := Session{State: Armed, LastCode: "A1B2C3", LastAt: t0}

	cases := []struct {
		name  string
		sess  Session
		code  string
		at    time.Time
		want  Decision
		state State
	}{
		{"accept first", armed, "A1B2C3", t0, Accepted, Resolving},
		{"idle ignores", Session{}, "A1B2C3", t0, IgnoredDisarmed, Idle},
		{"resolving ignores", Session{State: Resolving}, "A1B2C3", t0, IgnoredInFlight, Resolving},
		{"submitting ignores", Session{State: Submitting}, "B2C3D4", t0, IgnoredInFlight, Submitting},
		{"empty code", armed, "", t0, IgnoredEmpty, Armed},
		{"same code inside window", seen, "A1B2C3", t0.Add(1000 * time.Millisecond), IgnoredDebounced, Armed},
		{"same code just inside window", seen, "A1B2C3", t0.Add(2999 * time.Millisecond), IgnoredDebounced, Armed},
		{"same code at window", seen, "A1B2C3", t0.Add(3000 * time.Millisecond), Accepted, Resolving},
		{"other code inside window", seen, "B2C3D4", t0.Add(500 * time.Millisecond), Accepted, Resolving},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, d := tc.sess.Detect(tc.code, tc.at, DefaultWindow)
			if d != tc.want {
				t.Errorf("decision = %s, want %s", d, tc.want)
			}
			if next.State != tc.state {
				t.Errorf("state = %s, want %s", next.State, tc.state)
			}
			if d == Accepted && (next.LastCode != tc.code || !next.LastAt.Equal(tc.at)) {
				t.Errorf("accepted detection not remembered: %+v", next)
			}
			if d != Accepted && next != tc.sess {
				t.Errorf("ignored detection changed the session: %+v", next)
			}
		})
	}
}

func TestSession_Lifecycle(t *testing.T) {
	s := Session{}.Arm()
	if s.State != Armed {
		t.Fatalf("expected armed, got %s", s.State)
	}

	s, _ = s.Detect("A1B2C3", t0, DefaultWindow)
	if s.Disarm().State != Resolving {
		t.Error("disarm must not interrupt an in-flight session")
	}
	if s.Arm().State != Resolving {
		t.Error("arm must not interrupt an in-flight session")
	}

	s = s.Resolved(true)
	if s.State != Submitting {
		t.Fatalf("expected submitting, got %s", s.State)
	}
	if s.Resolved(false).State != Submitting {
		t.Error("resolved is only meaningful while resolving")
	}

	s = s.Finish()
	if s.State != Idle || s.LastCode != "A1B2C3" || !s.LastAt.Equal(t0) {
		t.Errorf("finish should keep the last code, got %+v", s)
	}

	s, d := s.Arm().Detect("A1B2C3", t0.Add(time.Second), DefaultWindow)
	if d != IgnoredDebounced {
		t.Errorf("re-armed session should still debounce, got %s", d)
	}
}

func TestSession_NotFoundStaysInFlightUntilFinish(t *testing.T) {
	s, _ := Session{State: Armed}.Detect("Z9Z9Z9", t0, DefaultWindow)
	s = s.Resolved(false)
	if !s.State.InFlight() {
		t.Fatalf("expected in flight after a miss, got %s", s.State)
	}
	if s.Arm().State != Resolving {
		t.Error("arm must not interrupt a miss that is still being reported")
	}
	if _, d := s.Detect("A1B2C3", t0.Add(time.Second), DefaultWindow); d != IgnoredInFlight {
		t.Errorf("expected detections ignored while in flight, got %s", d)
	}
	if got := s.Finish().State; got != Idle {
		t.Errorf("expected idle after finish, got %s", got)
	}
}
