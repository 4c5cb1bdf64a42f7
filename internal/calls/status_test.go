package calls

import "testing"

func TestCanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to CallStatus
		want     bool
	}{
		{CallStatusQueued, CallStatusInProgress, true},
		{CallStatusQueued, CallStatusCompleted, true},
		{CallStatusQueued, CallStatusNoAnswer, true},
		{CallStatusInProgress, CallStatusFailed, true},
		{CallStatusInProgress, CallStatusQueued, false},
		{CallStatusCompleted, CallStatusCompleted, true},
		{CallStatusCompleted, CallStatusFailed, false},
		{CallStatusFailed, CallStatusCompleted, false},
		{CallStatusNoAnswer, CallStatusInProgress, false},
		{CallStatusQueued, "ringing", false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Fatalf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestApplyStatus_NeverRegresses(t *testing.T) {
	if got := ApplyStatus(CallStatusCompleted, CallStatusInProgress); got != CallStatusCompleted {
		t.Fatalf("expected completed kept, got %s", got)
	}
	if got := ApplyStatus(CallStatusQueued, CallStatusFailed); got != CallStatusFailed {
		t.Fatalf("expected failed, got %s", got)
	}
}

func TestStatusFromProvider(t *testing.T) {
	cases := map[string]CallStatus{
		"failed":    CallStatusFailed,
		"no-answer": CallStatusNoAnswer,
		"completed": CallStatusCompleted,
		"":          CallStatusCompleted,
		"busy":      CallStatusCompleted,
	}
	for in, want := range cases {
		if got := StatusFromProvider(in); got != want {
			t.Fatalf("%q: expected %s, got %s", in, want, got)
		}
	}
}
