package calls

func (s CallStatus) Valid() bool {
	switch s {
	case CallStatusQueued, CallStatusInProgress, CallStatusCompleted, CallStatusFailed, CallStatusNoAnswer:
		return true
	default:
		return false
	}
}

// Terminal statuses end a call's lifecycle.
func (s CallStatus) Terminal() bool {
	return s == CallStatusCompleted || s == CallStatusFailed || s == CallStatusNoAnswer
}

func (s CallStatus) rank() int {
	switch s {
	case CallStatusQueued:
		return 0
	case CallStatusInProgress:
		return 1
	default:
		return 2
	}
}

// CanTransitionTo allows queued -> in_progress -> terminal, skipping ahead,
// and re-applying the current status. A terminal call never changes status.
func (s CallStatus) CanTransitionTo(next CallStatus) bool {
	if !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	if s.Terminal() {
		return false
	}
	return next.rank() > s.rank()
}

// ApplyStatus returns the status a call ends up in when next is reported.
// Disallowed transitions (stale or out-of-order events) keep current.
func ApplyStatus(current, next CallStatus) CallStatus {
	if current.CanTransitionTo(next) {
		return next
	}
	return current
}

// StatusFromProvider maps a provider webhook status to a terminal call status.
func StatusFromProvider(v string) CallStatus {
	switch v {
	case "failed":
		return CallStatusFailed
	case "no-answer":
		return CallStatusNoAnswer
	default:
		return CallStatusCompleted
	}
}
