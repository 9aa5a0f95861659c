package meeting

import "testing"

func TestCanTransitionTo(t *testing.T) {
	scheduled := Meeting{Status: StatusScheduled}
	completed := Meeting{Status: StatusCompleted}
	cancelled := Meeting{Status: StatusCancelled}

	if !scheduled.CanTransitionTo(StatusCompleted) || !scheduled.CanTransitionTo(StatusCancelled) {
		t.Error("scheduled meetings must be closable")
	}

	if scheduled.CanTransitionTo(StatusScheduled) {
		t.Error("scheduled is not a transition target")
	}

	if completed.CanTransitionTo(StatusCancelled) || cancelled.CanTransitionTo(StatusCompleted) {
		t.Error("terminal states must be frozen")
	}
}
