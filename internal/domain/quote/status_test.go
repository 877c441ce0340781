package quote

import (
	"errors"
	"testing"
)

func TestCanTransition(t *testing.T) {
	all := []Status{StatusPending, StatusInReview, StatusQuoted, StatusAccepted, StatusRejected, StatusExpired}
	allowed := map[[2]Status]bool{
		{StatusPending, StatusInReview}:  true,
		{StatusPending, StatusRejected}:  true,
		{StatusPending, StatusExpired}:   true,
		{StatusInReview, StatusQuoted}:   true,
		{StatusInReview, StatusRejected}: true,
		{StatusInReview, StatusExpired}:  true,
		{StatusQuoted, StatusAccepted}:   true,
		{StatusQuoted, StatusRejected}:   true,
		{StatusQuoted, StatusExpired}:    true,
	}

	for _, from := range all {
		for _, to := range all {
			got := CanTransition(from, to)
			if got != allowed[[2]Status{from, to}] {
				t.Errorf("CanTransition(%s, %s) = %v", from, to, got)
			}
		}
	}
}

func TestTerminalStatusesHaveNoExits(t *testing.T) {
	for _, s := range []Status{StatusAccepted, StatusRejected, StatusExpired} {
		if !s.Terminal() {
			t.Fatalf("%s should be terminal", s)
		}
		if len(transitions[s]) != 0 {
			t.Fatalf("%s should have no outgoing edges", s)
		}
	}
}

func TestCheckTransition_Error(t *testing.T) {
	err := CheckTransition(StatusPending, StatusAccepted)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	var te *TransitionError
	if !errors.As(err, &te) || te.From != StatusPending || te.To != StatusAccepted {
		t.Fatalf("unexpected transition error: %#v", err)
	}
}
