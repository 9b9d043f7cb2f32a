package walleterr

import (
	"errors"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	err := New(KindAlreadySpent, "proof already spent")
	if err.Error() != "already_spent: proof already spent" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestWrapIncludesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindNetwork, "requesting mint quote", cause)
	if err.Unwrap() != cause {
		t.Fatal("Unwrap did not return the wrapped cause")
	}
	if err.Error() != "network: requesting mint quote: connection refused" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestIsMatchesByKindNotMessage(t *testing.T) {
	sentinel := New(KindAlreadySpent, "")
	err := Wrap(KindAlreadySpent, "specific detail", errors.New("boom"))

	if !errors.Is(err, sentinel) {
		t.Fatal("expected errors.Is to match on Kind regardless of Message/Cause")
	}

	other := New(KindNetwork, "")
	if errors.Is(err, other) {
		t.Fatal("expected errors.Is to reject a different Kind")
	}
}

func TestIsRejectsNonWalletError(t *testing.T) {
	err := New(KindStorage, "disk full")
	if errors.Is(err, errors.New("disk full")) {
		t.Fatal("expected errors.Is to reject a plain error")
	}
}
