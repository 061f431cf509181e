package state

import (
	"errors"
	"testing"
	"time"
)

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func TestNewConversationState(t *testing.T) {
	t.Parallel()

	st := NewConversationState("s1", testNow)
	if st.Phase != PhaseUnauthenticated {
		t.Fatalf("new session must start unauthenticated, got %s", st.Phase)
	}
	if st.Version != 1 {
		t.Fatalf("expected version 1, got %d", st.Version)
	}
	if err := st.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestMergeParamsAccumulatesAcrossTurns(t *testing.T) {
	t.Parallel()

	st := NewConversationState("s1", testNow)
	st.MergeParams(map[string]string{"email": "john@example.com"})
	st.MergeParams(map[string]string{"order_id": "ORD002"})

	if st.Params["email"] != "john@example.com" {
		t.Fatalf("email must survive later turns, got %q", st.Params["email"])
	}
	if st.Params["order_id"] != "ORD002" {
		t.Fatalf("expected ORD002, got %q", st.Params["order_id"])
	}
}

func TestMergeParamsSkipsEmptyValues(t *testing.T) {
	t.Parallel()

	st := NewConversationState("s1", testNow)
	st.MergeParams(map[string]string{"email": "john@example.com"})
	st.MergeParams(map[string]string{"email": "   "})

	if st.Params["email"] != "john@example.com" {
		t.Fatalf("blank value must not clear a parameter, got %q", st.Params["email"])
	}
}

func TestMergeParamsProtectsAuthenticatedEmail(t *testing.T) {
	t.Parallel()

	st := NewConversationState("s1", testNow)
	st.MarkAuthenticated("john@example.com", testNow)

	st.MergeParams(map[string]string{"email": "mallory@example.com"})
	if st.Params["email"] != "john@example.com" {
		t.Fatalf("verified email must not be overwritten, got %q", st.Params["email"])
	}

	// The same address in different case is still the same identity.
	st.MergeParams(map[string]string{"email": "John@Example.com"})
	if st.AuthenticatedEmail != "john@example.com" {
		t.Fatalf("authenticated email changed: %q", st.AuthenticatedEmail)
	}
}

func TestMarkAuthenticatedTransitionsPhase(t *testing.T) {
	t.Parallel()

	st := NewConversationState("s1", testNow)
	st.MarkAuthenticated("jane@example.com", testNow)

	if st.Phase != PhaseAuthenticated {
		t.Fatalf("expected authenticated phase, got %s", st.Phase)
	}
	if !st.Authenticated() {
		t.Fatal("Authenticated() must report true")
	}
	if st.Params["email"] != "jane@example.com" {
		t.Fatalf("authentication must record the email parameter, got %q", st.Params["email"])
	}
}

func TestClearUnverifiedEmail(t *testing.T) {
	t.Parallel()

	st := NewConversationState("s1", testNow)
	st.MergeParams(map[string]string{"email": "ghost@example.com", "order_id": "ORD001"})
	st.ClearUnverifiedEmail(testNow)

	if _, ok := st.Params["email"]; ok {
		t.Fatal("unverified email must be dropped")
	}
	if st.Params["order_id"] != "ORD001" {
		t.Fatal("other parameters must survive")
	}
	if st.Phase != PhaseUnauthenticated {
		t.Fatalf("expected unauthenticated phase, got %s", st.Phase)
	}
}

func TestClearUnverifiedEmailKeepsVerifiedIdentity(t *testing.T) {
	t.Parallel()

	st := NewConversationState("s1", testNow)
	st.MarkAuthenticated("john@example.com", testNow)
	st.ClearUnverifiedEmail(testNow)

	if st.Params["email"] != "john@example.com" {
		t.Fatal("verified email must never be cleared")
	}
}

func TestFirstMissing(t *testing.T) {
	t.Parallel()

	st := NewConversationState("s1", testNow)
	st.MergeParams(map[string]string{"email": "john@example.com"})

	name, missing := st.FirstMissing([]string{"email", "order_id"})
	if !missing || name != "order_id" {
		t.Fatalf("expected order_id missing, got %q %v", name, missing)
	}

	st.MergeParams(map[string]string{"order_id": "ORD002"})
	if _, missing := st.FirstMissing([]string{"email", "order_id"}); missing {
		t.Fatal("nothing should be missing")
	}
}

func TestAwaitParameter(t *testing.T) {
	t.Parallel()

	st := NewConversationState("s1", testNow)
	if err := st.AwaitParameter("", testNow); !errors.Is(err, ErrEmptyParameter) {
		t.Fatalf("expected ErrEmptyParameter, got %v", err)
	}

	if err := st.AwaitParameter("order_id", testNow); err != nil {
		t.Fatalf("AwaitParameter() error = %v", err)
	}
	if st.Phase != PhaseAwaitingParameter || st.AwaitingParam != "order_id" {
		t.Fatalf("unexpected state: phase=%s awaiting=%s", st.Phase, st.AwaitingParam)
	}
	if err := st.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestCompleteDispatchPhase(t *testing.T) {
	t.Parallel()

	st := NewConversationState("s1", testNow)
	st.ReadyToDispatch(testNow)
	st.CompleteDispatch(testNow)
	if st.Phase != PhaseUnauthenticated {
		t.Fatalf("unverified session must return to unauthenticated, got %s", st.Phase)
	}

	st.MarkAuthenticated("john@example.com", testNow)
	st.ReadyToDispatch(testNow)
	st.CompleteDispatch(testNow)
	if st.Phase != PhaseAuthenticated {
		t.Fatalf("verified session must return to authenticated, got %s", st.Phase)
	}
	if st.AwaitingParam != "" {
		t.Fatal("completed dispatch must clear the awaited parameter")
	}
}

func TestAppendTurnTrimsHistory(t *testing.T) {
	t.Parallel()

	st := NewConversationState("s1", testNow)
	for i := 0; i < historyLimit+3; i++ {
		st.AppendTurn("user", "message", testNow)
	}
	if len(st.History) != historyLimit {
		t.Fatalf("expected %d history entries, got %d", historyLimit, len(st.History))
	}
}

func TestValidateRejectsBadPhases(t *testing.T) {
	t.Parallel()

	st := NewConversationState("s1", testNow)
	st.Phase = Phase("limbo")
	if err := st.Validate(); !errors.Is(err, ErrInvalidPhase) {
		t.Fatalf("expected ErrInvalidPhase, got %v", err)
	}

	st.Phase = PhaseAwaitingParameter
	st.AwaitingParam = ""
	if err := st.Validate(); !errors.Is(err, ErrInvalidPhase) {
		t.Fatalf("awaiting phase without a name must fail, got %v", err)
	}

	st.Phase = PhaseAuthenticated
	st.AuthenticatedEmail = ""
	if err := st.Validate(); !errors.Is(err, ErrInvalidPhase) {
		t.Fatalf("authenticated phase without email must fail, got %v", err)
	}
}
