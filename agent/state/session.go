package state

import (
	"errors"
	"fmt"
	"strings"
	"time"

	contractx "github.com/gecortesh/chatbot-ecommerce/agent/contract"
)

// Phase is the coarse position of a session in the dialogue state machine.
type Phase string

const (
	PhaseUnauthenticated   Phase = "unauthenticated"
	PhaseAuthenticated     Phase = "authenticated"
	PhaseAwaitingParameter Phase = "awaiting_parameter"
	PhaseReadyToDispatch   Phase = "ready_to_dispatch"
)

// historyLimit bounds the prompt context carried between turns.
const historyLimit = 8

var (
	ErrNilState       = errors.New("conversation state is nil")
	ErrInvalidPhase   = errors.New("invalid conversation phase")
	ErrEmptyParameter = errors.New("parameter name is empty")
)

// ConversationState is the per-session source of truth carried across turns:
// who the customer has proven to be, which parameters have accumulated, and
// a short history for prompting. It is exclusively owned by one session and
// mutated only by the turn orchestrator.
type ConversationState struct {
	SessionID string `json:"session_id"`
	Version   int    `json:"version,omitempty"`

	Phase         Phase  `json:"phase"`
	AwaitingParam string `json:"awaiting_param,omitempty"`

	// AuthenticatedEmail is set only after the dispatcher's customer lookup
	// succeeded. It is never replaced by an unverified value.
	AuthenticatedEmail string `json:"authenticated_email,omitempty"`

	// Params accumulate across turns and are never discarded just because a
	// later turn does not repeat them.
	Params map[string]string `json:"params,omitempty"`

	History []contractx.Turn `json:"history,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

func NewConversationState(sessionID string, now time.Time) *ConversationState {
	return &ConversationState{
		SessionID: sessionID,
		Version:   1,
		Phase:     PhaseUnauthenticated,
		Params:    make(map[string]string, 4),
		UpdatedAt: now.UTC(),
	}
}

func (s *ConversationState) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

func (s *ConversationState) EnsureParams() {
	if s.Params == nil {
		s.Params = make(map[string]string, 4)
	}
}

func (s *ConversationState) Authenticated() bool {
	return s != nil && s.AuthenticatedEmail != ""
}

// MergeParams folds newly extracted parameters into the accumulated set.
// Values are expected to be already normalized by the validator; empty
// values are skipped. An incoming "email" that differs from the
// authenticated one is dropped so the verified identity is never silently
// overwritten.
func (s *ConversationState) MergeParams(params map[string]string) {
	if s == nil || len(params) == 0 {
		return
	}
	s.EnsureParams()
	for k, v := range params {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if k == "email" && s.AuthenticatedEmail != "" && !strings.EqualFold(v, s.AuthenticatedEmail) {
			continue
		}
		s.Params[k] = v
	}
}

// MarkAuthenticated records a store-verified identity. This is the only way
// AuthenticatedEmail is ever set.
func (s *ConversationState) MarkAuthenticated(email string, now time.Time) {
	if s == nil || strings.TrimSpace(email) == "" {
		return
	}
	s.AuthenticatedEmail = email
	s.EnsureParams()
	s.Params["email"] = email
	if s.Phase == PhaseUnauthenticated {
		s.Phase = PhaseAuthenticated
	}
	s.Touch(now)
}

// ClearUnverifiedEmail drops an accumulated email that failed the
// dispatcher's customer lookup so the next turn asks for it again instead of
// re-failing on the same value.
func (s *ConversationState) ClearUnverifiedEmail(now time.Time) {
	if s == nil || s.AuthenticatedEmail != "" {
		return
	}
	delete(s.Params, "email")
	s.Phase = PhaseUnauthenticated
	s.Touch(now)
}

// FirstMissing returns the first of the given parameter names that has no
// accumulated value, in the order given.
func (s *ConversationState) FirstMissing(required []string) (string, bool) {
	for _, name := range required {
		if s == nil || strings.TrimSpace(s.Params[name]) == "" {
			return name, true
		}
	}
	return "", false
}

func (s *ConversationState) AwaitParameter(name string, now time.Time) error {
	if s == nil {
		return ErrNilState
	}
	if strings.TrimSpace(name) == "" {
		return ErrEmptyParameter
	}
	s.Phase = PhaseAwaitingParameter
	s.AwaitingParam = name
	s.Touch(now)
	return nil
}

func (s *ConversationState) ReadyToDispatch(now time.Time) {
	if s == nil {
		return
	}
	s.Phase = PhaseReadyToDispatch
	s.AwaitingParam = ""
	s.Touch(now)
}

// CompleteDispatch returns the session to Authenticated after a dispatch
// finished, successfully or with a business-rule failure, keeping the
// accumulated parameters for the next request.
func (s *ConversationState) CompleteDispatch(now time.Time) {
	if s == nil {
		return
	}
	s.AwaitingParam = ""
	if s.Authenticated() {
		s.Phase = PhaseAuthenticated
	} else {
		s.Phase = PhaseUnauthenticated
	}
	s.Touch(now)
}

// AppendTurn records one history entry, trimming the oldest entries beyond
// the history limit.
func (s *ConversationState) AppendTurn(role, content string, now time.Time) {
	if s == nil || strings.TrimSpace(content) == "" {
		return
	}
	s.History = append(s.History, contractx.Turn{Role: role, Content: content})
	if len(s.History) > historyLimit {
		s.History = append([]contractx.Turn(nil), s.History[len(s.History)-historyLimit:]...)
	}
	s.Touch(now)
}

func (s *ConversationState) Validate() error {
	if s == nil {
		return ErrNilState
	}
	switch s.Phase {
	case PhaseUnauthenticated, PhaseAuthenticated, PhaseAwaitingParameter, PhaseReadyToDispatch:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidPhase, s.Phase)
	}
	if s.Phase == PhaseAwaitingParameter && s.AwaitingParam == "" {
		return fmt.Errorf("%w: awaiting_parameter phase requires a parameter name", ErrInvalidPhase)
	}
	if s.Phase == PhaseAuthenticated && s.AuthenticatedEmail == "" {
		return fmt.Errorf("%w: authenticated phase requires an email", ErrInvalidPhase)
	}
	return nil
}
