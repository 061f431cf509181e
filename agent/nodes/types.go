package turnnode

import (
	"errors"
	"strings"
	"time"

	contractx "github.com/gecortesh/chatbot-ecommerce/agent/contract"
	statex "github.com/gecortesh/chatbot-ecommerce/agent/state"
)

var (
	ErrInvalidMessage = errors.New("message is empty")
	ErrInvalidSession = errors.New("session id is empty")
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type GraphInput struct {
	SessionID string
	Text      string
}

type GraphOutput struct {
	Reply string
	// ErrorKind carries the machine-readable business failure of the turn,
	// empty on success, for the caller's logging.
	ErrorKind string
}

// GraphState threads one turn through the pipeline.
type GraphState struct {
	SessionID string
	Text      string
	Now       time.Time

	Session  *statex.ConversationState
	Decision contractx.Decision

	Operation string
	Args      contractx.Args
	Result    *contractx.DispatchResult

	Reply string
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	return &GraphState{
		SessionID: sessionID,
		Text:      text,
		Now:       nowFn().UTC(),
	}, nil
}
