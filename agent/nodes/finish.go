package turnnode

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/gecortesh/chatbot-ecommerce/agent/contract"
	statex "github.com/gecortesh/chatbot-ecommerce/agent/state"
)

// DirectReply ends a plain-text turn: the model's text passes through
// unchanged.
func DirectReply(ctx context.Context, in *GraphState, store statex.Store) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	in.Reply = in.Decision.Text
	return finishTurn(ctx, in, store)
}

// FinalizeCall ends a function-call turn.
func FinalizeCall(ctx context.Context, in *GraphState, store statex.Store) (GraphOutput, error) {
	return finishTurn(ctx, in, store)
}

func finishTurn(ctx context.Context, in *GraphState, store statex.Store) (GraphOutput, error) {
	if in == nil || in.Session == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	reply := strings.TrimSpace(in.Reply)
	if reply == "" {
		return GraphOutput{}, fmt.Errorf("%w: turn produced an empty reply", contractx.ErrValidation)
	}

	in.Session.AppendTurn(RoleUser, in.Text, in.Now)
	in.Session.AppendTurn(RoleAssistant, reply, in.Now)
	in.Session.Touch(in.Now)
	if err := in.Session.Validate(); err != nil {
		return GraphOutput{}, fmt.Errorf("state validation failed: %w", err)
	}
	if err := store.Save(ctx, in.Session); err != nil {
		return GraphOutput{}, err
	}

	out := GraphOutput{Reply: reply}
	if in.Result != nil {
		out.ErrorKind = in.Result.ErrorKind
	}
	return out, nil
}
