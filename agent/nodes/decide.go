package turnnode

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/gecortesh/chatbot-ecommerce/agent/contract"
)

// clarifyReply is the deterministic fallback when the model's output cannot
// be interpreted; the turn degrades to a clarifying question instead of
// failing.
const clarifyReply = "I can help you track orders or cancel them. Could you tell me which order you need help with?"

// Decide performs the first (and for plain-text turns, only) gateway
// invocation of the turn.
func Decide(ctx context.Context, in *GraphState, gateway contractx.Gateway) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	decision, err := gateway.Decide(ctx, contractx.DecideRequest{
		UserMessage:        in.Text,
		AuthenticatedEmail: in.Session.AuthenticatedEmail,
		KnownParams:        in.Session.Params,
		History:            in.Session.History,
	})
	if err != nil {
		if errors.Is(err, contractx.ErrMalformedOutput) {
			log.Warn().Err(err).Str("session_id", in.SessionID).
				Msg("unusable model output, asking the user to clarify")
			in.Decision = contractx.Decision{Kind: contractx.DecisionText, Text: clarifyReply}
			return in, nil
		}
		return nil, err
	}

	in.Decision = decision
	return in, nil
}
