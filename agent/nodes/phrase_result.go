package turnnode

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/gecortesh/chatbot-ecommerce/agent/contract"
)

// PhraseResult performs the second gateway invocation of a function-call
// turn: the dispatch outcome goes back to the model as context for the
// final wording. When the model cannot produce a usable reply the turn
// falls back to a deterministic template so an executed operation always
// reaches the user.
func PhraseResult(ctx context.Context, in *GraphState, gateway contractx.Gateway) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}
	if in.Reply != "" {
		return in, nil
	}
	if in.Result == nil {
		return nil, fmt.Errorf("%w: nothing to phrase", contractx.ErrValidation)
	}

	reply, err := gateway.Phrase(ctx, contractx.PhraseRequest{
		UserMessage: in.Text,
		Result:      *in.Result,
		History:     in.Session.History,
	})
	if err != nil {
		log.Warn().Err(err).Str("session_id", in.SessionID).Str("operation", in.Result.Operation).
			Msg("phrasing failed, using templated reply")
		reply = FallbackReply(*in.Result)
	}

	in.Reply = strings.TrimSpace(reply)
	return in, nil
}
