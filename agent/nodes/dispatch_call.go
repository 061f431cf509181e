package turnnode

import (
	"context"
	"fmt"

	contractx "github.com/gecortesh/chatbot-ecommerce/agent/contract"
	dispatchx "github.com/gecortesh/chatbot-ecommerce/agent/dispatch"
	registryx "github.com/gecortesh/chatbot-ecommerce/agent/registry"
)

// DispatchCall executes the resolved operation. It is skipped when an
// earlier node already settled the turn (clarifying reply or validation
// failure). Successful authentication inside the dispatcher is what moves a
// session to Authenticated; a failed lookup drops the unverified email so
// the next turn asks again.
func DispatchCall(ctx context.Context, in *GraphState, dispatcher *dispatchx.Dispatcher) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}
	if in.Reply != "" || in.Result != nil {
		return in, nil
	}

	result, err := dispatcher.Execute(ctx, in.Operation, in.Args)
	if err != nil {
		return nil, err
	}
	in.Result = &result

	if result.ErrorKind == contractx.ErrorKindUnknownCustomer {
		in.Session.ClearUnverifiedEmail(in.Now)
	} else {
		in.Session.MarkAuthenticated(in.Args[registryx.ParamEmail], in.Now)
	}
	in.Session.CompleteDispatch(in.Now)
	return in, nil
}
