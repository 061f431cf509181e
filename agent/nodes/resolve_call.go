package turnnode

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/gecortesh/chatbot-ecommerce/agent/contract"
	registryx "github.com/gecortesh/chatbot-ecommerce/agent/registry"
	validatex "github.com/gecortesh/chatbot-ecommerce/agent/validate"
)

// ResolveCall merges the call's recognized parameters into the session,
// rebuilds the effective call from the accumulated parameters (so values
// from earlier turns are reused, never re-asked), and validates it against
// the operation spec. A call naming an operation the registry does not know
// is treated as malformed model output: the turn degrades to a clarifying
// question and nothing reaches the dispatcher.
func ResolveCall(in *GraphState, reg *registryx.Registry) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	call := in.Decision.Call
	spec, err := reg.Get(call.Name)
	if err != nil {
		if errors.Is(err, contractx.ErrUnknownOperation) {
			log.Warn().Str("session_id", in.SessionID).Str("operation", call.Name).
				Msg("model requested an unknown operation")
			in.Reply = clarifyReply
			return in, nil
		}
		return nil, err
	}

	// Only format-valid values enter the session; a malformed email or
	// order id leaves the accumulated state untouched.
	merged := make(map[string]string, len(call.Arguments))
	for _, p := range spec.Params {
		raw, ok := call.Arguments[p.Name]
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		normalized, err := validatex.NormalizeParam(p.Kind, raw)
		if err != nil {
			log.Debug().Str("session_id", in.SessionID).Str("param", p.Name).
				Msg("dropping malformed parameter value")
			continue
		}
		merged[p.Name] = normalized
	}
	in.Session.MergeParams(merged)

	effective := contractx.FunctionCall{
		Name:      spec.Name,
		Arguments: make(map[string]string, len(spec.Params)),
	}
	for _, p := range spec.Params {
		if v := in.Session.Params[p.Name]; v != "" {
			effective.Arguments[p.Name] = v
		}
	}

	args, err := validatex.Validate(effective, spec)
	if err != nil {
		switch {
		case errors.Is(err, contractx.ErrMissingParameter):
			missing := firstMissingRequired(spec, effective.Arguments)
			if aerr := in.Session.AwaitParameter(missing, in.Now); aerr != nil {
				return nil, aerr
			}
			in.Result = &contractx.DispatchResult{
				Operation: spec.Name,
				ErrorKind: contractx.ErrorKindMissingParameter,
				Reason:    missing,
			}
			return in, nil
		case errors.Is(err, contractx.ErrInvalidParameter):
			in.Result = &contractx.DispatchResult{
				Operation: spec.Name,
				ErrorKind: contractx.ErrorKindInvalidParameter,
				Reason:    err.Error(),
			}
			return in, nil
		default:
			return nil, err
		}
	}

	in.Operation = spec.Name
	in.Args = args
	in.Session.ReadyToDispatch(in.Now)
	return in, nil
}

func firstMissingRequired(spec registryx.OperationSpec, args map[string]string) string {
	for _, p := range spec.Params {
		if p.Required && strings.TrimSpace(args[p.Name]) == "" {
			return p.Name
		}
	}
	return ""
}
