package validate

import (
	"fmt"
	"regexp"
	"strings"

	contractx "github.com/gecortesh/chatbot-ecommerce/agent/contract"
	registryx "github.com/gecortesh/chatbot-ecommerce/agent/registry"
)

var (
	emailPattern   = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	orderIDPattern = regexp.MustCompile(`^ORD\d+$`)
)

// Validate checks a function call against its operation spec and returns the
// normalized argument mapping ready for dispatch. Checks are fail-fast and
// deterministic: every required-presence check runs before any format check,
// and parameters are visited in the operation's declared order. Unknown extra
// arguments are ignored.
func Validate(call contractx.FunctionCall, spec registryx.OperationSpec) (contractx.Args, error) {
	if call.Name != spec.Name {
		return nil, fmt.Errorf("%w: call targets %q, spec is %q", contractx.ErrValidation, call.Name, spec.Name)
	}

	for _, p := range spec.Params {
		if !p.Required {
			continue
		}
		if strings.TrimSpace(call.Arguments[p.Name]) == "" {
			return nil, fmt.Errorf("%w: %s", contractx.ErrMissingParameter, p.Name)
		}
	}

	args := make(contractx.Args, len(spec.Params))
	for _, p := range spec.Params {
		raw, ok := call.Arguments[p.Name]
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		normalized, err := NormalizeParam(p.Kind, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s (%s)", contractx.ErrInvalidParameter, p.Name, err)
		}
		args[p.Name] = normalized
	}
	return args, nil
}

// NormalizeParam validates a single raw value against its declared kind and
// returns the canonical form: emails lowercased, order ids uppercased.
func NormalizeParam(kind registryx.ParamKind, raw string) (string, error) {
	value := strings.TrimSpace(raw)
	switch kind {
	case registryx.KindEmail:
		value = strings.ToLower(value)
		if !emailPattern.MatchString(value) {
			return "", fmt.Errorf("not a valid email address")
		}
	case registryx.KindOrderID:
		value = strings.ToUpper(value)
		if !orderIDPattern.MatchString(value) {
			return "", fmt.Errorf("order ids look like ORD123")
		}
	}
	return value, nil
}
