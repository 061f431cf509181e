package contract

import "errors"

var (
	ErrUnknownOperation = errors.New("unknown operation")
	ErrMissingParameter = errors.New("missing parameter")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrUnknownCustomer  = errors.New("unknown customer")
	ErrOrderNotFound    = errors.New("order not found")
	ErrPolicyIneligible = errors.New("order is not eligible for cancellation")
	ErrGatewayTimeout   = errors.New("model gateway timed out")
	ErrMalformedOutput  = errors.New("model output is malformed")
	ErrValidation       = errors.New("validation failed")
)
