package contract

import "context"

// Gateway wraps the text-completion service. Decide interprets the user
// message against the bound operation schemas; Phrase turns a dispatch
// outcome into the final natural-language reply.
type Gateway interface {
	Decide(ctx context.Context, req DecideRequest) (Decision, error)
	Phrase(ctx context.Context, req PhraseRequest) (string, error)
}

// OrderStore is the data-access collaborator. Implementations must be safe
// for concurrent reads; status transitions must be applied atomically per
// order. Absence is reported with ErrUnknownCustomer / ErrOrderNotFound.
type OrderStore interface {
	FindCustomerByEmail(ctx context.Context, email string) (*Customer, error)
	ListOrdersForCustomer(ctx context.Context, email string) ([]Order, error)
	GetOrder(ctx context.Context, orderID string) (*Order, error)
	SetOrderStatus(ctx context.Context, orderID string, status OrderStatus) error
}
