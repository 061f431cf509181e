package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	contractx "github.com/gecortesh/chatbot-ecommerce/agent/contract"
	policyx "github.com/gecortesh/chatbot-ecommerce/agent/policy"
	registryx "github.com/gecortesh/chatbot-ecommerce/agent/registry"
)

// Dispatcher executes validated operations against the data-access
// collaborator. Business failures come back as structured DispatchResults;
// only infrastructure failures are returned as errors.
type Dispatcher struct {
	store contractx.OrderStore
	now   func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

type Option func(*Dispatcher)

// WithClock overrides the time source used for policy evaluation.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

func New(store contractx.OrderStore, opts ...Option) (*Dispatcher, error) {
	if store == nil {
		return nil, errors.New("order store is required")
	}
	d := &Dispatcher{
		store: store,
		now:   time.Now,
		locks: make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d, nil
}

// Execute routes a validated call by operation name. Unknown names fail
// before any store access.
func (d *Dispatcher) Execute(ctx context.Context, operation string, args contractx.Args) (contractx.DispatchResult, error) {
	switch operation {
	case registryx.OpTrackOrder:
		return d.TrackOrder(ctx, args[registryx.ParamEmail], args[registryx.ParamOrderID])
	case registryx.OpCancelOrder:
		return d.CancelOrder(ctx, args[registryx.ParamEmail], args[registryx.ParamOrderID])
	default:
		return contractx.DispatchResult{}, fmt.Errorf("%w: %s", contractx.ErrUnknownOperation, operation)
	}
}

// TrackOrder authenticates the email and lists the customer's orders in the
// store's listing order, optionally filtered to one order id. It has no side
// effects and is idempotent.
func (d *Dispatcher) TrackOrder(ctx context.Context, email, orderID string) (contractx.DispatchResult, error) {
	result := contractx.DispatchResult{Operation: registryx.OpTrackOrder}

	customer, err := d.store.FindCustomerByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, contractx.ErrUnknownCustomer) {
			result.ErrorKind = contractx.ErrorKindUnknownCustomer
			result.Reason = fmt.Sprintf("no customer found with email %s", email)
			return result, nil
		}
		return contractx.DispatchResult{}, err
	}
	result.Customer = customer

	orders, err := d.store.ListOrdersForCustomer(ctx, email)
	if err != nil {
		return contractx.DispatchResult{}, err
	}

	if orderID != "" {
		var match *contractx.Order
		for i := range orders {
			if orders[i].OrderID == orderID {
				match = &orders[i]
				break
			}
		}
		if match == nil {
			result.ErrorKind = contractx.ErrorKindOrderNotFound
			result.Reason = fmt.Sprintf("order %s not found for %s", orderID, email)
			return result, nil
		}
		orders = []contractx.Order{*match}
	}

	result.Success = true
	result.Orders = orders
	return result, nil
}

// CancelOrder authenticates, locates the owned order, consults the policy
// engine and, when eligible, requests the status transition. The policy
// check and the transition run under a per-order lock so two racing
// cancellations serialize: the loser observes the already-cancelled status
// and fails ineligible with reason "cancelled".
func (d *Dispatcher) CancelOrder(ctx context.Context, email, orderID string) (contractx.DispatchResult, error) {
	result := contractx.DispatchResult{Operation: registryx.OpCancelOrder}

	if _, err := d.store.FindCustomerByEmail(ctx, email); err != nil {
		if errors.Is(err, contractx.ErrUnknownCustomer) {
			result.ErrorKind = contractx.ErrorKindUnknownCustomer
			result.Reason = fmt.Sprintf("no customer found with email %s", email)
			return result, nil
		}
		return contractx.DispatchResult{}, err
	}

	unlock := d.lockOrder(orderID)
	defer unlock()

	order, err := d.store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, contractx.ErrOrderNotFound) {
			result.ErrorKind = contractx.ErrorKindOrderNotFound
			result.Reason = fmt.Sprintf("order %s not found for %s", orderID, email)
			return result, nil
		}
		return contractx.DispatchResult{}, err
	}
	if !strings.EqualFold(order.CustomerEmail, email) {
		// An order owned by someone else is reported exactly like an absent one.
		result.ErrorKind = contractx.ErrorKindOrderNotFound
		result.Reason = fmt.Sprintf("order %s not found for %s", orderID, email)
		return result, nil
	}

	decision := policyx.IsCancellable(*order, d.now())
	if !decision.Eligible {
		result.ErrorKind = contractx.ErrorKindPolicyIneligible
		result.Reason = decision.Reason
		result.Orders = []contractx.Order{*order}
		return result, nil
	}

	if err := d.store.SetOrderStatus(ctx, orderID, contractx.OrderCancelled); err != nil {
		if errors.Is(err, contractx.ErrOrderNotFound) {
			result.ErrorKind = contractx.ErrorKindOrderNotFound
			result.Reason = fmt.Sprintf("order %s not found for %s", orderID, email)
			return result, nil
		}
		return contractx.DispatchResult{}, err
	}

	result.Success = true
	result.Cancellation = &contractx.CancellationConfirmation{
		OrderID:        orderID,
		PreviousStatus: order.Status,
		RefundAmount:   order.TotalAmount,
	}
	return result, nil
}

func (d *Dispatcher) lockOrder(orderID string) func() {
	d.mu.Lock()
	lock, ok := d.locks[orderID]
	if !ok {
		lock = &sync.Mutex{}
		d.locks[orderID] = lock
	}
	d.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
