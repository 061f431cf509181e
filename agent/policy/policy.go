// Package policy holds the cancellation eligibility rule. It is pure
// decision logic with no side effects; the dispatcher consults it before
// every cancellation, regardless of what the model's call implies.
package policy

import (
	"time"

	contractx "github.com/gecortesh/chatbot-ecommerce/agent/contract"
)

// CancellationWindow is how long after placement an order stays
// cancellable. The boundary is inclusive: an order exactly this old is
// still eligible.
const CancellationWindow = 10 * 24 * time.Hour

const ReasonExpired = "expired"

type Decision struct {
	Eligible bool
	Reason   string
}

// IsCancellable reports whether the order may be cancelled at the given
// instant. Ineligible orders carry the reason: the order's status when it is
// not "processing", or "expired" when the window has passed. Status is
// checked first so an already-cancelled order always reports "cancelled"
// even when it is also past the window.
func IsCancellable(order contractx.Order, now time.Time) Decision {
	if order.Status != contractx.OrderProcessing {
		return Decision{Reason: string(order.Status)}
	}
	if now.Sub(order.OrderDate) > CancellationWindow {
		return Decision{Reason: ReasonExpired}
	}
	return Decision{Eligible: true}
}
