package turnnode

import (
	"fmt"
	"strings"

	contractx "github.com/gecortesh/chatbot-ecommerce/agent/contract"
	registryx "github.com/gecortesh/chatbot-ecommerce/agent/registry"
)

// FallbackReply renders a dispatch outcome without the model, mirroring
// what the phrasing prompt would say. Deterministic on purpose: it is the
// reply of last resort and the one tests pin down.
func FallbackReply(result contractx.DispatchResult) string {
	switch result.ErrorKind {
	case contractx.ErrorKindMissingParameter:
		return fmt.Sprintf("Could you share your %s?", paramLabel(result.Reason))
	case contractx.ErrorKindInvalidParameter:
		return fmt.Sprintf("That doesn't look right: %s. Could you try again?", result.Reason)
	case contractx.ErrorKindUnknownCustomer:
		return "I couldn't find an account for that email address. Could you double-check it and try again?"
	case contractx.ErrorKindOrderNotFound:
		return "I couldn't find that order for your account. Could you double-check the order id?"
	case contractx.ErrorKindPolicyIneligible:
		return ineligibleReply(result)
	}

	switch result.Operation {
	case registryx.OpCancelOrder:
		if result.Cancellation != nil {
			return fmt.Sprintf(
				"I've cancelled order %s for you. You'll receive a refund of $%.2f to your original payment method within 3-5 business days.",
				result.Cancellation.OrderID, result.Cancellation.RefundAmount)
		}
	case registryx.OpTrackOrder:
		return trackingReply(result)
	}
	return "Your request has been processed."
}

func ineligibleReply(result contractx.DispatchResult) string {
	orderID := ""
	if len(result.Orders) > 0 {
		orderID = result.Orders[0].OrderID
	}
	if result.Reason == "expired" {
		return fmt.Sprintf(
			"I'm sorry, order %s can't be cancelled: it was placed more than 10 days ago. You can still return the items once you receive them.",
			orderID)
	}
	return fmt.Sprintf(
		"I'm sorry, order %s can't be cancelled because it has already been %s.",
		orderID, result.Reason)
}

func trackingReply(result contractx.DispatchResult) string {
	name := "there"
	if result.Customer != nil && result.Customer.Name != "" {
		name = result.Customer.Name
	}
	if len(result.Orders) == 0 {
		return fmt.Sprintf("Hi %s! I couldn't find any orders on your account.", name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s! I found %d order(s) on your account:\n", name, len(result.Orders))
	for _, order := range result.Orders {
		fmt.Fprintf(&b, "- Order %s: %s - $%.2f\n", order.OrderID, order.Status, order.TotalAmount)
	}
	b.WriteString("Is there anything else you'd like to know about these orders?")
	return b.String()
}

func paramLabel(name string) string {
	switch name {
	case registryx.ParamEmail:
		return "email address"
	case registryx.ParamOrderID:
		return "order id"
	default:
		return name
	}
}
