package contract

import "time"

type OrderStatus string

const (
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// Customer is immutable once loaded; identity is the verified email.
type Customer struct {
	CustomerID string `json:"customer_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
}

type OrderItem struct {
	Product  string  `json:"product"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Order is owned by the data-access collaborator. CustomerEmail is filled in
// by the store from the owning customer record so callers can verify
// ownership without a second lookup.
type Order struct {
	OrderID       string      `json:"order_id"`
	CustomerID    string      `json:"customer_id"`
	CustomerEmail string      `json:"customer_email,omitempty"`
	Status        OrderStatus `json:"status"`
	OrderDate     time.Time   `json:"order_date"`
	Items         []OrderItem `json:"items,omitempty"`
	TotalAmount   float64     `json:"total_amount"`
	PaymentMethod string      `json:"payment_method,omitempty"`
}

// FunctionCall is the structured operation request emitted by the model,
// one per turn.
type FunctionCall struct {
	Name      string            `json:"name"`
	Arguments map[string]string `json:"arguments,omitempty"`
}

// Args is the normalized argument mapping produced by the validator and
// consumed by the dispatcher.
type Args map[string]string

type DecisionKind string

const (
	DecisionText         DecisionKind = "text"
	DecisionFunctionCall DecisionKind = "function_call"
)

// Decision is the explicit tagged variant at the gateway boundary: the model
// either replied in natural language or requested a function call, never
// both.
type Decision struct {
	Kind DecisionKind `json:"kind"`
	Text string       `json:"text,omitempty"`
	Call FunctionCall `json:"call,omitempty"`
}

// Machine-readable kinds for business failures carried in DispatchResult.
const (
	ErrorKindUnknownOperation = "unknown_operation"
	ErrorKindMissingParameter = "missing_parameter"
	ErrorKindInvalidParameter = "invalid_parameter"
	ErrorKindUnknownCustomer  = "unknown_customer"
	ErrorKindOrderNotFound    = "order_not_found"
	ErrorKindPolicyIneligible = "policy_ineligible"
)

type CancellationConfirmation struct {
	OrderID        string      `json:"order_id"`
	PreviousStatus OrderStatus `json:"previous_status"`
	RefundAmount   float64     `json:"refund_amount"`
}

// DispatchResult is the structured outcome of one operation execution.
// Business failures (unknown customer, missing order, policy ineligibility)
// are expected outcomes reported here, not Go errors; only infrastructure
// failures surface as errors from the dispatcher.
type DispatchResult struct {
	Success      bool                      `json:"success"`
	Operation    string                    `json:"operation"`
	Customer     *Customer                 `json:"customer,omitempty"`
	Orders       []Order                   `json:"orders,omitempty"`
	Cancellation *CancellationConfirmation `json:"cancellation,omitempty"`
	ErrorKind    string                    `json:"error_kind,omitempty"`
	Reason       string                    `json:"reason,omitempty"`
}

// Turn is one prior exchange kept in the conversation history for prompting.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type DecideRequest struct {
	UserMessage        string            `json:"user_message"`
	AuthenticatedEmail string            `json:"authenticated_email,omitempty"`
	KnownParams        map[string]string `json:"known_params,omitempty"`
	History            []Turn            `json:"history,omitempty"`
}

type PhraseRequest struct {
	UserMessage string         `json:"user_message"`
	Result      DispatchResult `json:"result"`
	History     []Turn         `json:"history,omitempty"`
}
