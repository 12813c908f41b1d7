package domain

import "fmt"

// OrderStatus tracks an order through its fulfillment lifecycle.
type OrderStatus string

const (
	// OrderStatusPending is the initial status of every submitted order.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusConfirmed indicates the order was acknowledged for fulfillment.
	OrderStatusConfirmed OrderStatus = "confirmed"
	// OrderStatusShipped indicates the order left the warehouse. Terminal for cancellation.
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusDelivered indicates the order reached the customer.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled indicates the order was cancelled and its stock restored.
	OrderStatusCancelled OrderStatus = "cancelled"
)

var orderStatusTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:   {OrderStatusDelivered},
}

// ParseOrderStatus validates and converts a raw status string.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	status := OrderStatus(raw)
	switch status {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return status, nil
	}
	return "", fmt.Errorf("unknown order status %q", raw)
}

// CanTransitionTo reports whether the state machine permits moving to target.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, allowed := range orderStatusTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Cancellable reports whether an order in this status may still be cancelled.
func (s OrderStatus) Cancellable() bool {
	return s == OrderStatusPending || s == OrderStatusConfirmed
}

// CancellableStatuses lists every status from which cancellation is allowed.
func CancellableStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusPending, OrderStatusConfirmed}
}

// Terminal reports whether no transition leaves this status.
func (s OrderStatus) Terminal() bool {
	return len(orderStatusTransitions[s]) == 0
}

// PaymentMethod is the closed set of accepted payment options.
type PaymentMethod string

const (
	// PaymentMethodCOD is cash on delivery.
	PaymentMethodCOD PaymentMethod = "cod"
	// PaymentMethodOnline is an online payment recorded as a flag only.
	PaymentMethodOnline PaymentMethod = "online"
)

// ParsePaymentMethod validates and converts a raw payment method string.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	method := PaymentMethod(raw)
	switch method {
	case PaymentMethodCOD, PaymentMethodOnline:
		return method, nil
	}
	return "", fmt.Errorf("unknown payment method %q", raw)
}

// PaymentStatus records the settlement state of an order's payment.
type PaymentStatus string

const (
	// PaymentStatusPending means payment has not been settled.
	PaymentStatusPending PaymentStatus = "pending"
	// PaymentStatusPaid means payment completed.
	PaymentStatusPaid PaymentStatus = "paid"
	// PaymentStatusFailed means payment was attempted and failed.
	PaymentStatusFailed PaymentStatus = "failed"
)
