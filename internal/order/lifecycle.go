package order

import (
	"errors"

	"github.com/croplink/agrimart/internal/domain"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrReturnNotAllowed  = errors.New("order is not eligible for return")
	ErrCancelNotAllowed  = errors.New("order can no longer be cancelled")
)

// transitions is the forward status graph. Cancellation is not listed here:
// it is guarded separately by Order.CanBeCancelled.
var transitions = map[string][]string{
	domain.OrderStatusPending:        {domain.OrderStatusConfirmed},
	domain.OrderStatusConfirmed:      {domain.OrderStatusProcessing},
	domain.OrderStatusProcessing:     {domain.OrderStatusPacked},
	domain.OrderStatusPacked:         {domain.OrderStatusShipped},
	domain.OrderStatusShipped:        {domain.OrderStatusOutForDelivery},
	domain.OrderStatusOutForDelivery: {domain.OrderStatusDelivered},
	domain.OrderStatusDelivered:      {domain.OrderStatusReturned, domain.OrderStatusRefunded},
	domain.OrderStatusReturned:       {domain.OrderStatusRefunded},
}

// CanTransition reports whether status may move from one state to another.
// Cancellation is allowed from exactly the states CanBeCancelled accepts.
func CanTransition(from, to string) bool {
	if to == domain.OrderStatusCancelled {
		o := domain.Order{Status: from}
		return o.CanBeCancelled()
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further lifecycle transition is possible.
func Terminal(status string) bool {
	switch status {
	case domain.OrderStatusCancelled, domain.OrderStatusRefunded:
		return true
	}
	return false
}
