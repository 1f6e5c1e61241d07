package order

import (
	"testing"
	"time"

	"github.com/croplink/agrimart/internal/domain"
)

func TestCanTransitionForwardChain(t *testing.T) {
	chain := []string{
		domain.OrderStatusPending,
		domain.OrderStatusConfirmed,
		domain.OrderStatusProcessing,
		domain.OrderStatusPacked,
		domain.OrderStatusShipped,
		domain.OrderStatusOutForDelivery,
		domain.OrderStatusDelivered,
	}
	for i := 0; i < len(chain)-1; i++ {
		if !CanTransition(chain[i], chain[i+1]) {
			t.Errorf("CanTransition(%s, %s) = false, want true", chain[i], chain[i+1])
		}
	}
}

func TestCanTransitionRejectsSkipsAndBackwards(t *testing.T) {
	tests := []struct{ from, to string }{
		{domain.OrderStatusPending, domain.OrderStatusShipped},
		{domain.OrderStatusPending, domain.OrderStatusDelivered},
		{domain.OrderStatusShipped, domain.OrderStatusPending},
		{domain.OrderStatusDelivered, domain.OrderStatusShipped},
		{domain.OrderStatusConfirmed, domain.OrderStatusPacked},
		{domain.OrderStatusCancelled, domain.OrderStatusConfirmed},
		{domain.OrderStatusRefunded, domain.OrderStatusPending},
	}
	for _, tt := range tests {
		if CanTransition(tt.from, tt.to) {
			t.Errorf("CanTransition(%s, %s) = true, want false", tt.from, tt.to)
		}
	}
}

func TestCanTransitionToCancelled(t *testing.T) {
	allowed := []string{
		domain.OrderStatusPending,
		domain.OrderStatusConfirmed,
		domain.OrderStatusProcessing,
	}
	for _, from := range allowed {
		if !CanTransition(from, domain.OrderStatusCancelled) {
			t.Errorf("CanTransition(%s, cancelled) = false, want true", from)
		}
	}

	blocked := []string{
		domain.OrderStatusPacked,
		domain.OrderStatusShipped,
		domain.OrderStatusOutForDelivery,
		domain.OrderStatusDelivered,
		domain.OrderStatusCancelled,
	}
	for _, from := range blocked {
		if CanTransition(from, domain.OrderStatusCancelled) {
			t.Errorf("CanTransition(%s, cancelled) = true, want false", from)
		}
	}
}

func TestCanTransitionDeliveredToReturn(t *testing.T) {
	if !CanTransition(domain.OrderStatusDelivered, domain.OrderStatusReturned) {
		t.Error("delivered -> returned should be allowed")
	}
	if !CanTransition(domain.OrderStatusReturned, domain.OrderStatusRefunded) {
		t.Error("returned -> refunded should be allowed")
	}
}

func TestTerminal(t *testing.T) {
	if !Terminal(domain.OrderStatusCancelled) || !Terminal(domain.OrderStatusRefunded) {
		t.Error("cancelled and refunded must be terminal")
	}
	if Terminal(domain.OrderStatusDelivered) || Terminal(domain.OrderStatusReturned) {
		t.Error("delivered and returned are not terminal")
	}
}

func TestCanBeReturnedWindow(t *testing.T) {
	delivered := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	o := domain.Order{Status: domain.OrderStatusDelivered, DeliveredAt: &delivered}

	// Exactly at the 7-day boundary the return is still accepted.
	atBoundary := delivered.Add(7 * 24 * time.Hour)
	if !o.CanBeReturned(atBoundary, 7) {
		t.Error("return exactly 7 days after delivery should be accepted")
	}
	if o.CanBeReturned(atBoundary.Add(time.Second), 7) {
		t.Error("return past the 7-day window should be rejected")
	}
	if !o.CanBeReturned(delivered.Add(time.Hour), 7) {
		t.Error("return shortly after delivery should be accepted")
	}
}

func TestCanBeReturnedRequiresDeliveredState(t *testing.T) {
	now := time.Now()
	delivered := now.Add(-24 * time.Hour)

	o := domain.Order{Status: domain.OrderStatusShipped, DeliveredAt: &delivered}
	if o.CanBeReturned(now, 7) {
		t.Error("non-delivered order must not be returnable")
	}

	o = domain.Order{Status: domain.OrderStatusDelivered}
	if o.CanBeReturned(now, 7) {
		t.Error("missing delivery timestamp must not be returnable")
	}

	o = domain.Order{Status: domain.OrderStatusDelivered, DeliveredAt: &delivered, ReturnRequested: true}
	if o.CanBeReturned(now, 7) {
		t.Error("order with a pending return request must not be returnable again")
	}
}
