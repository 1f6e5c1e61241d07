package domain

import "testing"

func TestEffectivePrice(t *testing.T) {
	dp := 585.0
	p := Product{Price: 650, DiscountPrice: &dp}
	if got := p.EffectivePrice(); got != 585 {
		t.Errorf("EffectivePrice() = %v, want 585", got)
	}

	p = Product{Price: 650}
	if got := p.EffectivePrice(); got != 650 {
		t.Errorf("EffectivePrice() = %v, want list price 650", got)
	}

	// A discount price at or above the list price is ignored.
	bad := 700.0
	p = Product{Price: 650, DiscountPrice: &bad}
	if got := p.EffectivePrice(); got != 650 {
		t.Errorf("EffectivePrice() = %v, want 650 when discount exceeds price", got)
	}
}

func TestDiscountPercentage(t *testing.T) {
	dp := 585.0
	p := Product{Price: 650, DiscountPrice: &dp}
	if got := p.DiscountPercentage(); got != 10 {
		t.Errorf("DiscountPercentage() = %v, want 10", got)
	}

	p = Product{Price: 650}
	if got := p.DiscountPercentage(); got != 0 {
		t.Errorf("DiscountPercentage() = %v, want 0 without discount", got)
	}
}

func TestMakeSlug(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Hybrid Paddy Seeds 5kg", "hybrid-paddy-seeds-5kg"},
		{"Neem Oil  (1L)", "neem-oil-1l"},
		{"--Drip Kit--", "drip-kit"},
	}
	for _, tt := range tests {
		if got := MakeSlug(tt.in); got != tt.want {
			t.Errorf("MakeSlug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsLowStock(t *testing.T) {
	p := Product{Stock: 5, LowStockAlert: 10}
	if !p.IsLowStock() {
		t.Error("stock below alert level should report low")
	}
	p.Stock = 11
	if p.IsLowStock() {
		t.Error("stock above alert level should not report low")
	}
}
