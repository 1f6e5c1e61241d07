package cart

import (
	"testing"
	"time"

	"github.com/croplink/agrimart/internal/domain"
)

var testPricing = Pricing{
	TaxRate:               0.18,
	FreeShippingThreshold: 500,
	FlatShippingFee:       50,
}

func price(v float64) *float64 { return &v }

func item(productID int64, listPrice float64, discountPrice *float64, qty int) domain.CartItem {
	return domain.CartItem{
		ProductID:     productID,
		Price:         listPrice,
		DiscountPrice: discountPrice,
		Quantity:      qty,
	}
}

func TestFinalizeLargeCart(t *testing.T) {
	c := &domain.Cart{Items: []domain.CartItem{
		item(1, 650, nil, 2),
		item(2, 250, price(200), 1),
	}}
	Finalize(c, testPricing, time.Now())

	if c.Subtotal != 1500 {
		t.Errorf("subtotal = %v, want 1500", c.Subtotal)
	}
	if c.TaxAmount != 270 {
		t.Errorf("tax = %v, want 270", c.TaxAmount)
	}
	if c.ShippingAmount != 0 {
		t.Errorf("shipping = %v, want 0 above threshold", c.ShippingAmount)
	}
	if c.Total != 1770 {
		t.Errorf("total = %v, want 1770", c.Total)
	}
}

func TestFinalizeSmallCartChargesShipping(t *testing.T) {
	c := &domain.Cart{Items: []domain.CartItem{item(1, 100, nil, 2)}}
	Finalize(c, testPricing, time.Now())

	if c.ShippingAmount != 50 {
		t.Errorf("shipping = %v, want 50 below threshold", c.ShippingAmount)
	}
	if c.Total != 286 { // 200 + 36 tax + 50 shipping
		t.Errorf("total = %v, want 286", c.Total)
	}
}

// A cart that was converted by checkout (or swept as abandoned) and is then
// mutated again must come back as active, otherwise it would never be swept
// a second time.
func TestFinalizeRevivesCart(t *testing.T) {
	for _, status := range []string{domain.CartStatusConverted, domain.CartStatusAbandoned} {
		c := &domain.Cart{
			Status: status,
			Items:  []domain.CartItem{item(1, 100, nil, 1)},
		}
		Finalize(c, testPricing, time.Now())
		if c.Status != domain.CartStatusActive {
			t.Errorf("status after mutation = %q, want %q (was %q)", c.Status, domain.CartStatusActive, status)
		}
	}
}

func TestFinalizeThresholdBoundary(t *testing.T) {
	c := &domain.Cart{Items: []domain.CartItem{item(1, 500, nil, 1)}}
	Finalize(c, testPricing, time.Now())

	if c.ShippingAmount != 0 {
		t.Errorf("shipping = %v, want 0 at exactly the threshold", c.ShippingAmount)
	}
}

func TestFinalizeDiscountReducesTaxBase(t *testing.T) {
	cid := int64(9)
	c := &domain.Cart{
		Items:          []domain.CartItem{item(1, 1000, nil, 1)},
		CouponID:       &cid,
		CouponCode:     "SAVE100",
		CouponDiscount: 100,
	}
	Finalize(c, testPricing, time.Now())

	if c.DiscountAmount != 100 {
		t.Errorf("discount = %v, want 100", c.DiscountAmount)
	}
	if c.TaxAmount != 162 { // (1000-100) * 0.18
		t.Errorf("tax = %v, want 162", c.TaxAmount)
	}
	if c.Total != 1062 {
		t.Errorf("total = %v, want 1062", c.Total)
	}
}

func TestFinalizeFreeShippingCoupon(t *testing.T) {
	cid := int64(9)
	c := &domain.Cart{
		Items:          []domain.CartItem{item(1, 100, nil, 1)},
		CouponID:       &cid,
		CouponCode:     "SHIPFREE",
		CouponDiscount: 50,
		CouponFreeShip: true,
	}
	Finalize(c, testPricing, time.Now())

	// A free-shipping coupon waives the fee but contributes no line discount.
	if c.DiscountAmount != 0 {
		t.Errorf("discount = %v, want 0 for free-shipping coupon", c.DiscountAmount)
	}
	if c.ShippingAmount != 0 {
		t.Errorf("shipping = %v, want 0 with free-shipping coupon", c.ShippingAmount)
	}
	if c.TaxAmount != 18 {
		t.Errorf("tax = %v, want 18", c.TaxAmount)
	}
	if c.Total != 118 {
		t.Errorf("total = %v, want 118", c.Total)
	}
}

func TestFinalizeTotalFlooredAtZero(t *testing.T) {
	cid := int64(9)
	c := &domain.Cart{
		Items:          []domain.CartItem{item(1, 50, nil, 1)},
		CouponID:       &cid,
		CouponCode:     "BIG",
		CouponDiscount: 500,
	}
	Finalize(c, testPricing, time.Now())

	if c.TaxAmount != 0 {
		t.Errorf("tax = %v, want 0 on a negative taxable base", c.TaxAmount)
	}
	if c.Total < 0 {
		t.Errorf("total = %v, must never be negative", c.Total)
	}
}

func TestFinalizeEmptyCart(t *testing.T) {
	c := &domain.Cart{}
	Finalize(c, testPricing, time.Now())

	if c.Subtotal != 0 || c.TaxAmount != 0 || c.ShippingAmount != 0 || c.Total != 0 {
		t.Errorf("empty cart totals = %v/%v/%v/%v, want all zero",
			c.Subtotal, c.TaxAmount, c.ShippingAmount, c.Total)
	}
}

func TestFinalizeUsesDiscountPrice(t *testing.T) {
	c := &domain.Cart{Items: []domain.CartItem{item(1, 650, price(585), 2)}}
	Finalize(c, testPricing, time.Now())

	if c.Subtotal != 1170 {
		t.Errorf("subtotal = %v, want 1170 from discounted unit price", c.Subtotal)
	}
}

func TestFinalizeSetsLastModified(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	c := &domain.Cart{}
	Finalize(c, testPricing, now)

	if !c.LastModified.Equal(now) {
		t.Errorf("last modified = %v, want %v", c.LastModified, now)
	}
}

func TestFinalizeRoundsToTwoDecimals(t *testing.T) {
	c := &domain.Cart{Items: []domain.CartItem{item(1, 33.33, nil, 3)}}
	Finalize(c, testPricing, time.Now())

	if c.Subtotal != 99.99 {
		t.Errorf("subtotal = %v, want 99.99", c.Subtotal)
	}
	if c.TaxAmount != 18.0 { // 99.99*0.18 = 17.9982 -> 18.00
		t.Errorf("tax = %v, want 18", c.TaxAmount)
	}
}
