package cart

import (
	"time"

	"github.com/croplink/agrimart/internal/domain"
	"github.com/croplink/agrimart/pkg/common"
)

// Pricing holds the configured cart constants.
type Pricing struct {
	TaxRate               float64
	FreeShippingThreshold float64
	FlatShippingFee       float64
}

// Finalize recomputes every derived amount on the cart from its items and
// applied coupon. It is the single place totals are written and runs after
// every mutation:
//
//	subtotal  = sum of effective price * quantity
//	discount  = applied coupon's precomputed discount (0 when shipping-only)
//	tax       = round2((subtotal - discount) * taxRate)
//	shipping  = 0 when free (threshold or free-shipping coupon), else flat fee
//	total     = round2(subtotal - discount + tax + shipping), floored at 0
func Finalize(c *domain.Cart, p Pricing, now time.Time) {
	subtotal := 0.0
	for i := range c.Items {
		subtotal += c.Items[i].EffectivePrice() * float64(c.Items[i].Quantity)
	}
	c.Subtotal = common.Round2(subtotal)

	c.DiscountAmount = 0
	if c.HasCoupon() && !c.CouponFreeShip {
		c.DiscountAmount = c.CouponDiscount
	}

	taxable := c.Subtotal - c.DiscountAmount
	if taxable < 0 {
		taxable = 0
	}
	c.TaxAmount = common.Round2(taxable * p.TaxRate)

	c.ShippingAmount = ShippingFee(c.Subtotal, p)
	if c.HasCoupon() && c.CouponFreeShip {
		c.ShippingAmount = 0
	}
	if len(c.Items) == 0 {
		c.ShippingAmount = 0
	}

	total := c.Subtotal - c.DiscountAmount + c.TaxAmount + c.ShippingAmount
	if total < 0 {
		total = 0
	}
	c.Total = common.Round2(total)

	// A mutated cart is active again: converted carts are reused after
	// checkout and abandoned carts can be revived, and both must become
	// eligible for the abandonment sweep once more.
	c.Status = domain.CartStatusActive
	c.LastModified = now
}

// ShippingFee is the fee the cart would charge before any coupon.
func ShippingFee(subtotal float64, p Pricing) float64 {
	if subtotal >= p.FreeShippingThreshold {
		return 0
	}
	return p.FlatShippingFee
}
