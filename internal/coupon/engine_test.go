package coupon

import (
	"testing"
	"time"

	"github.com/croplink/agrimart/internal/domain"
	"github.com/croplink/agrimart/pkg/common"
)

var testNow = time.Date(2026, 7, 15, 10, 0, 0, 0, time.UTC)

func validCoupon() *domain.Coupon {
	return &domain.Coupon{
		ID:                1,
		Code:              "SAVE10",
		DiscountType:      domain.CouponTypePercentage,
		Value:             10,
		UsageLimitPerUser: 1,
		StartAt:           testNow.AddDate(0, -1, 0),
		EndAt:             testNow.AddDate(0, 1, 0),
		Status:            common.ENABLED,
	}
}

func snapshot(subtotal float64, items ...SnapshotItem) CartSnapshot {
	return CartSnapshot{Subtotal: subtotal, Shipping: 50, Items: items}
}

func user() UserContext {
	return UserContext{ID: 100, IsNew: false, State: "Punjab", District: "Ludhiana", OrderCount: 3}
}

func TestEvaluateValidCoupon(t *testing.T) {
	if err := Evaluate(validCoupon(), user(), snapshot(1000), testNow); err != nil {
		t.Fatalf("Evaluate() = %v, want nil", err)
	}
}

func TestEvaluateTemporalReasons(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Coupon)
		reason Reason
	}{
		{"inactive", func(c *domain.Coupon) { c.Status = common.DISABLED }, ReasonInactive},
		{"not started", func(c *domain.Coupon) { c.StartAt = testNow.AddDate(0, 0, 1) }, ReasonNotStarted},
		{"expired", func(c *domain.Coupon) { c.EndAt = testNow.AddDate(0, 0, -1) }, ReasonExpired},
		{"exhausted", func(c *domain.Coupon) {
			limit := 5
			c.UsageLimitTotal = &limit
			c.UsageTotal = 5
		}, ReasonExhausted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCoupon()
			tt.mutate(c)
			err := Evaluate(c, user(), snapshot(1000), testNow)
			if err == nil {
				t.Fatal("Evaluate() = nil, want ineligible")
			}
			if err.Reason != tt.reason {
				t.Errorf("reason = %q, want %q", err.Reason, tt.reason)
			}
			if !err.Invalid() {
				t.Errorf("Invalid() = false, want true for %s", tt.reason)
			}
		})
	}
}

// A coupon already applied to a cart is re-validated at checkout; the
// temporal checks must stand alone so the stored discount cannot survive a
// code that was disabled or expired in the meantime.
func TestValidateActive(t *testing.T) {
	if err := ValidateActive(validCoupon(), testNow); err != nil {
		t.Fatalf("ValidateActive() = %v, want nil", err)
	}

	tests := []struct {
		name   string
		mutate func(*domain.Coupon)
		reason Reason
	}{
		{"disabled after apply", func(c *domain.Coupon) { c.Status = common.DISABLED }, ReasonInactive},
		{"not started", func(c *domain.Coupon) { c.StartAt = testNow.AddDate(0, 0, 1) }, ReasonNotStarted},
		{"expired after apply", func(c *domain.Coupon) { c.EndAt = testNow.Add(-time.Minute) }, ReasonExpired},
		{"globally exhausted", func(c *domain.Coupon) {
			limit := 1
			c.UsageLimitTotal = &limit
			c.UsageTotal = 1
		}, ReasonExhausted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCoupon()
			tt.mutate(c)
			err := ValidateActive(c, testNow)
			if err == nil {
				t.Fatal("ValidateActive() = nil, want ineligible")
			}
			if err.Reason != tt.reason {
				t.Errorf("reason = %q, want %q", err.Reason, tt.reason)
			}
			if !err.Invalid() {
				t.Errorf("Invalid() = false, want true for %s", tt.reason)
			}
		})
	}
}

func TestEvaluateValidityWindowBoundaries(t *testing.T) {
	c := validCoupon()
	c.StartAt = testNow
	if err := Evaluate(c, user(), snapshot(1000), testNow); err != nil {
		t.Errorf("coupon starting exactly now should be usable, got %v", err)
	}

	c = validCoupon()
	c.EndAt = testNow
	err := Evaluate(c, user(), snapshot(1000), testNow)
	if err == nil || err.Reason != ReasonExpired {
		t.Errorf("coupon ending exactly now should be expired, got %v", err)
	}
}

func TestEvaluatePerUserLimit(t *testing.T) {
	c := validCoupon()
	u := user()
	u.UsedCount = 1
	err := Evaluate(c, u, snapshot(1000), testNow)
	if err == nil || err.Reason != ReasonPerUserLimit {
		t.Fatalf("Evaluate() = %v, want per-user-limit", err)
	}
	if err.Invalid() {
		t.Error("per-user-limit is user-specific, Invalid() must be false")
	}
}

func TestEvaluateMinOrderValue(t *testing.T) {
	c := validCoupon()
	c.MinOrderValue = 500
	if err := Evaluate(c, user(), snapshot(499.99), testNow); err == nil || err.Reason != ReasonMinOrder {
		t.Errorf("Evaluate() = %v, want min-order", err)
	}
	if err := Evaluate(c, user(), snapshot(500), testNow); err != nil {
		t.Errorf("subtotal equal to minimum should pass, got %v", err)
	}
}

func TestEvaluateUserTypes(t *testing.T) {
	c := validCoupon()
	c.UserTypes = common.ToJSON([]string{"new"})
	if err := Evaluate(c, user(), snapshot(1000), testNow); err == nil || err.Reason != ReasonUserType {
		t.Errorf("existing user on new-only coupon: %v, want user-type", err)
	}

	u := user()
	u.IsNew = true
	if err := Evaluate(c, u, snapshot(1000), testNow); err != nil {
		t.Errorf("new user on new-only coupon should pass, got %v", err)
	}
}

func TestEvaluateSpecificUsers(t *testing.T) {
	c := validCoupon()
	c.UserTypes = common.ToJSON([]string{"specific"})
	c.SpecificUsers = common.ToJSON([]int64{100, 200})
	if err := Evaluate(c, user(), snapshot(1000), testNow); err != nil {
		t.Errorf("listed user should pass, got %v", err)
	}

	u := user()
	u.ID = 300
	if err := Evaluate(c, u, snapshot(1000), testNow); err == nil || err.Reason != ReasonUserType {
		t.Errorf("unlisted user = %v, want user-type", err)
	}
}

func TestEvaluateProductRestrictions(t *testing.T) {
	c := validCoupon()
	c.ApplicableCats = common.ToJSON([]string{"seeds"})

	seeds := SnapshotItem{ProductID: 1, Category: "seeds", Quantity: 1, UnitPrice: 100}
	tools := SnapshotItem{ProductID: 2, Category: "farm-tools", Quantity: 1, UnitPrice: 100}

	if err := Evaluate(c, user(), snapshot(200, seeds, tools), testNow); err != nil {
		t.Errorf("one qualifying line should pass, got %v", err)
	}
	if err := Evaluate(c, user(), snapshot(100, tools), testNow); err == nil || err.Reason != ReasonProducts {
		t.Errorf("no qualifying line = %v, want products", err)
	}

	c = validCoupon()
	c.ExcludedCats = common.ToJSON([]string{"machinery"})
	machine := SnapshotItem{ProductID: 3, Category: "machinery", Quantity: 1, UnitPrice: 100}
	if err := Evaluate(c, user(), snapshot(200, seeds, machine), testNow); err == nil || err.Reason != ReasonProducts {
		t.Errorf("excluded category present = %v, want products", err)
	}
}

func TestEvaluateRegion(t *testing.T) {
	c := validCoupon()
	c.Regions = common.ToJSON([]domain.Region{{State: "Punjab", Districts: []string{"Ludhiana"}}})
	if err := Evaluate(c, user(), snapshot(1000), testNow); err != nil {
		t.Errorf("matching state+district should pass, got %v", err)
	}

	u := user()
	u.District = "Amritsar"
	if err := Evaluate(c, u, snapshot(1000), testNow); err == nil || err.Reason != ReasonRegion {
		t.Errorf("wrong district = %v, want region", err)
	}

	c.Regions = common.ToJSON([]domain.Region{{State: "Punjab"}})
	if err := Evaluate(c, u, snapshot(1000), testNow); err != nil {
		t.Errorf("state-wide region should accept any district, got %v", err)
	}

	u.State = "Gujarat"
	if err := Evaluate(c, u, snapshot(1000), testNow); err == nil || err.Reason != ReasonRegion {
		t.Errorf("wrong state = %v, want region", err)
	}
}

func TestEvaluateSeasonMonths(t *testing.T) {
	c := validCoupon()
	c.SeasonMonths = common.ToJSON([]int{6, 7, 8}) // testNow is July
	if err := Evaluate(c, user(), snapshot(1000), testNow); err != nil {
		t.Errorf("current month in season should pass, got %v", err)
	}

	c.SeasonMonths = common.ToJSON([]int{11, 12})
	if err := Evaluate(c, user(), snapshot(1000), testNow); err == nil || err.Reason != ReasonSeason {
		t.Errorf("off-season = %v, want season", err)
	}
}

func TestEvaluateFirstOrderOnly(t *testing.T) {
	c := validCoupon()
	c.FirstOrderOnly = true
	if err := Evaluate(c, user(), snapshot(1000), testNow); err == nil || err.Reason != ReasonFirstOrder {
		t.Errorf("repeat buyer = %v, want first-order", err)
	}

	u := user()
	u.IsNew = true
	u.OrderCount = 0
	if err := Evaluate(c, u, snapshot(1000), testNow); err != nil {
		t.Errorf("first-time buyer should pass, got %v", err)
	}
}

func TestDiscountPercentageCapped(t *testing.T) {
	maxDiscount := 150.0
	c := validCoupon()
	c.MaxDiscount = &maxDiscount

	if got := Discount(c, snapshot(500)); got != 50 {
		t.Errorf("Discount(500) = %v, want 50", got)
	}
	// 10% of 5000 is 500, capped at 150.
	if got := Discount(c, snapshot(5000)); got != 150 {
		t.Errorf("Discount(5000) = %v, want capped 150", got)
	}
}

func TestDiscountFixedNeverExceedsSubtotal(t *testing.T) {
	c := validCoupon()
	c.DiscountType = domain.CouponTypeFixed
	c.Value = 200

	if got := Discount(c, snapshot(1000)); got != 200 {
		t.Errorf("Discount = %v, want 200", got)
	}
	if got := Discount(c, snapshot(120)); got != 120 {
		t.Errorf("Discount = %v, want clamped to subtotal 120", got)
	}
}

func TestDiscountFreeShippingReturnsFee(t *testing.T) {
	c := validCoupon()
	c.DiscountType = domain.CouponTypeFreeShipping
	c.Value = 0

	if got := Discount(c, snapshot(300)); got != 50 {
		t.Errorf("Discount = %v, want the 50 shipping fee", got)
	}
}

func TestDiscountBuyXGetY(t *testing.T) {
	c := validCoupon()
	c.DiscountType = domain.CouponTypeBuyXGetY
	c.BuyXGetY = common.ToJSON([]domain.BuyXGetYRule{
		{BuyProduct: 1, BuyQty: 2, GetProduct: 2, GetQty: 1},
	})

	// 5 of the buy product = 2 complete bundles = 2 free units, but the cart
	// holds only 1 of the get product.
	snap := snapshot(0,
		SnapshotItem{ProductID: 1, Quantity: 5, UnitPrice: 100},
		SnapshotItem{ProductID: 2, Quantity: 1, UnitPrice: 40},
	)
	if got := Discount(c, snap); got != 40 {
		t.Errorf("Discount = %v, want 40 (free units limited by cart quantity)", got)
	}

	snap = snapshot(0,
		SnapshotItem{ProductID: 1, Quantity: 4, UnitPrice: 100},
		SnapshotItem{ProductID: 2, Quantity: 3, UnitPrice: 40},
	)
	if got := Discount(c, snap); got != 80 {
		t.Errorf("Discount = %v, want 80 (2 bundles x 1 free x 40)", got)
	}
}

func TestDiscountBuyXGetYSameProduct(t *testing.T) {
	c := validCoupon()
	c.DiscountType = domain.CouponTypeBuyXGetY
	c.BuyXGetY = common.ToJSON([]domain.BuyXGetYRule{
		{BuyProduct: 1, BuyQty: 2, GetProduct: 1, GetQty: 1},
	})

	// Buy 2 get 1 free on the same product: 6 units = 2 bundles of 3.
	snap := snapshot(0, SnapshotItem{ProductID: 1, Quantity: 6, UnitPrice: 100})
	if got := Discount(c, snap); got != 200 {
		t.Errorf("Discount = %v, want 200", got)
	}

	// 5 units = 1 complete bundle only.
	snap = snapshot(0, SnapshotItem{ProductID: 1, Quantity: 5, UnitPrice: 100})
	if got := Discount(c, snap); got != 100 {
		t.Errorf("Discount = %v, want 100", got)
	}
}
