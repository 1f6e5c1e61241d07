package coupon

import (
	"fmt"
	"time"

	"github.com/croplink/agrimart/internal/domain"
	"github.com/croplink/agrimart/pkg/common"
)

// SnapshotItem is one cart line as seen by the engine. Category and price
// are the values captured at add time.
type SnapshotItem struct {
	ProductID int64
	Category  string
	Quantity  int
	UnitPrice float64
}

// CartSnapshot is the minimal cart view the engine evaluates against.
// Shipping is the fee the cart would charge without any coupon.
type CartSnapshot struct {
	Subtotal float64
	Shipping float64
	Items    []SnapshotItem
}

// UserContext carries the buyer facts the eligibility checks need. UsedCount
// is this user's prior successful uses of the coupon being evaluated.
type UserContext struct {
	ID         int64
	IsNew      bool
	State      string
	District   string
	OrderCount int64
	UsedCount  int
}

// Reason tags why a coupon was rejected; handlers map it to user-facing copy.
type Reason string

const (
	ReasonInactive     Reason = "inactive"
	ReasonNotStarted   Reason = "not-started"
	ReasonExpired      Reason = "expired"
	ReasonExhausted    Reason = "usage-exhausted"
	ReasonUserType     Reason = "user-type"
	ReasonPerUserLimit Reason = "per-user-limit"
	ReasonMinOrder     Reason = "min-order"
	ReasonProducts     Reason = "products"
	ReasonRegion       Reason = "region"
	ReasonSeason       Reason = "season"
	ReasonFirstOrder   Reason = "first-order"
)

// IneligibleError reports the first failed eligibility check.
type IneligibleError struct {
	Reason  Reason
	Message string
}

func (e *IneligibleError) Error() string {
	return fmt.Sprintf("coupon not eligible: %s", e.Message)
}

// Invalid distinguishes coupons that are unusable by anyone (inactive,
// outside the validity window, globally exhausted) from coupons this
// particular user or cart does not qualify for.
func (e *IneligibleError) Invalid() bool {
	switch e.Reason {
	case ReasonInactive, ReasonNotStarted, ReasonExpired, ReasonExhausted:
		return true
	}
	return false
}

func ineligible(reason Reason, format string, args ...interface{}) *IneligibleError {
	return &IneligibleError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// ValidateActive runs only the temporal checks: status, validity window and
// global usage. Checkout re-runs it on the stored coupon so a code that was
// disabled or expired after being applied to the cart cannot discount the
// order.
func ValidateActive(c *domain.Coupon, now time.Time) *IneligibleError {
	if c.Status != common.ENABLED {
		return ineligible(ReasonInactive, "coupon %s is not active", c.Code)
	}
	if now.Before(c.StartAt) {
		return ineligible(ReasonNotStarted, "coupon %s is not active yet", c.Code)
	}
	if !now.Before(c.EndAt) {
		return ineligible(ReasonExpired, "coupon %s has expired", c.Code)
	}
	if c.UsageExhausted() {
		return ineligible(ReasonExhausted, "coupon %s usage limit reached", c.Code)
	}
	return nil
}

// Evaluate runs every eligibility check in order, short-circuiting on the
// first failure. A nil result means the coupon may be applied; the discount
// itself is computed separately by Discount.
func Evaluate(c *domain.Coupon, user UserContext, cart CartSnapshot, now time.Time) *IneligibleError {
	// 1. Temporal validity
	if err := ValidateActive(c, now); err != nil {
		return err
	}

	// 2. User-type eligibility
	if err := checkUserType(c, user); err != nil {
		return err
	}

	// 3. Per-user usage cap
	if user.UsedCount >= c.UsageLimitPerUser {
		return ineligible(ReasonPerUserLimit, "you have already used coupon %s", c.Code)
	}

	// 4. Order minimum
	if cart.Subtotal < c.MinOrderValue {
		return ineligible(ReasonMinOrder, "minimum order value for %s is %.2f", c.Code, c.MinOrderValue)
	}

	// 5. Product / category restrictions
	if err := checkItems(c, cart.Items); err != nil {
		return err
	}

	// 6. Regional restriction
	if err := checkRegion(c, user); err != nil {
		return err
	}

	// 7. Seasonal / first-order conditions
	if months := c.SeasonMonthList(); len(months) > 0 {
		current := int(now.Month())
		found := false
		for _, m := range months {
			if m == current {
				found = true
				break
			}
		}
		if !found {
			return ineligible(ReasonSeason, "coupon %s is not valid this season", c.Code)
		}
	}
	if c.FirstOrderOnly && user.OrderCount > 0 {
		return ineligible(ReasonFirstOrder, "coupon %s is only for first orders", c.Code)
	}

	return nil
}

func checkUserType(c *domain.Coupon, user UserContext) *IneligibleError {
	types := c.UserTypeList()
	if len(types) == 0 || common.InStrings(types, "all") {
		return nil
	}
	if common.InStrings(types, "specific") {
		for _, id := range c.SpecificUserList() {
			if id == user.ID {
				return nil
			}
		}
		return ineligible(ReasonUserType, "coupon %s is not available for your account", c.Code)
	}
	userType := "existing"
	if user.IsNew {
		userType = "new"
	}
	if !common.InStrings(types, userType) {
		return ineligible(ReasonUserType, "coupon %s is not applicable for %s users", c.Code, userType)
	}
	return nil
}

func checkItems(c *domain.Coupon, items []SnapshotItem) *IneligibleError {
	// Exclusions apply to every line in the cart.
	excludedProds := c.ExcludedProductList()
	excludedCats := c.ExcludedCategoryList()
	for _, it := range items {
		for _, pid := range excludedProds {
			if pid == it.ProductID {
				return ineligible(ReasonProducts, "cart contains a product excluded from %s", c.Code)
			}
		}
		if common.InStrings(excludedCats, it.Category) {
			return ineligible(ReasonProducts, "cart contains a category excluded from %s", c.Code)
		}
	}

	// Inclusions require at least one qualifying line.
	applicableProds := c.ApplicableProductList()
	applicableCats := c.ApplicableCategoryList()
	if len(applicableProds) == 0 && len(applicableCats) == 0 {
		return nil
	}
	for _, it := range items {
		for _, pid := range applicableProds {
			if pid == it.ProductID {
				return nil
			}
		}
		if common.InStrings(applicableCats, it.Category) {
			return nil
		}
	}
	return ineligible(ReasonProducts, "no item in the cart qualifies for %s", c.Code)
}

func checkRegion(c *domain.Coupon, user UserContext) *IneligibleError {
	regions := c.RegionList()
	if len(regions) == 0 {
		return nil
	}
	for _, r := range regions {
		if r.State != user.State {
			continue
		}
		if len(r.Districts) == 0 {
			return nil
		}
		if common.InStrings(r.Districts, user.District) {
			return nil
		}
	}
	return ineligible(ReasonRegion, "coupon %s is not available in your region", c.Code)
}

// Discount computes the discount amount for an already-eligible coupon,
// rounded to 2 decimal places. Percentage and fixed discounts reduce the
// subtotal; free-shipping returns the shipping fee that the cart will waive
// instead of charging. A zero result means the coupon is not applicable to
// this cart.
func Discount(c *domain.Coupon, cart CartSnapshot) float64 {
	var discount float64
	switch c.DiscountType {
	case domain.CouponTypePercentage:
		discount = cart.Subtotal * c.Value / 100
		if c.MaxDiscount != nil && discount > *c.MaxDiscount {
			discount = *c.MaxDiscount
		}
	case domain.CouponTypeFixed:
		discount = c.Value
		if discount > cart.Subtotal {
			discount = cart.Subtotal
		}
	case domain.CouponTypeFreeShipping:
		discount = cart.Shipping
	case domain.CouponTypeBuyXGetY:
		discount = buyXGetYDiscount(c.BuyXGetYRules(), cart.Items)
	}
	return common.Round2(discount)
}

// buyXGetYDiscount: for each rule, every complete buy-bundle in the cart
// earns getQty free units of the get-product, limited by how many of that
// product the cart actually holds. The free units are discounted at the
// get-product's cart unit price.
func buyXGetYDiscount(rules []domain.BuyXGetYRule, items []SnapshotItem) float64 {
	qty := make(map[int64]int, len(items))
	price := make(map[int64]float64, len(items))
	for _, it := range items {
		qty[it.ProductID] += it.Quantity
		price[it.ProductID] = it.UnitPrice
	}

	var discount float64
	for _, r := range rules {
		if r.BuyQty <= 0 || r.GetQty <= 0 {
			continue
		}
		bought := qty[r.BuyProduct]
		if r.BuyProduct == r.GetProduct {
			// Free units come out of the same line: only bundles beyond the
			// free units themselves count.
			bundles := bought / (r.BuyQty + r.GetQty)
			free := bundles * r.GetQty
			discount += float64(free) * price[r.GetProduct]
			continue
		}
		bundles := bought / r.BuyQty
		free := bundles * r.GetQty
		if have := qty[r.GetProduct]; free > have {
			free = have
		}
		discount += float64(free) * price[r.GetProduct]
	}
	return discount
}
