package domain

import (
	"time"

	"github.com/croplink/agrimart/pkg/common"
)

const (
	CouponTypePercentage   = "percentage"
	CouponTypeFixed        = "fixed"
	CouponTypeFreeShipping = "free-shipping"
	CouponTypeBuyXGetY     = "buy-x-get-y"
)

// Region targets a state, optionally narrowed to specific districts.
// An empty district list means the whole state qualifies.
type Region struct {
	State     string   `json:"state"`
	Districts []string `json:"districts"`
}

// BuyXGetYRule grants free units of a product once the cart contains
// complete buy-bundles of another (possibly the same) product.
type BuyXGetYRule struct {
	BuyProduct int64 `json:"buy_product,string"`
	BuyQty     int   `json:"buy_qty"`
	GetProduct int64 `json:"get_product,string"`
	GetQty     int   `json:"get_qty"`
}

// Coupon is referenced by carts and orders, never owned by them.
// List-valued applicability filters are stored as JSON text columns and
// decoded on demand; per-user usage lives in mart_coupon_usage so the
// checkout transaction can update it atomically.
type Coupon struct {
	ID                int64     `gorm:"primaryKey" json:"id,string"`
	Code              string    `gorm:"uniqueIndex;size:20" json:"code"`
	Name              string    `gorm:"size:100" json:"name"`
	Description       string    `gorm:"size:500" json:"description"`
	DiscountType      string    `gorm:"size:20" json:"discount_type"`
	Value             float64   `json:"value"`
	MaxDiscount       *float64  `json:"max_discount,omitempty"`
	MinOrderValue     float64   `gorm:"default:0" json:"min_order_value"`
	UsageLimitTotal   *int      `json:"usage_limit_total,omitempty"` // nil = unlimited
	UsageLimitPerUser int       `gorm:"default:1" json:"usage_limit_per_user"`
	UsageTotal        int       `gorm:"default:0" json:"usage_total"`
	StartAt           time.Time `json:"start_at"`
	EndAt             time.Time `json:"end_at"`
	UserTypes         string    `gorm:"type:text" json:"user_types"`            // JSON: all|new|existing|specific
	SpecificUsers     string    `gorm:"type:text" json:"specific_users"`        // JSON []int64
	ApplicableCats    string    `gorm:"type:text" json:"applicable_categories"` // JSON []string
	ExcludedCats      string    `gorm:"type:text" json:"excluded_categories"`   // JSON []string
	ApplicableProds   string    `gorm:"type:text" json:"applicable_products"`   // JSON []int64
	ExcludedProds     string    `gorm:"type:text" json:"excluded_products"`     // JSON []int64
	Regions           string    `gorm:"type:text" json:"regions"`               // JSON []Region
	SeasonMonths      string    `gorm:"type:text" json:"season_months"`         // JSON []int, 1-12
	FirstOrderOnly    bool      `gorm:"default:false" json:"first_order_only"`
	BuyXGetY          string    `gorm:"type:text" json:"buy_x_get_y"` // JSON []BuyXGetYRule
	Status            string    `gorm:"size:20;index;default:'enabled'" json:"status"`
	CreatedBy         int64     `json:"created_by,string"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (Coupon) TableName() string {
	return "mart_coupon"
}

// CurrentlyValid reports temporal validity: active, inside [StartAt, EndAt),
// and global usage not exhausted.
func (c *Coupon) CurrentlyValid(now time.Time) bool {
	if c.Status != common.ENABLED {
		return false
	}
	if now.Before(c.StartAt) || !now.Before(c.EndAt) {
		return false
	}
	return !c.UsageExhausted()
}

func (c *Coupon) UsageExhausted() bool {
	return c.UsageLimitTotal != nil && c.UsageTotal >= *c.UsageLimitTotal
}

func (c *Coupon) UserTypeList() []string {
	var v []string
	_ = common.FromJSON(c.UserTypes, &v)
	return v
}

func (c *Coupon) SpecificUserList() []int64 {
	var v []int64
	_ = common.FromJSON(c.SpecificUsers, &v)
	return v
}

func (c *Coupon) ApplicableCategoryList() []string {
	var v []string
	_ = common.FromJSON(c.ApplicableCats, &v)
	return v
}

func (c *Coupon) ExcludedCategoryList() []string {
	var v []string
	_ = common.FromJSON(c.ExcludedCats, &v)
	return v
}

func (c *Coupon) ApplicableProductList() []int64 {
	var v []int64
	_ = common.FromJSON(c.ApplicableProds, &v)
	return v
}

func (c *Coupon) ExcludedProductList() []int64 {
	var v []int64
	_ = common.FromJSON(c.ExcludedProds, &v)
	return v
}

func (c *Coupon) RegionList() []Region {
	var v []Region
	_ = common.FromJSON(c.Regions, &v)
	return v
}

func (c *Coupon) SeasonMonthList() []int {
	var v []int
	_ = common.FromJSON(c.SeasonMonths, &v)
	return v
}

func (c *Coupon) BuyXGetYRules() []BuyXGetYRule {
	var v []BuyXGetYRule
	_ = common.FromJSON(c.BuyXGetY, &v)
	return v
}

// CouponUsage tracks one user's successful uses of one coupon. The checkout
// transaction increments UseCount together with Coupon.UsageTotal.
type CouponUsage struct {
	ID        int64     `gorm:"primaryKey" json:"id,string"`
	CouponID  int64     `gorm:"index:idx_coupon_user,unique" json:"coupon_id,string"`
	UserID    int64     `gorm:"index:idx_coupon_user,unique" json:"user_id,string"`
	UseCount  int       `gorm:"default:0" json:"use_count"`
	OrderIDs  string    `gorm:"type:text" json:"order_ids"` // JSON []int64
	UpdatedAt time.Time `json:"updated_at"`
}

func (CouponUsage) TableName() string {
	return "mart_coupon_usage"
}
