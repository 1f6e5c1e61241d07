package domain

import "time"

const (
	CartStatusActive    = "active"
	CartStatusAbandoned = "abandoned"
	CartStatusConverted = "converted"
)

// Cart holds one user's open basket. The computed amount fields are always
// derived from the items plus the applied coupon; they are recalculated by
// the cart service after every mutation and never set independently.
type Cart struct {
	ID             int64           `gorm:"primaryKey" json:"id,string"`
	UserID         int64           `gorm:"uniqueIndex" json:"user_id,string"`
	Items          []CartItem      `gorm:"foreignKey:CartID" json:"items"`
	SavedItems     []CartSavedItem `gorm:"foreignKey:CartID" json:"saved_items"`
	CouponCode     string          `gorm:"size:20" json:"coupon_code"`
	CouponID       *int64          `json:"coupon_id,string,omitempty"`
	CouponDiscount float64         `gorm:"default:0" json:"coupon_discount"`
	CouponFreeShip bool            `gorm:"default:false" json:"coupon_free_ship"`
	Subtotal       float64         `gorm:"default:0" json:"subtotal"`
	DiscountAmount float64         `gorm:"default:0" json:"discount_amount"`
	TaxAmount      float64         `gorm:"default:0" json:"tax_amount"`
	ShippingAmount float64         `gorm:"default:0" json:"shipping_amount"`
	Total          float64         `gorm:"default:0" json:"total"`
	Status         string          `gorm:"size:20;index;default:'active'" json:"status"`
	LastModified   time.Time       `json:"last_modified"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `gorm:"index" json:"updated_at"`
}

func (Cart) TableName() string {
	return "mart_cart"
}

// TotalItems sums quantities across line items.
func (c *Cart) TotalItems() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) HasCoupon() bool {
	return c.CouponID != nil && c.CouponCode != ""
}

// FindItem returns the line item for productID, or nil.
func (c *Cart) FindItem(productID int64) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// CartItem is one product+quantity line owned exclusively by its cart.
// Price and Category are captured at add time so coupon checks and totals
// do not depend on later catalog edits.
type CartItem struct {
	ID            int64     `gorm:"primaryKey" json:"id,string"`
	CartID        int64     `gorm:"index:idx_cart_product,unique" json:"cart_id,string"`
	ProductID     int64     `gorm:"index:idx_cart_product,unique" json:"product_id,string"`
	Quantity      int       `gorm:"default:1" json:"quantity"`
	Price         float64   `json:"price"`
	DiscountPrice *float64  `json:"discount_price,omitempty"`
	Category      string    `gorm:"size:32" json:"category"`
	AddedAt       time.Time `json:"added_at"`
}

func (CartItem) TableName() string {
	return "mart_cart_item"
}

// EffectivePrice returns the line's per-unit charge.
func (ci *CartItem) EffectivePrice() float64 {
	if ci.DiscountPrice != nil && *ci.DiscountPrice > 0 {
		return *ci.DiscountPrice
	}
	return ci.Price
}

// CartSavedItem is a saved-for-later entry; it carries no quantity.
type CartSavedItem struct {
	ID            int64     `gorm:"primaryKey" json:"id,string"`
	CartID        int64     `gorm:"index:idx_cart_saved,unique" json:"cart_id,string"`
	ProductID     int64     `gorm:"index:idx_cart_saved,unique" json:"product_id,string"`
	OriginalPrice float64   `json:"original_price"`
	SavedAt       time.Time `json:"saved_at"`
}

func (CartSavedItem) TableName() string {
	return "mart_cart_saved_item"
}
