package domain

import "time"

const (
	OrderStatusPending        = "pending"
	OrderStatusConfirmed      = "confirmed"
	OrderStatusProcessing     = "processing"
	OrderStatusPacked         = "packed"
	OrderStatusShipped        = "shipped"
	OrderStatusOutForDelivery = "out-for-delivery"
	OrderStatusDelivered      = "delivered"
	OrderStatusCancelled      = "cancelled"
	OrderStatusReturned       = "returned"
	OrderStatusRefunded       = "refunded"
)

const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

const (
	ReturnStatusRequested = "requested"
	ReturnStatusApproved  = "approved"
	ReturnStatusRejected  = "rejected"
	ReturnStatusCompleted = "completed"
)

// Address is embedded twice on Order for shipping and billing.
type Address struct {
	Name     string `gorm:"size:50" json:"name"`
	Phone    string `gorm:"size:16" json:"phone"`
	Address  string `gorm:"size:200" json:"address"`
	Village  string `gorm:"size:100" json:"village"`
	District string `gorm:"size:50" json:"district"`
	State    string `gorm:"size:50" json:"state"`
	Pincode  string `gorm:"size:10" json:"pincode"`
	Landmark string `gorm:"size:100" json:"landmark"`
}

// Order is an immutable snapshot of a checked-out cart. Items, pricing and
// addresses are fixed at creation; only status, tracking, payment,
// cancellation and return sub-records mutate afterwards.
type Order struct {
	ID              int64           `gorm:"primaryKey" json:"id,string"`
	OrderNumber     string          `gorm:"uniqueIndex;size:32" json:"order_number"`
	UserID          int64           `gorm:"index" json:"user_id,string"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
	Timeline        []OrderTimeline `gorm:"foreignKey:OrderID" json:"timeline"`
	Subtotal        float64         `json:"subtotal"`
	DiscountAmount  float64         `gorm:"default:0" json:"discount_amount"`
	TaxAmount       float64         `gorm:"default:0" json:"tax_amount"`
	ShippingAmount  float64         `gorm:"default:0" json:"shipping_amount"`
	Total           float64         `json:"total"`
	CouponCode      string          `gorm:"size:20" json:"coupon_code"`
	CouponID        *int64          `json:"coupon_id,string,omitempty"`
	ShippingAddress Address         `gorm:"embedded;embeddedPrefix:ship_" json:"shipping_address"`
	BillingAddress  Address         `gorm:"embedded;embeddedPrefix:bill_" json:"billing_address"`
	PaymentMethod   string          `gorm:"size:20" json:"payment_method"` // cod|upi|wallet|razorpay|stripe
	PaymentStatus   string          `gorm:"size:20;index;default:'pending'" json:"payment_status"`
	PaymentTxnID    string          `gorm:"size:64" json:"payment_txn_id"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	RefundAmount    float64         `gorm:"default:0" json:"refund_amount"`
	Status          string          `gorm:"size:20;index;default:'pending'" json:"status"`
	Notes           string          `gorm:"size:500" json:"notes"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
	CancelledAt     *time.Time      `json:"cancelled_at,omitempty"`
	CancelReason    string          `gorm:"size:200" json:"cancel_reason"`
	ReturnRequested bool            `gorm:"default:false" json:"return_requested"`
	ReturnReason    string          `gorm:"size:200" json:"return_reason"`
	ReturnStatus    string          `gorm:"size:20" json:"return_status"`
	ReturnAskedAt   *time.Time      `json:"return_asked_at,omitempty"`
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (Order) TableName() string {
	return "mart_order"
}

// CanBeCancelled is true only while the order has not entered fulfilment.
func (o *Order) CanBeCancelled() bool {
	switch o.Status {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing:
		return true
	}
	return false
}

// CanBeReturned is true for delivered orders within the return window and
// with no prior return request. The boundary is inclusive: a return at
// exactly windowDays after delivery is still accepted.
func (o *Order) CanBeReturned(now time.Time, windowDays int) bool {
	if o.Status != OrderStatusDelivered || o.DeliveredAt == nil || o.ReturnRequested {
		return false
	}
	return !now.After(o.DeliveredAt.Add(time.Duration(windowDays) * 24 * time.Hour))
}

// RecomputeTotal re-derives the charged amount from the snapshot for
// consistency checks. It never rewrites the stored pricing.
func (o *Order) RecomputeTotal() float64 {
	subtotal := 0.0
	for _, it := range o.Items {
		subtotal += it.EffectivePrice() * float64(it.Quantity)
	}
	total := subtotal - o.DiscountAmount + o.TaxAmount + o.ShippingAmount
	if total < 0 {
		total = 0
	}
	return total
}

// OrderItem is a frozen copy of one cart line at checkout time.
type OrderItem struct {
	ID            int64    `gorm:"primaryKey" json:"id,string"`
	OrderID       int64    `gorm:"index" json:"order_id,string"`
	ProductID     int64    `gorm:"index" json:"product_id,string"`
	Name          string   `gorm:"size:200" json:"name"`
	Category      string   `gorm:"size:32" json:"category"`
	Quantity      int      `json:"quantity"`
	Price         float64  `json:"price"`
	DiscountPrice *float64 `json:"discount_price,omitempty"`
	FinalPrice    float64  `json:"final_price"` // EffectivePrice * Quantity
}

func (OrderItem) TableName() string {
	return "mart_order_item"
}

func (oi *OrderItem) EffectivePrice() float64 {
	if oi.DiscountPrice != nil && *oi.DiscountPrice > 0 {
		return *oi.DiscountPrice
	}
	return oi.Price
}

// OrderTimeline entries are append-only; one per status transition.
type OrderTimeline struct {
	ID        int64     `gorm:"primaryKey" json:"id,string"`
	OrderID   int64     `gorm:"index" json:"order_id,string"`
	Status    string    `gorm:"size:20" json:"status"`
	Note      string    `gorm:"size:200" json:"note"`
	Actor     int64     `json:"actor,string"` // user or admin id, 0 for system
	CreatedAt time.Time `json:"created_at"`
}

func (OrderTimeline) TableName() string {
	return "mart_order_timeline"
}
