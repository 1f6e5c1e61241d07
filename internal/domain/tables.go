package domain

var Tables = []interface{}{
	// System
	&SysConfig{},
	// Catalog & accounts
	&Product{},
	&Review{},
	&User{},
	// Cart
	&Cart{},
	&CartItem{},
	&CartSavedItem{},
	// Coupons
	&Coupon{},
	&CouponUsage{},
	// Orders
	&Order{},
	&OrderItem{},
	&OrderTimeline{},
	// Advisory
	&CropAdvisory{},
}
