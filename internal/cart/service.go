package cart

import (
	"context"
	"errors"
	"time"

	"github.com/croplink/agrimart/internal/catalog"
	"github.com/croplink/agrimart/internal/coupon"
	"github.com/croplink/agrimart/internal/domain"
	"github.com/croplink/agrimart/pkg/common"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrItemNotFound        = errors.New("item not found in cart")
	ErrInvalidQuantity     = errors.New("quantity must be at least 1")
	ErrCouponNotApplicable = errors.New("coupon is not applicable for current cart")
)

// Service owns all cart mutations. Every operation loads the cart with a
// row lock inside one transaction, applies the change, recomputes totals
// and persists the result, so per-user mutations are fully serialized.
type Service struct {
	db      *gorm.DB
	catalog catalog.Repository
	coupons coupon.Repository
	pricing Pricing
	now     func() time.Time
}

func NewService(db *gorm.DB, cat catalog.Repository, coupons coupon.Repository, pricing Pricing) *Service {
	return &Service{
		db:      db,
		catalog: cat,
		coupons: coupons,
		pricing: pricing,
		now:     time.Now,
	}
}

func (s *Service) mutate(ctx context.Context, userID int64, fn func(tx *gorm.DB, c *domain.Cart) error) (*domain.Cart, error) {
	var out *domain.Cart
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := lockCart(tx, userID)
		if err != nil {
			return err
		}
		if err := fn(tx, c); err != nil {
			return err
		}
		Finalize(c, s.pricing, s.now())
		if err := saveTotals(tx, c); err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns the user's cart, creating an empty one on first access.
// Totals are persisted on every mutation so no recompute happens here.
func (s *Service) Get(ctx context.Context, userID int64) (*domain.Cart, error) {
	return NewGormRepository(s.db).GetOrCreate(ctx, userID)
}

// AddItem puts qty units of a product into the cart, incrementing the
// existing line when the product is already present. The product's current
// prices and category are captured on the new line.
func (s *Service) AddItem(ctx context.Context, userID, productID int64, qty int) (*domain.Cart, error) {
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}
	p, err := s.catalog.GetActiveProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, userID, func(tx *gorm.DB, c *domain.Cart) error {
		if item := c.FindItem(productID); item != nil {
			item.Quantity += qty
			return tx.Model(&domain.CartItem{}).Where("id = ?", item.ID).
				Update("quantity", item.Quantity).Error
		}
		item := domain.CartItem{
			ID:            common.UUIDint64(),
			CartID:        c.ID,
			ProductID:     p.ID,
			Quantity:      qty,
			Price:         p.Price,
			DiscountPrice: p.DiscountPrice,
			Category:      p.Category,
			AddedAt:       s.now(),
		}
		c.Items = append(c.Items, item)
		return tx.Create(&item).Error
	})
}

// UpdateQuantity sets a line's quantity; zero or negative removes the line.
func (s *Service) UpdateQuantity(ctx context.Context, userID, productID int64, qty int) (*domain.Cart, error) {
	return s.mutate(ctx, userID, func(tx *gorm.DB, c *domain.Cart) error {
		item := c.FindItem(productID)
		if item == nil {
			return ErrItemNotFound
		}
		if qty <= 0 {
			c.Items = withoutItem(c.Items, productID)
			return tx.Delete(&domain.CartItem{}, item.ID).Error
		}
		item.Quantity = qty
		return tx.Model(&domain.CartItem{}).Where("id = ?", item.ID).
			Update("quantity", qty).Error
	})
}

// RemoveItem drops a line from the cart; removing an absent product is a
// no-op, matching the storefront behaviour.
func (s *Service) RemoveItem(ctx context.Context, userID, productID int64) (*domain.Cart, error) {
	return s.mutate(ctx, userID, func(tx *gorm.DB, c *domain.Cart) error {
		item := c.FindItem(productID)
		if item == nil {
			return nil
		}
		c.Items = withoutItem(c.Items, productID)
		return tx.Delete(&domain.CartItem{}, item.ID).Error
	})
}

// Clear empties the cart and drops any applied coupon.
func (s *Service) Clear(ctx context.Context, userID int64) (*domain.Cart, error) {
	return s.mutate(ctx, userID, func(tx *gorm.DB, c *domain.Cart) error {
		if err := tx.Where("cart_id = ?", c.ID).Delete(&domain.CartItem{}).Error; err != nil {
			return err
		}
		c.Items = nil
		clearCoupon(c)
		return nil
	})
}

// ApplyCoupon validates the coupon against the user and the current cart,
// stores its computed discount and recomputes totals.
func (s *Service) ApplyCoupon(ctx context.Context, userID int64, code string) (*domain.Cart, error) {
	cpn, err := s.coupons.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, userID, func(tx *gorm.DB, c *domain.Cart) error {
		// Recompute against the coupon-free cart so the snapshot carries the
		// shipping fee the coupon could waive.
		clearCoupon(c)
		Finalize(c, s.pricing, s.now())

		user, err := s.userContext(tx, cpn, userID)
		if err != nil {
			return err
		}
		snap := snapshotOf(c, s.pricing)

		if verdict := coupon.Evaluate(cpn, user, snap, s.now()); verdict != nil {
			return verdict
		}
		discount := coupon.Discount(cpn, snap)
		if discount <= 0 {
			return ErrCouponNotApplicable
		}

		c.CouponCode = cpn.Code
		c.CouponID = &cpn.ID
		c.CouponDiscount = discount
		c.CouponFreeShip = cpn.DiscountType == domain.CouponTypeFreeShipping
		zap.L().Info("coupon applied to cart",
			zap.Int64("user_id", userID),
			zap.String("code", cpn.Code),
			zap.Float64("discount", discount))
		return nil
	})
}

// RemoveCoupon drops the applied coupon and restores pre-apply totals.
func (s *Service) RemoveCoupon(ctx context.Context, userID int64) (*domain.Cart, error) {
	return s.mutate(ctx, userID, func(tx *gorm.DB, c *domain.Cart) error {
		clearCoupon(c)
		return nil
	})
}

// SaveForLater moves a line into the saved list, dropping its quantity.
func (s *Service) SaveForLater(ctx context.Context, userID, productID int64) (*domain.Cart, error) {
	return s.mutate(ctx, userID, func(tx *gorm.DB, c *domain.Cart) error {
		item := c.FindItem(productID)
		if item == nil {
			return ErrItemNotFound
		}

		alreadySaved := false
		for _, sv := range c.SavedItems {
			if sv.ProductID == productID {
				alreadySaved = true
				break
			}
		}
		if !alreadySaved {
			saved := domain.CartSavedItem{
				ID:            common.UUIDint64(),
				CartID:        c.ID,
				ProductID:     productID,
				OriginalPrice: item.Price,
				SavedAt:       s.now(),
			}
			if err := tx.Create(&saved).Error; err != nil {
				return err
			}
			c.SavedItems = append(c.SavedItems, saved)
		}

		c.Items = withoutItem(c.Items, productID)
		return tx.Delete(&domain.CartItem{}, item.ID).Error
	})
}

// MoveToCart brings a saved item back as a quantity-1 line at its saved price.
func (s *Service) MoveToCart(ctx context.Context, userID, productID int64) (*domain.Cart, error) {
	p, err := s.catalog.GetActiveProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, userID, func(tx *gorm.DB, c *domain.Cart) error {
		savedIdx := -1
		for i, sv := range c.SavedItems {
			if sv.ProductID == productID {
				savedIdx = i
				break
			}
		}
		if savedIdx == -1 {
			return ErrItemNotFound
		}
		saved := c.SavedItems[savedIdx]

		if item := c.FindItem(productID); item != nil {
			item.Quantity++
			if err := tx.Model(&domain.CartItem{}).Where("id = ?", item.ID).
				Update("quantity", item.Quantity).Error; err != nil {
				return err
			}
		} else {
			line := domain.CartItem{
				ID:        common.UUIDint64(),
				CartID:    c.ID,
				ProductID: productID,
				Quantity:  1,
				Price:     saved.OriginalPrice,
				Category:  p.Category,
				AddedAt:   s.now(),
			}
			if err := tx.Create(&line).Error; err != nil {
				return err
			}
			c.Items = append(c.Items, line)
		}

		c.SavedItems = append(c.SavedItems[:savedIdx], c.SavedItems[savedIdx+1:]...)
		return tx.Delete(&domain.CartSavedItem{}, saved.ID).Error
	})
}

// userContext gathers the buyer facts the coupon engine checks.
func (s *Service) userContext(tx *gorm.DB, cpn *domain.Coupon, userID int64) (coupon.UserContext, error) {
	var user domain.User
	if err := tx.First(&user, userID).Error; err != nil {
		return coupon.UserContext{}, err
	}

	var orderCount int64
	if err := tx.Model(&domain.Order{}).
		Where("user_id = ? and status <> ?", userID, domain.OrderStatusCancelled).
		Count(&orderCount).Error; err != nil {
		return coupon.UserContext{}, err
	}

	var usage domain.CouponUsage
	usedCount := 0
	err := tx.Where("coupon_id = ? and user_id = ?", cpn.ID, userID).First(&usage).Error
	if err == nil {
		usedCount = usage.UseCount
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return coupon.UserContext{}, err
	}

	return coupon.UserContext{
		ID:         userID,
		IsNew:      orderCount == 0,
		State:      user.State,
		District:   user.District,
		OrderCount: orderCount,
		UsedCount:  usedCount,
	}, nil
}

// snapshotOf projects the cart for the coupon engine.
func snapshotOf(c *domain.Cart, p Pricing) coupon.CartSnapshot {
	snap := coupon.CartSnapshot{
		Subtotal: c.Subtotal,
		Shipping: ShippingFee(c.Subtotal, p),
	}
	for i := range c.Items {
		snap.Items = append(snap.Items, coupon.SnapshotItem{
			ProductID: c.Items[i].ProductID,
			Category:  c.Items[i].Category,
			Quantity:  c.Items[i].Quantity,
			UnitPrice: c.Items[i].EffectivePrice(),
		})
	}
	return snap
}

func clearCoupon(c *domain.Cart) {
	c.CouponCode = ""
	c.CouponID = nil
	c.CouponDiscount = 0
	c.CouponFreeShip = false
}

func withoutItem(items []domain.CartItem, productID int64) []domain.CartItem {
	out := items[:0]
	for _, it := range items {
		if it.ProductID != productID {
			out = append(out, it)
		}
	}
	return out
}
