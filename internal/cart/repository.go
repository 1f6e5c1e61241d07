package cart

import (
	"context"
	"errors"
	"time"

	"github.com/croplink/agrimart/internal/domain"
	"github.com/croplink/agrimart/pkg/common"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository loads and persists carts. Mutations go through the service,
// which locks the cart row per user inside a transaction.
type Repository interface {
	GetByUserID(ctx context.Context, userID int64) (*domain.Cart, error)
	GetOrCreate(ctx context.Context, userID int64) (*domain.Cart, error)
}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Cart, error) {
	var c domain.Cart
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("SavedItems").
		Where("user_id = ?", userID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormRepository) GetOrCreate(ctx context.Context, userID int64) (*domain.Cart, error) {
	c, err := r.GetByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c = &domain.Cart{
			ID:           common.UUIDint64(),
			UserID:       userID,
			Status:       domain.CartStatusActive,
			LastModified: time.Now(),
		}
		if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
			return nil, err
		}
		return c, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// lockCart loads the user's cart with a row lock, creating it when missing.
// Holding the lock for the duration of the transaction serializes all
// mutations for one user, so concurrent add/update requests cannot lose
// updates.
func lockCart(tx *gorm.DB, userID int64) (*domain.Cart, error) {
	var c domain.Cart
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c = domain.Cart{
			ID:           common.UUIDint64(),
			UserID:       userID,
			Status:       domain.CartStatusActive,
			LastModified: time.Now(),
		}
		if err := tx.Create(&c).Error; err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	if err := tx.Where("cart_id = ?", c.ID).Order("added_at").Find(&c.Items).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("cart_id = ?", c.ID).Order("saved_at").Find(&c.SavedItems).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// LockForCheckout loads and locks the user's cart for the checkout
// transaction, so checkout serializes with ordinary cart mutations.
func LockForCheckout(tx *gorm.DB, userID int64) (*domain.Cart, error) {
	return lockCart(tx, userID)
}

// MarkConverted empties the cart after a successful checkout and flags it
// converted. Runs inside the checkout transaction.
func MarkConverted(tx *gorm.DB, c *domain.Cart, now time.Time) error {
	if err := tx.Where("cart_id = ?", c.ID).Delete(&domain.CartItem{}).Error; err != nil {
		return err
	}
	c.Items = nil
	clearCoupon(c)
	c.Subtotal, c.DiscountAmount, c.TaxAmount, c.ShippingAmount, c.Total = 0, 0, 0, 0, 0
	c.Status = domain.CartStatusConverted
	c.LastModified = now
	return saveTotals(tx, c)
}

// saveTotals writes the recomputed amount fields and coupon state back.
func saveTotals(tx *gorm.DB, c *domain.Cart) error {
	return tx.Model(&domain.Cart{}).Where("id = ?", c.ID).
		Updates(map[string]interface{}{
			"coupon_code":      c.CouponCode,
			"coupon_id":        c.CouponID,
			"coupon_discount":  c.CouponDiscount,
			"coupon_free_ship": c.CouponFreeShip,
			"subtotal":         c.Subtotal,
			"discount_amount":  c.DiscountAmount,
			"tax_amount":       c.TaxAmount,
			"shipping_amount":  c.ShippingAmount,
			"total":            c.Total,
			"status":           c.Status,
			"last_modified":    c.LastModified,
		}).Error
}
