package coupon

import (
	"context"
	"errors"
	"time"

	"github.com/croplink/agrimart/internal/domain"
	"github.com/croplink/agrimart/pkg/common"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when no active coupon matches a code.
	ErrNotFound = errors.New("coupon not found")
	// ErrLimitExhausted is returned by ApplyUsage when a concurrent checkout
	// consumed the last allowed use first.
	ErrLimitExhausted = errors.New("coupon usage limit exhausted")
)

// Repository is the coupon store contract the cart and order services use.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*domain.Coupon, error)
	GetByID(ctx context.Context, id int64) (*domain.Coupon, error)
	UserUsage(ctx context.Context, couponID, userID int64) (int, error)
	ListActive(ctx context.Context, now time.Time, limit int) ([]domain.Coupon, error)
}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) FindByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	var c domain.Coupon
	err := r.db.WithContext(ctx).
		Where("code = ?", common.NormalizeCode(code)).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormRepository) GetByID(ctx context.Context, id int64) (*domain.Coupon, error) {
	var c domain.Coupon
	err := r.db.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UserUsage returns how many times the user has successfully redeemed the
// coupon across completed orders.
func (r *GormRepository) UserUsage(ctx context.Context, couponID, userID int64) (int, error) {
	var usage domain.CouponUsage
	err := r.db.WithContext(ctx).
		Where("coupon_id = ? and user_id = ?", couponID, userID).
		First(&usage).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return usage.UseCount, nil
}

func (r *GormRepository) ListActive(ctx context.Context, now time.Time, limit int) ([]domain.Coupon, error) {
	var coupons []domain.Coupon
	err := r.db.WithContext(ctx).
		Where("status = ? and start_at <= ? and end_at > ?", common.ENABLED, now, now).
		Order("value DESC").
		Limit(limit).
		Find(&coupons).Error
	return coupons, err
}

// ApplyUsage increments the coupon's global and per-user counters, exactly
// once per order. Both increments are conditional updates so that two
// concurrent checkouts cannot both pass a limit; it must run inside the
// checkout transaction.
func ApplyUsage(tx *gorm.DB, c *domain.Coupon, userID, orderID int64) error {
	// Global counter: increment only while below the total limit.
	q := tx.Model(&domain.Coupon{}).Where("id = ?", c.ID)
	if c.UsageLimitTotal != nil {
		q = q.Where("usage_total < ?", *c.UsageLimitTotal)
	}
	res := q.Update("usage_total", gorm.Expr("usage_total + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrLimitExhausted
	}

	// Per-user counter: insert the row if missing, then increment below cap.
	var usage domain.CouponUsage
	err := tx.Where("coupon_id = ? and user_id = ?", c.ID, userID).First(&usage).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		usage = domain.CouponUsage{
			ID:       common.UUIDint64(),
			CouponID: c.ID,
			UserID:   userID,
		}
		if err := tx.Create(&usage).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	var orderIDs []int64
	_ = common.FromJSON(usage.OrderIDs, &orderIDs)
	orderIDs = append(orderIDs, orderID)

	res = tx.Model(&domain.CouponUsage{}).
		Where("id = ? and use_count < ?", usage.ID, c.UsageLimitPerUser).
		Updates(map[string]interface{}{
			"use_count": gorm.Expr("use_count + 1"),
			"order_ids": common.ToJSON(orderIDs),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrLimitExhausted
	}
	return nil
}
