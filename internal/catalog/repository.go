package catalog

import (
	"context"
	"errors"

	"github.com/croplink/agrimart/internal/domain"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("product not found")
	// ErrInsufficientStock is returned when a conditional stock decrement
	// finds fewer units than requested.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Repository is the catalog lookup contract consumed by cart and checkout.
type Repository interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	GetActiveProduct(ctx context.Context, id int64) (*domain.Product, error)
}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepository) GetActiveProduct(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := r.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsActive() {
		return nil, ErrNotFound
	}
	return p, nil
}

// DecrementStock atomically takes qty units off a product, failing when the
// remaining stock is insufficient. Runs inside the checkout transaction so
// concurrent orders cannot oversell.
func DecrementStock(tx *gorm.DB, productID int64, qty int) error {
	res := tx.Model(&domain.Product{}).
		Where("id = ? and stock >= ?", productID, qty).
		Updates(map[string]interface{}{
			"stock": gorm.Expr("stock - ?", qty),
			"sales": gorm.Expr("sales + ?", qty),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// RestoreStock returns units to a product after a cancellation.
func RestoreStock(tx *gorm.DB, productID int64, qty int) error {
	return tx.Model(&domain.Product{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{
			"stock": gorm.Expr("stock + ?", qty),
			"sales": gorm.Expr("sales - ?", qty),
		}).Error
}
