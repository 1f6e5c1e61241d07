package order

import (
	"context"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/croplink/agrimart/internal/cart"
	"github.com/croplink/agrimart/internal/catalog"
	"github.com/croplink/agrimart/internal/coupon"
	"github.com/croplink/agrimart/internal/domain"
	"github.com/croplink/agrimart/pkg/common"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Event topics published on the application bus.
const (
	TopicOrderCreated       = "order:created"
	TopicOrderStatusChanged = "order:status"
)

// CheckoutInput carries everything checkout needs beyond the cart itself.
type CheckoutInput struct {
	UserID          int64
	ShippingAddress domain.Address
	BillingAddress  domain.Address
	PaymentMethod   string
	Notes           string
}

// Service converts carts into immutable order snapshots and drives the
// order lifecycle afterwards. All multi-row writes happen inside one gorm
// transaction per operation.
type Service struct {
	db               *gorm.DB
	bus              EventBus.Bus
	returnWindowDays int
	now              func() time.Time
}

func NewService(db *gorm.DB, bus EventBus.Bus, returnWindowDays int) *Service {
	return &Service{
		db:               db,
		bus:              bus,
		returnWindowDays: returnWindowDays,
		now:              time.Now,
	}
}

// Checkout snapshots the user's cart into a new order. Within a single
// transaction it decrements stock conditionally, consumes the applied
// coupon's usage exactly once, without ever exceeding its limits, and
// converts the cart. Two concurrent checkouts racing on the last coupon use
// or the last stock unit cannot both succeed.
func (s *Service) Checkout(ctx context.Context, in CheckoutInput) (*domain.Order, error) {
	var created *domain.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := cart.LockForCheckout(tx, in.UserID)
		if err != nil {
			return err
		}
		if len(c.Items) == 0 {
			return ErrEmptyCart
		}

		for _, item := range c.Items {
			if err := catalog.DecrementStock(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		now := s.now()
		o := &domain.Order{
			ID:              common.UUIDint64(),
			OrderNumber:     common.NextOrderNumber(),
			UserID:          in.UserID,
			Subtotal:        c.Subtotal,
			DiscountAmount:  c.DiscountAmount,
			TaxAmount:       c.TaxAmount,
			ShippingAmount:  c.ShippingAmount,
			Total:           c.Total,
			CouponCode:      c.CouponCode,
			CouponID:        c.CouponID,
			ShippingAddress: in.ShippingAddress,
			BillingAddress:  in.BillingAddress,
			PaymentMethod:   in.PaymentMethod,
			PaymentStatus:   domain.PaymentStatusPending,
			Status:          domain.OrderStatusPending,
			Notes:           in.Notes,
			CreatedAt:       now,
		}

		names, err := productNames(tx, c.Items)
		if err != nil {
			return err
		}
		for _, item := range c.Items {
			o.Items = append(o.Items, domain.OrderItem{
				ID:            common.UUIDint64(),
				OrderID:       o.ID,
				ProductID:     item.ProductID,
				Name:          names[item.ProductID],
				Category:      item.Category,
				Quantity:      item.Quantity,
				Price:         item.Price,
				DiscountPrice: item.DiscountPrice,
				FinalPrice:    common.Round2(item.EffectivePrice() * float64(item.Quantity)),
			})
		}

		if c.HasCoupon() {
			var cpn domain.Coupon
			if err := tx.First(&cpn, *c.CouponID).Error; err != nil {
				return err
			}
			// The cart may be holding a code that was disabled or expired
			// since it was applied; the stored discount must not survive that.
			if verdict := coupon.ValidateActive(&cpn, now); verdict != nil {
				return verdict
			}
			if err := coupon.ApplyUsage(tx, &cpn, in.UserID, o.ID); err != nil {
				return err
			}
		}

		if err := tx.Create(o).Error; err != nil {
			return err
		}
		if err := appendTimeline(tx, o.ID, domain.OrderStatusPending, "order placed", in.UserID, now); err != nil {
			return err
		}
		if err := cart.MarkConverted(tx, c, now); err != nil {
			return err
		}

		created = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("order created",
		zap.String("order_number", created.OrderNumber),
		zap.Int64("user_id", in.UserID),
		zap.Float64("total", created.Total))
	s.bus.Publish(TopicOrderCreated, created)
	return created, nil
}

// UpdateStatus moves an order along the lifecycle, appending a timeline
// entry. Rejects anything the state machine forbids.
func (s *Service) UpdateStatus(ctx context.Context, orderID int64, newStatus, note string, actor int64) (*domain.Order, error) {
	var updated *domain.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		o, err := lockOrder(tx, orderID)
		if err != nil {
			return err
		}
		if !CanTransition(o.Status, newStatus) {
			return ErrInvalidTransition
		}

		now := s.now()
		updates := map[string]interface{}{"status": newStatus, "updated_at": now}
		switch newStatus {
		case domain.OrderStatusDelivered:
			updates["delivered_at"] = now
		case domain.OrderStatusCancelled:
			updates["cancelled_at"] = now
		case domain.OrderStatusRefunded:
			updates["payment_status"] = domain.PaymentStatusRefunded
			updates["refund_amount"] = o.Total
		}
		if err := tx.Model(&domain.Order{}).Where("id = ?", o.ID).Updates(updates).Error; err != nil {
			return err
		}
		if err := appendTimeline(tx, o.ID, newStatus, note, actor, now); err != nil {
			return err
		}

		if newStatus == domain.OrderStatusCancelled || newStatus == domain.OrderStatusReturned {
			for _, item := range o.Items {
				if err := catalog.RestoreStock(tx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}

		o.Status = newStatus
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.bus.Publish(TopicOrderStatusChanged, updated)
	return updated, nil
}

// Cancel is the customer-facing cancellation path.
func (s *Service) Cancel(ctx context.Context, orderID, userID int64, reason string) (*domain.Order, error) {
	var cancelled *domain.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		o, err := lockOrder(tx, orderID)
		if err != nil {
			return err
		}
		if o.UserID != userID {
			return ErrNotFound
		}
		if !o.CanBeCancelled() {
			return ErrCancelNotAllowed
		}

		now := s.now()
		err = tx.Model(&domain.Order{}).Where("id = ?", o.ID).Updates(map[string]interface{}{
			"status":        domain.OrderStatusCancelled,
			"cancelled_at":  now,
			"cancel_reason": reason,
		}).Error
		if err != nil {
			return err
		}
		if err := appendTimeline(tx, o.ID, domain.OrderStatusCancelled, reason, userID, now); err != nil {
			return err
		}
		for _, item := range o.Items {
			if err := catalog.RestoreStock(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		o.Status = domain.OrderStatusCancelled
		cancelled = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.bus.Publish(TopicOrderStatusChanged, cancelled)
	return cancelled, nil
}

// RequestReturn opens a return request for a delivered order inside the
// return window. A second request for the same order is rejected.
func (s *Service) RequestReturn(ctx context.Context, orderID, userID int64, reason string) (*domain.Order, error) {
	var updated *domain.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		o, err := lockOrder(tx, orderID)
		if err != nil {
			return err
		}
		if o.UserID != userID {
			return ErrNotFound
		}
		if !o.CanBeReturned(s.now(), s.returnWindowDays) {
			return ErrReturnNotAllowed
		}

		now := s.now()
		err = tx.Model(&domain.Order{}).Where("id = ?", o.ID).Updates(map[string]interface{}{
			"return_requested": true,
			"return_reason":    reason,
			"return_status":    domain.ReturnStatusRequested,
			"return_asked_at":  now,
		}).Error
		if err != nil {
			return err
		}
		o.ReturnRequested = true
		o.ReturnStatus = domain.ReturnStatusRequested
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ResolveReturn approves or rejects a pending return request; approval
// moves the order to returned, restoring stock via UpdateStatus.
func (s *Service) ResolveReturn(ctx context.Context, orderID int64, approve bool, actor int64) (*domain.Order, error) {
	o, err := s.getPendingReturn(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !approve {
		err := s.db.WithContext(ctx).Model(&domain.Order{}).Where("id = ?", o.ID).
			Update("return_status", domain.ReturnStatusRejected).Error
		if err != nil {
			return nil, err
		}
		o.ReturnStatus = domain.ReturnStatusRejected
		return o, nil
	}

	if err := s.db.WithContext(ctx).Model(&domain.Order{}).Where("id = ?", o.ID).
		Update("return_status", domain.ReturnStatusApproved).Error; err != nil {
		return nil, err
	}
	return s.UpdateStatus(ctx, orderID, domain.OrderStatusReturned, "return approved", actor)
}

func (s *Service) getPendingReturn(ctx context.Context, orderID int64) (*domain.Order, error) {
	var o domain.Order
	err := s.db.WithContext(ctx).First(&o, orderID).Error
	if err != nil {
		return nil, ErrNotFound
	}
	if !o.ReturnRequested || o.ReturnStatus != domain.ReturnStatusRequested {
		return nil, ErrReturnNotAllowed
	}
	return &o, nil
}

// MarkPaid records a successful payment and auto-confirms a pending order.
func (s *Service) MarkPaid(ctx context.Context, orderID int64, txnID string) (*domain.Order, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		o, err := lockOrder(tx, orderID)
		if err != nil {
			return err
		}
		now := s.now()
		err = tx.Model(&domain.Order{}).Where("id = ?", o.ID).Updates(map[string]interface{}{
			"payment_status": domain.PaymentStatusPaid,
			"payment_txn_id": txnID,
			"paid_at":        now,
		}).Error
		if err != nil {
			return err
		}
		if o.Status == domain.OrderStatusPending {
			if err := tx.Model(&domain.Order{}).Where("id = ?", o.ID).
				Update("status", domain.OrderStatusConfirmed).Error; err != nil {
				return err
			}
			return appendTimeline(tx, o.ID, domain.OrderStatusConfirmed, "payment received", 0, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewGormRepository(s.db).GetByID(ctx, orderID)
}

func appendTimeline(tx *gorm.DB, orderID int64, status, note string, actor int64, at time.Time) error {
	return tx.Create(&domain.OrderTimeline{
		ID:        common.UUIDint64(),
		OrderID:   orderID,
		Status:    status,
		Note:      note,
		Actor:     actor,
		CreatedAt: at,
	}).Error
}

func productNames(tx *gorm.DB, items []domain.CartItem) (map[int64]string, error) {
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	var products []domain.Product
	if err := tx.Select("id", "name").Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}
	return names, nil
}
