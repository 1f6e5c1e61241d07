package adminapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/croplink/agrimart/internal/domain"
	"github.com/croplink/agrimart/internal/webserver"
	"github.com/croplink/agrimart/pkg/common"
)

type reviewPayload struct {
	Rating  int                   `json:"rating"`
	Title   string                `json:"title"`
	Comment string                `json:"comment"`
	Aspects *domain.ReviewAspects `json:"aspects"`
}

type moderatePayload struct {
	Approve bool   `json:"approve"`
	Notes   string `json:"notes"`
}

func registerReviewRoutes() {
	webserver.PubGET("/products/:id/reviews", listProductReviews)
	webserver.ApiPOST("/products/:id/reviews", createReview)
	webserver.ApiDELETE("/reviews/:id", deleteReview)
	webserver.ApiPOST("/reviews/:id/moderate", moderateReview)
}

func listProductReviews(c echo.Context) error {
	productID, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	page, pageSize := parsePagination(c)

	db := GetDB(c).Model(&domain.Review{}).
		Where("product_id = ? and status = ?", productID, domain.ReviewStatusApproved)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query reviews", err.Error())
	}
	var rows []domain.Review
	err = db.Order("helpful_yes DESC, created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query reviews", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

// createReview accepts a review only from buyers with a delivered order
// containing the product; the review is tied to that order so one order
// yields at most one review per product.
func createReview(c echo.Context) error {
	productID, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var payload reviewPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse review", err.Error())
	}
	payload.Title = strings.TrimSpace(payload.Title)
	payload.Comment = strings.TrimSpace(payload.Comment)
	if !domain.ValidRating(payload.Rating) {
		return fail(c, http.StatusBadRequest, "INVALID_RATING", "Rating must be between 1 and 5", nil)
	}
	if payload.Title == "" || payload.Comment == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Title and comment are required", nil)
	}

	db := GetDB(c)
	userID := webserver.CurrentUserID(c)

	var p domain.Product
	if err := db.First(&p, productID).Error; err != nil {
		return fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", nil)
	}

	orderID, purchased := deliveredOrderWith(db, userID, productID)
	if !purchased {
		return fail(c, http.StatusForbidden, "NOT_PURCHASED", "You can only review products you have purchased", nil)
	}

	var dup domain.Review
	err = db.Where("product_id = ? and user_id = ? and order_id = ?", productID, userID, orderID).
		First(&dup).Error
	if err == nil {
		return fail(c, http.StatusConflict, "DUPLICATE_REVIEW", "You have already reviewed this product for this order", nil)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query reviews", err.Error())
	}

	now := time.Now()
	review := domain.Review{
		ID:        common.UUIDint64(),
		ProductID: productID,
		UserID:    userID,
		OrderID:   orderID,
		Rating:    payload.Rating,
		Title:     payload.Title,
		Comment:   payload.Comment,
		Status:    domain.ReviewStatusPending,
		Verified:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if payload.Aspects != nil {
		review.Aspects = common.ToJSON(payload.Aspects)
	}
	if err := db.Create(&review).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create review", err.Error())
	}
	zap.L().Info("review submitted",
		zap.Int64("product_id", productID),
		zap.Int64("user_id", userID),
		zap.Int("rating", payload.Rating))
	return ok(c, review)
}

// deleteReview withdraws the author's own pending review; admins can remove
// any review, which re-derives the product rating when it was approved.
func deleteReview(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid review ID", nil)
	}
	db := GetDB(c)

	var review domain.Review
	if err := db.First(&review, id).Error; err != nil {
		return fail(c, http.StatusNotFound, "REVIEW_NOT_FOUND", "Review not found", nil)
	}
	isAdmin := webserver.CurrentUserIsAdmin(c)
	if !isAdmin && !review.CanModify(webserver.CurrentUserID(c)) {
		return fail(c, http.StatusForbidden, "FORBIDDEN", "Only pending reviews can be withdrawn by their author", nil)
	}

	if err := db.Delete(&domain.Review{}, review.ID).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete review", err.Error())
	}
	if review.Status == domain.ReviewStatusApproved {
		recalcProductRating(db, review.ProductID)
	}
	return ok(c, map[string]interface{}{"id": id})
}

// moderateReview approves or rejects a pending review. Approval folds the
// rating into the product's stored average and count.
func moderateReview(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid review ID", nil)
	}
	var payload moderatePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse moderation", err.Error())
	}

	db := GetDB(c)
	var review domain.Review
	if err := db.First(&review, id).Error; err != nil {
		return fail(c, http.StatusNotFound, "REVIEW_NOT_FOUND", "Review not found", nil)
	}
	if review.Status != domain.ReviewStatusPending {
		return fail(c, http.StatusConflict, "ALREADY_MODERATED", "Review has already been moderated", review.Status)
	}

	status := domain.ReviewStatusRejected
	if payload.Approve {
		status = domain.ReviewStatusApproved
	}
	now := time.Now()
	err = db.Model(&domain.Review{}).Where("id = ?", review.ID).Updates(map[string]interface{}{
		"status":           status,
		"moderated_by":     webserver.CurrentUserID(c),
		"moderated_at":     now,
		"moderation_notes": payload.Notes,
		"updated_at":       now,
	}).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to moderate review", err.Error())
	}

	if payload.Approve {
		recalcProductRating(db, review.ProductID)
	}
	review.Status = status
	return ok(c, review)
}

// deliveredOrderWith finds one delivered order of the user that contains the
// product, the precondition for a verified review.
func deliveredOrderWith(db *gorm.DB, userID, productID int64) (int64, bool) {
	var row struct{ OrderID int64 }
	err := db.Table("mart_order_item").
		Select("mart_order_item.order_id").
		Joins("join mart_order on mart_order.id = mart_order_item.order_id").
		Where("mart_order.user_id = ? and mart_order.status = ? and mart_order_item.product_id = ?",
			userID, domain.OrderStatusDelivered, productID).
		Limit(1).
		Scan(&row).Error
	if err != nil || row.OrderID == 0 {
		return 0, false
	}
	return row.OrderID, true
}

// recalcProductRating re-derives the stored average and count from the
// approved reviews.
func recalcProductRating(db *gorm.DB, productID int64) {
	var ratings []int
	err := db.Model(&domain.Review{}).
		Where("product_id = ? and status = ?", productID, domain.ReviewStatusApproved).
		Pluck("rating", &ratings).Error
	if err != nil {
		zap.L().Error("failed to load ratings", zap.Int64("product_id", productID), zap.Error(err))
		return
	}
	summary := domain.SummarizeRatings(ratings)
	err = db.Model(&domain.Product{}).Where("id = ?", productID).Updates(map[string]interface{}{
		"rating_avg":   summary.Average,
		"rating_count": summary.Count,
	}).Error
	if err != nil {
		zap.L().Error("failed to update product rating", zap.Int64("product_id", productID), zap.Error(err))
	}
}
