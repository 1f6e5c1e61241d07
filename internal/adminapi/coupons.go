package adminapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/croplink/agrimart/internal/domain"
	"github.com/croplink/agrimart/internal/webserver"
	"github.com/croplink/agrimart/pkg/common"
)

type couponAdminPayload struct {
	Code              string                `json:"code"`
	Name              string                `json:"name"`
	Description       string                `json:"description"`
	DiscountType      string                `json:"discount_type"`
	Value             float64               `json:"value"`
	MaxDiscount       *float64              `json:"max_discount"`
	MinOrderValue     float64               `json:"min_order_value"`
	UsageLimitTotal   *int                  `json:"usage_limit_total"`
	UsageLimitPerUser int                   `json:"usage_limit_per_user"`
	StartAt           time.Time             `json:"start_at"`
	EndAt             time.Time             `json:"end_at"`
	UserTypes         []string              `json:"user_types"`
	SpecificUsers     []int64               `json:"specific_users"`
	ApplicableCats    []string              `json:"applicable_categories"`
	ExcludedCats      []string              `json:"excluded_categories"`
	ApplicableProds   []int64               `json:"applicable_products"`
	ExcludedProds     []int64               `json:"excluded_products"`
	Regions           []domain.Region       `json:"regions"`
	SeasonMonths      []int                 `json:"season_months"`
	FirstOrderOnly    bool                  `json:"first_order_only"`
	BuyXGetY          []domain.BuyXGetYRule `json:"buy_x_get_y"`
	Status            string                `json:"status"`
}

var couponTypes = []string{
	domain.CouponTypePercentage,
	domain.CouponTypeFixed,
	domain.CouponTypeFreeShipping,
	domain.CouponTypeBuyXGetY,
}

func registerCouponRoutes() {
	webserver.PubGET("/coupons/active", listActiveCoupons)
	webserver.ApiGET("/coupons", listCoupons)
	webserver.ApiGET("/coupons/:id", getCoupon)
	webserver.ApiPOST("/coupons", createCoupon)
	webserver.ApiPUT("/coupons/:id", updateCoupon)
	webserver.ApiDELETE("/coupons/:id", disableCoupon)
}

// listActiveCoupons exposes currently redeemable coupons for storefront
// banners. Eligibility is still enforced at apply time.
func listActiveCoupons(c echo.Context) error {
	coupons, err := couponRepo.ListActive(c.Request().Context(), time.Now(), 50)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query coupons", err.Error())
	}
	return ok(c, coupons)
}

func listCoupons(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return err
	}
	page, pageSize := parsePagination(c)

	db := GetDB(c).Model(&domain.Coupon{})
	if status := c.QueryParam("status"); status != "" {
		db = db.Where("status = ?", status)
	}
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		db = db.Where("code ILIKE ? OR name ILIKE ?", "%"+q+"%", "%"+q+"%")
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query coupons", err.Error())
	}
	var rows []domain.Coupon
	if err := db.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query coupons", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

func getCoupon(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid coupon ID", nil)
	}
	cpn, err := couponRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		return failFor(c, err)
	}
	return ok(c, cpn)
}

func createCoupon(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return err
	}
	var payload couponAdminPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse coupon", err.Error())
	}
	cpn, errResp := couponFromPayload(c, &payload, nil)
	if errResp != nil {
		return errResp
	}
	cpn.CreatedBy = webserver.CurrentUserID(c)

	var dup domain.Coupon
	if err := GetDB(c).Where("code = ?", cpn.Code).First(&dup).Error; err == nil {
		return fail(c, http.StatusConflict, "DUPLICATE_CODE", "A coupon with this code already exists", nil)
	}
	if err := GetDB(c).Create(cpn).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create coupon", err.Error())
	}
	return ok(c, cpn)
}

func updateCoupon(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid coupon ID", nil)
	}
	var existing domain.Coupon
	if err := GetDB(c).Where("id = ?", id).First(&existing).Error; err != nil {
		return fail(c, http.StatusNotFound, "COUPON_NOT_FOUND", "Coupon not found", nil)
	}

	var payload couponAdminPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse coupon", err.Error())
	}
	cpn, errResp := couponFromPayload(c, &payload, &existing)
	if errResp != nil {
		return errResp
	}
	if err := GetDB(c).Save(cpn).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update coupon", err.Error())
	}
	return ok(c, cpn)
}

// disableCoupon flips the coupon to disabled; usage history stays intact.
func disableCoupon(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid coupon ID", nil)
	}
	result := GetDB(c).Model(&domain.Coupon{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": common.DISABLED, "updated_at": time.Now()})
	if result.Error != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to disable coupon", result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return fail(c, http.StatusNotFound, "COUPON_NOT_FOUND", "Coupon not found", nil)
	}
	return ok(c, map[string]interface{}{"id": id, "status": common.DISABLED})
}

func couponFromPayload(c echo.Context, payload *couponAdminPayload, existing *domain.Coupon) (*domain.Coupon, error) {
	code := common.NormalizeCode(payload.Code)
	if code == "" {
		return nil, fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Coupon code is required", nil)
	}
	if !common.InStrings(couponTypes, payload.DiscountType) {
		return nil, fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unknown discount type", payload.DiscountType)
	}
	if payload.DiscountType == domain.CouponTypePercentage && (payload.Value <= 0 || payload.Value > 100) {
		return nil, fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Percentage value must be in (0, 100]", nil)
	}
	if payload.DiscountType == domain.CouponTypeFixed && payload.Value <= 0 {
		return nil, fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Fixed discount value must be positive", nil)
	}
	if payload.DiscountType == domain.CouponTypeBuyXGetY && len(payload.BuyXGetY) == 0 {
		return nil, fail(c, http.StatusBadRequest, "INVALID_REQUEST", "buy_x_get_y rules are required for this type", nil)
	}
	if !payload.EndAt.After(payload.StartAt) {
		return nil, fail(c, http.StatusBadRequest, "INVALID_REQUEST", "end_at must be after start_at", nil)
	}

	now := time.Now()
	cpn := existing
	if cpn == nil {
		cpn = &domain.Coupon{ID: common.UUIDint64(), Status: common.ENABLED, CreatedAt: now}
	}
	cpn.Code = code
	cpn.Name = strings.TrimSpace(payload.Name)
	cpn.Description = payload.Description
	cpn.DiscountType = payload.DiscountType
	cpn.Value = payload.Value
	cpn.MaxDiscount = payload.MaxDiscount
	cpn.MinOrderValue = payload.MinOrderValue
	cpn.UsageLimitTotal = payload.UsageLimitTotal
	if payload.UsageLimitPerUser > 0 {
		cpn.UsageLimitPerUser = payload.UsageLimitPerUser
	} else if cpn.UsageLimitPerUser == 0 {
		cpn.UsageLimitPerUser = 1
	}
	cpn.StartAt = payload.StartAt
	cpn.EndAt = payload.EndAt
	cpn.UserTypes = common.ToJSON(payload.UserTypes)
	cpn.SpecificUsers = common.ToJSON(payload.SpecificUsers)
	cpn.ApplicableCats = common.ToJSON(payload.ApplicableCats)
	cpn.ExcludedCats = common.ToJSON(payload.ExcludedCats)
	cpn.ApplicableProds = common.ToJSON(payload.ApplicableProds)
	cpn.ExcludedProds = common.ToJSON(payload.ExcludedProds)
	cpn.Regions = common.ToJSON(payload.Regions)
	cpn.SeasonMonths = common.ToJSON(payload.SeasonMonths)
	cpn.FirstOrderOnly = payload.FirstOrderOnly
	cpn.BuyXGetY = common.ToJSON(payload.BuyXGetY)
	if payload.Status != "" {
		cpn.Status = payload.Status
	}
	cpn.UpdatedAt = now
	return cpn, nil
}
