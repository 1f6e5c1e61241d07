package adminapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/asaskevich/EventBus"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/croplink/agrimart/config"
	"github.com/croplink/agrimart/internal/advisory"
	"github.com/croplink/agrimart/internal/cart"
	"github.com/croplink/agrimart/internal/catalog"
	"github.com/croplink/agrimart/internal/coupon"
	"github.com/croplink/agrimart/internal/order"
	"github.com/croplink/agrimart/internal/weather"
)

var (
	appConfig   *config.AppConfig
	settings    Settings
	cartSvc     *cart.Service
	orderSvc    *order.Service
	orderRepo   order.Repository
	advisorySvc *advisory.Service
	couponRepo  coupon.Repository
	catalogRepo catalog.Repository
	weatherCli  *weather.Client
)

// Init wires the handlers to the shared services and registers every route
// on the web server. Must be called after webserver.Init.
func Init(cfg *config.AppConfig, db *gorm.DB, bus EventBus.Bus, st Settings) {
	appConfig = cfg
	settings = st
	catalogRepo = catalog.NewGormRepository(db)
	couponRepo = coupon.NewGormRepository(db)
	orderRepo = order.NewGormRepository(db)
	cartSvc = cart.NewService(db, catalogRepo, couponRepo, cart.Pricing{
		TaxRate:               cfg.Commerce.TaxRate,
		FreeShippingThreshold: cfg.Commerce.FreeShippingThreshold,
		FlatShippingFee:       cfg.Commerce.FlatShippingFee,
	})
	orderSvc = order.NewService(db, bus, cfg.Commerce.ReturnWindowDays)
	advisorySvc = advisory.NewService(db)
	weatherCli = weather.NewClient(cfg.Weather.ApiUrl, cfg.Weather.ApiKey)

	registerAuthRoutes()
	registerProductRoutes()
	registerReviewRoutes()
	registerCartRoutes()
	registerCouponRoutes()
	registerOrderRoutes()
	registerAdvisoryRoutes()
	registerSettingRoutes()
	registerMetricRoutes()
}

// GetDB returns the request-scoped gorm handle injected by the web server.
func GetDB(c echo.Context) *gorm.DB {
	return c.Get("db").(*gorm.DB)
}

type apiResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type apiError struct {
	Code    int         `json:"code"`
	ErrCode string      `json:"error"`
	Message string      `json:"message"`
	Detail  interface{} `json:"detail,omitempty"`
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, apiResponse{Code: 0, Data: data})
}

func fail(c echo.Context, status int, code, message string, detail interface{}) error {
	return c.JSON(status, apiError{Code: status, ErrCode: code, Message: message, Detail: detail})
}

func paged(c echo.Context, rows interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"code":      0,
		"data":      rows,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

func parsePagination(c echo.Context) (page, pageSize int) {
	page, pageSize = 1, 20
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	if ps, err := strconv.Atoi(c.QueryParam("pageSize")); err == nil && ps > 0 && ps <= 500 {
		pageSize = ps
	}
	return page, pageSize
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

// failFor translates service-layer sentinel errors into consistent API
// error payloads so every handler maps failures the same way.
func failFor(c echo.Context, err error) error {
	var inel *coupon.IneligibleError
	switch {
	case errors.As(err, &inel):
		code := "COUPON_NOT_ELIGIBLE"
		if inel.Invalid() {
			code = "COUPON_INVALID"
		}
		return fail(c, http.StatusUnprocessableEntity, code, inel.Error(), inel.Reason)
	case errors.Is(err, catalog.ErrNotFound):
		return fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", nil)
	case errors.Is(err, catalog.ErrInsufficientStock):
		return fail(c, http.StatusConflict, "INSUFFICIENT_STOCK", "Not enough stock for requested quantity", nil)
	case errors.Is(err, cart.ErrItemNotFound):
		return fail(c, http.StatusNotFound, "ITEM_NOT_FOUND", "Item not found in cart", nil)
	case errors.Is(err, cart.ErrInvalidQuantity):
		return fail(c, http.StatusBadRequest, "INVALID_QUANTITY", "Quantity must be at least 1", nil)
	case errors.Is(err, cart.ErrCouponNotApplicable):
		return fail(c, http.StatusUnprocessableEntity, "COUPON_NOT_APPLICABLE", "Coupon yields no discount for this cart", nil)
	case errors.Is(err, coupon.ErrNotFound):
		return fail(c, http.StatusNotFound, "COUPON_NOT_FOUND", "Coupon not found", nil)
	case errors.Is(err, coupon.ErrLimitExhausted):
		return fail(c, http.StatusConflict, "COUPON_EXHAUSTED", "Coupon usage limit reached", nil)
	case errors.Is(err, order.ErrNotFound):
		return fail(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found", nil)
	case errors.Is(err, order.ErrEmptyCart):
		return fail(c, http.StatusBadRequest, "EMPTY_CART", "Cart is empty", nil)
	case errors.Is(err, order.ErrInvalidTransition):
		return fail(c, http.StatusConflict, "INVALID_TRANSITION", "Order status transition not allowed", nil)
	case errors.Is(err, order.ErrCancelNotAllowed):
		return fail(c, http.StatusConflict, "CANCEL_NOT_ALLOWED", "Order can no longer be cancelled", nil)
	case errors.Is(err, order.ErrReturnNotAllowed):
		return fail(c, http.StatusConflict, "RETURN_NOT_ALLOWED", "Order is not eligible for return", nil)
	default:
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected server error", err.Error())
	}
}
