package adminapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/araddon/dateparse"
	"github.com/labstack/echo/v4"

	"github.com/croplink/agrimart/internal/domain"
	"github.com/croplink/agrimart/internal/order"
	"github.com/croplink/agrimart/internal/webserver"
)

type checkoutPayload struct {
	ShippingAddress domain.Address `json:"shipping_address"`
	BillingAddress  domain.Address `json:"billing_address"`
	PaymentMethod   string         `json:"payment_method"`
	Notes           string         `json:"notes"`
}

type statusPayload struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

type reasonPayload struct {
	Reason string `json:"reason"`
}

type resolvePayload struct {
	Approve bool `json:"approve"`
}

type paidPayload struct {
	TxnID string `json:"txn_id"`
}

func registerOrderRoutes() {
	webserver.ApiPOST("/orders/checkout", postCheckout)
	webserver.ApiGET("/orders", listOrders)
	webserver.ApiGET("/orders/stats", getOrderStats)
	webserver.ApiGET("/orders/export", exportOrders)
	webserver.ApiGET("/orders/:id", getOrder)
	webserver.ApiPOST("/orders/:id/cancel", cancelOrder)
	webserver.ApiPOST("/orders/:id/return", requestOrderReturn)
	webserver.ApiPUT("/orders/:id/status", updateOrderStatus)
	webserver.ApiPOST("/orders/:id/return/resolve", resolveOrderReturn)
	webserver.ApiPOST("/orders/:id/paid", markOrderPaid)
}

func postCheckout(c echo.Context) error {
	var payload checkoutPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse checkout request", err.Error())
	}
	if payload.ShippingAddress.Address == "" || payload.ShippingAddress.State == "" {
		return fail(c, http.StatusBadRequest, "INVALID_ADDRESS", "Shipping address and state are required", nil)
	}
	if payload.PaymentMethod == "" {
		payload.PaymentMethod = "cod"
	}

	ord, err := orderSvc.Checkout(c.Request().Context(), order.CheckoutInput{
		UserID:          webserver.CurrentUserID(c),
		ShippingAddress: payload.ShippingAddress,
		BillingAddress:  payload.BillingAddress,
		PaymentMethod:   payload.PaymentMethod,
		Notes:           payload.Notes,
	})
	if err != nil {
		return failFor(c, err)
	}
	return ok(c, ord)
}

// listOrders returns the caller's orders; admins may pass all=true to see
// every order with an optional status filter.
func listOrders(c echo.Context) error {
	page, pageSize := parsePagination(c)

	if c.QueryParam("all") == "true" && webserver.CurrentUserIsAdmin(c) {
		db := GetDB(c).Model(&domain.Order{})
		if status := c.QueryParam("status"); status != "" {
			db = db.Where("status = ?", status)
		}
		var total int64
		if err := db.Count(&total).Error; err != nil {
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
		}
		var rows []domain.Order
		if err := db.Preload("Items").Order("created_at DESC").
			Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
		}
		return paged(c, rows, total, page, pageSize)
	}

	rows, total, err := orderRepo.ListByUser(c.Request().Context(), webserver.CurrentUserID(c), page, pageSize)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

func getOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	ord, err := orderRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		return failFor(c, err)
	}
	if ord.UserID != webserver.CurrentUserID(c) && !webserver.CurrentUserIsAdmin(c) {
		return fail(c, http.StatusForbidden, "FORBIDDEN", "Not your order", nil)
	}
	return ok(c, ord)
}

func cancelOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	var payload reasonPayload
	_ = c.Bind(&payload)

	ord, err := orderSvc.Cancel(c.Request().Context(), id, webserver.CurrentUserID(c), payload.Reason)
	if err != nil {
		return failFor(c, err)
	}
	return ok(c, ord)
}

func requestOrderReturn(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	var payload reasonPayload
	if err := c.Bind(&payload); err != nil || payload.Reason == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Return reason is required", nil)
	}

	ord, err := orderSvc.RequestReturn(c.Request().Context(), id, webserver.CurrentUserID(c), payload.Reason)
	if err != nil {
		return failFor(c, err)
	}
	return ok(c, ord)
}

func updateOrderStatus(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	var payload statusPayload
	if err := c.Bind(&payload); err != nil || payload.Status == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Target status is required", nil)
	}

	ord, err := orderSvc.UpdateStatus(c.Request().Context(), id, payload.Status, payload.Note, webserver.CurrentUserID(c))
	if err != nil {
		return failFor(c, err)
	}
	return ok(c, ord)
}

func resolveOrderReturn(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	var payload resolvePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse resolution", err.Error())
	}

	ord, err := orderSvc.ResolveReturn(c.Request().Context(), id, payload.Approve, webserver.CurrentUserID(c))
	if err != nil {
		return failFor(c, err)
	}
	return ok(c, ord)
}

func markOrderPaid(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	var payload paidPayload
	_ = c.Bind(&payload)

	ord, err := orderSvc.MarkPaid(c.Request().Context(), id, payload.TxnID)
	if err != nil {
		return failFor(c, err)
	}
	return ok(c, ord)
}

// getOrderStats aggregates order counts and revenue for a date range.
// from/to accept any common date format; the default window is 30 days.
func getOrderStats(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return err
	}
	to := time.Now()
	from := to.AddDate(0, 0, -30)
	if v := c.QueryParam("from"); v != "" {
		t, err := dateparse.ParseAny(v)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_DATE", "Unable to parse from date", v)
		}
		from = t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := dateparse.ParseAny(v)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_DATE", "Unable to parse to date", v)
		}
		to = t
	}

	stats, err := orderSvc.Statistics(c.Request().Context(), from, to)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to aggregate orders", err.Error())
	}
	return ok(c, stats)
}

// exportOrders streams an xlsx workbook of orders in a date range.
func exportOrders(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return err
	}
	to := time.Now()
	from := to.AddDate(0, 0, -30)
	if v := c.QueryParam("from"); v != "" {
		if t, err := dateparse.ParseAny(v); err == nil {
			from = t
		}
	}
	if v := c.QueryParam("to"); v != "" {
		if t, err := dateparse.ParseAny(v); err == nil {
			to = t
		}
	}

	var rows []domain.Order
	if err := GetDB(c).Where("created_at BETWEEN ? AND ?", from, to).
		Order("created_at ASC").Limit(10000).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}

	xlsx := excelize.NewFile()
	headers := []string{"Order Number", "User ID", "Status", "Payment", "Subtotal", "Discount", "Tax", "Shipping", "Total", "Coupon", "State", "Created At"}
	cols := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L"}
	for i, h := range headers {
		xlsx.SetCellValue("Sheet1", cols[i]+"1", h)
	}
	for i, ord := range rows {
		r := fmt.Sprintf("%d", i+2)
		xlsx.SetCellValue("Sheet1", cols[0]+r, ord.OrderNumber)
		xlsx.SetCellValue("Sheet1", cols[1]+r, fmt.Sprintf("%d", ord.UserID))
		xlsx.SetCellValue("Sheet1", cols[2]+r, ord.Status)
		xlsx.SetCellValue("Sheet1", cols[3]+r, ord.PaymentStatus)
		xlsx.SetCellValue("Sheet1", cols[4]+r, ord.Subtotal)
		xlsx.SetCellValue("Sheet1", cols[5]+r, ord.DiscountAmount)
		xlsx.SetCellValue("Sheet1", cols[6]+r, ord.TaxAmount)
		xlsx.SetCellValue("Sheet1", cols[7]+r, ord.ShippingAmount)
		xlsx.SetCellValue("Sheet1", cols[8]+r, ord.Total)
		xlsx.SetCellValue("Sheet1", cols[9]+r, ord.CouponCode)
		xlsx.SetCellValue("Sheet1", cols[10]+r, ord.ShippingAddress.State)
		xlsx.SetCellValue("Sheet1", cols[11]+r, ord.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="orders.xlsx"`)
	c.Response().WriteHeader(http.StatusOK)
	return xlsx.Write(c.Response().Writer)
}
