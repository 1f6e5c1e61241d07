package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/croplink/agrimart/internal/webserver"
)

type cartItemPayload struct {
	ProductID int64 `json:"product_id,string"`
	Quantity  int   `json:"quantity"`
}

type couponPayload struct {
	Code string `json:"code"`
}

func registerCartRoutes() {
	webserver.ApiGET("/cart", getCart)
	webserver.ApiDELETE("/cart", clearCart)
	webserver.ApiPOST("/cart/items", addCartItem)
	webserver.ApiPUT("/cart/items/:productId", updateCartItem)
	webserver.ApiDELETE("/cart/items/:productId", removeCartItem)
	webserver.ApiPOST("/cart/items/:productId/save", saveCartItemForLater)
	webserver.ApiPOST("/cart/saved/:productId/move", moveSavedItemToCart)
	webserver.ApiPOST("/cart/coupon", applyCartCoupon)
	webserver.ApiDELETE("/cart/coupon", removeCartCoupon)
}

func getCart(c echo.Context) error {
	crt, err := cartSvc.Get(c.Request().Context(), webserver.CurrentUserID(c))
	if err != nil {
		return failFor(c, err)
	}
	return ok(c, crt)
}

func clearCart(c echo.Context) error {
	crt, err := cartSvc.Clear(c.Request().Context(), webserver.CurrentUserID(c))
	if err != nil {
		return failFor(c, err)
	}
	return ok(c, crt)
}

func addCartItem(c echo.Context) error {
	var payload cartItemPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse cart item", err.Error())
	}
	crt, err := cartSvc.AddItem(c.Request().Context(), webserver.CurrentUserID(c), payload.ProductID, payload.Quantity)
	if err != nil {
		return failFor(c, err)
	}
	return ok(c, crt)
}

func updateCartItem(c echo.Context) error {
	productID, err := parseIDParam(c, "productId")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var payload cartItemPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse cart item", err.Error())
	}
	crt, err := cartSvc.UpdateQuantity(c.Request().Context(), webserver.CurrentUserID(c), productID, payload.Quantity)
	if err != nil {
		return failFor(c, err)
	}
	return ok(c, crt)
}

func removeCartItem(c echo.Context) error {
	productID, err := parseIDParam(c, "productId")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	crt, err := cartSvc.RemoveItem(c.Request().Context(), webserver.CurrentUserID(c), productID)
	if err != nil {
		return failFor(c, err)
	}
	return ok(c, crt)
}

func saveCartItemForLater(c echo.Context) error {
	productID, err := parseIDParam(c, "productId")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	crt, err := cartSvc.SaveForLater(c.Request().Context(), webserver.CurrentUserID(c), productID)
	if err != nil {
		return failFor(c, err)
	}
	return ok(c, crt)
}

func moveSavedItemToCart(c echo.Context) error {
	productID, err := parseIDParam(c, "productId")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	crt, err := cartSvc.MoveToCart(c.Request().Context(), webserver.CurrentUserID(c), productID)
	if err != nil {
		return failFor(c, err)
	}
	return ok(c, crt)
}

func applyCartCoupon(c echo.Context) error {
	var payload couponPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse coupon code", err.Error())
	}
	if payload.Code == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Coupon code is required", nil)
	}
	crt, err := cartSvc.ApplyCoupon(c.Request().Context(), webserver.CurrentUserID(c), payload.Code)
	if err != nil {
		return failFor(c, err)
	}
	return ok(c, crt)
}

func removeCartCoupon(c echo.Context) error {
	crt, err := cartSvc.RemoveCoupon(c.Request().Context(), webserver.CurrentUserID(c))
	if err != nil {
		return failFor(c, err)
	}
	return ok(c, crt)
}
