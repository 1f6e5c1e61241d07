package adminapi

import (
	"github.com/labstack/echo/v4"

	"github.com/croplink/agrimart/internal/webserver"
)

// Settings reads the runtime toggles stored in the settings table.
type Settings interface {
	GetSettingsStringValue(category, key string) string
	GetSettingsBoolValue(category, key string) bool
}

func registerSettingRoutes() {
	webserver.PubGET("/settings/storefront", getStorefrontSettings)
}

func getStorefrontSettings(c echo.Context) error {
	return ok(c, storefrontView(settings))
}

// storefrontView is the public slice of the settings table: display
// constants the storefront needs before a user logs in.
func storefrontView(s Settings) map[string]interface{} {
	return map[string]interface{}{
		"currency_symbol": s.GetSettingsStringValue("commerce", "CurrencySymbol"),
		"support_email":   s.GetSettingsStringValue("commerce", "SupportEmail"),
	}
}
