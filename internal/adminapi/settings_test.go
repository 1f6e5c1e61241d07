package adminapi

import (
	"context"
	"testing"

	"github.com/croplink/agrimart/internal/domain"
	"github.com/croplink/agrimart/internal/weather"
)

type stubSettings struct {
	strings map[string]string
	bools   map[string]bool
}

func (s stubSettings) GetSettingsStringValue(category, key string) string {
	return s.strings[category+"."+key]
}

func (s stubSettings) GetSettingsBoolValue(category, key string) bool {
	return s.bools[category+"."+key]
}

func TestStorefrontViewReadsSettings(t *testing.T) {
	s := stubSettings{strings: map[string]string{
		"commerce.CurrencySymbol": "₹",
		"commerce.SupportEmail":   "help@example.com",
	}}
	view := storefrontView(s)
	if view["currency_symbol"] != "₹" {
		t.Errorf("currency_symbol = %v, want ₹", view["currency_symbol"])
	}
	if view["support_email"] != "help@example.com" {
		t.Errorf("support_email = %v, want help@example.com", view["support_email"])
	}
}

func TestWeatherForHonorsEnrichSetting(t *testing.T) {
	weatherCli = weather.NewClient("", "")
	user := &domain.User{State: "Punjab", District: "Ludhiana"}

	off := stubSettings{bools: map[string]bool{"advisory.WeatherEnrichEnabled": false}}
	if got := weatherFor(context.Background(), off, user); got != nil {
		t.Errorf("weatherFor with setting off = %v, want nil", got)
	}

	// Setting on but provider unconfigured still yields no weather.
	on := stubSettings{bools: map[string]bool{"advisory.WeatherEnrichEnabled": true}}
	if got := weatherFor(context.Background(), on, user); got != nil {
		t.Errorf("weatherFor without provider = %v, want nil", got)
	}
}
