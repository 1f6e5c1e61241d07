package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/guonaihong/gout"
	"github.com/pkg/errors"
)

// Current is the subset of the upstream weather payload the advisory
// surfaces care about.
type Current struct {
	TempC     float64 `json:"temp_c"`
	Humidity  int     `json:"humidity"`
	Condition string  `json:"condition"`
	RainMM    float64 `json:"rain_mm"`
}

// Client fetches district weather from the configured provider. Lookups are
// best-effort context for recommendations; callers treat failures as
// non-fatal.
type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		timeout: 5 * time.Second,
	}
}

func (c *Client) Enabled() bool {
	return c.baseURL != "" && c.apiKey != ""
}

// CurrentFor fetches current weather for a district.
func (c *Client) CurrentFor(ctx context.Context, state, district string) (*Current, error) {
	if !c.Enabled() {
		return nil, errors.New("weather provider not configured")
	}

	var resp struct {
		Current Current `json:"current"`
	}
	err := gout.GET(c.baseURL + "/v1/current.json").
		WithContext(ctx).
		SetTimeout(c.timeout).
		SetQuery(gout.H{
			"key": c.apiKey,
			"q":   fmt.Sprintf("%s,%s", district, state),
		}).
		BindJSON(&resp).
		Do()
	if err != nil {
		return nil, errors.Wrap(err, "weather request failed")
	}
	return &resp.Current, nil
}
