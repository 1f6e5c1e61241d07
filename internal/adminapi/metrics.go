package adminapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/croplink/agrimart/internal/webserver"
	"github.com/croplink/agrimart/pkg/metrics"
)

// Gauges the monitor jobs and bus listeners record; the query endpoint only
// serves these names.
var metricNames = map[string]bool{
	"system_cpuuse":         true,
	"system_memuse":         true,
	"agrimart_cpuuse":       true,
	"agrimart_memuse":       true,
	"mart_last_order_total": true,
}

func registerMetricRoutes() {
	webserver.ApiGET("/metrics/:name", getMetricRange)
}

func getMetricRange(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return err
	}
	name := c.Param("name")
	if !metricNames[name] {
		return fail(c, http.StatusNotFound, "METRIC_NOT_FOUND", "Unknown metric name", name)
	}

	hours := 24
	if h, err := strconv.Atoi(c.QueryParam("hours")); err == nil && h > 0 && h <= 24*7 {
		hours = h
	}
	end := time.Now().Unix()
	start := end - int64(hours)*3600

	points, err := metrics.Range(name, start, end)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "METRICS_ERROR", "Failed to query metric", err.Error())
	}
	return ok(c, map[string]interface{}{"name": name, "points": points})
}
