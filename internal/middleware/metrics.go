package middleware

import (
	"strconv"
	"time"

	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/metrics"
	"github.com/labstack/echo/v4"
)

// Metrics records request count and latency per route template.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil && !c.Response().Committed {
				status = StatusFor(err)
			}
			endpoint := c.Path()
			if endpoint == "" {
				endpoint = "unknown"
			}
			method := c.Request().Method

			metrics.RequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
			metrics.RequestDuration.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
