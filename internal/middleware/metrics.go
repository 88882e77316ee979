package middleware

import (
	"strconv"
	"time"

	"github.com/fruitctl/fruitctl/internal/obs"
	"github.com/gofiber/fiber/v2"
)

// MetricsMiddleware records request counts and latencies by route pattern.
func MetricsMiddleware(m *obs.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		m.HTTPInFlight.Inc()
		start := time.Now()

		err := c.Next()

		m.HTTPInFlight.Dec()
		status := c.Response().StatusCode()
		if err != nil {
			// the error handler has not written the response yet
			status = statusOf(err)
		}
		labels := []string{c.Method(), c.Route().Path, strconv.Itoa(status)}
		m.HTTPRequestsTotal.WithLabelValues(labels...).Inc()
		m.HTTPRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		return err
	}
}
