package metrics

import (
	"errors"
	"strconv"
	"time"

	"response-guard/internal/common/logger"

	"github.com/gofiber/fiber/v2"
)

// unmatchedPath labels requests no route answered.
const unmatchedPath = "unmatched"

// HTTPMetricsMiddleware collects HTTP request metrics and logs slow requests.
// Errors from the chain are handed to the app's ErrorHandler here so the
// recorded status is the one sent to the client.
func HTTPMetricsMiddleware(m *Metrics, log logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()

		chainErr := c.Next()

		path := routePath(c, chainErr)
		if chainErr != nil {
			if err := c.App().Config().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		duration := time.Since(start)
		method := c.Method()
		statusCode := strconv.Itoa(c.Response().StatusCode())

		m.RecordHTTPRequest(method, path, statusCode, duration)

		if duration > time.Second {
			log.Warn("Slow HTTP request", map[string]interface{}{
				"method":        method,
				"path":          path,
				"status_code":   statusCode,
				"duration":      duration,
				"response_size": len(c.Response().Body()),
			})
		}

		return nil
	}
}

func routePath(c *fiber.Ctx, err error) string {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) && fiberErr.Code == fiber.StatusNotFound {
		return unmatchedPath
	}
	if path := c.Route().Path; path != "" {
		return path
	}
	return unmatchedPath
}
