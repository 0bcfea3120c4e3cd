package metrics

import (
	"errors"
	"net/http/httptest"
	"testing"

	"response-guard/internal/common/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ContractCounters(t *testing.T) {
	m := New()

	m.RecordContractCheck("issues.get", true)
	m.RecordContractCheck("issues.get", false)
	m.RecordContractCheck("issues.get", false)
	m.RecordContractViolation("issues.get", "type_mismatch")
	m.SetContractsDeclared(3)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.ContractChecksTotal.WithLabelValues("issues.get", "pass")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.ContractChecksTotal.WithLabelValues("issues.get", "fail")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ContractViolationsTotal.WithLabelValues("issues.get", "type_mismatch")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.ContractsDeclared))
}

func TestNew_IndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.RecordViolationDropped()

	assert.Equal(t, float64(1), testutil.ToFloat64(a.ViolationsDropped))
	assert.Equal(t, float64(0), testutil.ToFloat64(b.ViolationsDropped))
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	m := New()
	handled := 0
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			handled++
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				return c.Status(fiberErr.Code).SendString(fiberErr.Message)
			}
			return c.Status(fiber.StatusServiceUnavailable).SendString(err.Error())
		},
	})
	app.Use(HTTPMetricsMiddleware(m, logger.NewTestLogger(t)))
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		if c.Params("id") == "down" {
			return errors.New("store down")
		}
		return c.SendString("ok")
	})

	tests := []struct {
		path   string
		status int
	}{
		{"/items/1", fiber.StatusOK},
		{"/items/down", fiber.StatusServiceUnavailable},
		{"/missing/1", fiber.StatusNotFound},
		{"/missing/2", fiber.StatusNotFound},
	}
	for _, tt := range tests {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, tt.path, nil))
		require.NoError(t, err)
		assert.Equal(t, tt.status, resp.StatusCode, tt.path)
	}

	assert.Equal(t, 3, handled, "each error is handled once")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/items/:id", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/items/:id", "503")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 3, testutil.CollectAndCount(m.HTTPRequestsTotal))
}
