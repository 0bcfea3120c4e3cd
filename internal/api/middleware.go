package api

import (
	"response-guard/internal/common/config"
	apperrors "response-guard/internal/common/errors"
	"response-guard/internal/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// RequestID propagates or assigns a request id and stores it on the user
// context for violation reports.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.SetUserContext(response.WithRequestID(c.UserContext(), id))
		return c.Next()
	}
}

// ParamLimits rejects requests carrying too many query parameters, form
// fields or cookies.
func ParamLimits(limits config.RequestLimitsConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := &c.Context().Request

		if n := c.Context().QueryArgs().Len(); limits.MaxQueryParams > 0 && n > limits.MaxQueryParams {
			return apperrors.NewTooManyParametersError("query", n, limits.MaxQueryParams, apperrors.EnvelopeTooManyQuery)
		}
		if n := c.Context().PostArgs().Len(); limits.MaxFormParams > 0 && n > limits.MaxFormParams {
			return apperrors.NewTooManyParametersError("form", n, limits.MaxFormParams, apperrors.EnvelopeTooManyForm)
		}

		cookies := 0
		req.Header.VisitAllCookie(func(_, _ []byte) { cookies++ })
		if limits.MaxCookies > 0 && cookies > limits.MaxCookies {
			return apperrors.NewTooManyParametersError("cookie", cookies, limits.MaxCookies, apperrors.EnvelopeTooManyCookies)
		}

		return c.Next()
	}
}
