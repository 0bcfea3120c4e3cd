package api

import (
	"errors"

	"response-guard/internal/api/respond"
	apperrors "response-guard/internal/common/errors"
	"response-guard/internal/response"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler turns any error escaping a handler into a failure envelope.
// Contract violations never get here: they are answered by the builder.
func ErrorHandler(h *apperrors.Handler, responder *respond.Responder) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			if fiberErr.Code != fiber.StatusNotFound {
				c.Status(fiberErr.Code)
				return responder.Failed(c, apperrors.EnvelopeFailed, fiberErr.Message, nil)
			}
			err = apperrors.NewNotFoundError("route", c.Method()+" "+c.Path())
		}

		stdErr := h.Resolve(err, map[string]interface{}{
			"method":     c.Method(),
			"path":       c.Path(),
			"handler":    respond.HandlerID(c),
			"request_id": response.RequestIDFrom(c.UserContext()),
		})

		c.Status(apperrors.HTTPStatus(stdErr))
		return responder.Failed(c, apperrors.EnvelopeCode(stdErr), stdErr.Message, failureData(stdErr))
	}
}

func failureData(stdErr *apperrors.StandardError) interface{} {
	if len(stdErr.Metadata) == 0 {
		return nil
	}
	return stdErr.Metadata
}
