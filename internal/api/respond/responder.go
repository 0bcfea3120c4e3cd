package respond

import (
	"response-guard/internal/response"

	"github.com/gofiber/fiber/v2"
)

// Responder writes envelopes built by a response.Builder.
type Responder struct {
	builder *response.Builder
}

func New(builder *response.Builder) *Responder {
	return &Responder{builder: builder}
}

// Success emits a code 200 envelope, checked against the route's contract.
func (r *Responder) Success(c *fiber.Ctx, msg string, data interface{}) error {
	return r.SuccessWithCode(c, fiber.StatusOK, msg, data)
}

func (r *Responder) SuccessWithCode(c *fiber.Ctx, code int, msg string, data interface{}) error {
	res, err := r.builder.Build(c.UserContext(), HandlerID(c), code, data, msg)
	if err != nil {
		return err
	}
	return r.write(c, res)
}

// Failed emits a failure envelope. Failures are never contract checked.
func (r *Responder) Failed(c *fiber.Ctx, code int, msg string, data interface{}) error {
	res, err := r.builder.BuildUnchecked(code, data, msg)
	if err != nil {
		return err
	}
	return r.write(c, res)
}

func (r *Responder) write(c *fiber.Ctx, res *response.Result) error {
	c.Set(fiber.HeaderContentType, r.builder.ContentType())
	return c.Send(res.Body)
}
