// Package respond binds fiber routes to response contracts and writes
// {code,msg,data} envelopes.
package respond

import (
	"response-guard/internal/contract"

	"github.com/gofiber/fiber/v2"
)

const handlerIDKey = "handler_id"

// Route is one entry of a route table. Doc is the handler's documentation;
// a line starting with the contract tag declares the response shape.
type Route struct {
	Method  string
	Path    string
	Name    string
	Doc     string
	Handler fiber.Handler
}

// Register mounts routes on router and declares each route's contract under
// its Name. It returns the number of routes carrying a usable contract.
func Register(router fiber.Router, routes []Route, contracts *contract.Registry) int {
	declared := 0
	for _, r := range routes {
		if contracts.Declare(r.Name, r.Doc) {
			declared++
		}
		router.Add(r.Method, r.Path, bind(r.Name), r.Handler)
	}
	return declared
}

func bind(name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(handlerIDKey, name)
		return c.Next()
	}
}

// HandlerID returns the name of the route serving c, or "" outside a
// registered route.
func HandlerID(c *fiber.Ctx) string {
	id, _ := c.Locals(handlerIDKey).(string)
	return id
}
