package respond

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"response-guard/internal/common/logger"
	"response-guard/internal/contract"
	"response-guard/internal/response"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestApp(t *testing.T, routes func(*Responder) []Route) (*fiber.App, *contract.Registry, int) {
	t.Helper()
	reg := contract.NewRegistry(nil)
	builder := response.NewBuilder(response.NewJSONProtocol(), reg, logger.NewTestLogger(t))
	app := fiber.New()
	n := Register(app, routes(New(builder)), reg)
	return app, reg, n
}

func doRequest(t *testing.T, app *fiber.App, method, path string) (int, string, map[string]interface{}) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	return resp.StatusCode, resp.Header.Get(fiber.HeaderContentType), body
}

func TestRegister_DeclaresContractsAndBindsHandlerID(t *testing.T) {
	var seen string
	app, reg, n := createTestApp(t, func(r *Responder) []Route {
		return []Route{
			{
				Method: fiber.MethodGet, Path: "/count", Name: "count",
				Doc: "@require_type {\"n\":0}",
				Handler: func(c *fiber.Ctx) error {
					seen = HandlerID(c)
					return r.Success(c, "", fiber.Map{"n": "one"})
				},
			},
			{
				Method: fiber.MethodGet, Path: "/free", Name: "free",
				Handler: func(c *fiber.Ctx) error {
					return r.Success(c, "", "anything")
				},
			},
		}
	})

	assert.Equal(t, 1, n)
	assert.Equal(t, 1, reg.Len())

	status, contentType, body := doRequest(t, app, fiber.MethodGet, "/count")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "count", seen)
	assert.Contains(t, contentType, "application/json")
	assert.Equal(t, float64(600), body["code"])
	assert.Equal(t, "", body["msg"])
	assert.Equal(t, map[string]interface{}{
		"key":   "return_type_err",
		"value": "expected n type number, got string",
	}, body["data"])

	_, _, body = doRequest(t, app, fiber.MethodGet, "/free")
	assert.Equal(t, float64(200), body["code"])
	assert.Equal(t, "anything", body["data"])
}

func TestResponder_Failed(t *testing.T) {
	app, _, _ := createTestApp(t, func(r *Responder) []Route {
		return []Route{{
			Method: fiber.MethodGet, Path: "/fail", Name: "fail",
			Doc: "@require_type {\"n\":0}",
			Handler: func(c *fiber.Ctx) error {
				return r.Failed(c, 102, "careful", nil)
			},
		}}
	})

	status, _, body := doRequest(t, app, fiber.MethodGet, "/fail")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(102), body["code"])
	assert.Equal(t, "careful", body["msg"])
	assert.Equal(t, []interface{}{}, body["data"])
}

func TestResponder_SuccessWithCode(t *testing.T) {
	app, _, _ := createTestApp(t, func(r *Responder) []Route {
		return []Route{{
			Method: fiber.MethodPost, Path: "/made", Name: "made",
			Doc: "@require_type {\"id\":0}",
			Handler: func(c *fiber.Ctx) error {
				return r.SuccessWithCode(c, 201, "created", fiber.Map{"id": 9})
			},
		}}
	})

	_, _, body := doRequest(t, app, fiber.MethodPost, "/made")
	assert.Equal(t, float64(201), body["code"])
	assert.Equal(t, map[string]interface{}{"id": float64(9)}, body["data"])
}

func TestHandlerID_OutsideRoute(t *testing.T) {
	app := fiber.New()
	var id = "unset"
	app.Get("/raw", func(c *fiber.Ctx) error {
		id = HandlerID(c)
		return c.SendStatus(fiber.StatusNoContent)
	})

	_, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/raw", nil))
	require.NoError(t, err)
	assert.Equal(t, "", id)
}
