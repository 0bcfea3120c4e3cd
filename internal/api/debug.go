package api

import (
	"context"

	"response-guard/internal/api/respond"
	apperrors "response-guard/internal/common/errors"
	"response-guard/internal/contract"
	"response-guard/internal/response"

	"github.com/gofiber/fiber/v2"
)

const (
	listContractsDoc = `ListContracts reports every declared contract and whether checking is on.
@require_type {"enabled":true,"contracts":[]}`

	toggleContractsDoc = `ToggleContracts switches contract checking at runtime.
@require_type {"enabled":true}`

	listViolationsDoc = `ListViolations returns recent violations of one handler, or the handlers that have any.
@require_type {"handler":"","violations":[]}`
)

// ViolationReader reads recorded violations back.
type ViolationReader interface {
	Recent(ctx context.Context, handlerID string, limit int) ([]response.Violation, error)
	Handlers(ctx context.Context) ([]string, error)
}

type DebugHandler struct {
	contracts  *contract.Registry
	builder    *response.Builder
	violations ViolationReader
	respond    *respond.Responder
}

func NewDebugHandler(contracts *contract.Registry, builder *response.Builder, violations ViolationReader, responder *respond.Responder) *DebugHandler {
	return &DebugHandler{
		contracts:  contracts,
		builder:    builder,
		violations: violations,
		respond:    responder,
	}
}

func (h *DebugHandler) Routes() []respond.Route {
	return []respond.Route{
		{Method: fiber.MethodGet, Path: "/contracts", Name: "debug.contracts", Doc: listContractsDoc, Handler: h.ListContracts},
		{Method: fiber.MethodPut, Path: "/contracts/enabled", Name: "debug.contracts.toggle", Doc: toggleContractsDoc, Handler: h.ToggleContracts},
		{Method: fiber.MethodGet, Path: "/contracts/violations", Name: "debug.violations", Doc: listViolationsDoc, Handler: h.ListViolations},
	}
}

func (h *DebugHandler) ListContracts(c *fiber.Ctx) error {
	return h.respond.Success(c, "", fiber.Map{
		"enabled":   h.builder.Enabled(),
		"contracts": h.contracts.Entries(),
	})
}

type toggleRequest struct {
	Enabled *bool `json:"enabled"`
}

func (h *DebugHandler) ToggleContracts(c *fiber.Ctx) error {
	var request toggleRequest
	if err := c.BodyParser(&request); err != nil || request.Enabled == nil {
		return apperrors.NewValidationFailedError("body must be {\"enabled\": true|false}", map[string]interface{}{"enabled": "required"})
	}

	h.builder.SetEnabled(*request.Enabled)
	return h.respond.Success(c, "", fiber.Map{"enabled": h.builder.Enabled()})
}

func (h *DebugHandler) ListViolations(c *fiber.Ctx) error {
	if h.violations == nil {
		return h.respond.Failed(c, apperrors.EnvelopeFailedTip, "violation recording is disabled", nil)
	}

	ctx := c.UserContext()
	handlerID := c.Query("handler")
	if handlerID == "" {
		ids, err := h.violations.Handlers(ctx)
		if err != nil {
			return apperrors.NewStoreUnavailableError(err)
		}
		if ids == nil {
			ids = []string{}
		}
		return h.respond.Success(c, "", fiber.Map{"handler": "", "violations": ids})
	}

	items, err := h.violations.Recent(ctx, handlerID, c.QueryInt("limit", 20))
	if err != nil {
		return apperrors.NewStoreUnavailableError(err)
	}
	return h.respond.Success(c, "", fiber.Map{"handler": handlerID, "violations": items})
}
