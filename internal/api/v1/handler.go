package v1

import (
	"response-guard/internal/api/respond"
	apperrors "response-guard/internal/common/errors"
	"response-guard/internal/common/logger"
	"response-guard/internal/common/validation"
	"response-guard/internal/service"

	"github.com/gofiber/fiber/v2"
)

const (
	listIssuesDoc = `ListIssues returns issues, newest last, optionally filtered by status.
@require_type {"issues":[],"total":0}`

	getIssueDoc = `GetIssue returns one issue with its assignee.
@require_type {"issue":{"id":0,"title":"","status":"","assignee":{"uid":0,"name":""},"labels":[],"created_at":""}}`

	createIssueDoc = `CreateIssue files a new issue.
@require_type {"id":0,"created_at":""}`

	listUsersDoc = `ListUsers returns every known user.`
)

type Handler struct {
	logger    logger.Logger
	issues    *service.IssueService
	respond   *respond.Responder
	validator *validation.Validator
}

func NewHandler(log logger.Logger, issues *service.IssueService, responder *respond.Responder, v *validation.Validator) *Handler {
	return &Handler{
		logger:    log,
		issues:    issues,
		respond:   responder,
		validator: v,
	}
}

// Routes is the v1 route table, relative to the /v1 group.
func (h *Handler) Routes() []respond.Route {
	return []respond.Route{
		{Method: fiber.MethodGet, Path: "/issues", Name: "issues.list", Doc: listIssuesDoc, Handler: h.ListIssues},
		{Method: fiber.MethodGet, Path: "/issues/:id", Name: "issues.get", Doc: getIssueDoc, Handler: h.GetIssue},
		{Method: fiber.MethodPost, Path: "/issues", Name: "issues.create", Doc: createIssueDoc, Handler: h.CreateIssue},
		{Method: fiber.MethodGet, Path: "/users", Name: "users.list", Doc: listUsersDoc, Handler: h.ListUsers},
	}
}

func (h *Handler) ListIssues(c *fiber.Ctx) error {
	var query ListIssuesQuery
	if err := c.QueryParser(&query); err != nil {
		return apperrors.NewValidationFailedError(err.Error(), nil)
	}
	if errs := h.validator.Validate(&query); errs != nil {
		return apperrors.NewValidationFailedError(validation.Join(errs, "%s failed on '%s'"), validation.Fields(errs))
	}

	issues, total := h.issues.List(c.UserContext(), service.ListFilter{Status: query.Status, Limit: query.Limit})

	return h.respond.Success(c, "", ListIssuesResponse{Issues: issues, Total: total})
}

func (h *Handler) GetIssue(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return apperrors.NewValidationFailedError("id must be a positive integer", map[string]interface{}{"id": "gt"})
	}

	issue, err := h.issues.Get(c.UserContext(), int64(id))
	if err != nil {
		return err
	}

	return h.respond.Success(c, "", GetIssueResponse{Issue: issue})
}

func (h *Handler) CreateIssue(c *fiber.Ctx) error {
	var request service.CreateIssueInput
	if err := c.BodyParser(&request); err != nil {
		h.logger.Warn("Failed to parse body", map[string]interface{}{
			"error": err.Error(),
			"body":  string(c.Body()),
		})
		return apperrors.NewValidationFailedError("malformed request body", nil)
	}
	if errs := h.validator.Validate(&request); errs != nil {
		return apperrors.NewValidationFailedError(validation.Join(errs, "%s failed on '%s'"), validation.Fields(errs))
	}

	issue, err := h.issues.Create(c.UserContext(), request)
	if err != nil {
		return err
	}

	h.logger.Info("Issue created", map[string]interface{}{
		"id":    issue.ID,
		"title": issue.Title,
	})

	return h.respond.Success(c, "created", CreateIssueResponse{ID: issue.ID, CreatedAt: issue.CreatedAt})
}

func (h *Handler) ListUsers(c *fiber.Ctx) error {
	return h.respond.Success(c, "", h.issues.Users(c.UserContext()))
}
