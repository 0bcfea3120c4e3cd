package v1

import (
	"time"

	"response-guard/internal/service"
)

type ListIssuesResponse struct {
	Issues []service.Issue `json:"issues"`
	Total  int             `json:"total"`
}

type GetIssueResponse struct {
	Issue *service.Issue `json:"issue"`
}

type CreateIssueResponse struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}
