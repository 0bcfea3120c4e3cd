package v1

type ListIssuesQuery struct {
	Status string `query:"status" validate:"omitempty,oneof=open closed"`
	Limit  int    `query:"limit" validate:"gte=0,lte=100"`
}
