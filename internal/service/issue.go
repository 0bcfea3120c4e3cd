package service

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	apperrors "response-guard/internal/common/errors"
)

type User struct {
	UID  int64  `json:"uid"`
	Name string `json:"name"`
}

type Issue struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	Assignee  *User     `json:"assignee"`
	Labels    []string  `json:"labels"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateIssueInput struct {
	Title      string   `json:"title" validate:"required,min=3,max=200"`
	Status     string   `json:"status" validate:"omitempty,oneof=open closed"`
	AssigneeID int64    `json:"assignee_id" validate:"omitempty,gt=0"`
	Labels     []string `json:"labels" validate:"max=10,dive,label"`
}

type ListFilter struct {
	Status string
	Limit  int
}

// IssueService is an in-memory issue tracker backing the example API.
type IssueService struct {
	mu     sync.RWMutex
	issues map[int64]*Issue
	users  map[int64]*User
	nextID int64
	now    func() time.Time
}

func NewIssueService() *IssueService {
	s := &IssueService{
		issues: make(map[int64]*Issue),
		users:  make(map[int64]*User),
		nextID: 1,
		now:    func() time.Time { return time.Now().UTC() },
	}
	s.seed()
	return s
}

func (s *IssueService) seed() {
	ann := &User{UID: 1, Name: "ann"}
	bob := &User{UID: 2, Name: "bob"}
	s.users[ann.UID] = ann
	s.users[bob.UID] = bob

	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for _, in := range []struct {
		title    string
		status   string
		assignee *User
		labels   []string
	}{
		{"Login page returns 500", "open", ann, []string{"bug"}},
		{"Add CSV export", "open", bob, []string{"feature", "export"}},
		{"Triage backlog", "open", nil, nil},
		{"Upgrade TLS config", "closed", ann, []string{"ops"}},
	} {
		s.insert(in.title, in.status, in.assignee, in.labels, created)
		created = created.Add(24 * time.Hour)
	}
}

func (s *IssueService) insert(title, status string, assignee *User, labels []string, at time.Time) *Issue {
	if labels == nil {
		labels = []string{}
	}
	issue := &Issue{
		ID:        s.nextID,
		Title:     title,
		Status:    status,
		Assignee:  assignee,
		Labels:    labels,
		CreatedAt: at,
	}
	s.issues[issue.ID] = issue
	s.nextID++
	return issue
}

func (s *IssueService) List(_ context.Context, filter ListFilter) ([]Issue, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Issue, 0, len(s.issues))
	for _, issue := range s.issues {
		if filter.Status != "" && issue.Status != filter.Status {
			continue
		}
		out = append(out, *issue)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	total := len(out)
	if filter.Limit > 0 && filter.Limit < total {
		out = out[:filter.Limit]
	}
	return out, total
}

func (s *IssueService) Users(_ context.Context) []User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UID < out[j].UID })
	return out
}

func (s *IssueService) Get(_ context.Context, id int64) (*Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	issue, ok := s.issues[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("issue", strconv.FormatInt(id, 10))
	}
	cp := *issue
	return &cp, nil
}

func (s *IssueService) Create(_ context.Context, in CreateIssueInput) (*Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var assignee *User
	if in.AssigneeID != 0 {
		u, ok := s.users[in.AssigneeID]
		if !ok {
			return nil, apperrors.NewNotFoundError("user", strconv.FormatInt(in.AssigneeID, 10))
		}
		assignee = u
	}

	status := in.Status
	if status == "" {
		status = "open"
	}

	cp := *s.insert(in.Title, status, assignee, in.Labels, s.now())
	return &cp, nil
}
