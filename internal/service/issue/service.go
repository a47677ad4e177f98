package issue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ignite/issue-tracker/internal/domain"
	"github.com/ignite/issue-tracker/internal/pkg/logger"
	"github.com/ignite/issue-tracker/internal/validate"
)

// Service implements the issue business rules on top of a Repository.
// It keeps no state between calls, so it is safe for concurrent use when
// the repository is.
type Service struct {
	repo  Repository
	now   func() time.Time
	newID func() string
}

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces the random UUID generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// NewService creates an issue service backed by the given repository.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:  repo,
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateIssue validates req and stores a new Open issue.
func (s *Service) CreateIssue(ctx context.Context, req domain.CreateIssueRequest) (*domain.Issue, error) {
	if v := validate.Create(req); !v.OK() {
		return nil, NewError(CodeValidation, v.Error())
	}

	// Validated above, so the parse cannot fail.
	priority, _ := domain.ParsePriority(req.Priority)
	now := domain.Timestamp(s.now())
	iss := &domain.Issue{
		ID:          s.newID(),
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.StatusOpen,
		Priority:    priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, iss); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			logger.Warn("issue id collision", "op", "create", "id", iss.ID)
			return nil, &Error{Code: CodeAlreadyExists, Message: "an issue with this id already exists", Err: err}
		}
		return nil, s.storeFailure("create", iss.ID, CodeCreate, "failed to create issue", err)
	}

	logger.Info("issue created", "id", iss.ID, "priority", string(iss.Priority))
	return iss, nil
}

// GetIssue returns a single issue.
func (s *Service) GetIssue(ctx context.Context, id string) (*domain.Issue, error) {
	if isBlank(id) {
		return nil, NewError(CodeInvalidID, "issue id is required")
	}

	iss, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.storeFailure("get", id, CodeGet, "failed to get issue", err)
	}
	if iss == nil {
		return nil, notFound(id)
	}
	return iss, nil
}

// ListIssues returns all issues, or only those with the given status
// ordered by creation time. An empty store yields an empty, non-nil slice.
func (s *Service) ListIssues(ctx context.Context, status *domain.Status) ([]domain.Issue, error) {
	issues, err := s.repo.GetAll(ctx, status)
	if err != nil {
		return nil, s.storeFailure("list", "", CodeList, "failed to list issues", err)
	}
	if issues == nil {
		issues = []domain.Issue{}
	}
	return issues, nil
}

// UpdateIssue merges the supplied fields over the stored issue. Concurrent
// updates are last-write-wins.
func (s *Service) UpdateIssue(ctx context.Context, id string, req domain.UpdateIssueRequest) (*domain.Issue, error) {
	if isBlank(id) {
		return nil, NewError(CodeInvalidID, "issue id is required")
	}
	if v := validate.Update(req); !v.OK() {
		return nil, NewError(CodeValidation, v.Error())
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.storeFailure("update", id, CodeUpdate, "failed to update issue", err)
	}
	if existing == nil {
		return nil, notFound(id)
	}

	updated := merge(*existing, req)
	updated.UpdatedAt = s.nextUpdatedAt(existing.UpdatedAt)

	if err := s.repo.Update(ctx, id, &updated); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, notFound(id)
		}
		return nil, s.storeFailure("update", id, CodeUpdate, "failed to update issue", err)
	}

	logger.Info("issue updated", "id", id, "status", string(updated.Status))
	return &updated, nil
}

// DeleteIssue removes an issue.
func (s *Service) DeleteIssue(ctx context.Context, id string) error {
	if isBlank(id) {
		return NewError(CodeInvalidID, "issue id is required")
	}

	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return s.storeFailure("delete", id, CodeDelete, "failed to delete issue", err)
	}
	if !removed {
		return notFound(id)
	}

	logger.Info("issue deleted", "id", id)
	return nil
}

// merge applies the non-nil fields of req. Values were validated already.
func merge(iss domain.Issue, req domain.UpdateIssueRequest) domain.Issue {
	if req.Title != nil {
		iss.Title = *req.Title
	}
	if req.Description != nil {
		iss.Description = *req.Description
	}
	if req.Status != nil {
		iss.Status, _ = domain.ParseStatus(*req.Status)
	}
	if req.Priority != nil {
		iss.Priority, _ = domain.ParsePriority(*req.Priority)
	}
	return iss
}

// nextUpdatedAt returns the current time, nudged past prev when the clock
// has not moved at millisecond resolution.
func (s *Service) nextUpdatedAt(prev time.Time) time.Time {
	now := domain.Timestamp(s.now())
	if !now.After(prev) {
		now = prev.Add(time.Millisecond)
	}
	return now
}

func (s *Service) storeFailure(op, id string, code Code, msg string, err error) error {
	logger.Error("issue store failure", "op", op, "id", id, "error", err)
	return &Error{Code: code, Message: msg, Err: err}
}

func notFound(id string) error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("issue %s not found", id), Err: ErrNotFound}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
