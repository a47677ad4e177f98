// Package memory is a process-local issue store for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ignite/issue-tracker/internal/domain"
	"github.com/ignite/issue-tracker/internal/service/issue"
)

// IssueRepo implements issue.Repository with a mutex-guarded map.
type IssueRepo struct {
	mu     sync.RWMutex
	issues map[string]domain.Issue
}

// NewIssueRepo creates an empty in-memory repository.
func NewIssueRepo() *IssueRepo {
	return &IssueRepo{issues: make(map[string]domain.Issue)}
}

func (r *IssueRepo) Create(_ context.Context, iss *domain.Issue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.issues[iss.ID]; ok {
		return issue.ErrAlreadyExists
	}
	r.issues[iss.ID] = *iss
	return nil
}

func (r *IssueRepo) GetByID(_ context.Context, id string) (*domain.Issue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	iss, ok := r.issues[id]
	if !ok {
		return nil, nil
	}
	return &iss, nil
}

// GetAll always returns issues sorted by CreatedAt, then ID. Sorting the
// unfiltered result too keeps output stable for callers that display it.
func (r *IssueRepo) GetAll(_ context.Context, status *domain.Status) ([]domain.Issue, error) {
	r.mu.RLock()
	out := make([]domain.Issue, 0, len(r.issues))
	for _, iss := range r.issues {
		if status != nil && iss.Status != *status {
			continue
		}
		out = append(out, iss)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *IssueRepo) Update(_ context.Context, id string, iss *domain.Issue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.issues[id]; !ok {
		return issue.ErrNotFound
	}
	r.issues[id] = *iss
	return nil
}

func (r *IssueRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.issues[id]; !ok {
		return false, nil
	}
	delete(r.issues, id)
	return true, nil
}

// Ping always succeeds.
func (r *IssueRepo) Ping(context.Context) error { return nil }

// Close is a no-op.
func (r *IssueRepo) Close() error { return nil }
