package issue_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ignite/issue-tracker/internal/domain"
	"github.com/ignite/issue-tracker/internal/service/issue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memRepo is an in-memory issue repository for unit testing.
type memRepo struct {
	mu     sync.Mutex
	issues map[string]domain.Issue
}

func newMemRepo() *memRepo {
	return &memRepo{issues: make(map[string]domain.Issue)}
}

func (m *memRepo) Create(_ context.Context, iss *domain.Issue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.issues[iss.ID]; ok {
		return issue.ErrAlreadyExists
	}
	m.issues[iss.ID] = *iss
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id string) (*domain.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	iss, ok := m.issues[id]
	if !ok {
		return nil, nil
	}
	return &iss, nil
}

func (m *memRepo) GetAll(_ context.Context, status *domain.Status) ([]domain.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Issue
	for _, iss := range m.issues {
		if status != nil && iss.Status != *status {
			continue
		}
		out = append(out, iss)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memRepo) Update(_ context.Context, id string, iss *domain.Issue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.issues[id]; !ok {
		return issue.ErrNotFound
	}
	m.issues[id] = *iss
	return nil
}

func (m *memRepo) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.issues[id]; !ok {
		return false, nil
	}
	delete(m.issues, id)
	return true, nil
}

func (m *memRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.issues)
}

// failRepo fails every call with err.
type failRepo struct{ err error }

func (f failRepo) Create(context.Context, *domain.Issue) error { return f.err }
func (f failRepo) GetByID(context.Context, string) (*domain.Issue, error) {
	return nil, f.err
}
func (f failRepo) GetAll(context.Context, *domain.Status) ([]domain.Issue, error) {
	return nil, f.err
}
func (f failRepo) Update(context.Context, string, *domain.Issue) error { return f.err }
func (f failRepo) Delete(context.Context, string) (bool, error)        { return false, f.err }

// stepClock advances by step on every call.
type stepClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.t
	c.t = c.t.Add(c.step)
	return now
}

var t0 = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

func newService(repo issue.Repository) *issue.Service {
	clock := &stepClock{t: t0, step: time.Second}
	return issue.NewService(repo, issue.WithClock(clock.Now))
}

func ptr(s string) *string { return &s }

func requireCode(t *testing.T, err error, code issue.Code) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, issue.CodeOf(err), "error: %v", err)
}

var bugReq = domain.CreateIssueRequest{Title: "Bug", Description: "Login fails", Priority: "High"}

func TestCreateIssue(t *testing.T) {
	repo := newMemRepo()
	svc := newService(repo)

	iss, err := svc.CreateIssue(context.Background(), bugReq)
	require.NoError(t, err)

	assert.NotEmpty(t, iss.ID)
	assert.Equal(t, domain.StatusOpen, iss.Status)
	assert.Equal(t, domain.PriorityHigh, iss.Priority)
	assert.Equal(t, iss.CreatedAt, iss.UpdatedAt)
	assert.Equal(t, t0, iss.CreatedAt)
	assert.Equal(t, 1, repo.count())
}

func TestCreateIssueValidation(t *testing.T) {
	tests := []struct {
		name string
		req  domain.CreateIssueRequest
	}{
		{"empty title", domain.CreateIssueRequest{Description: "x", Priority: "Low"}},
		{"long description", domain.CreateIssueRequest{Title: "t", Description: strings.Repeat("d", 2001), Priority: "Low"}},
		{"unknown priority", domain.CreateIssueRequest{Title: "t", Description: "d", Priority: "Urgent"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemRepo()
			_, err := newService(repo).CreateIssue(context.Background(), tt.req)
			requireCode(t, err, issue.CodeValidation)
			assert.Zero(t, repo.count())
		})
	}
}

func TestCreateIssueIDCollision(t *testing.T) {
	repo := newMemRepo()
	svc := issue.NewService(repo, issue.WithIDGenerator(func() string { return "fixed" }))

	_, err := svc.CreateIssue(context.Background(), bugReq)
	require.NoError(t, err)

	_, err = svc.CreateIssue(context.Background(), bugReq)
	requireCode(t, err, issue.CodeAlreadyExists)
	assert.True(t, errors.Is(err, issue.ErrAlreadyExists))
}

func TestGetRoundTrip(t *testing.T) {
	svc := newService(newMemRepo())
	ctx := context.Background()

	created, err := svc.CreateIssue(ctx, bugReq)
	require.NoError(t, err)

	got, err := svc.GetIssue(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestGetIssueErrors(t *testing.T) {
	svc := newService(newMemRepo())

	_, err := svc.GetIssue(context.Background(), "  ")
	requireCode(t, err, issue.CodeInvalidID)

	_, err = svc.GetIssue(context.Background(), "missing")
	requireCode(t, err, issue.CodeNotFound)
	assert.True(t, errors.Is(err, issue.ErrNotFound))
}

func TestUpdateStatusOnly(t *testing.T) {
	svc := newService(newMemRepo())
	ctx := context.Background()

	created, err := svc.CreateIssue(ctx, bugReq)
	require.NoError(t, err)

	updated, err := svc.UpdateIssue(ctx, created.ID, domain.UpdateIssueRequest{Status: ptr("Done")})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusDone, updated.Status)
	assert.Equal(t, created.Title, updated.Title)
	assert.Equal(t, created.Description, updated.Description)
	assert.Equal(t, created.Priority, updated.Priority)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	stored, err := svc.GetIssue(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, stored)
}

func TestUpdateAdvancesUpdatedAtWithFrozenClock(t *testing.T) {
	frozen := func() time.Time { return t0 }
	svc := issue.NewService(newMemRepo(), issue.WithClock(frozen))
	ctx := context.Background()

	created, err := svc.CreateIssue(ctx, bugReq)
	require.NoError(t, err)

	first, err := svc.UpdateIssue(ctx, created.ID, domain.UpdateIssueRequest{Title: ptr("Bug 2")})
	require.NoError(t, err)
	second, err := svc.UpdateIssue(ctx, created.ID, domain.UpdateIssueRequest{Title: ptr("Bug 3")})
	require.NoError(t, err)

	assert.True(t, first.UpdatedAt.After(created.UpdatedAt))
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
}

func TestUpdateAllowsAnyTransition(t *testing.T) {
	svc := newService(newMemRepo())
	ctx := context.Background()

	created, err := svc.CreateIssue(ctx, bugReq)
	require.NoError(t, err)

	for _, st := range []string{"Done", "Open", "InProgress", "Open"} {
		updated, err := svc.UpdateIssue(ctx, created.ID, domain.UpdateIssueRequest{Status: ptr(st)})
		require.NoError(t, err)
		assert.Equal(t, st, string(updated.Status))
	}
}

func TestUpdateIssueErrors(t *testing.T) {
	svc := newService(newMemRepo())
	ctx := context.Background()

	_, err := svc.UpdateIssue(ctx, "", domain.UpdateIssueRequest{Status: ptr("Done")})
	requireCode(t, err, issue.CodeInvalidID)

	_, err = svc.UpdateIssue(ctx, "missing", domain.UpdateIssueRequest{Status: ptr("Done")})
	requireCode(t, err, issue.CodeNotFound)

	created, err := svc.CreateIssue(ctx, bugReq)
	require.NoError(t, err)

	_, err = svc.UpdateIssue(ctx, created.ID, domain.UpdateIssueRequest{})
	requireCode(t, err, issue.CodeValidation)

	_, err = svc.UpdateIssue(ctx, created.ID, domain.UpdateIssueRequest{Status: ptr("Closed")})
	requireCode(t, err, issue.CodeValidation)
}

// vanishingRepo simulates a delete landing between the read and the write.
type vanishingRepo struct{ *memRepo }

func (v vanishingRepo) Update(context.Context, string, *domain.Issue) error {
	return issue.ErrNotFound
}

func TestUpdateConcurrentDeleteIsNotFound(t *testing.T) {
	repo := vanishingRepo{newMemRepo()}
	svc := newService(repo)
	ctx := context.Background()

	created, err := svc.CreateIssue(ctx, bugReq)
	require.NoError(t, err)

	_, err = svc.UpdateIssue(ctx, created.ID, domain.UpdateIssueRequest{Status: ptr("Done")})
	requireCode(t, err, issue.CodeNotFound)
}

func TestDeleteTwice(t *testing.T) {
	svc := newService(newMemRepo())
	ctx := context.Background()

	created, err := svc.CreateIssue(ctx, bugReq)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteIssue(ctx, created.ID))
	requireCode(t, svc.DeleteIssue(ctx, created.ID), issue.CodeNotFound)
	requireCode(t, svc.DeleteIssue(ctx, "never-existed"), issue.CodeNotFound)
	requireCode(t, svc.DeleteIssue(ctx, ""), issue.CodeInvalidID)
}

func TestListIssues(t *testing.T) {
	svc := newService(newMemRepo())
	ctx := context.Background()

	empty, err := svc.ListIssues(ctx, nil)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	var ids []string
	for _, title := range []string{"a", "b", "c", "d"} {
		iss, err := svc.CreateIssue(ctx, domain.CreateIssueRequest{Title: title, Description: "d", Priority: "Low"})
		require.NoError(t, err)
		ids = append(ids, iss.ID)
	}
	_, err = svc.UpdateIssue(ctx, ids[1], domain.UpdateIssueRequest{Status: ptr("Done")})
	require.NoError(t, err)

	all, err := svc.ListIssues(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	open := domain.StatusOpen
	openIssues, err := svc.ListIssues(ctx, &open)
	require.NoError(t, err)
	require.Len(t, openIssues, 3)
	for i, iss := range openIssues {
		assert.Equal(t, domain.StatusOpen, iss.Status)
		if i > 0 {
			assert.False(t, iss.CreatedAt.Before(openIssues[i-1].CreatedAt))
		}
	}
	assert.Equal(t, []string{ids[0], ids[2], ids[3]},
		[]string{openIssues[0].ID, openIssues[1].ID, openIssues[2].ID})
}

func TestStoreFailuresAreOpaque(t *testing.T) {
	storeErr := errors.New("dial tcp 10.0.0.7:6379: connection refused")
	svc := newService(failRepo{err: storeErr})
	ctx := context.Background()

	_, err := svc.CreateIssue(ctx, bugReq)
	requireCode(t, err, issue.CodeCreate)
	assert.True(t, errors.Is(err, storeErr))

	_, err = svc.GetIssue(ctx, "x")
	requireCode(t, err, issue.CodeGet)

	_, err = svc.ListIssues(ctx, nil)
	requireCode(t, err, issue.CodeList)

	_, err = svc.UpdateIssue(ctx, "x", domain.UpdateIssueRequest{Status: ptr("Done")})
	requireCode(t, err, issue.CodeUpdate)

	err = svc.DeleteIssue(ctx, "x")
	requireCode(t, err, issue.CodeDelete)

	var ie *issue.Error
	require.True(t, errors.As(err, &ie))
	assert.NotContains(t, ie.Message, "10.0.0.7")
}

func TestExists(t *testing.T) {
	repo := newMemRepo()
	svc := newService(repo)
	ctx := context.Background()

	created, err := svc.CreateIssue(ctx, bugReq)
	require.NoError(t, err)

	ok, err := issue.Exists(ctx, repo, created.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = issue.Exists(ctx, repo, "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, issue.CodeInternal, issue.CodeOf(errors.New("boom")))
	assert.Equal(t, issue.CodeNotFound, issue.CodeOf(issue.NewError(issue.CodeNotFound, "x")))
}
