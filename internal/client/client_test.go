package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ignite/issue-tracker/internal/api"
	"github.com/ignite/issue-tracker/internal/domain"
	"github.com/ignite/issue-tracker/internal/repository/memory"
	"github.com/ignite/issue-tracker/internal/service/issue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	svc := issue.NewService(memory.NewIssueRepo())
	srv := httptest.NewServer(api.SetupRoutes(api.NewHandlers(svc), nil, nil))
	t.Cleanup(srv.Close)
	return New(srv.URL + "/")
}

func strPtr(s string) *string { return &s }

func TestClientLifecycle(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	created, err := c.Create(ctx, domain.CreateIssueRequest{Title: "Bug", Description: "Login fails", Priority: "High"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOpen, created.Status)

	got, err := c.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	updated, err := c.Update(ctx, created.ID, domain.UpdateIssueRequest{Status: strPtr("InProgress")})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, updated.Status)
	assert.Equal(t, domain.PriorityHigh, updated.Priority)

	open, err := c.List(ctx, domain.StatusOpen)
	require.NoError(t, err)
	assert.Empty(t, open)

	all, err := c.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, c.Delete(ctx, created.ID))

	_, err = c.Get(ctx, created.ID)
	assert.True(t, IsNotFound(err))
	assert.True(t, IsNotFound(c.Delete(ctx, created.ID)))
}

func TestClientValidationError(t *testing.T) {
	c := newTestClient(t)

	_, err := c.Create(context.Background(), domain.CreateIssueRequest{Description: "no title", Priority: "Low"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
	assert.Contains(t, apiErr.Message, "title is required")
	assert.False(t, IsNotFound(err))
}

func TestClientNonEnvelopeResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	c := New(srv.URL, WithHTTPClient(&http.Client{Timeout: time.Second}))
	_, err := c.Get(context.Background(), "x")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "INVALID_RESPONSE", apiErr.Code)
	assert.Equal(t, "upstream down", apiErr.Message)
}
