package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/ignite/issue-tracker/internal/domain"
	"github.com/ignite/issue-tracker/internal/pkg/httputil"
	"github.com/ignite/issue-tracker/internal/pkg/logger"
	"github.com/ignite/issue-tracker/internal/service/issue"
)

// IssueService is the business layer the handlers call.
type IssueService interface {
	CreateIssue(ctx context.Context, req domain.CreateIssueRequest) (*domain.Issue, error)
	GetIssue(ctx context.Context, id string) (*domain.Issue, error)
	ListIssues(ctx context.Context, status *domain.Status) ([]domain.Issue, error)
	UpdateIssue(ctx context.Context, id string, req domain.UpdateIssueRequest) (*domain.Issue, error)
	DeleteIssue(ctx context.Context, id string) error
}

// Request is the transport-neutral view of an inbound call. The HTTP
// router and the Lambda adapter both translate into it.
type Request struct {
	PathParams  map[string]string
	QueryParams map[string]string
	Body        []byte
}

// Response carries the status code and envelope to send back.
type Response struct {
	StatusCode int
	Body       httputil.Envelope
}

// Operation handles one API call.
type Operation func(ctx context.Context, req Request) Response

// Handlers maps requests onto the issue service.
type Handlers struct {
	svc IssueService
}

// NewHandlers creates the issue handlers.
func NewHandlers(svc IssueService) *Handlers {
	return &Handlers{svc: svc}
}

// Create handles POST /issues.
func (h *Handlers) Create(ctx context.Context, req Request) (resp Response) {
	defer recoverInternal("create", &resp)

	var body domain.CreateIssueRequest
	if r, ok := decodeBody(req.Body, &body); !ok {
		return r
	}

	iss, err := h.svc.CreateIssue(ctx, body)
	if err != nil {
		return fromError(err)
	}
	return Response{StatusCode: http.StatusCreated, Body: httputil.Success(iss)}
}

// Get handles GET /issues/{id}.
func (h *Handlers) Get(ctx context.Context, req Request) (resp Response) {
	defer recoverInternal("get", &resp)

	id, ok := pathID(req)
	if !ok {
		return missingID()
	}

	iss, err := h.svc.GetIssue(ctx, id)
	if err != nil {
		return fromError(err)
	}
	return Response{StatusCode: http.StatusOK, Body: httputil.Success(iss)}
}

// List handles GET /issues with an optional ?status= filter.
func (h *Handlers) List(ctx context.Context, req Request) (resp Response) {
	defer recoverInternal("list", &resp)

	var filter *domain.Status
	if raw := req.QueryParams["status"]; raw != "" {
		st, err := domain.ParseStatus(raw)
		if err != nil {
			return failure(http.StatusBadRequest, issue.CodeInvalidStatus,
				fmt.Sprintf("status must be one of %s, %s, %s", domain.StatusOpen, domain.StatusInProgress, domain.StatusDone))
		}
		filter = &st
	}

	issues, err := h.svc.ListIssues(ctx, filter)
	if err != nil {
		return fromError(err)
	}
	return Response{StatusCode: http.StatusOK, Body: httputil.Success(issues)}
}

// Update handles PUT /issues/{id}.
func (h *Handlers) Update(ctx context.Context, req Request) (resp Response) {
	defer recoverInternal("update", &resp)

	id, ok := pathID(req)
	if !ok {
		return missingID()
	}

	var body domain.UpdateIssueRequest
	if r, ok := decodeBody(req.Body, &body); !ok {
		return r
	}

	iss, err := h.svc.UpdateIssue(ctx, id, body)
	if err != nil {
		return fromError(err)
	}
	return Response{StatusCode: http.StatusOK, Body: httputil.Success(iss)}
}

// Delete handles DELETE /issues/{id}.
func (h *Handlers) Delete(ctx context.Context, req Request) (resp Response) {
	defer recoverInternal("delete", &resp)

	id, ok := pathID(req)
	if !ok {
		return missingID()
	}

	if err := h.svc.DeleteIssue(ctx, id); err != nil {
		return fromError(err)
	}
	return Response{StatusCode: http.StatusOK, Body: httputil.Success(nil)}
}

// Operation returns the handler registered under name: create, get, list,
// update or delete.
func (h *Handlers) Operation(name string) (Operation, bool) {
	switch strings.ToLower(name) {
	case "create":
		return h.Create, true
	case "get":
		return h.Get, true
	case "list":
		return h.List, true
	case "update":
		return h.Update, true
	case "delete":
		return h.Delete, true
	}
	return nil, false
}

// Route picks the operation for method, using the presence of an id path
// parameter to tell item routes from collection routes.
func (h *Handlers) Route(ctx context.Context, method string, req Request) Response {
	_, hasID := req.PathParams["id"]
	switch {
	case method == http.MethodPost && !hasID:
		return h.Create(ctx, req)
	case method == http.MethodGet && !hasID:
		return h.List(ctx, req)
	case method == http.MethodGet:
		return h.Get(ctx, req)
	case method == http.MethodPut:
		return h.Update(ctx, req)
	case method == http.MethodDelete:
		return h.Delete(ctx, req)
	}
	return failure(http.StatusNotFound, issue.CodeNotFound, fmt.Sprintf("no route for %s", method))
}

func pathID(req Request) (string, bool) {
	id := strings.TrimSpace(req.PathParams["id"])
	return id, id != ""
}

func missingID() Response {
	return failure(http.StatusBadRequest, issue.CodeMissingID, "issue id is required in the path")
}

// decodeBody reports false with the response to send when the body cannot
// be used.
func decodeBody(body []byte, dst any) (Response, bool) {
	err := httputil.DecodeObject(body, dst)
	switch {
	case err == nil:
		return Response{}, true
	case errors.Is(err, httputil.ErrMalformedJSON):
		return failure(http.StatusBadRequest, issue.CodeInvalidJSON, err.Error()), false
	default:
		return failure(http.StatusBadRequest, issue.CodeInvalidBody, err.Error()), false
	}
}

func failure(status int, code issue.Code, message string) Response {
	return Response{StatusCode: status, Body: httputil.Fail(string(code), message)}
}

// fromError turns a service error into a response. Only *issue.Error
// messages reach the caller; anything else is reported generically.
func fromError(err error) Response {
	code := issue.CodeOf(err)
	msg := "internal server error"
	var e *issue.Error
	if errors.As(err, &e) {
		msg = e.Message
	} else {
		logger.Error("unexpected service error", "error", err)
	}
	return failure(statusFor(code), code, msg)
}

func statusFor(code issue.Code) int {
	switch code {
	case issue.CodeValidation, issue.CodeInvalidID, issue.CodeMissingID,
		issue.CodeInvalidBody, issue.CodeInvalidJSON, issue.CodeInvalidStatus:
		return http.StatusBadRequest
	case issue.CodeNotFound:
		return http.StatusNotFound
	case issue.CodeAlreadyExists:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func recoverInternal(op string, resp *Response) {
	if r := recover(); r != nil {
		logger.Error("handler panic", "op", op, "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
		*resp = failure(http.StatusInternalServerError, issue.CodeInternal, "internal server error")
	}
}
