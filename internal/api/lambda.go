package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/ignite/issue-tracker/internal/pkg/logger"
	"github.com/ignite/issue-tracker/internal/service/issue"
)

// LambdaHandler is the signature lambda.Start expects for API Gateway
// proxy integrations.
type LambdaHandler func(ctx context.Context, ev events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

var lambdaHeaders = map[string]string{
	"Content-Type":                 "application/json",
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "Content-Type,X-Requested-With",
	"Access-Control-Allow-Methods": "GET,POST,PUT,DELETE,OPTIONS",
}

// Lambda adapts a single Operation to API Gateway.
func Lambda(op Operation) LambdaHandler {
	return func(ctx context.Context, ev events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		if ev.HTTPMethod == http.MethodOptions {
			return preflight(), nil
		}
		req, err := fromEvent(ev)
		if err != nil {
			return toEvent(failure(http.StatusBadRequest, issue.CodeInvalidBody, "request body is not valid base64")), nil
		}
		return toEvent(op(ctx, req)), nil
	}
}

// LambdaRouter serves every issue route from one function, dispatching on
// method and path parameters.
func (h *Handlers) LambdaRouter() LambdaHandler {
	return func(ctx context.Context, ev events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		if ev.HTTPMethod == http.MethodOptions {
			return preflight(), nil
		}
		req, err := fromEvent(ev)
		if err != nil {
			return toEvent(failure(http.StatusBadRequest, issue.CodeInvalidBody, "request body is not valid base64")), nil
		}
		return toEvent(h.Route(ctx, ev.HTTPMethod, req)), nil
	}
}

func fromEvent(ev events.APIGatewayProxyRequest) (Request, error) {
	body := []byte(ev.Body)
	if ev.IsBase64Encoded && ev.Body != "" {
		decoded, err := base64.StdEncoding.DecodeString(ev.Body)
		if err != nil {
			return Request{}, err
		}
		body = decoded
	}
	return Request{
		PathParams:  ev.PathParameters,
		QueryParams: ev.QueryStringParameters,
		Body:        body,
	}, nil
}

func toEvent(resp Response) events.APIGatewayProxyResponse {
	body, err := json.Marshal(resp.Body)
	if err != nil {
		logger.Error("lambda response encode failed", "error", err)
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Headers:    copyHeaders(),
			Body:       `{"success":false,"error":{"message":"internal server error","code":"INTERNAL_ERROR"}}`,
		}
	}
	return events.APIGatewayProxyResponse{
		StatusCode: resp.StatusCode,
		Headers:    copyHeaders(),
		Body:       string(body),
	}
}

func preflight() events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK, Headers: copyHeaders()}
}

func copyHeaders() map[string]string {
	h := make(map[string]string, len(lambdaHeaders))
	for k, v := range lambdaHeaders {
		h[k] = v
	}
	return h
}
