// Command lambda serves the issue API from AWS Lambda behind API Gateway.
//
// ISSUE_HANDLER picks the operation this function handles: create, get,
// list, update or delete. "all" (the default) routes by method and path
// parameters so one function can back every route.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/ignite/issue-tracker/internal/api"
	"github.com/ignite/issue-tracker/internal/config"
	"github.com/ignite/issue-tracker/internal/pkg/logger"
	"github.com/ignite/issue-tracker/internal/service/issue"
	"github.com/ignite/issue-tracker/internal/storage"
)

func main() {
	cfg, err := config.LoadFromEnv(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("STORAGE_TYPE") == "" {
		cfg.Storage.Type = config.StorageDynamoDB
	}
	logger.SetLevel(logger.ParseLevel(cfg.Log.Level))
	logger.SetRedactPII(cfg.Log.Redact())

	// Built once per container and reused across invocations.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	store, err := storage.New(ctx, cfg.Storage)
	cancel()
	if err != nil {
		log.Fatalf("Failed to open issue store: %v", err)
	}

	handlers := api.NewHandlers(issue.NewService(store))

	name := os.Getenv("ISSUE_HANDLER")
	if name == "" || name == "all" {
		lambda.Start(handlers.LambdaRouter())
		return
	}

	op, ok := handlers.Operation(name)
	if !ok {
		log.Fatalf("Unknown ISSUE_HANDLER %q", name)
	}
	lambda.Start(api.Lambda(op))
}
