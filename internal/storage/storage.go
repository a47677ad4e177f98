// Package storage selects and opens the issue store named by configuration.
package storage

import (
	"context"
	"fmt"

	"github.com/ignite/issue-tracker/internal/config"
	"github.com/ignite/issue-tracker/internal/pkg/logger"
	"github.com/ignite/issue-tracker/internal/repository/dynamo"
	"github.com/ignite/issue-tracker/internal/repository/memory"
	"github.com/ignite/issue-tracker/internal/repository/postgres"
	"github.com/ignite/issue-tracker/internal/repository/redisstore"
	"github.com/ignite/issue-tracker/internal/service/issue"
)

// Backend is an issue.Repository with a connection lifecycle.
type Backend interface {
	issue.Repository
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Backend = (*memory.IssueRepo)(nil)
	_ Backend = (*dynamo.IssueRepo)(nil)
	_ Backend = (*redisstore.IssueRepo)(nil)
	_ Backend = (*postgres.IssueRepo)(nil)
)

// New opens the backend named by cfg.Type.
func New(ctx context.Context, cfg config.StorageConfig) (Backend, error) {
	switch cfg.Type {
	case "", config.StorageMemory:
		logger.Info("using in-memory issue store")
		return memory.NewIssueRepo(), nil

	case config.StorageDynamoDB:
		client, err := dynamo.NewClient(ctx, dynamo.Options{
			TableName:   cfg.DynamoDBTable,
			StatusIndex: cfg.StatusIndex,
			Region:      cfg.AWSRegion,
			Profile:     cfg.GetAWSProfile(),
			Endpoint:    cfg.DynamoDBEndpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("dynamodb store: %w", err)
		}
		logger.Info("using dynamodb issue store", "table", cfg.DynamoDBTable, "region", cfg.AWSRegion)
		return client, nil

	case config.StorageRedis:
		repo := redisstore.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisPrefix)
		if err := repo.Ping(ctx); err != nil {
			repo.Close()
			return nil, fmt.Errorf("redis store: %w", err)
		}
		logger.Info("using redis issue store", "addr", cfg.RedisAddr, "prefix", cfg.RedisPrefix)
		return repo, nil

	case config.StoragePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("postgres store: database_url is required")
		}
		repo, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres store: %w", err)
		}
		logger.Info("using postgres issue store")
		return repo, nil

	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}
