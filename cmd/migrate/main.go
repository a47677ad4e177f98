// Command migrate provisions the configured issue store: the DynamoDB table
// and its status index, or the Postgres schema.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/ignite/issue-tracker/internal/config"
	"github.com/ignite/issue-tracker/internal/pkg/distlock"
	"github.com/ignite/issue-tracker/internal/repository/dynamo"
	"github.com/ignite/issue-tracker/internal/repository/postgres"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	storageType := flag.String("storage", "", "override storage.type (dynamodb or postgres)")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *storageType != "" {
		cfg.Storage.Type = *storageType
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	switch cfg.Storage.Type {
	case config.StorageDynamoDB:
		client, err := dynamo.NewClient(ctx, dynamo.Options{
			TableName:   cfg.Storage.DynamoDBTable,
			StatusIndex: cfg.Storage.StatusIndex,
			Region:      cfg.Storage.AWSRegion,
			Profile:     cfg.Storage.GetAWSProfile(),
			Endpoint:    cfg.Storage.DynamoDBEndpoint,
		})
		if err != nil {
			log.Fatalf("connect dynamodb: %v", err)
		}
		if err := client.EnsureTable(ctx); err != nil {
			log.Fatalf("ensure table: %v", err)
		}
		log.Printf("Table %s is ready", cfg.Storage.DynamoDBTable)

	case config.StoragePostgres:
		if cfg.Storage.DatabaseURL == "" {
			log.Fatal("DATABASE_URL is required")
		}
		repo, err := postgres.Open(ctx, cfg.Storage.DatabaseURL)
		if err != nil {
			log.Fatalf("connect: %v", err)
		}
		defer repo.Close()
		log.Println("Connected to database")

		lock := distlock.NewPGAdvisoryLock(repo.DB(), "issue-tracker:schema-migration")
		if err := distlock.Wait(ctx, lock, 2*time.Second); err != nil {
			log.Fatalf("acquire migration lock: %v", err)
		}
		defer lock.Release(context.Background())

		if err := postgres.Migrate(ctx, repo.DB()); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		log.Println("Schema is up to date")

	default:
		log.Printf("Storage type %q needs no migration", cfg.Storage.Type)
	}
}
