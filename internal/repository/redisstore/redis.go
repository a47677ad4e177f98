// Package redisstore keeps issues in Redis.
//
// Each issue is a JSON string at "<prefix>:issue:<id>". The secondary index
// is one sorted set per status, "<prefix>:status:<status>", scored by
// CreatedAt in Unix milliseconds, plus "<prefix>:all" holding every ID.
// Multi-key writes run as Lua scripts so the record and its index entries
// change together.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ignite/issue-tracker/internal/domain"
	"github.com/ignite/issue-tracker/internal/service/issue"
	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces keys when no prefix is configured.
const DefaultPrefix = "issues"

var createScript = redis.NewScript(`
	if redis.call("setnx", KEYS[1], ARGV[1]) == 0 then
		return 0
	end
	redis.call("zadd", KEYS[2], ARGV[2], ARGV[3])
	redis.call("sadd", KEYS[3], ARGV[3])
	return 1
`)

// KEYS: record, new status set, then every status set.
var updateScript = redis.NewScript(`
	if redis.call("exists", KEYS[1]) == 0 then
		return 0
	end
	redis.call("set", KEYS[1], ARGV[1])
	for i = 3, #KEYS do
		redis.call("zrem", KEYS[i], ARGV[3])
	end
	redis.call("zadd", KEYS[2], ARGV[2], ARGV[3])
	return 1
`)

// KEYS: record, all set, then every status set.
var deleteScript = redis.NewScript(`
	if redis.call("del", KEYS[1]) == 0 then
		return 0
	end
	redis.call("srem", KEYS[2], ARGV[1])
	for i = 3, #KEYS do
		redis.call("zrem", KEYS[i], ARGV[1])
	end
	return 1
`)

// IssueRepo implements issue.Repository on a Redis client.
type IssueRepo struct {
	client *redis.Client
	prefix string
}

// NewClient connects to Redis and returns a repository.
func NewClient(addr, password string, db int, prefix string) *IssueRepo {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return New(client, prefix)
}

// New wraps an existing client.
func New(client *redis.Client, prefix string) *IssueRepo {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &IssueRepo{client: client, prefix: prefix}
}

func (r *IssueRepo) issueKey(id string) string { return r.prefix + ":issue:" + id }
func (r *IssueRepo) allKey() string            { return r.prefix + ":all" }
func (r *IssueRepo) statusKey(s domain.Status) string {
	return r.prefix + ":status:" + string(s)
}

func (r *IssueRepo) statusKeys() []string {
	keys := make([]string, 0, len(domain.Statuses))
	for _, s := range domain.Statuses {
		keys = append(keys, r.statusKey(s))
	}
	return keys
}

func (r *IssueRepo) Create(ctx context.Context, iss *domain.Issue) error {
	data, err := json.Marshal(iss)
	if err != nil {
		return fmt.Errorf("marshaling issue: %w", err)
	}

	keys := []string{r.issueKey(iss.ID), r.statusKey(iss.Status), r.allKey()}
	created, err := createScript.Run(ctx, r.client, keys, data, score(iss), iss.ID).Int()
	if err != nil {
		return fmt.Errorf("creating issue in redis: %w", err)
	}
	if created == 0 {
		return issue.ErrAlreadyExists
	}
	return nil
}

func (r *IssueRepo) GetByID(ctx context.Context, id string) (*domain.Issue, error) {
	data, err := r.client.Get(ctx, r.issueKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting issue from redis: %w", err)
	}

	var iss domain.Issue
	if err := json.Unmarshal(data, &iss); err != nil {
		return nil, fmt.Errorf("unmarshaling issue %s: %w", id, err)
	}
	return &iss, nil
}

// GetAll reads the status set in score order, or the unordered ID set
// when status is nil.
func (r *IssueRepo) GetAll(ctx context.Context, status *domain.Status) ([]domain.Issue, error) {
	var ids []string
	var err error
	if status != nil {
		ids, err = r.client.ZRange(ctx, r.statusKey(*status), 0, -1).Result()
	} else {
		ids, err = r.client.SMembers(ctx, r.allKey()).Result()
	}
	if err != nil {
		return nil, fmt.Errorf("listing issue ids from redis: %w", err)
	}

	issues := []domain.Issue{}
	if len(ids) == 0 {
		return issues, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.issueKey(id)
	}
	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("loading issues from redis: %w", err)
	}

	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			// Deleted between the index read and MGET.
			continue
		}
		var iss domain.Issue
		if err := json.Unmarshal([]byte(s), &iss); err != nil {
			return nil, fmt.Errorf("unmarshaling issue %s: %w", ids[i], err)
		}
		issues = append(issues, iss)
	}
	return issues, nil
}

func (r *IssueRepo) Update(ctx context.Context, id string, iss *domain.Issue) error {
	rec := *iss
	rec.ID = id
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling issue: %w", err)
	}

	keys := append([]string{r.issueKey(id), r.statusKey(rec.Status)}, r.statusKeys()...)
	updated, err := updateScript.Run(ctx, r.client, keys, data, score(&rec), id).Int()
	if err != nil {
		return fmt.Errorf("updating issue in redis: %w", err)
	}
	if updated == 0 {
		return issue.ErrNotFound
	}
	return nil
}

func (r *IssueRepo) Delete(ctx context.Context, id string) (bool, error) {
	keys := append([]string{r.issueKey(id), r.allKey()}, r.statusKeys()...)
	removed, err := deleteScript.Run(ctx, r.client, keys, id).Int()
	if err != nil {
		return false, fmt.Errorf("deleting issue from redis: %w", err)
	}
	return removed == 1, nil
}

// Ping checks the connection.
func (r *IssueRepo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the connection pool.
func (r *IssueRepo) Close() error {
	return r.client.Close()
}

func score(iss *domain.Issue) int64 {
	return iss.CreatedAt.UnixMilli()
}
