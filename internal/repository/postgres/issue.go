package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ignite/issue-tracker/internal/domain"
	"github.com/ignite/issue-tracker/internal/service/issue"
	_ "github.com/lib/pq"
)

const issueColumns = `id, title, description, status, priority, created_at, updated_at`

// IssueRepo implements issue.Repository against PostgreSQL.
type IssueRepo struct{ db *sql.DB }

// NewIssueRepo creates a Postgres-backed issue repository.
func NewIssueRepo(db *sql.DB) *IssueRepo { return &IssueRepo{db: db} }

// Open connects with the lib/pq driver and verifies the connection.
func Open(ctx context.Context, databaseURL string) (*IssueRepo, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewIssueRepo(db), nil
}

func (r *IssueRepo) Create(ctx context.Context, iss *domain.Issue) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO issues (`+issueColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`, iss.ID, iss.Title, iss.Description, string(iss.Status), string(iss.Priority),
		iss.CreatedAt, iss.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create issue: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return issue.ErrAlreadyExists
	}
	return nil
}

func (r *IssueRepo) GetByID(ctx context.Context, id string) (*domain.Issue, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+issueColumns+`
		FROM issues
		WHERE id = $1
	`, id)

	iss, err := scanIssue(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get issue: %w", err)
	}
	return iss, nil
}

func (r *IssueRepo) GetAll(ctx context.Context, status *domain.Status) ([]domain.Issue, error) {
	q := `SELECT ` + issueColumns + ` FROM issues`
	var args []interface{}
	if status != nil {
		q += ` WHERE status = $1 ORDER BY created_at, id`
		args = append(args, string(*status))
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	defer rows.Close()

	out := []domain.Issue{}
	for rows.Next() {
		iss, err := scanIssue(rows)
		if err != nil {
			return nil, fmt.Errorf("scan issue: %w", err)
		}
		out = append(out, *iss)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	return out, nil
}

func (r *IssueRepo) Update(ctx context.Context, id string, iss *domain.Issue) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE issues
		SET title = $1, description = $2, status = $3, priority = $4, updated_at = $5
		WHERE id = $6
	`, iss.Title, iss.Description, string(iss.Status), string(iss.Priority), iss.UpdatedAt, id)
	if err != nil {
		return fmt.Errorf("update issue: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return issue.ErrNotFound
	}
	return nil
}

func (r *IssueRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM issues WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete issue: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Ping checks the database connection.
func (r *IssueRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the underlying pool.
func (r *IssueRepo) Close() error {
	return r.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanIssue(s scanner) (*domain.Issue, error) {
	var (
		iss              domain.Issue
		status, priority string
	)
	if err := s.Scan(&iss.ID, &iss.Title, &iss.Description, &status, &priority,
		&iss.CreatedAt, &iss.UpdatedAt); err != nil {
		return nil, err
	}

	var err error
	if iss.Status, err = domain.ParseStatus(status); err != nil {
		return nil, fmt.Errorf("issue %s: %w", iss.ID, err)
	}
	if iss.Priority, err = domain.ParsePriority(priority); err != nil {
		return nil, fmt.Errorf("issue %s: %w", iss.ID, err)
	}
	iss.CreatedAt = domain.Timestamp(iss.CreatedAt)
	iss.UpdatedAt = domain.Timestamp(iss.UpdatedAt)
	return &iss, nil
}
