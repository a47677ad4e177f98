package issue

import (
	"context"

	"github.com/ignite/issue-tracker/internal/domain"
)

// Repository defines the record store contract for issues.
// Implementations must be safe for concurrent use.
type Repository interface {
	// Create stores a new issue. Returns ErrAlreadyExists if the ID is taken.
	Create(ctx context.Context, iss *domain.Issue) error

	// GetByID returns the issue, or (nil, nil) when it does not exist.
	GetByID(ctx context.Context, id string) (*domain.Issue, error)

	// GetAll returns every issue when status is nil. With a status it
	// returns only that status, ordered by CreatedAt ascending.
	GetAll(ctx context.Context, status *domain.Status) ([]domain.Issue, error)

	// Update replaces the stored record. Returns ErrNotFound if there is
	// nothing to replace.
	Update(ctx context.Context, id string, iss *domain.Issue) error

	// Delete removes the issue and reports whether anything was removed.
	Delete(ctx context.Context, id string) (bool, error)
}

// Exists reports whether an issue with id is stored.
func Exists(ctx context.Context, repo Repository, id string) (bool, error) {
	iss, err := repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return iss != nil, nil
}
