package repository

import (
	"context"
	"errors"

	"paygate/internal/domain"
)

var (
	// ErrNotFound is returned when no record matches the lookup key.
	ErrNotFound = errors.New("user not found")
	// ErrAlreadyExists is returned when an insert violates the unique email constraint.
	ErrAlreadyExists = errors.New("user already exists")
)

// UserRepository defines persistence operations for User entities.
// Any error other than the sentinels above means the store itself
// failed (unreachable, driver fault) and must not be read as "not found".
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}
