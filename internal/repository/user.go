package repository

import (
	"context"
	"errors"

	"session-auth/internal/domain"
)

var (
	// ErrNotFound is returned when no record matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicate is returned when a write violates the email or mobile
	// unique index. This is the authoritative conflict signal; pre-check
	// reads are an optimization only.
	ErrDuplicate = errors.New("user already exists")
)

// UserRepository defines persistence operations for User records.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByEmailOrMobile(ctx context.Context, email, mobile string) (*domain.User, error)
	FindByUserID(ctx context.Context, userID string) (*domain.User, error)
}
