package ports

import (
	"context"
	"io"

	"palmr-api/internal/domain/user"
)

type UserService interface {
	FindUserByID(ctx context.Context, uuid user.UUID) (*user.User, error)
	UpdateAvatar(ctx context.Context, uuid user.UUID, image io.Reader) (*user.User, error)
	// EnsureAdmin creates the first administrator when the users table is
	// empty. It reports whether a user was created.
	EnsureAdmin(ctx context.Context, email, password string) (bool, error)
}
