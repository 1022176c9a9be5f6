package ports

import (
	"context"

	"palmr-api/internal/domain/user"
)

type Auth interface {
	// Login accepts a username or an email and returns a bearer token.
	Login(ctx context.Context, login, password string) (string, *user.User, error)
}
