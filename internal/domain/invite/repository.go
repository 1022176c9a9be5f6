package invite

import (
	"context"
	"errors"
	"time"

	"palmr-api/internal/domain/user"
)

var (
	ErrNotFound      = errors.New("invite token not found")
	ErrAlreadyUsed   = errors.New("invite token already used")
	ErrExpired       = errors.New("invite token expired")
	ErrUsernameTaken = errors.New("username already exists")
	ErrEmailTaken    = errors.New("email already exists")
)

type Repository interface {
	CreateToken(ctx context.Context, token string, createdBy user.UUID, expiresAt time.Time) (*Token, error)
	FetchToken(ctx context.Context, token string) (*Token, error)
	// ConsumeToken creates u and marks the token used in one transaction.
	// It returns ErrNotFound, ErrAlreadyUsed, ErrExpired, ErrUsernameTaken or
	// ErrEmailTaken without side effects.
	ConsumeToken(ctx context.Context, token string, u user.User, now time.Time) (*user.User, error)
}
