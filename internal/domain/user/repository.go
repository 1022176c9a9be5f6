package user

import (
	"context"
)

type Repository interface {
	FetchUserByID(ctx context.Context, uuid UUID) (*User, error)
	FetchUserByLogin(ctx context.Context, login string) (*User, error)
	CountUsers(ctx context.Context) (int64, error)
	CreateUser(ctx context.Context, req User) (*User, error)
	UpdateAvatar(ctx context.Context, uuid UUID, image string) (*User, error)
	FetchInternalID(ctx context.Context, uuid UUID) (ID, error)
}
