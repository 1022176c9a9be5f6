package ports

import (
	"context"

	"palmr-api/internal/domain/invite"
	"palmr-api/internal/domain/user"
)

type (
	InviteStatus struct {
		Valid   bool
		Used    bool
		Expired bool
	}
	RegisterWithInviteInput struct {
		Token     string
		Username  string
		Email     string
		Password  string
		FirstName string
		LastName  string
	}
)

type InviteService interface {
	CreateInvite(ctx context.Context, createdBy user.UUID) (*invite.Token, error)
	ValidateInvite(ctx context.Context, token string) (InviteStatus, error)
	RegisterWithInvite(ctx context.Context, in RegisterWithInviteInput) (*user.User, error)
}
