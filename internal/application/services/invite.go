package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"

	"palmr-api/internal/application/ports"
	"palmr-api/internal/domain/invite"
	"palmr-api/internal/domain/user"
	"palmr-api/internal/infrastructure/mq"
)

const InviteTTL = 15 * time.Minute

type InviteService struct {
	inviteRepository invite.Repository
	events           ports.EventPublisher
	mCounter         *prometheus.CounterVec
	now              func() time.Time
}

func NewInviteService(
	inviteRepository invite.Repository,
	events ports.EventPublisher,
	mCounter *prometheus.CounterVec,
) ports.InviteService {
	return &InviteService{
		inviteRepository: inviteRepository,
		events:           events,
		mCounter:         mCounter,
		now:              time.Now,
	}
}

func (is *InviteService) CreateInvite(ctx context.Context, createdBy user.UUID) (*invite.Token, error) {
	value, err := newToken()
	if err != nil {
		return nil, err
	}

	t, err := is.inviteRepository.CreateToken(ctx, value, createdBy, is.now().Add(InviteTTL))
	if err != nil {
		return nil, err
	}

	is.mCounter.WithLabelValues("invite_created_total").Inc()

	return t, nil
}

func (is *InviteService) ValidateInvite(ctx context.Context, token string) (ports.InviteStatus, error) {
	if token == "" {
		return ports.InviteStatus{}, nil
	}

	t, err := is.inviteRepository.FetchToken(ctx, token)
	if err != nil {
		return ports.InviteStatus{}, err
	}

	switch {
	case t == nil:
		return ports.InviteStatus{}, nil
	case t.IsUsed():
		return ports.InviteStatus{Used: true}, nil
	case t.IsExpired(is.now()):
		return ports.InviteStatus{Expired: true}, nil
	}

	return ports.InviteStatus{Valid: true}, nil
}

// RegisterWithInvite creates an active non-admin user and burns the token
// atomically. No user is created when any check fails.
func (is *InviteService) RegisterWithInvite(ctx context.Context, in ports.RegisterWithInviteInput) (*user.User, error) {
	if in.Token == "" {
		return nil, ErrInviteInvalid
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	h := string(hash)

	u, err := is.inviteRepository.ConsumeToken(ctx, in.Token, user.User{
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: &h,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		IsAdmin:      false,
		IsActive:     true,
	}, is.now())
	if err != nil {
		return nil, inviteError(err)
	}

	is.events.Publish(mq.NewEvent(mq.ActionUserRegistered, u.UUID.String(), map[string]any{
		"username": u.Username,
		"email":    u.Email,
		"via":      "invite",
	}))
	is.mCounter.WithLabelValues("invite_consumed_total").Inc()

	return u, nil
}

var inviteErrors = map[error]error{
	invite.ErrNotFound:      ErrInviteInvalid,
	invite.ErrAlreadyUsed:   ErrInviteUsed,
	invite.ErrExpired:       ErrInviteExpired,
	invite.ErrUsernameTaken: ErrUsernameTaken,
	invite.ErrEmailTaken:    ErrEmailTaken,
}

func inviteError(err error) error {
	for repoErr, svcErr := range inviteErrors {
		if errors.Is(err, repoErr) {
			return svcErr
		}
	}
	return err
}
