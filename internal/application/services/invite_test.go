package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"palmr-api/internal/application/apperr"
	"palmr-api/internal/application/ports"
	"palmr-api/internal/domain/invite"
	"palmr-api/internal/domain/user"
	"palmr-api/internal/infrastructure/mq"
)

func newInviteService(repo invite.Repository, clock *fakeClock) (*InviteService, *recordingPublisher) {
	events := &recordingPublisher{}
	return &InviteService{
		inviteRepository: repo,
		events:           events,
		mCounter:         newCounter(),
		now:              clock.Now,
	}, events
}

func TestCreateInvite(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	admin := uuid.New()

	repo := &FakeInviteRepository{
		CreateTokenFunc: func(_ context.Context, token string, createdBy user.UUID, expiresAt time.Time) (*invite.Token, error) {
			assert.Len(t, token, 64)
			assert.Equal(t, admin, createdBy)
			assert.Equal(t, clock.t.Add(15*time.Minute), expiresAt)
			return &invite.Token{Token: token, CreatedBy: createdBy, ExpiresAt: expiresAt}, nil
		},
	}
	s, _ := newInviteService(repo, clock)

	tok, err := s.CreateInvite(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, clock.t.Add(InviteTTL), tok.ExpiresAt)
}

func TestValidateInvite(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	usedAt := now.Add(-time.Minute)

	tests := []struct {
		name  string
		token *invite.Token
		want  ports.InviteStatus
	}{
		{"unknown", nil, ports.InviteStatus{}},
		{"valid", &invite.Token{ExpiresAt: now.Add(time.Minute)}, ports.InviteStatus{Valid: true}},
		{"used", &invite.Token{ExpiresAt: now.Add(time.Minute), UsedAt: &usedAt}, ports.InviteStatus{Used: true}},
		{"expired", &invite.Token{ExpiresAt: now.Add(-time.Second)}, ports.InviteStatus{Expired: true}},
		{"expiry instant", &invite.Token{ExpiresAt: now}, ports.InviteStatus{Expired: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &FakeInviteRepository{
				FetchTokenFunc: func(context.Context, string) (*invite.Token, error) { return tt.token, nil },
			}
			s, _ := newInviteService(repo, &fakeClock{t: now})

			got, err := s.ValidateInvite(context.Background(), "tok")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegisterWithInvite(t *testing.T) {
	in := ports.RegisterWithInviteInput{
		Token:     "tok",
		Username:  " alice ",
		Email:     "Alice@Example.com",
		Password:  "s3cret-pass",
		FirstName: "Alice",
		LastName:  "Doe",
	}

	t.Run("creates active non-admin user", func(t *testing.T) {
		clock := &fakeClock{t: time.Now()}
		repo := &FakeInviteRepository{
			ConsumeTokenFunc: func(_ context.Context, token string, u user.User, now time.Time) (*user.User, error) {
				assert.Equal(t, "tok", token)
				assert.Equal(t, clock.t, now)
				assert.Equal(t, "alice", u.Username)
				assert.Equal(t, "alice@example.com", u.Email)
				assert.False(t, u.IsAdmin)
				assert.True(t, u.IsActive)
				require.NotNil(t, u.PasswordHash)
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte("s3cret-pass")))
				u.UUID = uuid.New()
				return &u, nil
			},
		}
		s, events := newInviteService(repo, clock)

		u, err := s.RegisterWithInvite(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, "alice", u.Username)
		assert.Equal(t, []string{mq.ActionUserRegistered}, events.actions())
	})

	errCases := []struct {
		repoErr  error
		want     error
		wantKind apperr.Kind
		wantMsg  string
	}{
		{invite.ErrNotFound, ErrInviteInvalid, apperr.KindInviteInvalid, "Invalid invite token"},
		{invite.ErrAlreadyUsed, ErrInviteUsed, apperr.KindInviteUsed, "Invite token has already been used"},
		{invite.ErrExpired, ErrInviteExpired, apperr.KindInviteExpired, "Invite token has expired"},
		{invite.ErrUsernameTaken, ErrUsernameTaken, apperr.KindUsernameTaken, "Username already exists"},
		{invite.ErrEmailTaken, ErrEmailTaken, apperr.KindEmailTaken, "Email already exists"},
	}
	for _, tc := range errCases {
		t.Run(tc.wantKind.String(), func(t *testing.T) {
			repo := &FakeInviteRepository{
				ConsumeTokenFunc: func(context.Context, string, user.User, time.Time) (*user.User, error) {
					return nil, tc.repoErr
				},
			}
			s, events := newInviteService(repo, &fakeClock{t: time.Now()})

			u, err := s.RegisterWithInvite(context.Background(), in)
			assert.Nil(t, u)
			require.ErrorIs(t, err, tc.want)
			assert.Equal(t, tc.wantKind, apperr.KindOf(err))
			assert.Equal(t, tc.wantMsg, apperr.Message(err, ""))
			assert.Empty(t, events.actions())
		})
	}

	t.Run("empty token", func(t *testing.T) {
		s, _ := newInviteService(&FakeInviteRepository{}, &fakeClock{t: time.Now()})
		_, err := s.RegisterWithInvite(context.Background(), ports.RegisterWithInviteInput{})
		assert.ErrorIs(t, err, ErrInviteInvalid)
	})
}
