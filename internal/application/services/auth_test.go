package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"palmr-api/internal/domain/user"
	"palmr-api/internal/infrastructure/jwt"
)

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	h := string(hash)

	active := &user.User{UUID: uuid.New(), Username: "alice", PasswordHash: &h, IsActive: true, IsAdmin: true}
	inactive := &user.User{UUID: uuid.New(), Username: "bob", PasswordHash: &h}
	noPassword := &user.User{UUID: uuid.New(), Username: "sso", IsActive: true}

	tests := []struct {
		name     string
		found    *user.User
		password string
		wantErr  error
	}{
		{"success", active, "correct-horse", nil},
		{"unknown user", nil, "correct-horse", ErrInvalidCredentials},
		{"wrong password", active, "nope", ErrInvalidCredentials},
		{"no password", noPassword, "correct-horse", ErrInvalidCredentials},
		{"inactive", inactive, "correct-horse", ErrUserInactive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := jwt.New("secret")
			s := NewAuthService(j, &FakeUserRepository{
				FetchUserByLoginFunc: func(_ context.Context, login string) (*user.User, error) {
					assert.Equal(t, "alice", login)
					return tt.found, nil
				},
			})

			token, u, err := s.Login(context.Background(), " alice ", tt.password)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, token)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, active.UUID, u.UUID)
			claims, err := j.ValidateToken(token)
			require.NoError(t, err)
			assert.Equal(t, user.RoleAdmin, claims.Role)
			assert.Equal(t, active.UUID.String(), claims.UserID)
		})
	}
}
