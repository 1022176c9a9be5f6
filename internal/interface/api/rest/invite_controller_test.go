package rest

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"palmr-api/internal/application/ports"
	"palmr-api/internal/application/services"
	"palmr-api/internal/domain/invite"
	domainUser "palmr-api/internal/domain/user"
	inviteDTO "palmr-api/internal/interface/api/rest/dto/invite"
)

func validRegisterBody() inviteDTO.RegisterRequest {
	return inviteDTO.RegisterRequest{
		Token:     "invite-token",
		Username:  "bob",
		Email:     "bob@example.com",
		Password:  "VeryStrongPassw0rd",
		FirstName: "Bob",
		LastName:  "Builder",
	}
}

func TestInviteController_CreateInviteHandler(t *testing.T) {
	expires := time.Date(2026, 3, 1, 10, 15, 0, 0, time.UTC)

	tests := []struct {
		name       string
		role       string
		wantStatus int
	}{
		{name: "403 for regular users", role: domainUser.RoleUser, wantStatus: http.StatusForbidden},
		{name: "201 for admins", role: domainUser.RoleAdmin, wantStatus: http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adminID := uuid.New()
			r, j := newTestRouter(t)
			NewInviteController(r, &FakeInviteService{
				CreateInviteFunc: func(ctx context.Context, createdBy domainUser.UUID) (*invite.Token, error) {
					assert.Equal(t, adminID, createdBy)
					return &invite.Token{Token: "t0k", ExpiresAt: expires, CreatedBy: createdBy}, nil
				},
			}, zap.NewNop(), j)

			rr := doReq(t, r, http.MethodPost, RouteInviteTokens, nil, bearer(t, j, adminID, tt.role))
			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusCreated {
				resp := decodeBody(t, rr)
				assert.Equal(t, "t0k", resp["token"])
				assert.Equal(t, "2026-03-01T10:15:00Z", resp["expiresAt"])
			}
		})
	}

	t.Run("401 anonymous", func(t *testing.T) {
		r, j := newTestRouter(t)
		NewInviteController(r, &FakeInviteService{}, zap.NewNop(), j)
		rr := doReq(t, r, http.MethodPost, RouteInviteTokens, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestInviteController_ValidateInviteHandler(t *testing.T) {
	tests := []struct {
		name   string
		status ports.InviteStatus
		want   map[string]any
	}{
		{name: "valid", status: ports.InviteStatus{Valid: true}, want: map[string]any{"valid": true}},
		{name: "used", status: ports.InviteStatus{Used: true}, want: map[string]any{"valid": false, "used": true}},
		{name: "expired", status: ports.InviteStatus{Expired: true}, want: map[string]any{"valid": false, "expired": true}},
		{name: "unknown", status: ports.InviteStatus{}, want: map[string]any{"valid": false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, j := newTestRouter(t)
			NewInviteController(r, &FakeInviteService{
				ValidateInviteFunc: func(ctx context.Context, token string) (ports.InviteStatus, error) {
					assert.Equal(t, "abc", token)
					return tt.status, nil
				},
			}, zap.NewNop(), j)

			rr := doReq(t, r, http.MethodGet, RouteInviteTokens+"/abc", nil, nil)
			require.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tt.want, decodeBody(t, rr))
		})
	}
}

func TestInviteController_RegisterHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		err        error
		wantStatus int
		wantErr    string
	}{
		{
			name:       "400 invalid body",
			body:       inviteDTO.RegisterRequest{Token: "x"},
			wantStatus: http.StatusBadRequest,
			wantErr:    "invalid request body",
		},
		{
			name:       "400 invalid token",
			body:       validRegisterBody(),
			err:        services.ErrInviteInvalid,
			wantStatus: http.StatusBadRequest,
			wantErr:    "Invalid invite token",
		},
		{
			name:       "400 used token",
			body:       validRegisterBody(),
			err:        services.ErrInviteUsed,
			wantStatus: http.StatusBadRequest,
			wantErr:    "Invite token has already been used",
		},
		{
			name:       "400 expired token",
			body:       validRegisterBody(),
			err:        services.ErrInviteExpired,
			wantStatus: http.StatusBadRequest,
			wantErr:    "Invite token has expired",
		},
		{
			name:       "400 username taken",
			body:       validRegisterBody(),
			err:        services.ErrUsernameTaken,
			wantStatus: http.StatusBadRequest,
			wantErr:    "Username already exists",
		},
		{
			name:       "400 email taken",
			body:       validRegisterBody(),
			err:        services.ErrEmailTaken,
			wantStatus: http.StatusBadRequest,
			wantErr:    "Email already exists",
		},
		{
			name:       "500 transaction failure",
			body:       validRegisterBody(),
			err:        errors.New("tx aborted"),
			wantStatus: http.StatusInternalServerError,
			wantErr:    "failed to register",
		},
		{
			name:       "201",
			body:       validRegisterBody(),
			wantStatus: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, j := newTestRouter(t)
			NewInviteController(r, &FakeInviteService{
				RegisterWithInviteFunc: func(ctx context.Context, in ports.RegisterWithInviteInput) (*domainUser.User, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					assert.Equal(t, "invite-token", in.Token)
					assert.Equal(t, "bob", in.Username)
					return &domainUser.User{UUID: uuid.New(), Username: in.Username, Email: in.Email, IsActive: true}, nil
				},
			}, zap.NewNop(), j)

			rr := doReq(t, r, http.MethodPost, RouteRegisterWithInvite, tt.body, nil)
			require.Equal(t, tt.wantStatus, rr.Code)

			resp := decodeBody(t, rr)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, resp["error"])
				return
			}
			assert.Equal(t, "bob", resp["username"])
			assert.Equal(t, false, resp["isAdmin"])
			assert.NotContains(t, resp, "password")
		})
	}
}
