package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"palmr-api/internal/application/apperr"
	"palmr-api/internal/domain/user"
	"palmr-api/internal/infrastructure/avatar"
	"palmr-api/internal/infrastructure/mq"
)

func newUserService(repo *FakeUserRepository, proc *FakeAvatar) (*UserService, *recordingPublisher) {
	events := &recordingPublisher{}
	return &UserService{
		logger:         zap.NewNop(),
		userRepository: repo,
		avatar:         proc,
		events:         events,
		mCounter:       newCounter(),
	}, events
}

func TestFindUserByID_NotFound(t *testing.T) {
	s, _ := newUserService(&FakeUserRepository{
		FetchUserByIDFunc: func(context.Context, user.UUID) (*user.User, error) { return nil, nil },
	}, nil)

	_, err := s.FindUserByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateAvatar(t *testing.T) {
	id := uuid.New()

	t.Run("stores data url", func(t *testing.T) {
		repo := &FakeUserRepository{
			UpdateAvatarFunc: func(_ context.Context, got user.UUID, image string) (*user.User, error) {
				assert.Equal(t, id, got)
				assert.Equal(t, "data:image/webp;base64,AAAA", image)
				return &user.User{UUID: got, Image: &image}, nil
			},
		}
		proc := &FakeAvatar{ProcessFunc: func(r io.Reader) (string, error) {
			b, _ := io.ReadAll(r)
			assert.Equal(t, "png-bytes", string(b))
			return "data:image/webp;base64,AAAA", nil
		}}
		s, _ := newUserService(repo, proc)

		u, err := s.UpdateAvatar(context.Background(), id, strings.NewReader("png-bytes"))
		require.NoError(t, err)
		assert.Equal(t, "data:image/webp;base64,AAAA", *u.Image)
	})

	cases := []struct {
		procErr  error
		wantKind apperr.Kind
	}{
		{fmt.Errorf("%w: application/pdf", avatar.ErrUnsupportedFormat), apperr.KindUnsupportedMedia},
		{avatar.ErrTooLarge, apperr.KindTooLarge},
		{avatar.ErrDecode, apperr.KindValidation},
		{errors.New("disk"), apperr.KindInternal},
	}
	for _, tc := range cases {
		t.Run(tc.wantKind.String(), func(t *testing.T) {
			repo := &FakeUserRepository{}
			proc := &FakeAvatar{ProcessFunc: func(io.Reader) (string, error) { return "", tc.procErr }}
			s, _ := newUserService(repo, proc)

			_, err := s.UpdateAvatar(context.Background(), id, strings.NewReader("x"))
			require.Error(t, err)
			assert.Equal(t, tc.wantKind, apperr.KindOf(err))
		})
	}
}

func TestEnsureAdmin(t *testing.T) {
	t.Run("creates admin on empty table", func(t *testing.T) {
		var created user.User
		repo := &FakeUserRepository{
			CountUsersFunc: func(context.Context) (int64, error) { return 0, nil },
			CreateUserFunc: func(_ context.Context, req user.User) (*user.User, error) {
				created = req
				req.UUID = uuid.New()
				return &req, nil
			},
		}
		s, events := newUserService(repo, nil)

		ok, err := s.EnsureAdmin(context.Background(), "Root@Example.com", "password1")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, created.IsAdmin)
		assert.Equal(t, "root", created.Username)
		assert.Equal(t, "root@example.com", created.Email)
		assert.Equal(t, []string{mq.ActionUserRegistered}, events.actions())
	})

	t.Run("skips when users exist", func(t *testing.T) {
		repo := &FakeUserRepository{
			CountUsersFunc: func(context.Context) (int64, error) { return 3, nil },
		}
		s, _ := newUserService(repo, nil)

		ok, err := s.EnsureAdmin(context.Background(), "root@example.com", "password1")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("skips without credentials", func(t *testing.T) {
		s, _ := newUserService(&FakeUserRepository{}, nil)

		ok, err := s.EnsureAdmin(context.Background(), "", "")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
