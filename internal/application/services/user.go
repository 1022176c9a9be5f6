package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"palmr-api/internal/application/apperr"
	"palmr-api/internal/application/ports"
	domain "palmr-api/internal/domain/user"
	"palmr-api/internal/infrastructure/avatar"
	"palmr-api/internal/infrastructure/mq"
)

type UserService struct {
	logger         *zap.Logger
	userRepository domain.Repository
	avatar         ports.AvatarProcessor
	events         ports.EventPublisher
	mCounter       *prometheus.CounterVec
}

func NewUserService(
	logger *zap.Logger,
	userRepository domain.Repository,
	avatar ports.AvatarProcessor,
	events ports.EventPublisher,
	mCounter *prometheus.CounterVec,
) ports.UserService {
	return &UserService{
		logger:         logger,
		userRepository: userRepository,
		avatar:         avatar,
		events:         events,
		mCounter:       mCounter,
	}
}

func (us *UserService) FindUserByID(ctx context.Context, uuid domain.UUID) (*domain.User, error) {
	u, err := us.userRepository.FetchUserByID(ctx, uuid)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}

	return u, nil
}

func (us *UserService) UpdateAvatar(ctx context.Context, uuid domain.UUID, image io.Reader) (*domain.User, error) {
	dataURL, err := us.avatar.Process(image)
	if err != nil {
		switch {
		case errors.Is(err, avatar.ErrUnsupportedFormat):
			return nil, apperr.Wrap(apperr.KindUnsupportedMedia, ErrUnsupportedImage.Msg, err)
		case errors.Is(err, avatar.ErrTooLarge):
			return nil, ErrImageTooLarge
		case errors.Is(err, avatar.ErrDecode):
			return nil, ErrInvalidImage
		}
		return nil, err
	}

	u, err := us.userRepository.UpdateAvatar(ctx, uuid, dataURL)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}

	us.mCounter.WithLabelValues("avatar_updated_total").Inc()

	return u, nil
}

func (us *UserService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return false, nil
	}

	n, err := us.userRepository.CountUsers(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	h := string(hash)

	username := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		username = email[:at]
	}

	u, err := us.userRepository.CreateUser(ctx, domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: &h,
		FirstName:    "Admin",
		IsAdmin:      true,
		IsActive:     true,
	})
	if err != nil {
		return false, err
	}

	us.logger.Info("admin user bootstrapped", zap.Stringer("user_uuid", u.UUID), zap.String("username", u.Username))
	us.events.Publish(mq.NewEvent(mq.ActionUserRegistered, u.UUID.String(), map[string]any{
		"username": u.Username,
		"email":    u.Email,
		"via":      "bootstrap",
	}))

	return true, nil
}
