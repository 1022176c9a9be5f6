package services

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"palmr-api/internal/application/apperr"
	"palmr-api/internal/application/ports"
	"palmr-api/internal/domain/user"
	"palmr-api/internal/infrastructure/jwt"
)

const accessTokenTTL = 24 * time.Hour

type AuthService struct {
	jwtService     *jwt.Service
	userRepository user.Repository
}

func NewAuthService(
	jwtService *jwt.Service,
	userRepository user.Repository,
) ports.Auth {
	return &AuthService{
		jwtService:     jwtService,
		userRepository: userRepository,
	}
}

func (as *AuthService) Login(ctx context.Context, login, password string) (string, *user.User, error) {
	u, err := as.userRepository.FetchUserByLogin(ctx, strings.TrimSpace(login))
	if err != nil {
		return "", nil, err
	}
	if u == nil || u.PasswordHash == nil {
		return "", nil, ErrInvalidCredentials
	}

	if err = bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return "", nil, ErrUserInactive
	}

	token, err := as.jwtService.GenerateJWT(u.UUID.String(), u.Role(), accessTokenTTL)
	if err != nil {
		return "", nil, apperr.Wrap(apperr.KindInternal, "failed to generate token", err)
	}

	return token, u, nil
}
