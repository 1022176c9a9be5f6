package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"palmr-api/internal/application/apperr"
	"palmr-api/internal/application/ports"
	"palmr-api/internal/domain/file_token"
)

const tokenBytes = 32

type FileTokenService struct {
	store    file_token.Store
	mCounter *prometheus.CounterVec
	now      func() time.Time
}

func NewFileTokenService(store file_token.Store, mCounter *prometheus.CounterVec) ports.FileTokenService {
	return &FileTokenService{store: store, mCounter: mCounter, now: time.Now}
}

// Issue stores a fresh random token for objectName. Tokens stay valid until
// expiry and may be used more than once.
func (s *FileTokenService) Issue(
	ctx context.Context,
	kind file_token.Kind,
	objectName, fileName string,
	ttl time.Duration,
) (string, time.Time, error) {
	value, err := newToken()
	if err != nil {
		return "", time.Time{}, err
	}

	t := file_token.Token{
		Value:      value,
		Kind:       kind,
		ObjectName: objectName,
		FileName:   fileName,
		ExpiresAt:  s.now().Add(ttl),
	}
	if err = s.store.Save(ctx, t, ttl); err != nil {
		return "", time.Time{}, fmt.Errorf("save token: %w", err)
	}

	s.mCounter.WithLabelValues("file_token_issued_total").Inc()

	return value, t.ExpiresAt, nil
}

// Resolve treats a token of another kind like an unknown one.
func (s *FileTokenService) Resolve(ctx context.Context, kind file_token.Kind, value string) (*file_token.Token, error) {
	if value == "" {
		return nil, ErrTokenNotFound
	}

	t, err := s.store.Find(ctx, value)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "token lookup failed", err)
	}
	if t == nil || t.Kind != kind {
		return nil, ErrTokenNotFound
	}
	if t.Expired(s.now()) {
		return nil, ErrTokenExpired
	}

	return t, nil
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
