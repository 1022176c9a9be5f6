package invite

import (
	"time"

	"github.com/google/uuid"

	domain "palmr-api/internal/domain/invite"
)

type Token struct {
	ID        uint64
	Token     string
	ExpiresAt time.Time
	CreatedBy uuid.UUID
	UsedAt    *time.Time
	CreatedAt time.Time
}

func (t *Token) scanDest() []any {
	return []any{&t.ID, &t.Token, &t.ExpiresAt, &t.CreatedBy, &t.UsedAt, &t.CreatedAt}
}

func fromDBModel(t *Token) *domain.Token {
	return &domain.Token{
		ID:        t.ID,
		Token:     t.Token,
		ExpiresAt: t.ExpiresAt,
		CreatedBy: t.CreatedBy,
		UsedAt:    t.UsedAt,
		CreatedAt: t.CreatedAt,
	}
}
