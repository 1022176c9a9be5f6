package invite

import (
	"time"

	"palmr-api/internal/domain/user"
)

type Token struct {
	ID        uint64
	Token     string
	ExpiresAt time.Time
	CreatedBy user.UUID
	UsedAt    *time.Time
	CreatedAt time.Time
}

func (t *Token) IsUsed() bool { return t.UsedAt != nil }

// IsExpired reports whether now is at or past ExpiresAt.
func (t *Token) IsExpired(now time.Time) bool { return !now.Before(t.ExpiresAt) }
