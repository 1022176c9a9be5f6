package file_token

import (
	"context"
	"time"
)

// Store keeps issued tokens. Find returns (nil, nil) for unknown tokens.
type Store interface {
	Save(ctx context.Context, t Token, ttl time.Duration) error
	Find(ctx context.Context, value string) (*Token, error)
}
