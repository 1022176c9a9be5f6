package ports

import (
	"context"
	"time"

	"palmr-api/internal/domain/file_token"
)

type FileTokenService interface {
	Issue(ctx context.Context, kind file_token.Kind, objectName, fileName string, ttl time.Duration) (string, time.Time, error)
	Resolve(ctx context.Context, kind file_token.Kind, value string) (*file_token.Token, error)
}
