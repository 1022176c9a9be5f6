package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"palmr-api/internal/domain/user"
	"palmr-api/internal/domain/user_file"
)

type (
	UploadURLInput struct {
		ObjectName string
		FileName   string
		Size       int64
	}
	PresignedURL struct {
		URL        string
		ObjectName string
		ExpiresAt  time.Time
	}
)

type FileService interface {
	RequestUploadURL(ctx context.Context, userUUID user.UUID, in UploadURLInput) (*PresignedURL, error)
	DownloadURL(ctx context.Context, userUUID user.UUID, objectName string) (*PresignedURL, error)
	RegisterFile(ctx context.Context, userUUID user.UUID, in user_file.UserFile) (*user_file.UserFile, error)
	ListFiles(ctx context.Context, userUUID user.UUID, page int) (user_file.UserFiles, error)
	DeleteFile(ctx context.Context, userUUID user.UUID, fileUUID uuid.UUID) error
}
