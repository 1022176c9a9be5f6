package user_file

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"palmr-api/internal/domain/user"
)

var ErrObjectAlreadyRegistered = errors.New("object already registered")

type Repository interface {
	FetchUserFiles(ctx context.Context, userID user.ID, page int) (UserFiles, error)
	FetchByObjectName(ctx context.Context, userID user.ID, objectName string) (*UserFile, error)
	CreateUserFile(ctx context.Context, userID user.ID, req *UserFile) (*UserFile, error)
	DeleteUserFile(ctx context.Context, userID user.ID, fileUUID uuid.UUID) (*UserFile, error)
}
