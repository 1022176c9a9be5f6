package ports

import (
	"context"
	"io"
	"os"
	"time"
)

// Storage is the object store behind presigned URLs: S3 or the local
// filesystem provider.
type Storage interface {
	PresignUpload(ctx context.Context, objectName string, expires time.Duration) (string, error)
	PresignDownload(ctx context.Context, objectName, fileName string, expires time.Duration) (string, error)
	DeleteObject(ctx context.Context, objectName string) error
}

// ObjectFiles is served by the filesystem provider only.
type ObjectFiles interface {
	Open(objectName string) (*os.File, error)
	Write(ctx context.Context, objectName string, r io.Reader) (int64, error)
}

type AvatarProcessor interface {
	Process(r io.Reader) (string, error)
}
