package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"palmr-api/internal/application/ports"
	"palmr-api/internal/domain/user"
	domain "palmr-api/internal/domain/user_file"
	"palmr-api/internal/infrastructure/mq"
	"palmr-api/pkg/filename"
)

const (
	UploadURLExpiry   = time.Hour
	DownloadURLExpiry = time.Hour
)

type FileService struct {
	logger             *zap.Logger
	storage            ports.Storage
	userFileRepository domain.Repository
	userRepository     user.Repository
	events             ports.EventPublisher
	mCounter           *prometheus.CounterVec
	maxFileSize        int64
	now                func() time.Time
}

func NewFileService(
	logger *zap.Logger,
	storage ports.Storage,
	userFileRepository domain.Repository,
	userRepository user.Repository,
	events ports.EventPublisher,
	mCounter *prometheus.CounterVec,
	maxFileSize int64,
) ports.FileService {
	return &FileService{
		logger:             logger,
		storage:            storage,
		userFileRepository: userFileRepository,
		userRepository:     userRepository,
		events:             events,
		mCounter:           mCounter,
		maxFileSize:        maxFileSize,
		now:                time.Now,
	}
}

func (fs *FileService) checkSize(size int64) error {
	if size < 0 {
		return ErrInvalidFileSize
	}
	if fs.maxFileSize > 0 && size > fs.maxFileSize {
		return ErrFileTooLarge
	}
	return nil
}

// RequestUploadURL presigns a PUT for the caller. An empty object name gets
// a server generated key.
func (fs *FileService) RequestUploadURL(
	ctx context.Context,
	userUUID user.UUID,
	in ports.UploadURLInput,
) (*ports.PresignedURL, error) {
	if err := fs.checkSize(in.Size); err != nil {
		return nil, err
	}

	objectName := strings.TrimSpace(in.ObjectName)
	if objectName == "" {
		objectName = domain.NewObjectName(userUUID, fs.now())
	} else if !domain.OwnsObject(userUUID, objectName) {
		return nil, ErrObjectOutsidePrefix
	}

	url, err := fs.storage.PresignUpload(ctx, objectName, UploadURLExpiry)
	if err != nil {
		return nil, err
	}

	fs.mCounter.WithLabelValues("upload_url_issued_total").Inc()

	return &ports.PresignedURL{
		URL:        url,
		ObjectName: objectName,
		ExpiresAt:  fs.now().Add(UploadURLExpiry),
	}, nil
}

func (fs *FileService) DownloadURL(
	ctx context.Context,
	userUUID user.UUID,
	objectName string,
) (*ports.PresignedURL, error) {
	if !domain.OwnsObject(userUUID, objectName) {
		return nil, ErrObjectOutsidePrefix
	}

	id, err := fs.userRepository.FetchInternalID(ctx, userUUID)
	if err != nil {
		return nil, err
	}
	uf, err := fs.userFileRepository.FetchByObjectName(ctx, id, objectName)
	if err != nil {
		return nil, err
	}
	if uf == nil {
		return nil, ErrFileNotFound
	}

	url, err := fs.storage.PresignDownload(ctx, objectName, uf.Name, DownloadURLExpiry)
	if err != nil {
		return nil, err
	}

	fs.mCounter.WithLabelValues("download_url_issued_total").Inc()

	return &ports.PresignedURL{
		URL:        url,
		ObjectName: objectName,
		ExpiresAt:  fs.now().Add(DownloadURLExpiry),
	}, nil
}

// RegisterFile records metadata for an object the client already uploaded.
func (fs *FileService) RegisterFile(
	ctx context.Context,
	userUUID user.UUID,
	in domain.UserFile,
) (*domain.UserFile, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, ErrFileNameRequired
	}
	if !domain.OwnsObject(userUUID, in.ObjectName) {
		return nil, ErrObjectOutsidePrefix
	}
	if fs.maxFileSize > 0 && in.SizeBytes > uint64(fs.maxFileSize) {
		return nil, ErrFileTooLarge
	}
	in.Name = filename.Base(in.Name)
	if in.Extension == "" {
		in.Extension = filename.Extension(in.Name)
	}
	in.Extension = strings.ToLower(strings.TrimPrefix(in.Extension, "."))

	id, err := fs.userRepository.FetchInternalID(ctx, userUUID)
	if err != nil {
		return nil, err
	}

	uf, err := fs.userFileRepository.CreateUserFile(ctx, id, &in)
	if err != nil {
		if errors.Is(err, domain.ErrObjectAlreadyRegistered) {
			return nil, ErrFileRegistered
		}
		return nil, err
	}

	fs.events.Publish(mq.NewEvent(mq.ActionFileRegistered, userUUID.String(), fileEventPayload(uf)))
	fs.mCounter.WithLabelValues("file_registered_total").Inc()

	return uf, nil
}

func (fs *FileService) ListFiles(ctx context.Context, userUUID user.UUID, page int) (domain.UserFiles, error) {
	if page < 1 {
		page = 1
	}

	id, err := fs.userRepository.FetchInternalID(ctx, userUUID)
	if err != nil {
		return nil, err
	}

	return fs.userFileRepository.FetchUserFiles(ctx, id, page)
}

// DeleteFile soft-deletes the record, then removes the object. A failed
// object removal is logged and counted; the record stays deleted.
func (fs *FileService) DeleteFile(ctx context.Context, userUUID user.UUID, fileUUID uuid.UUID) error {
	id, err := fs.userRepository.FetchInternalID(ctx, userUUID)
	if err != nil {
		return err
	}

	uf, err := fs.userFileRepository.DeleteUserFile(ctx, id, fileUUID)
	if err != nil {
		return err
	}
	if uf == nil {
		return ErrFileNotFound
	}

	if err = fs.storage.DeleteObject(ctx, uf.ObjectName); err != nil {
		fs.logger.Error("DeleteObject() error",
			zap.Error(err),
			zap.String("object_name", uf.ObjectName),
		)
		fs.mCounter.WithLabelValues("file_object_delete_failed_total").Inc()
	}

	fs.events.Publish(mq.NewEvent(mq.ActionFileDeleted, userUUID.String(), fileEventPayload(uf)))
	fs.mCounter.WithLabelValues("file_deleted_total").Inc()

	return nil
}

func fileEventPayload(uf *domain.UserFile) map[string]any {
	return map[string]any{
		"uuid":       uf.UUID.String(),
		"name":       uf.Name,
		"objectName": uf.ObjectName,
		"size":       uf.SizeBytes,
	}
}
