package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"palmr-api/internal/domain/file_token"
	"palmr-api/internal/domain/invite"
	"palmr-api/internal/domain/user"
	"palmr-api/internal/domain/user_file"
	"palmr-api/internal/infrastructure/metrics"
	"palmr-api/internal/infrastructure/mq"
)

var errNotUsed = errors.New("not used")

func newCounter() *prometheus.CounterVec { return metrics.NewCounter(prometheus.NewRegistry()) }

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type FakeUserRepository struct {
	FetchUserByIDFunc    func(ctx context.Context, uuid user.UUID) (*user.User, error)
	FetchUserByLoginFunc func(ctx context.Context, login string) (*user.User, error)
	CountUsersFunc       func(ctx context.Context) (int64, error)
	CreateUserFunc       func(ctx context.Context, req user.User) (*user.User, error)
	UpdateAvatarFunc     func(ctx context.Context, uuid user.UUID, image string) (*user.User, error)
	FetchInternalIDFunc  func(ctx context.Context, uuid user.UUID) (user.ID, error)
}

func (f *FakeUserRepository) FetchUserByID(ctx context.Context, uuid user.UUID) (*user.User, error) {
	if f.FetchUserByIDFunc == nil {
		return nil, errNotUsed
	}
	return f.FetchUserByIDFunc(ctx, uuid)
}
func (f *FakeUserRepository) FetchUserByLogin(ctx context.Context, login string) (*user.User, error) {
	if f.FetchUserByLoginFunc == nil {
		return nil, errNotUsed
	}
	return f.FetchUserByLoginFunc(ctx, login)
}
func (f *FakeUserRepository) CountUsers(ctx context.Context) (int64, error) {
	if f.CountUsersFunc == nil {
		return 0, errNotUsed
	}
	return f.CountUsersFunc(ctx)
}
func (f *FakeUserRepository) CreateUser(ctx context.Context, req user.User) (*user.User, error) {
	if f.CreateUserFunc == nil {
		return nil, errNotUsed
	}
	return f.CreateUserFunc(ctx, req)
}
func (f *FakeUserRepository) UpdateAvatar(ctx context.Context, uuid user.UUID, image string) (*user.User, error) {
	if f.UpdateAvatarFunc == nil {
		return nil, errNotUsed
	}
	return f.UpdateAvatarFunc(ctx, uuid, image)
}
func (f *FakeUserRepository) FetchInternalID(ctx context.Context, uuid user.UUID) (user.ID, error) {
	if f.FetchInternalIDFunc == nil {
		return 7, nil
	}
	return f.FetchInternalIDFunc(ctx, uuid)
}

type FakeUserFileRepository struct {
	FetchUserFilesFunc    func(ctx context.Context, userID user.ID, page int) (user_file.UserFiles, error)
	FetchByObjectNameFunc func(ctx context.Context, userID user.ID, objectName string) (*user_file.UserFile, error)
	CreateUserFileFunc    func(ctx context.Context, userID user.ID, req *user_file.UserFile) (*user_file.UserFile, error)
	DeleteUserFileFunc    func(ctx context.Context, userID user.ID, fileUUID uuid.UUID) (*user_file.UserFile, error)
}

func (f *FakeUserFileRepository) FetchUserFiles(ctx context.Context, userID user.ID, page int) (user_file.UserFiles, error) {
	if f.FetchUserFilesFunc == nil {
		return nil, errNotUsed
	}
	return f.FetchUserFilesFunc(ctx, userID, page)
}
func (f *FakeUserFileRepository) FetchByObjectName(ctx context.Context, userID user.ID, objectName string) (*user_file.UserFile, error) {
	if f.FetchByObjectNameFunc == nil {
		return nil, errNotUsed
	}
	return f.FetchByObjectNameFunc(ctx, userID, objectName)
}
func (f *FakeUserFileRepository) CreateUserFile(ctx context.Context, userID user.ID, req *user_file.UserFile) (*user_file.UserFile, error) {
	if f.CreateUserFileFunc == nil {
		return nil, errNotUsed
	}
	return f.CreateUserFileFunc(ctx, userID, req)
}
func (f *FakeUserFileRepository) DeleteUserFile(ctx context.Context, userID user.ID, fileUUID uuid.UUID) (*user_file.UserFile, error) {
	if f.DeleteUserFileFunc == nil {
		return nil, errNotUsed
	}
	return f.DeleteUserFileFunc(ctx, userID, fileUUID)
}

type FakeInviteRepository struct {
	CreateTokenFunc  func(ctx context.Context, token string, createdBy user.UUID, expiresAt time.Time) (*invite.Token, error)
	FetchTokenFunc   func(ctx context.Context, token string) (*invite.Token, error)
	ConsumeTokenFunc func(ctx context.Context, token string, u user.User, now time.Time) (*user.User, error)
}

func (f *FakeInviteRepository) CreateToken(ctx context.Context, token string, createdBy user.UUID, expiresAt time.Time) (*invite.Token, error) {
	if f.CreateTokenFunc == nil {
		return nil, errNotUsed
	}
	return f.CreateTokenFunc(ctx, token, createdBy, expiresAt)
}
func (f *FakeInviteRepository) FetchToken(ctx context.Context, token string) (*invite.Token, error) {
	if f.FetchTokenFunc == nil {
		return nil, errNotUsed
	}
	return f.FetchTokenFunc(ctx, token)
}
func (f *FakeInviteRepository) ConsumeToken(ctx context.Context, token string, u user.User, now time.Time) (*user.User, error) {
	if f.ConsumeTokenFunc == nil {
		return nil, errNotUsed
	}
	return f.ConsumeTokenFunc(ctx, token, u, now)
}

type FakeStorage struct {
	PresignUploadFunc   func(ctx context.Context, objectName string, expires time.Duration) (string, error)
	PresignDownloadFunc func(ctx context.Context, objectName, fileName string, expires time.Duration) (string, error)
	DeleteObjectFunc    func(ctx context.Context, objectName string) error
}

func (f *FakeStorage) PresignUpload(ctx context.Context, objectName string, expires time.Duration) (string, error) {
	if f.PresignUploadFunc == nil {
		return "", errNotUsed
	}
	return f.PresignUploadFunc(ctx, objectName, expires)
}
func (f *FakeStorage) PresignDownload(ctx context.Context, objectName, fileName string, expires time.Duration) (string, error) {
	if f.PresignDownloadFunc == nil {
		return "", errNotUsed
	}
	return f.PresignDownloadFunc(ctx, objectName, fileName, expires)
}
func (f *FakeStorage) DeleteObject(ctx context.Context, objectName string) error {
	if f.DeleteObjectFunc == nil {
		return errNotUsed
	}
	return f.DeleteObjectFunc(ctx, objectName)
}

type FakeAvatar struct {
	ProcessFunc func(r io.Reader) (string, error)
}

func (f *FakeAvatar) Process(r io.Reader) (string, error) { return f.ProcessFunc(r) }

type recordingPublisher struct {
	mu     sync.Mutex
	events []mq.Event
}

func (p *recordingPublisher) Publish(e mq.Event) {
	p.mu.Lock()
	p.events = append(p.events, e)
	p.mu.Unlock()
}

func (p *recordingPublisher) actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Action
	}
	return out
}

type memoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]file_token.Token
	err    error
}

func (m *memoryTokenStore) Save(_ context.Context, t file_token.Token, _ time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tokens == nil {
		m.tokens = make(map[string]file_token.Token)
	}
	m.tokens[t.Value] = t
	return nil
}

func (m *memoryTokenStore) Find(_ context.Context, value string) (*file_token.Token, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[value]
	if !ok {
		return nil, nil
	}
	return &t, nil
}
