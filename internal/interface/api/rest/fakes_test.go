package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"palmr-api/internal/application/ports"
	"palmr-api/internal/domain/file_token"
	"palmr-api/internal/domain/invite"
	domainUser "palmr-api/internal/domain/user"
	domainFile "palmr-api/internal/domain/user_file"
	"palmr-api/internal/infrastructure/jwt"
)

const testSecret = "test-secret"

type FakeFileService struct {
	RequestUploadURLFunc func(ctx context.Context, userUUID domainUser.UUID, in ports.UploadURLInput) (*ports.PresignedURL, error)
	DownloadURLFunc      func(ctx context.Context, userUUID domainUser.UUID, objectName string) (*ports.PresignedURL, error)
	RegisterFileFunc     func(ctx context.Context, userUUID domainUser.UUID, in domainFile.UserFile) (*domainFile.UserFile, error)
	ListFilesFunc        func(ctx context.Context, userUUID domainUser.UUID, page int) (domainFile.UserFiles, error)
	DeleteFileFunc       func(ctx context.Context, userUUID domainUser.UUID, fileUUID uuid.UUID) error
}

func (f *FakeFileService) RequestUploadURL(ctx context.Context, userUUID domainUser.UUID, in ports.UploadURLInput) (*ports.PresignedURL, error) {
	if f.RequestUploadURLFunc == nil {
		return nil, errors.New("not used")
	}
	return f.RequestUploadURLFunc(ctx, userUUID, in)
}
func (f *FakeFileService) DownloadURL(ctx context.Context, userUUID domainUser.UUID, objectName string) (*ports.PresignedURL, error) {
	if f.DownloadURLFunc == nil {
		return nil, errors.New("not used")
	}
	return f.DownloadURLFunc(ctx, userUUID, objectName)
}
func (f *FakeFileService) RegisterFile(ctx context.Context, userUUID domainUser.UUID, in domainFile.UserFile) (*domainFile.UserFile, error) {
	if f.RegisterFileFunc == nil {
		return nil, errors.New("not used")
	}
	return f.RegisterFileFunc(ctx, userUUID, in)
}
func (f *FakeFileService) ListFiles(ctx context.Context, userUUID domainUser.UUID, page int) (domainFile.UserFiles, error) {
	if f.ListFilesFunc == nil {
		return nil, errors.New("not used")
	}
	return f.ListFilesFunc(ctx, userUUID, page)
}
func (f *FakeFileService) DeleteFile(ctx context.Context, userUUID domainUser.UUID, fileUUID uuid.UUID) error {
	if f.DeleteFileFunc == nil {
		return errors.New("not used")
	}
	return f.DeleteFileFunc(ctx, userUUID, fileUUID)
}

type FakeFileTokenService struct {
	IssueFunc   func(ctx context.Context, kind file_token.Kind, objectName, fileName string, ttl time.Duration) (string, time.Time, error)
	ResolveFunc func(ctx context.Context, kind file_token.Kind, value string) (*file_token.Token, error)
}

func (f *FakeFileTokenService) Issue(ctx context.Context, kind file_token.Kind, objectName, fileName string, ttl time.Duration) (string, time.Time, error) {
	if f.IssueFunc == nil {
		return "", time.Time{}, errors.New("not used")
	}
	return f.IssueFunc(ctx, kind, objectName, fileName, ttl)
}
func (f *FakeFileTokenService) Resolve(ctx context.Context, kind file_token.Kind, value string) (*file_token.Token, error) {
	if f.ResolveFunc == nil {
		return nil, errors.New("not used")
	}
	return f.ResolveFunc(ctx, kind, value)
}

type FakeObjectFiles struct {
	OpenFunc  func(objectName string) (*os.File, error)
	WriteFunc func(ctx context.Context, objectName string, r io.Reader) (int64, error)
}

func (f *FakeObjectFiles) Open(objectName string) (*os.File, error) {
	if f.OpenFunc == nil {
		return nil, errors.New("not used")
	}
	return f.OpenFunc(objectName)
}
func (f *FakeObjectFiles) Write(ctx context.Context, objectName string, r io.Reader) (int64, error) {
	if f.WriteFunc == nil {
		return 0, errors.New("not used")
	}
	return f.WriteFunc(ctx, objectName, r)
}

type FakeInviteService struct {
	CreateInviteFunc       func(ctx context.Context, createdBy domainUser.UUID) (*invite.Token, error)
	ValidateInviteFunc     func(ctx context.Context, token string) (ports.InviteStatus, error)
	RegisterWithInviteFunc func(ctx context.Context, in ports.RegisterWithInviteInput) (*domainUser.User, error)
}

func (f *FakeInviteService) CreateInvite(ctx context.Context, createdBy domainUser.UUID) (*invite.Token, error) {
	if f.CreateInviteFunc == nil {
		return nil, errors.New("not used")
	}
	return f.CreateInviteFunc(ctx, createdBy)
}
func (f *FakeInviteService) ValidateInvite(ctx context.Context, token string) (ports.InviteStatus, error) {
	if f.ValidateInviteFunc == nil {
		return ports.InviteStatus{}, errors.New("not used")
	}
	return f.ValidateInviteFunc(ctx, token)
}
func (f *FakeInviteService) RegisterWithInvite(ctx context.Context, in ports.RegisterWithInviteInput) (*domainUser.User, error) {
	if f.RegisterWithInviteFunc == nil {
		return nil, errors.New("not used")
	}
	return f.RegisterWithInviteFunc(ctx, in)
}

type FakeUserService struct {
	FindUserByIDFunc func(ctx context.Context, uuid domainUser.UUID) (*domainUser.User, error)
	UpdateAvatarFunc func(ctx context.Context, uuid domainUser.UUID, image io.Reader) (*domainUser.User, error)
	EnsureAdminFunc  func(ctx context.Context, email, password string) (bool, error)
}

func (f *FakeUserService) FindUserByID(ctx context.Context, uuid domainUser.UUID) (*domainUser.User, error) {
	if f.FindUserByIDFunc == nil {
		return nil, errors.New("not used")
	}
	return f.FindUserByIDFunc(ctx, uuid)
}
func (f *FakeUserService) UpdateAvatar(ctx context.Context, uuid domainUser.UUID, image io.Reader) (*domainUser.User, error) {
	if f.UpdateAvatarFunc == nil {
		return nil, errors.New("not used")
	}
	return f.UpdateAvatarFunc(ctx, uuid, image)
}
func (f *FakeUserService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	if f.EnsureAdminFunc == nil {
		return false, errors.New("not used")
	}
	return f.EnsureAdminFunc(ctx, email, password)
}

func newTestRouter(t *testing.T) (*gin.Engine, *jwt.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return gin.New(), jwt.New(testSecret)
}

func bearer(t *testing.T, j *jwt.Service, userID domainUser.UUID, role string) map[string]string {
	t.Helper()
	tok, err := j.GenerateJWT(userID.String(), role, time.Hour)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + tok}
}

func doReq(t *testing.T, r *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	case []byte:
		reader = bytes.NewReader(v)
	default:
		b, err := json.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		if _, isBytes := body.([]byte); !isBytes {
			req.Header.Set("Content-Type", "application/json")
		}
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}
