package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"palmr-api/internal/domain/file_token"
)

const (
	DownloadPath = "/api/v1/filesystem/download/"
	UploadPath   = "/api/v1/filesystem/upload/"
)

var ErrInvalidObjectName = errors.New("invalid object name")

type TokenIssuer interface {
	Issue(ctx context.Context, kind file_token.Kind, objectName, fileName string, ttl time.Duration) (string, time.Time, error)
}

// Storage keeps objects under a local root. Its "presigned" URLs point back
// at the API's token-gated filesystem routes.
type Storage struct {
	logger  *zap.Logger
	root    string
	baseURL string
	tokens  TokenIssuer
}

func New(logger *zap.Logger, root, publicBaseURL string, tokens TokenIssuer) (*Storage, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}
	if err = os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}

	logger.Info("filesystem storage configured", zap.String("root", abs))

	return &Storage{
		logger:  logger,
		root:    abs,
		baseURL: strings.TrimRight(publicBaseURL, "/"),
		tokens:  tokens,
	}, nil
}

func (s *Storage) PresignUpload(ctx context.Context, objectName string, expires time.Duration) (string, error) {
	if _, err := s.resolve(objectName); err != nil {
		return "", err
	}
	tok, _, err := s.tokens.Issue(ctx, file_token.KindUpload, objectName, path.Base(objectName), expires)
	if err != nil {
		return "", err
	}
	return s.baseURL + UploadPath + tok, nil
}

func (s *Storage) PresignDownload(ctx context.Context, objectName, fileName string, expires time.Duration) (string, error) {
	if _, err := s.resolve(objectName); err != nil {
		return "", err
	}
	if fileName == "" {
		fileName = path.Base(objectName)
	}
	tok, _, err := s.tokens.Issue(ctx, file_token.KindDownload, objectName, fileName, expires)
	if err != nil {
		return "", err
	}
	return s.baseURL + DownloadPath + tok, nil
}

func (s *Storage) DeleteObject(_ context.Context, objectName string) error {
	p, err := s.resolve(objectName)
	if err != nil {
		return err
	}
	if err = os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}

func (s *Storage) Open(objectName string) (*os.File, error) {
	p, err := s.resolve(objectName)
	if err != nil {
		return nil, err
	}
	return os.Open(p)
}

// Write stores r under objectName. Data lands in a temp file first so a
// failed or cancelled upload never leaves a partial object behind.
func (s *Storage) Write(ctx context.Context, objectName string, r io.Reader) (int64, error) {
	p, err := s.resolve(objectName)
	if err != nil {
		return 0, err
	}
	if err = os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return 0, fmt.Errorf("mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("create temp: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	n, err := io.Copy(tmp, &ctxReader{ctx: ctx, r: r})
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("write body: %w", err)
	}
	if err = os.Rename(tmp.Name(), p); err != nil {
		return n, fmt.Errorf("commit object: %w", err)
	}

	return n, nil
}

func (s *Storage) resolve(objectName string) (string, error) {
	if objectName == "" || strings.ContainsRune(objectName, 0) {
		return "", ErrInvalidObjectName
	}
	clean := filepath.Clean(filepath.FromSlash(objectName))
	if filepath.IsAbs(clean) || clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", ErrInvalidObjectName
	}
	return filepath.Join(s.root, clean), nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
