// Package palmrclient talks to the Palmr REST API.
package palmrclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	pathLogin       = "/api/v1/auth/login"
	pathFiles       = "/api/v1/files"
	pathUploadURL   = "/api/v1/files/upload-url"
	pathDownloadURL = "/api/v1/files/download-url"
	pathInvites     = "/api/v1/invite-tokens"
	pathRegister    = "/api/v1/register-with-invite"

	maxErrorBody = 4 << 10
)

var ErrNotLoggedIn = errors.New("palmrclient: not logged in")

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("palmr api: %d: %s", e.StatusCode, e.Message)
}

type (
	User struct {
		ID        string    `json:"id"`
		Username  string    `json:"username"`
		Email     string    `json:"email"`
		FirstName string    `json:"firstName"`
		LastName  string    `json:"lastName"`
		Image     *string   `json:"image"`
		IsAdmin   bool      `json:"isAdmin"`
		IsActive  bool      `json:"isActive"`
		CreatedAt time.Time `json:"createdAt"`
	}
	PresignedURL struct {
		URL        string    `json:"url"`
		ObjectName string    `json:"objectName"`
		ExpiresAt  time.Time `json:"expiresAt"`
	}
	File struct {
		ID         string    `json:"id"`
		Name       string    `json:"name"`
		Extension  string    `json:"extension"`
		Size       uint64    `json:"size"`
		ObjectName string    `json:"objectName"`
		FolderID   *string   `json:"folderId"`
		CreatedAt  time.Time `json:"createdAt"`
	}
	RegisterFileInput struct {
		Name       string  `json:"name"`
		ObjectName string  `json:"objectName"`
		Size       int64   `json:"size"`
		Extension  string  `json:"extension"`
		FolderID   *string `json:"folderId,omitempty"`
	}
	Invite struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expiresAt"`
	}
	InviteStatus struct {
		Valid   bool `json:"valid"`
		Used    bool `json:"used"`
		Expired bool `json:"expired"`
	}
	RegisterInput struct {
		Token     string `json:"token"`
		Username  string `json:"username"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}
)

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option { return func(cl *Client) { cl.http = c } }

func WithToken(token string) Option { return func(cl *Client) { cl.token = token } }

func WithClock(now func() time.Time) Option { return func(cl *Client) { cl.now = now } }

func WithLogger(logger *zap.Logger) Option {
	return func(cl *Client) {
		if logger != nil {
			cl.logger = logger
		}
	}
}

type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
	now     func() time.Time

	mu    sync.RWMutex
	token string
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Login exchanges credentials for a bearer token and keeps it for later
// calls.
func (c *Client) Login(ctx context.Context, login, password string) (User, error) {
	var resp struct {
		AccessToken string `json:"access_token"`
		User        User   `json:"user"`
	}
	body := map[string]string{"login": login, "password": password}
	if err := c.do(ctx, http.MethodPost, pathLogin, body, &resp, false); err != nil {
		return User{}, err
	}
	c.SetToken(resp.AccessToken)

	return resp.User, nil
}

// UploadURL asks for a presigned PUT URL. An empty objectName lets the server
// choose the key.
func (c *Client) UploadURL(ctx context.Context, objectName, fileName string, size int64) (PresignedURL, error) {
	var p PresignedURL
	body := map[string]any{"objectName": objectName, "fileName": fileName, "size": size}
	err := c.do(ctx, http.MethodPost, pathUploadURL, body, &p, true)
	return p, err
}

func (c *Client) DownloadURL(ctx context.Context, objectName, password string) (PresignedURL, error) {
	q := url.Values{"objectName": {objectName}}
	if password != "" {
		q.Set("password", password)
	}
	var p PresignedURL
	err := c.do(ctx, http.MethodGet, pathDownloadURL+"?"+q.Encode(), nil, &p, true)
	return p, err
}

func (c *Client) RegisterFile(ctx context.Context, in RegisterFileInput) (File, error) {
	var f File
	err := c.do(ctx, http.MethodPost, pathFiles, in, &f, true)
	return f, err
}

func (c *Client) ListFiles(ctx context.Context, page int) ([]File, error) {
	var resp struct {
		Data []File `json:"data"`
	}
	err := c.do(ctx, http.MethodGet, pathFiles+"?page="+strconv.Itoa(page), nil, &resp, true)
	return resp.Data, err
}

func (c *Client) DeleteFile(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, pathFiles+"/"+url.PathEscape(id), nil, nil, true)
}

func (c *Client) CreateInvite(ctx context.Context) (Invite, error) {
	var inv Invite
	err := c.do(ctx, http.MethodPost, pathInvites, nil, &inv, true)
	return inv, err
}

func (c *Client) ValidateInvite(ctx context.Context, token string) (InviteStatus, error) {
	var s InviteStatus
	err := c.do(ctx, http.MethodGet, pathInvites+"/"+url.PathEscape(token), nil, &s, false)
	return s, err
}

func (c *Client) RegisterWithInvite(ctx context.Context, in RegisterInput) (User, error) {
	var u User
	err := c.do(ctx, http.MethodPost, pathRegister, in, &u, false)
	return u, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, auth bool) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		token := c.Token()
		if token == "" {
			return ErrNotLoggedIn
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err = decodeError(resp)
		c.logger.Debug("palmr api error", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return err
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}

	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var payload struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
		msg = payload.Error
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
