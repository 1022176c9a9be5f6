// Package transfer PUTs a file to a presigned storage URL with a size scaled
// timeout, progress reporting and classified failures.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	MiB = 1 << 20

	BaseTimeout       = 60 * time.Second
	PerMiBTimeout     = 10 * time.Second
	LargeFileMiB      = 100
	LargePerMiBExtra  = 5 * time.Second
	maxRejectBodySize = 1 << 10
)

type Kind string

const (
	KindNone       Kind = ""
	KindCanceled   Kind = "canceled"
	KindTimeout    Kind = "timeout"
	KindRejected   Kind = "rejected"
	KindNoResponse Kind = "no_response"
	KindUnreadable Kind = "unreadable"
)

// Retryable reports whether another attempt may succeed without user action.
func (k Kind) Retryable() bool {
	return k == KindTimeout || k == KindNoResponse
}

type Result struct {
	Success    bool
	Kind       Kind
	Reason     string
	StatusCode int
}

// Err returns nil on success and an *Error otherwise.
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	return &Error{Kind: r.Kind, Reason: r.Reason, StatusCode: r.StatusCode}
}

type Error struct {
	Kind       Kind
	Reason     string
	StatusCode int
}

func (e *Error) Error() string { return e.Reason }

// ProgressFunc receives whole percents, never decreasing within one call.
type ProgressFunc func(percent int)

// Timeout is BaseTimeout plus PerMiBTimeout per MiB, with LargePerMiBExtra
// added for every MiB past LargeFileMiB.
func Timeout(size int64) time.Duration {
	if size < 0 {
		size = 0
	}
	mib := float64(size) / MiB
	d := BaseTimeout + time.Duration(mib*float64(PerMiBTimeout))
	if mib > LargeFileMiB {
		d += time.Duration((mib - LargeFileMiB) * float64(LargePerMiBExtra))
	}
	return d
}

type Option func(*Uploader)

func WithHTTPClient(c *http.Client) Option { return func(u *Uploader) { u.client = c } }

func WithLogger(logger *zap.Logger) Option {
	return func(u *Uploader) {
		if logger != nil {
			u.logger = logger
		}
	}
}

// WithTimeout overrides the size based deadline, mostly for tests.
func WithTimeout(fn func(size int64) time.Duration) Option {
	return func(u *Uploader) { u.timeout = fn }
}

type Uploader struct {
	client  *http.Client
	logger  *zap.Logger
	timeout func(size int64) time.Duration
}

func New(opts ...Option) *Uploader {
	u := &Uploader{
		client:  &http.Client{},
		logger:  zap.NewNop(),
		timeout: Timeout,
	}
	for _, o := range opts {
		o(u)
	}
	return u
}

// PutFile uploads file to url. Cancelling ctx aborts the request and yields
// KindCanceled.
func (u *Uploader) PutFile(ctx context.Context, file File, url string, onProgress ProgressFunc) Result {
	size := file.Size()
	limit := u.timeout(size)

	ctx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	body, err := file.Open()
	if err != nil {
		return Result{Kind: KindUnreadable, Reason: fmt.Sprintf("cannot read %s: %v", file.Name(), err)}
	}
	defer body.Close()

	pr := &progressReader{r: body, total: size, onProgress: onProgress}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, pr)
	if err != nil {
		return Result{Kind: KindRejected, Reason: fmt.Sprintf("server rejected upload: invalid url: %v", err)}
	}
	req.ContentLength = size
	if size == 0 {
		req.Body = http.NoBody
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := u.client.Do(req)
	if err != nil {
		res := classify(ctx, err, limit)
		u.logger.Debug("upload failed",
			zap.String("file", file.Name()),
			zap.String("kind", string(res.Kind)),
			zap.Error(err),
		)
		return res
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxRejectBodySize))
		return Result{
			Kind:       KindRejected,
			StatusCode: resp.StatusCode,
			Reason:     rejectReason(resp, msg),
		}
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxRejectBodySize))

	pr.finish()

	return Result{Success: true, StatusCode: resp.StatusCode}
}

func rejectReason(resp *http.Response, body []byte) string {
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return fmt.Sprintf("server rejected upload: %d: %s", resp.StatusCode, msg)
}

func classify(ctx context.Context, err error, limit time.Duration) Result {
	switch {
	case errors.Is(ctx.Err(), context.Canceled) || errors.Is(err, context.Canceled):
		return Result{Kind: KindCanceled, Reason: "upload cancelled"}
	case errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded):
		return Result{Kind: KindTimeout, Reason: fmt.Sprintf("upload timed out after %s", limit)}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Result{Kind: KindTimeout, Reason: fmt.Sprintf("upload timed out after %s", limit)}
	}

	return Result{Kind: KindNoResponse, Reason: fmt.Sprintf("no response from storage: %v", err)}
}

type progressReader struct {
	r          io.Reader
	total      int64
	onProgress ProgressFunc

	mu   sync.Mutex
	read int64
	last int
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.mu.Lock()
		p.read += int64(n)
		p.report(p.percent())
		p.mu.Unlock()
	}
	return n, err
}

func (p *progressReader) percent() int {
	if p.total <= 0 {
		return 100
	}
	pct := int(p.read * 100 / p.total)
	if pct > 100 {
		pct = 100
	}
	return pct
}

func (p *progressReader) finish() {
	p.mu.Lock()
	p.report(100)
	p.mu.Unlock()
}

func (p *progressReader) report(pct int) {
	if p.onProgress == nil || pct <= p.last {
		return
	}
	p.last = pct
	p.onProgress(pct)
}
