// Package urlcache memoizes presigned download URLs until shortly before
// they expire.
package urlcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultSafetyMargin = 60 * time.Second
	DefaultLifetime     = 3600 * time.Second
	DefaultSweepEvery   = 10
	DefaultFetchTimeout = 30 * time.Second
)

var ErrEmptyURL = errors.New("urlcache: fetcher returned an empty url")

// Issued is what the URL issuing endpoint returned. A zero Lifetime means
// the server did not declare one.
type Issued struct {
	URL      string
	Lifetime time.Duration
}

type Fetcher interface {
	FetchURL(ctx context.Context, objectName, password string) (Issued, error)
}

type FetcherFunc func(ctx context.Context, objectName, password string) (Issued, error)

func (f FetcherFunc) FetchURL(ctx context.Context, objectName, password string) (Issued, error) {
	return f(ctx, objectName, password)
}

type Entry struct {
	URL       string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type Option func(*Cache)

func WithClock(now func() time.Time) Option { return func(c *Cache) { c.now = now } }

func WithSafetyMargin(d time.Duration) Option { return func(c *Cache) { c.margin = d } }

// WithSweepEvery sets how many inserts pass between expiry sweeps.
func WithSweepEvery(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.sweepEvery = n
		}
	}
}

// WithFetchTimeout bounds a shared fetch, which outlives any single caller's
// context.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.fetchTimeout = d
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

type Cache struct {
	fetcher    Fetcher
	now        func() time.Time
	margin     time.Duration
	sweepEvery int
	logger     *zap.Logger

	fetchTimeout time.Duration

	mu      sync.Mutex
	entries map[string]Entry
	inserts int

	group singleflight.Group
}

func New(fetcher Fetcher, opts ...Option) *Cache {
	c := &Cache{
		fetcher:    fetcher,
		now:        time.Now,
		margin:     DefaultSafetyMargin,
		sweepEvery: DefaultSweepEvery,
		logger:     zap.NewNop(),
		entries:    make(map[string]Entry),

		fetchTimeout: DefaultFetchTimeout,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// key keeps URLs issued under different passwords apart without holding the
// password itself.
func key(objectName, password string) string {
	if password == "" {
		return objectName
	}
	sum := sha256.Sum256([]byte(password))
	return objectName + "\x00" + hex.EncodeToString(sum[:])
}

// cacheFor is 55/60 of the declared lifetime.
func cacheFor(lifetime time.Duration) time.Duration {
	if lifetime <= 0 {
		lifetime = DefaultLifetime
	}
	return lifetime / 60 * 55
}

func (c *Cache) lookup(k string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[k]
	if !ok || !c.now().Before(e.ExpiresAt.Add(-c.margin)) {
		return "", false
	}
	return e.URL, true
}

func (c *Cache) store(k string, issued Issued) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[k] = Entry{
		URL:       issued.URL,
		IssuedAt:  now,
		ExpiresAt: now.Add(cacheFor(issued.Lifetime)),
	}
	c.inserts++
	if c.inserts%c.sweepEvery == 0 {
		c.sweepLocked(now)
	}
}

func (c *Cache) sweepLocked(now time.Time) int {
	removed := 0
	for k, e := range c.entries {
		if !now.Before(e.ExpiresAt) {
			delete(c.entries, k)
			removed++
		}
	}
	if removed > 0 {
		c.logger.Debug("url cache sweep", zap.Int("removed", removed))
	}
	return removed
}

// GetURL returns a live cached URL or fetches a fresh one. Concurrent misses
// for the same key share one fetch, which runs detached from the callers'
// cancellation; a caller that gives up only stops waiting. Failed fetches are
// not cached.
func (c *Cache) GetURL(ctx context.Context, objectName, password string) (string, error) {
	k := key(objectName, password)
	if u, ok := c.lookup(k); ok {
		return u, nil
	}

	ch := c.group.DoChan(k, func() (any, error) {
		if u, ok := c.lookup(k); ok {
			return u, nil
		}

		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()

		issued, err := c.fetcher.FetchURL(fetchCtx, objectName, password)
		if err != nil {
			return "", err
		}
		if issued.URL == "" {
			return "", ErrEmptyURL
		}
		c.store(k, issued)

		return issued.URL, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *Cache) Invalidate(objectName, password string) {
	c.mu.Lock()
	delete(c.entries, key(objectName, password))
	c.mu.Unlock()
}

func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]Entry)
	c.mu.Unlock()
}

// Sweep drops expired entries now instead of on the next Nth insert.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sweepLocked(c.now())
}

// Len counts stored entries, expired ones included until swept.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
