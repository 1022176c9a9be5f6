package tokenstore

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"palmr-api/internal/domain/file_token"
)

// Memory is a process-local token store. Expired records stay readable until
// the next sweep so Find can still tell expired from unknown.
type Memory struct {
	mu     sync.RWMutex
	tokens map[string]file_token.Token
	grace  time.Duration
	now    func() time.Time
}

type MemoryOption func(*Memory)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

// WithGrace keeps expired records around for d after expiry before a sweep
// drops them.
func WithGrace(d time.Duration) MemoryOption {
	return func(m *Memory) { m.grace = d }
}

func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		tokens: make(map[string]file_token.Token),
		grace:  time.Hour,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Save(_ context.Context, t file_token.Token, _ time.Duration) error {
	m.mu.Lock()
	m.tokens[t.Value] = t
	m.mu.Unlock()
	return nil
}

func (m *Memory) Find(_ context.Context, value string) (*file_token.Token, error) {
	m.mu.RLock()
	t, ok := m.tokens[value]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return &t, nil
}

// Sweep drops records whose expiry plus grace has passed and returns how
// many were removed.
func (m *Memory) Sweep() int {
	cutoff := m.now().Add(-m.grace)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for k, t := range m.tokens {
		if t.ExpiresAt.Before(cutoff) {
			delete(m.tokens, k)
			removed++
		}
	}
	return removed
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tokens)
}

// RunSweeper sweeps every interval until ctx is done.
func (m *Memory) RunSweeper(ctx context.Context, logger *zap.Logger, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				logger.Debug("token sweep", zap.Int("removed", n))
			}
		}
	}
}
