package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"palmr-api/internal/domain/file_token"
)

const keyPrefix = "palmr:file-token:"

// Redis shares tokens between API instances. Keys live for ttl plus grace so
// an expired token still resolves as expired for a while instead of unknown.
type Redis struct {
	client *redis.Client
	grace  time.Duration
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client, grace: time.Hour}
}

func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

func (r *Redis) key(value string) string { return keyPrefix + value }

func (r *Redis) Save(ctx context.Context, t file_token.Token, ttl time.Duration) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	if err = r.client.Set(ctx, r.key(t.Value), raw, ttl+r.grace).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *Redis) Find(ctx context.Context, value string) (*file_token.Token, error) {
	raw, err := r.client.Get(ctx, r.key(value)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var t file_token.Token
	if err = json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("unmarshal token: %w", err)
	}
	return &t, nil
}
