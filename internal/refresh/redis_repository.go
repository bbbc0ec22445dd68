package refresh

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRepository implements Repository using Redis as the backing store.
// Tokens are stored as JSON under key: "refresh:<value>" with TTL = expiresAt - now
type RedisRepository struct {
	client *redis.Client
	prefix string
}

// NewRedisRepository creates a Redis-based refresh-token repository. Prefix may be empty.
func NewRedisRepository(client *redis.Client, prefix string) *RedisRepository {
	if prefix == "" {
		prefix = "refresh:"
	}
	return &RedisRepository{client: client, prefix: prefix}
}

func (r *RedisRepository) key(value string) string {
	return r.prefix + value
}

func (r *RedisRepository) Create(ctx context.Context, t *Token) error {
	b, err := json.Marshal(t)
	if err != nil {
		return err
	}
	exp := time.Until(t.ExpiresAt)
	if exp <= 0 {
		// ensure a minimal TTL so Redis won't store expired tokens
		exp = time.Second
	}
	return r.client.Set(ctx, r.key(t.Value), b, exp).Err()
}

func (r *RedisRepository) GetByValue(ctx context.Context, value string) (*Token, error) {
	b, err := r.client.Get(ctx, r.key(value)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var t Token
	if err := json.Unmarshal(b, &t); err != nil {
		return nil, err
	}
	// If the token expired from perspective of stored value, treat as missing
	if time.Now().UTC().After(t.ExpiresAt) {
		_ = r.client.Del(ctx, r.key(value)).Err()
		return nil, nil
	}
	return &t, nil
}

func (r *RedisRepository) DeleteByValue(ctx context.Context, value string) error {
	return r.client.Del(ctx, r.key(value)).Err()
}
