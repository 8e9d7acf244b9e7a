package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenCache tracks revoked JWT ids until the token would have expired anyway
type TokenCache interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type tokenCache struct {
	client *redis.Client
}

func NewTokenCache(client *redis.Client) TokenCache {
	return &tokenCache{client: client}
}

func revokedKey(jti string) string {
	return "auth:revoked:" + jti
}

func (c *tokenCache) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, revokedKey(jti), 1, ttl).Err()
}

func (c *tokenCache) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := c.client.Exists(ctx, revokedKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
