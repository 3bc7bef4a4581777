package session

import (
	"context"
	"time"

	"github.com/inkpress/inkpress/internal/config"
	"github.com/redis/go-redis/v9"
)

// Revoker denies individual session tokens before their natural expiry.
type Revoker interface {
	// Revoke denies the jti until the given time.
	Revoke(ctx context.Context, jti string, until time.Time) error
	// IsRevoked reports whether the jti has been denied.
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// revokedKeyPrefix namespaces denylist entries in Redis.
const revokedKeyPrefix = "inkpress:session:revoked:"

// RedisRevoker implements Revoker on a Redis denylist. Entries expire together
// with the token they deny, so the set stays bounded by the session TTL.
type RedisRevoker struct {
	client *redis.Client
}

// NewRedisRevoker connects a RedisRevoker from config.
func NewRedisRevoker(cfg config.RedisConfig) *RedisRevoker {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisRevoker{client: client}
}

// Ping verifies the Redis connection.
func (r *RedisRevoker) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Revoke denies the jti until the given time.
func (r *RedisRevoker) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, revokedKeyPrefix+jti, "1", ttl).Err()
}

// IsRevoked reports whether the jti has been denied.
func (r *RedisRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, errExists := r.client.Exists(ctx, revokedKeyPrefix+jti).Result()
	if errExists != nil {
		return false, errExists
	}
	return n > 0, nil
}
