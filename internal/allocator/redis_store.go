package allocator

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const reservationKeyPrefix = "code_reservation:"

// acquireScript claims the key when it is free or already owned by the caller,
// refreshing the TTL either way. Returns the current owner on conflict.
var acquireScript = redis.NewScript(`
local owner = redis.call("GET", KEYS[1])
if owner == false or owner == ARGV[1] then
	redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
	return ""
end
return owner
`)

// releaseScript deletes the key only when the caller owns it
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisStore is the cross-instance ReservationStore. Expiry is delegated to
// Redis key TTLs, so expired claims vanish without a sweeper.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed reservation store
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Acquire claims the code for ownerID with the given TTL
func (s *RedisStore) Acquire(ctx context.Context, code, ownerID string, ttl time.Duration) error {
	holder, err := acquireScript.Run(ctx, s.client, []string{reservationKey(code)}, ownerID, ttl.Milliseconds()).Text()
	if err != nil {
		return fmt.Errorf("failed to acquire reservation: %w", err)
	}
	if holder != "" {
		return &CodeConflictError{Code: code, OwnerID: holder}
	}
	return nil
}

// Get returns the live reservation for the code, nil if free
func (s *RedisStore) Get(ctx context.Context, code string) (*Reservation, error) {
	pipe := s.client.Pipeline()
	ownerCmd := pipe.Get(ctx, reservationKey(code))
	ttlCmd := pipe.PTTL(ctx, reservationKey(code))
	if _, err := pipe.Exec(ctx); err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read reservation: %w", err)
	}

	ttl := ttlCmd.Val()
	if ttl < 0 {
		return nil, nil
	}
	return &Reservation{
		Code:      code,
		OwnerID:   ownerCmd.Val(),
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

// Release drops ownerID's claim on the code
func (s *RedisStore) Release(ctx context.Context, code, ownerID string) error {
	if err := releaseScript.Run(ctx, s.client, []string{reservationKey(code)}, ownerID).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("failed to release reservation: %w", err)
	}
	return nil
}

func reservationKey(code string) string {
	return reservationKeyPrefix + code
}
