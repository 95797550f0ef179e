package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const loginAttemptKeyPrefix = "admin_auth:failed_logins:"

// incrementAttempts bumps the counter and starts its window on the first
// attempt only. A counter found without a TTL gets one as well.
var incrementAttempts = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 or redis.call("PTTL", KEYS[1]) == -1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// LoginAttemptRepository counts login attempts per client within a fixed window
// that starts at the first counted attempt.
type LoginAttemptRepository interface {
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
	Count(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}

type loginAttemptRepository struct {
	client redis.Cmdable
}

// NewLoginAttemptRepository returns a Redis-backed implementation.
func NewLoginAttemptRepository(client redis.Cmdable) LoginAttemptRepository {
	return &loginAttemptRepository{client: client}
}

// Increment returns the counter value after this attempt. The result is atomic,
// so concurrent callers each observe a distinct count.
func (r *loginAttemptRepository) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	if window <= 0 {
		return 0, errors.New("login attempt window must be positive")
	}
	ms := window.Milliseconds()
	if ms == 0 {
		ms = 1
	}
	return incrementAttempts.Run(ctx, r.client, []string{loginAttemptKeyPrefix + key}, ms).Int64()
}

func (r *loginAttemptRepository) Count(ctx context.Context, key string) (int64, error) {
	count, err := r.client.Get(ctx, loginAttemptKeyPrefix+key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return count, err
}

func (r *loginAttemptRepository) Reset(ctx context.Context, key string) error {
	return r.client.Del(ctx, loginAttemptKeyPrefix+key).Err()
}
