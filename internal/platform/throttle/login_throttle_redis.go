// Package throttle limits repeated login attempts using Redis counters.
package throttle

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"todo_backend/internal/feature/auth/usecase"
)

// LoginThrottleRedis counts attempts per key in a fixed window.
// The window starts with the first attempt and the counter expires with it.
type LoginThrottleRedis struct {
	client      redis.Cmdable
	prefix      string
	maxAttempts int64
	window      time.Duration
}

var _ usecase.LoginThrottle = (*LoginThrottleRedis)(nil)

// NewLoginThrottleRedis creates a throttle allowing maxAttempts per window.
func NewLoginThrottleRedis(client redis.Cmdable, prefix string, maxAttempts int, window time.Duration) *LoginThrottleRedis {
	if prefix == "" {
		prefix = "login_attempts"
	}
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &LoginThrottleRedis{
		client:      client,
		prefix:      prefix,
		maxAttempts: int64(maxAttempts),
		window:      window,
	}
}

func (t *LoginThrottleRedis) attemptsKey(key string) string {
	return fmt.Sprintf("%s:%s", t.prefix, key)
}

// allowScript increments the counter and sets the window TTL in one atomic step.
// A counter left without a TTL gets one on its next attempt.
var allowScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

// Allow records one attempt for key and reports whether it is within the limit.
func (t *LoginThrottleRedis) Allow(ctx context.Context, key string) (bool, error) {
	n, err := allowScript.Run(ctx, t.client, []string{t.attemptsKey(key)}, t.window.Milliseconds()).Int64()
	if err != nil {
		return false, err
	}
	return n <= t.maxAttempts, nil
}

// Reset clears the counter for key.
func (t *LoginThrottleRedis) Reset(ctx context.Context, key string) error {
	return t.client.Del(ctx, t.attemptsKey(key)).Err()
}
