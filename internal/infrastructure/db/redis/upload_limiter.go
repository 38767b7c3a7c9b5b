package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const uploadWindow = time.Hour

// Sliding window over a sorted set scored by millisecond timestamps.
// KEYS[1] key, ARGV[1] limit, ARGV[2] window in ms, ARGV[3] now in ms.
// Returns 1 when the upload is admitted, 0 otherwise.
var uploadScript = redis.NewScript(`
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)

if redis.call('ZCARD', key) >= limit then
    return 0
end

redis.call('ZADD', key, now, now .. '-' .. math.random(1000000))
redis.call('PEXPIRE', key, window)
return 1
`)

// UploadLimiter caps candidate image uploads per admin account.
type UploadLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewUploadLimiter(client *redis.Client, perHour int) *UploadLimiter {
	if perHour <= 0 {
		perHour = 30
	}
	return &UploadLimiter{client: client, limit: perHour, window: uploadWindow, now: time.Now}
}

// Allow records an upload attempt for userID and reports whether it fits in
// the window.
func (l *UploadLimiter) Allow(ctx context.Context, userID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := uploadScript.Run(ctx, l.client,
		[]string{l.key(userID)},
		l.limit, l.window.Milliseconds(), l.now().UnixMilli(),
	).Int64()
	if err != nil {
		return false, fmt.Errorf("upload limit: %w", err)
	}
	return res == 1, nil
}

func (l *UploadLimiter) key(userID string) string {
	return "ratelimit:upload:user:" + userID
}
