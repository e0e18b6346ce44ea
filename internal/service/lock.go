package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const generationLockPrefix = "lock:recipe_generation:"

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a TitleLocker backed by SET NX with an expiry, so a crashed
// holder cannot block a title for longer than ttl.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisLocker creates a new RedisLocker instance
func NewRedisLocker(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl, log: log.Named("lock")}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), bool, error) {
	token := uuid.NewString()
	redisKey := generationLockPrefix + key
	ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
	if err != nil || !ok {
		return func() {}, false, err
	}
	release := func() {
		// the request context may already be gone
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.client, []string{redisKey}, token).Err(); err != nil {
			l.log.Warn("failed to release generation lock", zap.String("key", redisKey), zap.Error(err))
		}
	}
	return release, true, nil
}
