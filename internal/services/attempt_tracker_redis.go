package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisAttemptTracker shares failure counts across instances. The counter
// key carries a TTL equal to the window, set on the first failure, so the
// window is anchored at the first attempt just like the in-memory tracker.
//
// Redis outages fail open: the CAPTCHA gate is a deterrent, and losing it
// must not take logins down with it.
type RedisAttemptTracker struct {
	client    *redis.Client
	threshold int
	window    time.Duration
	logger    *slog.Logger
}

func NewRedisAttemptTracker(client *redis.Client, threshold int, window time.Duration, logger *slog.Logger) *RedisAttemptTracker {
	return &RedisAttemptTracker{
		client:    client,
		threshold: threshold,
		window:    window,
		logger:    logger,
	}
}

func (t *RedisAttemptTracker) key(addr string) string {
	return "login_attempts:" + addr
}

func (t *RedisAttemptTracker) Record(ctx context.Context, addr string) error {
	key := t.key(addr)

	count, err := t.client.Incr(ctx, key).Result()
	if err != nil {
		t.logger.Warn("attempt tracker record failed", slog.String("error", err.Error()))
		return err
	}

	// only the first failure starts the window
	if count == 1 {
		if err := t.client.Expire(ctx, key, t.window).Err(); err != nil {
			t.logger.Warn("attempt tracker expire failed", slog.String("error", err.Error()))
			return err
		}
	}

	return nil
}

func (t *RedisAttemptTracker) RequiresCaptcha(ctx context.Context, addr string) (bool, error) {
	count, err := t.client.Get(ctx, t.key(addr)).Int()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		t.logger.Warn("attempt tracker lookup failed", slog.String("error", err.Error()))
		return false, err
	}

	return count >= t.threshold, nil
}

func (t *RedisAttemptTracker) Clear(ctx context.Context, addr string) error {
	if err := t.client.Del(ctx, t.key(addr)).Err(); err != nil {
		t.logger.Warn("attempt tracker clear failed", slog.String("error", err.Error()))
		return err
	}
	return nil
}

var _ AttemptTracker = (*RedisAttemptTracker)(nil)
