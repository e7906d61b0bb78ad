package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryAttemptTracker_Threshold(t *testing.T) {
	tracker := NewMemoryAttemptTracker(3, 15*time.Minute)
	ctx := context.Background()

	required, err := tracker.RequiresCaptcha(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.False(t, required)

	for i := 0; i < 2; i++ {
		require.NoError(t, tracker.Record(ctx, "203.0.113.7"))
	}
	required, err = tracker.RequiresCaptcha(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.False(t, required, "two failures stay under the threshold")

	require.NoError(t, tracker.Record(ctx, "203.0.113.7"))
	required, err = tracker.RequiresCaptcha(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.True(t, required)
}

func TestMemoryAttemptTracker_AddressesIsolated(t *testing.T) {
	tracker := NewMemoryAttemptTracker(3, 15*time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, tracker.Record(ctx, "203.0.113.7"))
	}

	required, err := tracker.RequiresCaptcha(ctx, "198.51.100.1")
	require.NoError(t, err)
	assert.False(t, required)
}

func TestMemoryAttemptTracker_WindowExpiry(t *testing.T) {
	tracker := NewMemoryAttemptTracker(3, 15*time.Minute)
	ctx := context.Background()

	current := time.Now()
	tracker.now = func() time.Time { return current }

	for i := 0; i < 3; i++ {
		require.NoError(t, tracker.Record(ctx, "203.0.113.7"))
	}
	required, err := tracker.RequiresCaptcha(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.True(t, required)

	// the window is anchored at the first failure
	current = current.Add(16 * time.Minute)
	required, err = tracker.RequiresCaptcha(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.False(t, required)

	// counting restarts after the window lapses
	require.NoError(t, tracker.Record(ctx, "203.0.113.7"))
	required, err = tracker.RequiresCaptcha(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.False(t, required)
}

func TestMemoryAttemptTracker_Clear(t *testing.T) {
	tracker := NewMemoryAttemptTracker(3, 15*time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, tracker.Record(ctx, "203.0.113.7"))
	}
	require.NoError(t, tracker.Clear(ctx, "203.0.113.7"))

	required, err := tracker.RequiresCaptcha(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.False(t, required)
}

func redisTracker(t *testing.T) (*RedisAttemptTracker, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisAttemptTracker(client, 3, 15*time.Minute, discardLogger()), server
}

func TestRedisAttemptTracker_Threshold(t *testing.T) {
	tracker, _ := redisTracker(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		require.NoError(t, tracker.Record(ctx, "203.0.113.7"))
	}
	required, err := tracker.RequiresCaptcha(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.False(t, required)

	require.NoError(t, tracker.Record(ctx, "203.0.113.7"))
	required, err = tracker.RequiresCaptcha(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.True(t, required)
}

func TestRedisAttemptTracker_WindowExpiry(t *testing.T) {
	tracker, server := redisTracker(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, tracker.Record(ctx, "203.0.113.7"))
	}

	server.FastForward(16 * time.Minute)

	required, err := tracker.RequiresCaptcha(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.False(t, required)
}

func TestRedisAttemptTracker_Clear(t *testing.T) {
	tracker, _ := redisTracker(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, tracker.Record(ctx, "203.0.113.7"))
	}
	require.NoError(t, tracker.Clear(ctx, "203.0.113.7"))

	required, err := tracker.RequiresCaptcha(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.False(t, required)
}

func TestRedisAttemptTracker_OutageFailsOpen(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	tracker := NewRedisAttemptTracker(client, 3, 15*time.Minute, discardLogger())
	ctx := context.Background()

	server.Close()

	_, err := tracker.RequiresCaptcha(ctx, "203.0.113.7")
	assert.Error(t, err, "callers treat tracker errors as captcha-not-required")
}
