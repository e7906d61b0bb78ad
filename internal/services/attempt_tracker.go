package services

import (
	"context"
	"sync"
	"time"
)

// AttemptTracker counts failed logins per client address so repeated
// failures can be forced through a CAPTCHA. It is a deterrent, not an
// authorization control: implementations may fail open.
type AttemptTracker interface {
	// Record registers a failed login from the address.
	Record(ctx context.Context, addr string) error
	// RequiresCaptcha reports whether the address has crossed the
	// failure threshold inside the rolling window.
	RequiresCaptcha(ctx context.Context, addr string) (bool, error)
	// Clear forgets the address after a successful login.
	Clear(ctx context.Context, addr string) error
}

type attemptEntry struct {
	count        int
	firstAttempt time.Time
}

// MemoryAttemptTracker keeps per-address failure counts in process memory.
// The window is anchored at the first failure; once it elapses the counter
// restarts from scratch.
type MemoryAttemptTracker struct {
	mu        sync.Mutex
	entries   map[string]*attemptEntry
	threshold int
	window    time.Duration
	now       func() time.Time
}

func NewMemoryAttemptTracker(threshold int, window time.Duration) *MemoryAttemptTracker {
	return &MemoryAttemptTracker{
		entries:   make(map[string]*attemptEntry),
		threshold: threshold,
		window:    window,
		now:       time.Now,
	}
}

func (t *MemoryAttemptTracker) Record(_ context.Context, addr string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	entry, ok := t.entries[addr]
	if !ok || now.Sub(entry.firstAttempt) > t.window {
		t.entries[addr] = &attemptEntry{count: 1, firstAttempt: now}
		return nil
	}

	entry.count++
	return nil
}

func (t *MemoryAttemptTracker) RequiresCaptcha(_ context.Context, addr string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[addr]
	if !ok {
		return false, nil
	}

	if t.now().Sub(entry.firstAttempt) > t.window {
		delete(t.entries, addr)
		return false, nil
	}

	return entry.count >= t.threshold, nil
}

func (t *MemoryAttemptTracker) Clear(_ context.Context, addr string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.entries, addr)
	return nil
}

var _ AttemptTracker = (*MemoryAttemptTracker)(nil)
