package lock

import (
	"context"
	"sync"
	"time"

	"pride-notify/internal/pkg/clock"

	"github.com/google/uuid"
)

type entry struct {
	token   string
	expires time.Time
}

// LocalLocker is the single-process fallback used when no Redis is configured.
type LocalLocker struct {
	mu    sync.Mutex
	held  map[string]entry
	clock clock.Clock
}

func NewLocalLocker(clk clock.Clock) *LocalLocker {
	return &LocalLocker{held: make(map[string]entry), clock: clk}
}

func (l *LocalLocker) Acquire(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	if e, ok := l.held[key]; ok && (ttl <= 0 || now.Before(e.expires)) {
		return "", false, nil
	}
	e := entry{token: uuid.NewString(), expires: now.Add(ttl)}
	l.held[key] = e
	return e.token, true, nil
}

func (l *LocalLocker) Release(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.held[key]; ok && e.token == token {
		delete(l.held, key)
	}
	return nil
}
