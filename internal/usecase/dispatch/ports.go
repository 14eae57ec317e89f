package dispatch

//go:generate mockgen -source=ports.go -destination=mock/ports.go -package=mock

import (
	"context"
	"time"

	"pride-notify/internal/domain/notification"
)

// SourceClient pulls one batch of raw records for a category. It never retries.
type SourceClient interface {
	Fetch(ctx context.Context, spec notification.CategorySpec) ([]notification.RawRecord, error)
}

// Gateway opens a session scoped to one batch. Credentials are resolved on Open
// and released on Close.
type Gateway interface {
	Open(ctx context.Context) (GatewaySession, error)
}

type GatewaySession interface {
	Send(ctx context.Context, msg *notification.Message) (*GatewayResponse, error)
	Close() error
}

// GatewayResponse is the parsed gateway reply. Non-JSON bodies arrive as {"raw_response": text}.
type GatewayResponse struct {
	StatusCode int
	Payload    map[string]any
}

type OutcomeRepository interface {
	Append(ctx context.Context, outcome *notification.Outcome) error
	AppendBatch(ctx context.Context, outcomes []*notification.Outcome) error
}

// Scheduler re-invokes task after delay, outside the caller's lifetime.
type Scheduler interface {
	After(delay time.Duration, task func(ctx context.Context))
}

// Locker keeps a category's invocations from overlapping.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, key, token string) error
}

type Abandonment struct {
	Category notification.Category
	RunID    string
	Attempts int
	Reason   string
	Err      error
}

// Alerter surfaces abandoned batches to operators.
type Alerter interface {
	BatchAbandoned(ctx context.Context, a Abandonment)
}
