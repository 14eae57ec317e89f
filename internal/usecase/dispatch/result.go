package dispatch

import (
	"time"

	"pride-notify/internal/domain/notification"
)

type State string

const (
	StateFetching    State = "fetching"
	StateClassifying State = "classifying"
	StateSending     State = "sending"
	StateRecording   State = "recording"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

// RecordMode chooses between one insert per message and one bulk insert per batch.
type RecordMode int

const (
	RecordPerMessage RecordMode = iota
	RecordBulk
)

// Rejection is a record the classifier could not place. It produces no outcome row.
type Rejection struct {
	Index  int
	Fields []string
	Err    error
}

type BatchResult struct {
	Category   notification.Category
	RunID      string
	Attempt    int
	State      State
	Fetched    int
	Outcomes   []*notification.Outcome
	Rejections []Rejection
	Err        error

	// Set when a re-invocation was scheduled after this attempt failed.
	RetryScheduled bool
	RetryIn        time.Duration

	StartedAt  time.Time
	FinishedAt time.Time
}

func (r *BatchResult) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Succeeded() {
			n++
		}
	}
	return n
}

func (r *BatchResult) Failed() int {
	return len(r.Outcomes) - r.Succeeded()
}
