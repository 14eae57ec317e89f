package notification

import (
	"maps"
	"time"

	"github.com/google/uuid"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// RunInfo ties an outcome to the batch invocation that produced it.
type RunInfo struct {
	RunID   string
	Attempt int
}

// Outcome is the immutable record of one send attempt.
type Outcome struct {
	id          uuid.UUID
	run         RunInfo
	variant     Variant
	channel     Channel
	recipient   string
	body        string
	succeeded   bool
	response    map[string]any
	errorDetail string
	log         LogFields
	createdAt   time.Time
}

func NewSuccessOutcome(msg *Message, response map[string]any, run RunInfo, at time.Time) *Outcome {
	o := newOutcome(msg, run, at)
	o.succeeded = true
	o.response = maps.Clone(response)
	return o
}

func NewFailureOutcome(msg *Message, cause error, run RunInfo, at time.Time) *Outcome {
	o := newOutcome(msg, run, at)
	if cause != nil {
		o.errorDetail = cause.Error()
	}
	return o
}

func newOutcome(msg *Message, run RunInfo, at time.Time) *Outcome {
	return &Outcome{
		id:        uuid.New(),
		run:       run,
		variant:   msg.Variant,
		channel:   msg.Channel,
		recipient: msg.Recipient,
		body:      msg.Body,
		log:       msg.Log,
		createdAt: at,
	}
}

func (o *Outcome) ID() uuid.UUID        { return o.id }
func (o *Outcome) Run() RunInfo         { return o.run }
func (o *Outcome) Variant() Variant     { return o.variant }
func (o *Outcome) Channel() Channel     { return o.channel }
func (o *Outcome) Recipient() string    { return o.recipient }
func (o *Outcome) Body() string         { return o.body }
func (o *Outcome) Succeeded() bool      { return o.succeeded }
func (o *Outcome) ErrorDetail() string  { return o.errorDetail }
func (o *Outcome) Log() LogFields       { return o.log }
func (o *Outcome) CreatedAt() time.Time { return o.createdAt }

// Response returns a copy of the gateway payload; nil for failures.
func (o *Outcome) Response() map[string]any {
	return maps.Clone(o.response)
}

func (o *Outcome) Status() string {
	if o.succeeded {
		return StatusSuccess
	}
	return StatusFailed
}
