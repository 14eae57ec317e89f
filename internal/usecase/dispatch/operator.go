package dispatch

import (
	"context"
	"strings"

	"pride-notify/internal/domain/notification"
	"pride-notify/internal/pkg/errs"
	"pride-notify/internal/pkg/metrics"

	"github.com/oklog/ulid/v2"
)

// OperatorCategory labels batches an operator submitted by hand.
const OperatorCategory notification.Category = "operator"

// ErrInvalidEmail marks an operator email that cannot be sent as composed.
var ErrInvalidEmail = errs.New("invalid operator email")

// Email is an ad-hoc message composed by an operator.
type Email struct {
	Sender      string
	Subject     string
	HTML        string
	To          []string
	Cc          []string
	Attachments []notification.Attachment
}

// SendSMS renders operator-supplied records the way a scheduled batch would and
// sends the ones that render to an SMS. Records that render to any other channel
// are recorded as failed without a send. Each outcome is persisted as it happens.
func (o *Orchestrator) SendSMS(ctx context.Context, records []notification.RawRecord) (res *BatchResult, err error) {
	run := notification.RunInfo{RunID: ulid.Make().String(), Attempt: 1}
	logger := o.logger.With("category", OperatorCategory, "run_id", run.RunID)
	res = &BatchResult{
		Category:  OperatorCategory,
		RunID:     run.RunID,
		Attempt:   run.Attempt,
		State:     StateClassifying,
		Fetched:   len(records),
		StartedAt: o.clock.Now(),
	}
	defer func() {
		res.FinishedAt = o.clock.Now()
		if err != nil {
			res.State = StateFailed
			res.Err = err
		}
		metrics.BatchesTotal.WithLabelValues(string(OperatorCategory), string(res.State)).Inc()
	}()

	items, err := o.classify(records, res, logger)
	if err != nil {
		return res, err
	}
	for i := range items {
		items[i].channel = notification.ChannelSMS
	}
	items = o.opts.TestMode.limit(items, logger)
	if len(items) == 0 {
		o.finish(res, logger)
		return res, nil
	}

	res.State = StateSending
	session, err := o.openSession(ctx)
	if err != nil {
		return res, err
	}
	defer o.closeSession(session, logger)

	return res, o.sendAll(ctx, session, items, run, RecordPerMessage, res, logger)
}

// SendEmail sends one operator email to every To and Cc address and records a
// single outcome in the custom message log. A gateway rejection is returned
// together with its failed outcome.
func (o *Orchestrator) SendEmail(ctx context.Context, email Email) (*notification.Outcome, error) {
	to := cleanAddresses(email.To)
	if len(to) == 0 {
		return nil, errs.Mark(errs.New("at least one recipient is required"), ErrInvalidEmail)
	}
	if strings.TrimSpace(email.Subject) == "" {
		return nil, errs.Mark(errs.New("subject is required"), ErrInvalidEmail)
	}
	if strings.TrimSpace(email.HTML) == "" {
		return nil, errs.Mark(errs.New("message body is required"), ErrInvalidEmail)
	}

	run := notification.RunInfo{RunID: ulid.Make().String(), Attempt: 1}
	logger := o.logger.With("category", OperatorCategory, "run_id", run.RunID)

	msg := &notification.Message{
		Variant:     notification.VariantCustomMessage,
		Channel:     notification.ChannelEmail,
		Sender:      strings.TrimSpace(email.Sender),
		Recipient:   strings.Join(to, ","),
		Cc:          cleanAddresses(email.Cc),
		Subject:     email.Subject,
		Body:        email.HTML,
		Attachments: email.Attachments,
	}
	msg = o.opts.TestMode.address(msg)

	session, err := o.openSession(ctx)
	if err != nil {
		return nil, err
	}
	defer o.closeSession(session, logger)

	resp, sendErr := o.send(ctx, session, msg)
	outcome := o.recorder.Record(msg, resp, sendErr, run)
	if err := o.recorder.Persist(context.WithoutCancel(ctx), outcome); err != nil {
		return outcome, errs.Mark(err, ErrUnexpected)
	}
	if sendErr != nil {
		logger.Warn("operator email failed", "recipients", len(to), "cc", len(msg.Cc), "error", sendErr)
		return outcome, sendErr
	}
	logger.Info("operator email sent",
		"recipients", len(to), "cc", len(msg.Cc), "attachments", len(msg.Attachments))
	return outcome, nil
}

func cleanAddresses(in []string) []string {
	var out []string
	for _, a := range in {
		for _, part := range strings.Split(a, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
