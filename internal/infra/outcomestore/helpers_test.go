//go:build unit || e2e

package outcomestore_test

import (
	"errors"
	"time"

	"pride-notify/internal/domain/notification"

	"github.com/shopspring/decimal"
)

func loanOutcome(recipient string, at time.Time, ok bool) *notification.Outcome {
	return loanOutcomeOf(recipient, at, ok, decimal.NewFromInt(15000))
}

func loanOutcomeOf(recipient string, at time.Time, ok bool, amount decimal.Decimal) *notification.Outcome {
	due := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	msg := &notification.Message{
		Variant:   notification.VariantLoanDue,
		Channel:   notification.ChannelSMS,
		Recipient: recipient,
		Body:      "Dear Jane, your loan installment of 15,000 UGX is due on 05-03-2024.",
		Log:       notification.LogFields{AccountName: "Jane", Amount: &amount, Date: &due},
	}
	run := notification.RunInfo{RunID: "01HRUN", Attempt: 1}
	if ok {
		return notification.NewSuccessOutcome(msg, map[string]any{"status": "queued"}, run, at)
	}
	return notification.NewFailureOutcome(msg, errors.New("gateway STATUS (status 502)"), run, at)
}
