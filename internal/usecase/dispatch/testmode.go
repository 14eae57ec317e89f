package dispatch

import (
	"log/slog"

	"pride-notify/internal/domain/notification"
)

// TestMode caps a batch to its first Limit messages and redirects them to the
// test phone number or mailbox. It is only ever enabled by explicit configuration.
type TestMode struct {
	Enabled        bool
	Recipient      string
	EmailRecipient string
	Limit          int
}

func (t TestMode) limit(items []classified, logger *slog.Logger) []classified {
	if !t.Enabled {
		return items
	}
	logger.Warn("test mode active: batch capped and recipients overridden",
		"limit", t.Limit, "classified", len(items))
	if t.Limit > 0 && len(items) > t.Limit {
		return items[:t.Limit]
	}
	return items
}

func (t TestMode) address(msg *notification.Message) *notification.Message {
	if !t.Enabled {
		return msg
	}
	to := t.Recipient
	if msg.Channel == notification.ChannelEmail {
		to = t.EmailRecipient
	}
	if to == "" {
		return msg
	}
	return msg.WithRecipient(to)
}
