//go:build unit

package notification_test

import (
	"errors"
	"testing"
	"time"

	"pride-notify/internal/domain/notification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestOutcome(t *testing.T) {
	at := time.Date(2024, 3, 1, 6, 50, 0, 0, time.UTC)
	run := notification.RunInfo{RunID: "01HRUN", Attempt: 2}
	msg := &notification.Message{
		Variant: notification.VariantLoanDue, Channel: notification.ChannelSMS,
		Recipient: "0700", Body: "hello", Log: notification.LogFields{AccountName: "Jane"},
	}

	t.Run("success keeps a private copy of the payload", func(t *testing.T) {
		payload := map[string]any{"status": "sent"}
		o := notification.NewSuccessOutcome(msg, payload, run, at)
		payload["status"] = "tampered"

		assert.NotEqual(t, uuid.Nil, o.ID())
		assert.True(t, o.Succeeded())
		assert.Equal(t, notification.StatusSuccess, o.Status())
		assert.Equal(t, "sent", o.Response()["status"])
		assert.Empty(t, o.ErrorDetail())
		assert.Equal(t, run, o.Run())
		assert.Equal(t, at, o.CreatedAt())

		o.Response()["status"] = "again"
		assert.Equal(t, "sent", o.Response()["status"])
	})

	t.Run("failure carries the error detail instead of a payload", func(t *testing.T) {
		o := notification.NewFailureOutcome(msg, errors.New("gateway STATUS (status 502)"), run, at)

		assert.False(t, o.Succeeded())
		assert.Equal(t, notification.StatusFailed, o.Status())
		assert.Nil(t, o.Response())
		assert.Equal(t, "gateway STATUS (status 502)", o.ErrorDetail())
		assert.Equal(t, "Jane", o.Log().AccountName)
		assert.Equal(t, "hello", o.Body())
	})
}
