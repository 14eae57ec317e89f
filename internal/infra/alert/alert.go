// Package alert tells operators about batches the dispatcher gave up on.
package alert

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"pride-notify/internal/domain/notification"
	"pride-notify/internal/usecase/dispatch"
)

const sendTimeout = 30 * time.Second

// Alerter always logs. When recipients are configured it also mails them
// through the email gateway.
type Alerter struct {
	gateway    dispatch.Gateway
	recipients []string
	logger     *slog.Logger
}

func NewAlerter(gateway dispatch.Gateway, recipients []string, logger *slog.Logger) *Alerter {
	var cleaned []string
	for _, r := range recipients {
		if r = strings.TrimSpace(r); r != "" {
			cleaned = append(cleaned, r)
		}
	}
	return &Alerter{gateway: gateway, recipients: cleaned, logger: logger}
}

func (a *Alerter) BatchAbandoned(ctx context.Context, ab dispatch.Abandonment) {
	a.logger.Error("ALERT: dispatch batch abandoned",
		"category", ab.Category,
		"run_id", ab.RunID,
		"attempts", ab.Attempts,
		"reason", ab.Reason,
		"error", ab.Err)

	if len(a.recipients) == 0 || a.gateway == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	session, err := a.gateway.Open(ctx)
	if err != nil {
		a.logger.Warn("alert email skipped, gateway unavailable", "error", err)
		return
	}
	defer func() { _ = session.Close() }()

	subject, body := compose(ab)
	for _, to := range a.recipients {
		_, err := session.Send(ctx, &notification.Message{
			Variant:   notification.VariantCustomMessage,
			Channel:   notification.ChannelEmail,
			Recipient: to,
			Subject:   subject,
			Body:      body,
		})
		if err != nil {
			a.logger.Warn("alert email failed", "recipient", to, "error", err)
		}
	}
}

func compose(ab dispatch.Abandonment) (subject, body string) {
	subject = fmt.Sprintf("[pride-notify] %s dispatch abandoned (%s)", ab.Category, ab.Reason)

	var b strings.Builder
	fmt.Fprintf(&b, "<p>The <b>%s</b> batch was abandoned after %d attempt(s).</p>",
		html.EscapeString(string(ab.Category)), ab.Attempts)
	fmt.Fprintf(&b, "<p>Run: %s<br>Reason: %s</p>",
		html.EscapeString(ab.RunID), html.EscapeString(ab.Reason))
	if ab.Err != nil {
		fmt.Fprintf(&b, "<p>Last error: %s</p>", html.EscapeString(ab.Err.Error()))
	}
	return subject, b.String()
}
