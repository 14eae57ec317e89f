//go:build unit

package alert_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"pride-notify/internal/domain/notification"
	"pride-notify/internal/infra/alert"
	"pride-notify/internal/usecase/dispatch"
	dispatchmock "pride-notify/internal/usecase/dispatch/mock"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func abandonment() dispatch.Abandonment {
	return dispatch.Abandonment{
		Category: notification.CategoryLoansDue,
		RunID:    "01HRUN",
		Attempts: 5,
		Reason:   "exhausted",
		Err:      errors.New("source returned <no rows>"),
	}
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAlerter_EmailsEveryRecipient(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := dispatchmock.NewMockGateway(ctrl)
	session := dispatchmock.NewMockGatewaySession(ctrl)

	var sent []*notification.Message
	gw.EXPECT().Open(gomock.Any()).Return(session, nil)
	session.EXPECT().Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, m *notification.Message) (*dispatch.GatewayResponse, error) {
			sent = append(sent, m)
			return &dispatch.GatewayResponse{StatusCode: 200}, nil
		}).Times(2)
	session.EXPECT().Close().Return(nil)

	a := alert.NewAlerter(gw, []string{"ops@example.com", " ", "it@example.com "}, discard())
	a.BatchAbandoned(context.Background(), abandonment())

	if assert.Len(t, sent, 2) {
		assert.Equal(t, "ops@example.com", sent[0].Recipient)
		assert.Equal(t, "it@example.com", sent[1].Recipient)
		assert.Equal(t, notification.ChannelEmail, sent[0].Channel)
		assert.Contains(t, sent[0].Subject, "loans_due")
		assert.Contains(t, sent[0].Body, "5 attempt(s)")
		assert.Contains(t, sent[0].Body, "&lt;no rows&gt;")
	}
}

func TestAlerter_NoRecipientsOnlyLogs(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := dispatchmock.NewMockGateway(ctrl)

	a := alert.NewAlerter(gw, nil, discard())
	a.BatchAbandoned(context.Background(), abandonment())
}

func TestAlerter_GatewayUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := dispatchmock.NewMockGateway(ctrl)
	gw.EXPECT().Open(gomock.Any()).Return(nil, errors.New("no email gateway"))

	a := alert.NewAlerter(gw, []string{"ops@example.com"}, discard())
	a.BatchAbandoned(context.Background(), abandonment())
}

func TestAlerter_EscapesQuotesInBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := dispatchmock.NewMockGateway(ctrl)
	session := dispatchmock.NewMockGatewaySession(ctrl)

	var body string
	gw.EXPECT().Open(gomock.Any()).Return(session, nil)
	session.EXPECT().Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, m *notification.Message) (*dispatch.GatewayResponse, error) {
			body = m.Body
			return &dispatch.GatewayResponse{StatusCode: 200}, nil
		})
	session.EXPECT().Close().Return(nil)

	ab := abandonment()
	ab.Reason = `store "down"`
	ab.Err = errors.New(`column 'x' <b>missing</b> & more`)
	alert.NewAlerter(gw, []string{"ops@example.com"}, discard()).BatchAbandoned(context.Background(), ab)

	assert.Contains(t, body, "Reason: store &#34;down&#34;")
	assert.Contains(t, body, "column &#39;x&#39; &lt;b&gt;missing&lt;/b&gt; &amp; more")
	assert.NotContains(t, body, "'x'")
}
