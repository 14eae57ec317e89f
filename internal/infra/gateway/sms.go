package gateway

import (
	"context"
	"net/http"
	"net/url"

	"pride-notify/internal/domain/notification"
	"pride-notify/internal/pkg/redact"
	"pride-notify/internal/usecase/dispatch"
)

type smsSender struct {
	httpClient *http.Client
	endpoint   string
	senderName string
	password   string
}

// send issues GET {endpoint}?sender_name=&password=&recipient_addr=&message=.
func (s *smsSender) send(ctx context.Context, msg *notification.Message) (*dispatch.GatewayResponse, error) {
	u, err := url.Parse(s.endpoint)
	if err != nil {
		return nil, notification.NewGatewayError(notification.KindGatewayTransport, 0, "", redact.Error(err))
	}
	q := u.Query()
	q.Set("sender_name", s.senderName)
	q.Set("password", s.password)
	q.Set("recipient_addr", msg.Recipient)
	q.Set("message", msg.Body)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, notification.NewGatewayError(notification.KindGatewayTransport, 0, "", redact.Error(err))
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, notification.NewGatewayError(notification.KindGatewayTransport, 0, "", redact.Error(err))
	}
	defer resp.Body.Close()
	return readResponse(resp)
}
