// Package gateway delivers rendered messages to the SMS gateway and the email relay.
package gateway

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"pride-notify/internal/domain/notification"
	"pride-notify/internal/pkg/config"
	"pride-notify/internal/pkg/errs"
	"pride-notify/internal/pkg/metrics"
	"pride-notify/internal/pkg/secret"
	"pride-notify/internal/usecase/dispatch"
)

const defaultTimeout = 10 * time.Second

// Client opens one session per batch. Credentials are decrypted on Open and
// dropped on Close together with the session's idle connections.
type Client struct {
	cfg       config.GatewayConfig
	decrypter secret.Decrypter
	logger    *slog.Logger
}

func NewClient(cfg config.GatewayConfig, decrypter secret.Decrypter, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{cfg: cfg, decrypter: decrypter, logger: logger}
}

func (c *Client) Open(_ context.Context) (dispatch.GatewaySession, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if c.cfg.InsecureSkipVerify {
		// The gateways sit on the internal network behind self-signed certificates.
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // operator-configured
	}
	httpClient := &http.Client{Timeout: c.cfg.Timeout, Transport: transport}

	s := &session{transport: transport}

	if c.cfg.SMSURL != "" {
		plain, err := secret.DecryptAll(c.decrypter, c.cfg.SMSURL, c.cfg.SMSSenderName, c.cfg.SMSPassword)
		if err != nil {
			return nil, errs.Wrap(err, "resolve sms gateway credentials")
		}
		s.sms = &smsSender{httpClient: httpClient, endpoint: plain[0], senderName: plain[1], password: plain[2]}
	}
	if c.cfg.EmailURL != "" {
		plain, err := secret.DecryptAll(c.decrypter, c.cfg.EmailURL)
		if err != nil {
			return nil, errs.Wrap(err, "resolve email relay endpoint")
		}
		s.email = &emailSender{httpClient: httpClient, endpoint: plain[0], sender: c.cfg.EmailSender}
	}
	if s.sms == nil && s.email == nil {
		return nil, errs.Mark(errs.New("no gateway configured"), errs.ErrFatal)
	}

	c.logger.Debug("gateway session opened", "sms", s.sms != nil, "email", s.email != nil)
	return s, nil
}

type session struct {
	sms       *smsSender
	email     *emailSender
	transport *http.Transport
}

// Send routes by channel. Every failure it returns is a GatewayError.
func (s *session) Send(ctx context.Context, msg *notification.Message) (*dispatch.GatewayResponse, error) {
	start := time.Now()
	var (
		resp *dispatch.GatewayResponse
		err  error
	)
	switch msg.Channel {
	case notification.ChannelEmail:
		if s.email == nil {
			return nil, notification.NewGatewayError(notification.KindGatewayTransport, 0, "", errs.New("email relay not configured"))
		}
		resp, err = s.email.send(ctx, msg)
	default:
		if s.sms == nil {
			return nil, notification.NewGatewayError(notification.KindGatewayTransport, 0, "", errs.New("sms gateway not configured"))
		}
		resp, err = s.sms.send(ctx, msg)
	}

	metrics.GatewaySendDuration.WithLabelValues(string(msg.Channel), sendStatus(resp, err)).
		Observe(time.Since(start).Seconds())
	return resp, err
}

func (s *session) Close() error {
	s.transport.CloseIdleConnections()
	s.sms = nil
	s.email = nil
	return nil
}

func sendStatus(resp *dispatch.GatewayResponse, err error) string {
	if err != nil {
		var gwErr *notification.GatewayError
		if errors.As(err, &gwErr) && gwErr.Status != 0 {
			return strconv.Itoa(gwErr.Status)
		}
		return "error"
	}
	return strconv.Itoa(resp.StatusCode)
}
