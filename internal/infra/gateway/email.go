package gateway

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"pride-notify/internal/domain/notification"
	"pride-notify/internal/pkg/errs"
	"pride-notify/internal/pkg/redact"
	"pride-notify/internal/usecase/dispatch"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

type emailSender struct {
	httpClient *http.Client
	endpoint   string
	sender     string
}

// send posts the message to the relay as multipart/form-data with the fields
// sender_email, html_message and subject, one "to" or "cc" field per address
// and one "attachments" part per file.
func (s *emailSender) send(ctx context.Context, msg *notification.Message) (*dispatch.GatewayResponse, error) {
	body, contentType, err := s.encode(msg)
	if err != nil {
		// a message we cannot encode will never succeed on replay
		return nil, notification.NewGatewayError(notification.KindGatewayTransport, 0, "", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, body)
	if err != nil {
		return nil, notification.NewGatewayError(notification.KindGatewayTransport, 0, "", redact.Error(err))
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, notification.NewGatewayError(notification.KindGatewayTransport, 0, "", redact.Error(err))
	}
	defer resp.Body.Close()
	return readResponse(resp)
}

func (s *emailSender) encode(msg *notification.Message) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	sender := s.sender
	if msg.Sender != "" {
		sender = msg.Sender
	}
	fields := []struct{ name, value string }{
		{"sender_email", sender},
		{"html_message", msg.Body},
		{"subject", msg.Subject},
	}
	for _, to := range strings.Split(msg.Recipient, ",") {
		if to = strings.TrimSpace(to); to != "" {
			fields = append(fields, struct{ name, value string }{"to", to})
		}
	}
	for _, cc := range msg.Cc {
		fields = append(fields, struct{ name, value string }{"cc", cc})
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", errs.Wrapf(err, "write field %s", f.name)
		}
	}

	for _, a := range msg.Attachments {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="attachments"; filename="%s"`, quoteEscaper.Replace(a.Filename)))
		ct := a.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", errs.Wrapf(err, "create attachment %s", a.Filename)
		}
		if _, err := part.Write(a.Content); err != nil {
			return nil, "", errs.Wrapf(err, "write attachment %s", a.Filename)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", errs.Wrap(err, "close multipart body")
	}
	return buf, w.FormDataContentType(), nil
}
