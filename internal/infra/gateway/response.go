package gateway

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"pride-notify/internal/domain/notification"
	"pride-notify/internal/usecase/dispatch"
)

const maxResponseBody = 64 << 10

// readResponse turns a gateway reply into a payload. Non-2xx is a GatewayError;
// bodies that are not a JSON object are wrapped rather than rejected.
func readResponse(resp *http.Response) (*dispatch.GatewayResponse, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, notification.NewGatewayError(notification.KindGatewayTransport, resp.StatusCode, "", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, notification.NewGatewayError(notification.KindGatewayStatus, resp.StatusCode, truncate(string(body)), nil)
	}
	return &dispatch.GatewayResponse{StatusCode: resp.StatusCode, Payload: parsePayload(body)}, nil
}

func parsePayload(body []byte) map[string]any {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil || dec.More() {
		return map[string]any{"raw_response": string(body)}
	}
	if obj, ok := v.(map[string]any); ok {
		return obj
	}
	return map[string]any{"response": v}
}

func truncate(s string) string {
	const limit = 512
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
