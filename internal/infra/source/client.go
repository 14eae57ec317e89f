// Package source fetches raw records from the upstream ESB feeds.
package source

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"pride-notify/internal/domain/notification"
	"pride-notify/internal/pkg/config"
	"pride-notify/internal/pkg/errs"
	"pride-notify/internal/pkg/metrics"
	"pride-notify/internal/pkg/redact"
	"pride-notify/internal/pkg/secret"
)

const maxErrorBody = 512

type Client struct {
	cfg        config.SourcesConfig
	decrypter  secret.Decrypter
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(cfg config.SourcesConfig, decrypter secret.Decrypter, logger *slog.Logger) *Client {
	return &Client{
		cfg:        cfg,
		decrypter:  decrypter,
		httpClient: &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()},
		logger:     logger,
	}
}

type credentials struct {
	url      string
	user     string
	password string
	apiKey   string
}

// resolve decrypts the category's endpoint and the shared ESB credentials.
// It runs on every fetch so rotated values are picked up without a restart.
func (c *Client) resolve(category notification.Category) (credentials, error) {
	encURL := c.cfg.URLFor(string(category))
	if encURL == "" {
		return credentials{}, errs.Mark(errs.Newf("no source endpoint configured for %s", category), errs.ErrFatal)
	}
	plain, err := secret.DecryptAll(c.decrypter, encURL, c.cfg.User, c.cfg.Password, c.cfg.APIKey)
	if err != nil {
		return credentials{}, errs.Wrapf(err, "resolve %s source credentials", category)
	}
	return credentials{url: plain[0], user: plain[1], password: plain[2], apiKey: plain[3]}, nil
}

// Fetch performs one GET against the category's feed. It never retries.
func (c *Client) Fetch(ctx context.Context, spec notification.CategorySpec) ([]notification.RawRecord, error) {
	creds, err := c.resolve(spec.Name)
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(creds.url)
	if err != nil {
		return nil, errs.Mark(errs.Newf("source endpoint for %s is not a valid URL", spec.Name), errs.ErrFatal)
	}
	q := u.Query()
	q.Set("apiKey", creds.apiKey)
	u.RawQuery = q.Encode()

	if spec.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, spec.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, notification.NewSourceError(notification.KindSourceTransport, spec.Name, 0, redact.Error(err))
	}
	req.SetBasicAuth(creds.user, creds.password)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("fetching source records", "category", spec.Name, "url", redact.URL(u.String()))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		observe(spec.Name, "error", start)
		return nil, notification.NewSourceError(notification.KindSourceTransport, spec.Name, 0, redact.Error(err))
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()
	observe(spec.Name, strconv.Itoa(resp.StatusCode), start)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, notification.NewSourceError(notification.KindSourceStatus, spec.Name, resp.StatusCode,
			errs.Newf("upstream replied %q", string(body)))
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, notification.NewSourceError(notification.KindSourceDecode, spec.Name, resp.StatusCode, err)
	}

	records, err := unwrap(payload, spec)
	if err != nil {
		return nil, err
	}
	c.logger.Info("source records fetched", "category", spec.Name, "count", len(records))
	return records, nil
}

// unwrap extracts the record list, reading it from the envelope key when the
// category has one. An empty list is reported as SourceError{EMPTY}.
func unwrap(payload any, spec notification.CategorySpec) ([]notification.RawRecord, error) {
	if spec.Envelope != "" {
		obj, ok := payload.(map[string]any)
		if !ok {
			return nil, notification.NewSourceError(notification.KindSourceDecode, spec.Name, http.StatusOK,
				errs.Newf("expected an object carrying %q", spec.Envelope))
		}
		payload = obj[spec.Envelope]
		if payload == nil {
			return nil, notification.NewSourceError(notification.KindSourceEmpty, spec.Name, http.StatusOK, nil)
		}
	}

	list, ok := payload.([]any)
	if !ok {
		return nil, notification.NewSourceError(notification.KindSourceDecode, spec.Name, http.StatusOK,
			errs.New("expected a list of records"))
	}
	if len(list) == 0 {
		return nil, notification.NewSourceError(notification.KindSourceEmpty, spec.Name, http.StatusOK, nil)
	}

	records := make([]notification.RawRecord, 0, len(list))
	for i, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, notification.NewSourceError(notification.KindSourceDecode, spec.Name, http.StatusOK,
				errs.Newf("record %d is not an object", i))
		}
		records = append(records, notification.RawRecord(obj))
	}
	return records, nil
}

func observe(category notification.Category, status string, start time.Time) {
	metrics.SourceFetchDuration.WithLabelValues(string(category), status).Observe(time.Since(start).Seconds())
}
