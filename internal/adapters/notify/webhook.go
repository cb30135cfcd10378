// Package notify delivers notifications to per-platform webhook endpoints
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	perr "warden/internal/platform/errors"
	"warden/internal/platform/logger"
	"warden/internal/services/alerts/domain"
)

const defaultTimeout = 10 * time.Second

// Config maps notification platforms to webhook endpoints
type Config struct {
	// Endpoints keys are platform names (telegram, discord, ...)
	Endpoints map[string]string
	Timeout   time.Duration
}

// Webhook implements the alerts NotifierPort over HTTP POST
// delivery is one attempt per call; retries belong to the receiving side
type Webhook struct {
	endpoints map[string]string
	client    *http.Client
	log       logger.Logger
}

// New constructs a Webhook notifier
func New(cfg Config, log logger.Logger) *Webhook {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Webhook{
		endpoints: cfg.Endpoints,
		client:    &http.Client{Timeout: timeout},
		log:       log.With().Str("component", "notify").Logger(),
	}
}

// Send implements domain.NotifierPort
func (w *Webhook) Send(ctx context.Context, n domain.Notification) error {
	endpoint, ok := w.endpoints[n.Platform]
	if !ok {
		return perr.InvalidArgf("no endpoint configured for platform %q", n.Platform)
	}

	body, err := json.Marshal(n)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeInvalidArgument, "encode notification")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeInvalidArgument, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return perr.Timeoutf("notify %s: %v", n.Platform, err)
		}
		return perr.Unavailablef("notify %s: %v", n.Platform, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return perr.Unavailablef("notify %s: endpoint returned %d", n.Platform, resp.StatusCode)
	}
	return nil
}
