// Package chainrpc is the HTTP client for the registrar and marketplace
// collaborator: action submission and domain info lookups
package chainrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	perr "warden/internal/platform/errors"
	"warden/internal/platform/logger"
	autopilot "warden/internal/services/autopilot/domain"
)

const (
	defaultTimeout = 15 * time.Second
	defaultUA      = "warden-engine"
)

// Options configures the Client
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// Client talks to the registrar/marketplace HTTP API
type Client struct {
	http *http.Client
	opts Options
	log  logger.Logger
}

// New creates a new Client with sane defaults
func New(o Options) *Client {
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	return &Client{
		http: &http.Client{Timeout: o.Timeout},
		opts: o,
		log:  *logger.Named("chainrpc"),
	}
}

type submitResponse struct {
	TxHash string `json:"tx_hash"`
	Error  string `json:"error,omitempty"`
}

// Submit implements the autopilot SubmitPort
// the call blocks until the collaborator confirms or ctx expires
func (c *Client) Submit(ctx context.Context, req autopilot.SubmitRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeInvalidArgument, "encode submission")
	}

	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+"/v1/actions", bytes.NewReader(body))
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeInvalidArgument, "build request")
	}
	hreq.Header.Set("Content-Type", "application/json")
	hreq.Header.Set("User-Agent", c.opts.UserAgent)

	resp, err := c.http.Do(hreq)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", perr.Timeoutf("submit %s %s: %v", req.Kind, req.Domain, err)
		}
		return "", perr.Unavailablef("submit %s %s: %v", req.Kind, req.Domain, err)
	}
	defer drain(resp)

	var out submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", perr.Unavailablef("submit %s %s: undecodable response", req.Kind, req.Domain)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := out.Error
		if detail == "" {
			detail = resp.Status
		}
		return "", perr.Unavailablef("submit %s %s: %s", req.Kind, req.Domain, detail)
	}
	if out.TxHash == "" {
		return "", perr.Unavailablef("submit %s %s: confirmation without tx hash", req.Kind, req.Domain)
	}
	return out.TxHash, nil
}

type domainInfoResponse struct {
	Domain   string    `json:"domain"`
	ExpiryAt time.Time `json:"expiry_at"`
}

// DomainInfo implements the scheduler DomainInfoPort
func (c *Client) DomainInfo(ctx context.Context, domain string) (time.Time, error) {
	hreq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.BaseURL+"/v1/domains/"+domain, nil)
	if err != nil {
		return time.Time{}, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "build request")
	}
	hreq.Header.Set("User-Agent", c.opts.UserAgent)

	resp, err := c.http.Do(hreq)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return time.Time{}, perr.Timeoutf("domain info %s: %v", domain, err)
		}
		return time.Time{}, perr.Unavailablef("domain info %s: %v", domain, err)
	}
	defer drain(resp)

	if resp.StatusCode == http.StatusNotFound {
		return time.Time{}, perr.NotFoundf("domain %s", domain)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return time.Time{}, perr.Unavailablef("domain info %s: %s", domain, resp.Status)
	}

	var out domainInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return time.Time{}, perr.Unavailablef("domain info %s: undecodable response", domain)
	}
	return out.ExpiryAt, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
