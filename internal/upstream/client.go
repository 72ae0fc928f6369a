// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

package upstream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

// Responses larger than this are treated as errors. The largest
// legitimate payloads are satellite JPEG tiles and aircraft feeds for
// dense regions, both well under this ceiling.
const maxResponseBytes = 16 << 20

const defaultUserAgent = "aetherwatch/1.0 (+https://github.com/tomtom215/aetherwatch)"

// ErrUnavailable marks a provider that cannot accept requests right
// now, either because its circuit breaker is open or because the local
// rate limit is exhausted. Fallback chains treat it like any other
// fetch failure and move on to the next provider.
var ErrUnavailable = errors.New("upstream unavailable")

// ErrRateLimited is returned when the client-side rate limiter has no
// tokens. It wraps ErrUnavailable.
var ErrRateLimited = fmt.Errorf("%w: rate limited", ErrUnavailable)

// StatusError reports a non-2xx response from an upstream provider.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d (%s)", e.Code, e.Status)
}

// BasicAuth carries credentials for providers that take HTTP basic
// authentication, such as authenticated OpenSky accounts.
type BasicAuth struct {
	Username string
	Password string
}

// ReqOptions carries optional per-request settings. A nil *ReqOptions
// is valid and means defaults throughout.
type ReqOptions struct {
	BasicAuth *BasicAuth
	Accept    string
}

type fetchResult struct {
	body        []byte
	contentType string
}

// Client is a rate-limited, circuit-broken HTTP client bound to one
// upstream provider. All provider fetchers in the aviation, satellite
// and vision packages are built on it.
type Client struct {
	name    string
	httpc   *http.Client
	breaker *Breaker
	limiter *rate.Limiter
}

// NewClient builds a client for the named provider. rps and burst
// configure the client-side rate limiter; rps <= 0 disables local rate
// limiting entirely.
func NewClient(name string, timeout time.Duration, rps float64, burst int) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	var limiter *rate.Limiter
	if rps > 0 {
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}

	return &Client{
		name:    name,
		httpc:   &http.Client{Timeout: timeout},
		breaker: NewBreaker(name),
		limiter: limiter,
	}
}

// Name returns the provider name this client is bound to.
func (c *Client) Name() string {
	return c.name
}

// Available reports whether a request made now has a chance of being
// sent: the breaker is not open and the rate limiter has at least one
// token. It does not consume a token.
func (c *Client) Available() bool {
	if !c.breaker.Available() {
		return false
	}
	if c.limiter != nil && c.limiter.Tokens() < 1 {
		return false
	}
	return true
}

// BreakerState returns the breaker state string for status reporting.
func (c *Client) BreakerState() string {
	return c.breaker.State()
}

// GetJSON fetches rawURL and decodes the JSON response body into out.
func (c *Client) GetJSON(ctx context.Context, rawURL string, opts *ReqOptions, out interface{}) error {
	if opts == nil {
		opts = &ReqOptions{}
	}
	if opts.Accept == "" {
		opts.Accept = "application/json"
	}

	res, err := c.do(ctx, http.MethodGet, rawURL, opts, nil)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(res.body, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", c.name, err)
	}
	return nil
}

// PostJSON sends in as a JSON request body and decodes the JSON
// response into out. out may be nil if the response body is irrelevant.
func (c *Client) PostJSON(ctx context.Context, rawURL string, opts *ReqOptions, in, out interface{}) error {
	if opts == nil {
		opts = &ReqOptions{}
	}
	if opts.Accept == "" {
		opts.Accept = "application/json"
	}

	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", c.name, err)
	}

	res, err := c.do(ctx, http.MethodPost, rawURL, opts, payload)
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(res.body, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", c.name, err)
	}
	return nil
}

// GetBytes fetches rawURL and returns the raw body along with the
// response Content-Type. Used for image endpoints where the caller
// must inspect the media type itself.
func (c *Client) GetBytes(ctx context.Context, rawURL string, opts *ReqOptions) ([]byte, string, error) {
	res, err := c.do(ctx, http.MethodGet, rawURL, opts, nil)
	if err != nil {
		return nil, "", err
	}
	return res.body, res.contentType, nil
}

func (c *Client) do(ctx context.Context, method, rawURL string, opts *ReqOptions, body []byte) (*fetchResult, error) {
	if c.limiter != nil && !c.limiter.Allow() {
		return nil, fmt.Errorf("%s: %w", c.name, ErrRateLimited)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.roundTrip(ctx, method, rawURL, opts, body)
	})
	return CastResult[fetchResult](result, err)
}

func (c *Client) roundTrip(ctx context.Context, method, rawURL string, opts *ReqOptions, body []byte) (*fetchResult, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", c.name, err)
	}

	req.Header.Set("User-Agent", defaultUserAgent)
	if opts != nil {
		if opts.Accept != "" {
			req.Header.Set("Accept", opts.Accept)
		}
		if opts.BasicAuth != nil {
			req.SetBasicAuth(opts.BasicAuth.Username, opts.BasicAuth.Password)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: request failed: %w", c.name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain a little so the connection can be reused.
		_, _ = io.CopyN(io.Discard, resp.Body, 4096)
		return nil, fmt.Errorf("%s: %w", c.name, &StatusError{Code: resp.StatusCode, Status: resp.Status})
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", c.name, err)
	}
	if len(data) > maxResponseBytes {
		return nil, fmt.Errorf("%s: response exceeds %d bytes", c.name, maxResponseBytes)
	}

	return &fetchResult{
		body:        data,
		contentType: resp.Header.Get("Content-Type"),
	}, nil
}
