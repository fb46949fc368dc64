// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package backlog is a client for the Backlog document API. Every request
// is paced by a rate limiter and authenticated with an API key sent as a
// query parameter.
package backlog

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/backlog-exporter/internal/httputil"
	"github.com/pdiddy/backlog-exporter/pkg/types"
)

// maxErrorBody caps how much of an error response is kept in APIError.
const maxErrorBody = 64 << 10

// Client talks to the REST API of one Backlog space and project.
type Client struct {
	cfg     types.BacklogConfig
	baseURL string
	http    *http.Client
	limiter *httputil.RateLimiter
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. The SSLVerify and Timeout
// settings are not applied to a supplied client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithBaseURL overrides the API root derived from the space domain.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithRateLimiter replaces the limiter built from cfg.RateInterval.
func WithRateLimiter(rl *httputil.RateLimiter) Option {
	return func(c *Client) { c.limiter = rl }
}

// NewClient returns a client for cfg.
func NewClient(cfg types.BacklogConfig, opts ...Option) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !cfg.SSLVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	c := &Client{
		cfg:     cfg,
		baseURL: cfg.BaseURL(),
		http:    &http.Client{Timeout: cfg.Timeout, Transport: transport},
		limiter: httputil.NewRateLimiter(cfg.RateInterval),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DocumentURL returns the browser link for a document.
func (c *Client) DocumentURL(id types.ID) string {
	return fmt.Sprintf("https://%s/document/%s/%s", c.cfg.SpaceDomain, c.cfg.ProjectKey, id)
}

// Do waits on the rate limiter and performs one request. A non-2xx status
// returns *APIError. On success the response body is open and the caller
// must close it; headers are available for attachment downloads.
func (c *Client) Do(ctx context.Context, method, path string, params url.Values) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	for k, vs := range params {
		q[k] = append([]string(nil), vs...)
	}
	q.Set("apiKey", c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, redactErr(err, c.cfg.APIKey))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}
	return resp, nil
}

// getBytes performs a GET and returns the response body and content type.
func (c *Client) getBytes(ctx context.Context, path string, params url.Values) ([]byte, string, error) {
	resp, err := c.Do(ctx, http.MethodGet, path, params)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("reading response for %s: %w", path, err)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// getJSON performs a GET and decodes a JSON response into v.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, v any) error {
	body, contentType, err := c.getBytes(ctx, path, params)
	if err != nil {
		return err
	}
	if !isJSON(contentType) {
		return fmt.Errorf("GET %s: expected JSON response, got content type %q", path, contentType)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("parsing response for %s: %w", path, err)
	}
	return nil
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.HasPrefix(contentType, "application/json")
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// redactErr strips the API key from transport errors, whose URL carries it
// in the query string. The error chain is preserved.
func redactErr(err error, apiKey string) error {
	var ue *url.Error
	if apiKey != "" && errors.As(err, &ue) {
		ue.URL = strings.ReplaceAll(ue.URL, url.QueryEscape(apiKey), "REDACTED")
		ue.URL = strings.ReplaceAll(ue.URL, apiKey, "REDACTED")
	}
	return err
}
