// Package client fetches the analytics summary over HTTP for the dashboard.
package client

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/eringen/pulseboard/dashboard"
)

// DefaultPath is where the analytics service serves its summary.
const DefaultPath = "/api/analytics"

// maxBodyBytes caps the summary payload read from the service.
const maxBodyBytes = 4 << 20

// defaultTimeout bounds a whole request unless WithTimeout says otherwise.
const defaultTimeout = 30 * time.Second

// Client implements dashboard.Fetcher against an analytics service.
type Client struct {
	baseURL string
	path    string
	timeout time.Duration
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the overall request timeout. Non-positive values keep the
// default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithPath overrides DefaultPath.
func WithPath(p string) Option {
	return func(c *Client) {
		c.path = p
	}
}

// New creates a Client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		path:    DefaultPath,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http = newHTTPClient(c.timeout)
	return c
}

func newHTTPClient(timeout time.Duration) *http.Client {
	tr := &http.Transport{
		Proxy:           http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
		MaxIdleConns:    100,
		IdleConnTimeout: 90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: tr,
	}
}

// Endpoint returns the full summary URL.
func (c *Client) Endpoint() string {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return c.baseURL + c.path
	}
	u.Path = path.Join(u.Path, c.path)
	return u.String()
}

// Fetch requests the summary and decodes it.
func (c *Client) Fetch(ctx context.Context) (*dashboard.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoint(), nil)
	if err != nil {
		return nil, fmt.Errorf("build analytics request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read analytics response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, body)
	}
	return Decode(body)
}

// statusError builds the failure for a non-2xx reply, preferring the
// service's own error text.
func statusError(code int, body []byte) error {
	msg := ""
	if gjson.ValidBytes(body) {
		msg = gjson.GetBytes(body, "error").String()
		if details := gjson.GetBytes(body, "details").String(); details != "" {
			if msg == "" {
				msg = details
			} else {
				msg += ": " + details
			}
		}
	}
	if msg == "" {
		msg = http.StatusText(code)
	}
	return &dashboard.FetchError{
		Message: msg,
		Err:     fmt.Errorf("analytics service returned status %d", code),
	}
}
