// Package httpclient provides the HTTP client used for feeds and release pages,
// plus an on-disk response cache keyed by URL.
package httpclient

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const maxRedirects = 10

// Client performs GET requests.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (*Response, error)
}

// Response is a fully read HTTP response.
type Response struct {
	status   int
	body     []byte
	finalURL string
	cached   bool
}

// NewResponse builds a Response; mainly useful for fakes in tests.
func NewResponse(status int, body []byte, finalURL string) *Response {
	return &Response{status: status, body: body, finalURL: finalURL}
}

func (r *Response) StatusCode() int { return r.status }
func (r *Response) Body() []byte    { return r.body }

// FinalURL is the URL of the last request after following redirects.
func (r *Response) FinalURL() string { return r.finalURL }

// Cached reports whether the response was served from the on-disk cache.
func (r *Response) Cached() bool { return r.cached }

type restyClient struct {
	rc *resty.Client
}

// NewRestyClient returns a Client backed by resty with the given timeout and User-Agent.
func NewRestyClient(timeout time.Duration, userAgent string) Client {
	rc := resty.New().
		SetTimeout(timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(maxRedirects))
	if userAgent != "" {
		rc.SetHeader("User-Agent", userAgent)
	}
	return &restyClient{rc: rc}
}

func (c *restyClient) Get(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	resp, err := c.rc.R().
		SetContext(ctx).
		SetHeaders(headers).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}

	finalURL := url
	if raw := resp.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
		finalURL = raw.Request.URL.String()
	}

	return &Response{
		status:   resp.StatusCode(),
		body:     resp.Body(),
		finalURL: finalURL,
	}, nil
}
