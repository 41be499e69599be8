package httpclient

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitedClient spaces out requests to next. Wrap it inside a
// CachingClient so cache hits are served without waiting.
type RateLimitedClient struct {
	next    Client
	limiter *rate.Limiter
}

// NewRateLimitedClient allows one request per interval; zero disables the limit.
func NewRateLimitedClient(next Client, interval time.Duration) *RateLimitedClient {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &RateLimitedClient{next: next, limiter: rate.NewLimiter(limit, 1)}
}

func (c *RateLimitedClient) Get(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	return c.next.Get(ctx, url, headers)
}
