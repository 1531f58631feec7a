// Package guardian talks to the Guardian content API search endpoint.
package guardian

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/fruitcakej/GuardianNews/internal/cache"
	"github.com/fruitcakej/GuardianNews/internal/logging"
	"github.com/fruitcakej/GuardianNews/internal/query"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const maxBodySize = 8 << 20

type Options struct {
	Endpoint          query.Endpoint
	Timeout           time.Duration
	RequestsPerSecond float64
	HTTPClient        *http.Client
	Logger            *slog.Logger
	UserAgent         string
}

// Client performs search requests. Identical concurrent requests share a
// single HTTP call and every call waits on the rate limiter.
type Client struct {
	endpoint  query.Endpoint
	http      *http.Client
	limiter   *rate.Limiter
	group     singleflight.Group
	timeout   time.Duration
	logger    *slog.Logger
	userAgent string
}

func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = "guardiannews"
	}
	return &Client{
		endpoint:  opts.Endpoint,
		http:      hc,
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
		timeout:   timeout,
		logger:    logger,
		userAgent: ua,
	}
}

// Fetch runs one search for req. The returned slice is shared with any
// concurrent caller of the same request and must not be modified.
func (c *Client) Fetch(ctx context.Context, req query.Request) ([]cache.Article, error) {
	rawURL, err := c.endpoint.URL(req)
	if err != nil {
		return nil, err
	}

	ch := c.group.DoChan(rawURL, func() (interface{}, error) {
		// Detached so one caller giving up does not fail the others.
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		return c.get(fctx, rawURL)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]cache.Article), nil
	}
}

func (c *Client) get(ctx context.Context, rawURL string) ([]cache.Article, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting articles: %w", err)
	}
	defer resp.Body.Close()

	body := io.LimitReader(resp.Body, maxBodySize)
	c.logger.Debug("guardian search", "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		_, perr := Parse(body)
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var parsed *APIError
		if errors.As(perr, &parsed) {
			apiErr.Message = parsed.Message
		}
		return nil, apiErr
	}

	articles, err := Parse(body)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	for i := range articles {
		articles[i].FetchedAt = now
	}
	return articles, nil
}
