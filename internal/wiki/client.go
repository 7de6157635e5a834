// Package wiki is a small client for the MediaWiki full-text search API.
package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/feverpipe/internal/model"
	"github.com/ppiankov/feverpipe/internal/util"
	"github.com/ppiankov/feverpipe/internal/worker"
)

// DefaultLimit is the result count asked for when the caller sets no bound
const DefaultLimit = 10

// ErrDisallowed is returned when robots.txt forbids querying the endpoint
var ErrDisallowed = errors.New("search endpoint disallowed by robots.txt")

// Result is one search hit
type Result struct {
	Title   string `json:"title"`
	PageID  int    `json:"pageid"`
	Snippet string `json:"snippet"`
}

type searchResponse struct {
	Query struct {
		Search []Result `json:"search"`
	} `json:"query"`
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

// retryableError marks failures worth another attempt
type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// SleepFunc waits for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Client queries a MediaWiki search endpoint
type Client struct {
	endpoint    string
	userAgent   string
	httpClient  *http.Client
	limiter     *worker.Limiter
	robots      *util.RobotsChecker
	maxAttempts int
	backoff     time.Duration
	sleep       SleepFunc
	logger      *zap.Logger
}

// NewClient creates a search client from configuration
func NewClient(cfg model.SearchConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := util.NewHTTPClient(cfg.Timeout, cfg.HTTPProxy, cfg.HTTPSProxy)

	c := &Client{
		endpoint:    cfg.Endpoint,
		userAgent:   cfg.UserAgent,
		httpClient:  httpClient,
		limiter:     worker.NewLimiter(cfg.RequestsPerSecond, cfg.BurstSize),
		maxAttempts: max(cfg.MaxAttempts, 1),
		backoff:     cfg.BackoffBase,
		sleep:       sleepContext,
		logger:      logger,
	}
	if cfg.RespectRobots {
		c.robots = util.NewRobotsChecker(httpClient, cfg.UserAgent)
	}
	return c
}

// SetSleep replaces the backoff sleep, for tests
func (c *Client) SetSleep(fn SleepFunc) {
	c.sleep = fn
}

// SetHTTPClient replaces the HTTP client, for tests
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

// Search returns up to limit hits for query. Network failures, 429 and 5xx
// responses are retried with exponential backoff (base, 2*base, 4*base ...)
// until the attempt budget is spent.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	reqURL, err := c.searchURL(query, limit)
	if err != nil {
		return nil, err
	}

	if c.robots != nil {
		allowed, delay, err := c.robots.Check(ctx, reqURL)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, fmt.Errorf("%w: %s", ErrDisallowed, c.endpoint)
		}
		if delay > 0 {
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx, reqURL); err != nil {
			return nil, err
		}

		results, err := c.do(ctx, reqURL)
		if err == nil {
			return results, nil
		}

		var retryable *retryableError
		if !errors.As(err, &retryable) || ctx.Err() != nil {
			return nil, err
		}
		lastErr = err
		if attempt == c.maxAttempts {
			break
		}

		delay := c.backoff << (attempt - 1)
		c.logger.Warn("search failed, retrying",
			zap.String("query", query),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)
		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("search %q: giving up after %d attempts: %w", query, c.maxAttempts, lastErr)
}

// SearchTitles returns only the titles of the hits
func (c *Client) SearchTitles(ctx context.Context, query string, limit int) ([]string, error) {
	results, err := c.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	titles := make([]string, len(results))
	for i, r := range results {
		titles[i] = r.Title
	}
	return titles, nil
}

func (c *Client) searchURL(query string, limit int) (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("parse search endpoint: %w", err)
	}
	q := u.Query()
	q.Set("action", "query")
	q.Set("list", "search")
	q.Set("srsearch", query)
	q.Set("srlimit", strconv.Itoa(limit))
	q.Set("srprop", "snippet")
	q.Set("format", "json")
	q.Set("formatversion", "2")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) do(ctx context.Context, reqURL string) ([]Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &retryableError{err: fmt.Errorf("search request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &retryableError{err: fmt.Errorf("search: unexpected status %s", resp.Status)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search: unexpected status %s", resp.Status)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, &retryableError{err: fmt.Errorf("read search response: %w", err)}
		}
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	if body.Error != nil {
		return nil, fmt.Errorf("search API error %s: %s", body.Error.Code, body.Error.Info)
	}

	results := body.Query.Search
	for i := range results {
		results[i].Snippet = StripMarkup(results[i].Snippet)
	}
	return results, nil
}
