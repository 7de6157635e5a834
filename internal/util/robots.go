package util

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// RobotsChecker answers robots.txt questions, fetching each host's file once
type RobotsChecker struct {
	client *http.Client
	agent  string
	ua     string

	mu    sync.Mutex
	hosts map[string]*robotstxt.RobotsData
}

// NewRobotsChecker creates a checker that identifies itself with userAgent
func NewRobotsChecker(client *http.Client, userAgent string) *RobotsChecker {
	return &RobotsChecker{
		client: client,
		agent:  AgentToken(userAgent),
		ua:     userAgent,
		hosts:  make(map[string]*robotstxt.RobotsData),
	}
}

// Check reports whether rawURL may be fetched and the crawl delay asked for
// by its host. An unreachable or missing robots.txt allows everything.
func (r *RobotsChecker) Check(ctx context.Context, rawURL string) (bool, time.Duration, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false, 0, fmt.Errorf("parse URL: %w", err)
	}

	data := r.robots(ctx, u)
	path := u.EscapedPath()
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}

	var delay time.Duration
	if g := data.FindGroup(r.agent); g != nil {
		delay = g.CrawlDelay
	}
	return data.TestAgent(path, r.agent), delay, nil
}

func (r *RobotsChecker) robots(ctx context.Context, u *url.URL) *robotstxt.RobotsData {
	r.mu.Lock()
	data, ok := r.hosts[u.Host]
	r.mu.Unlock()
	if ok {
		return data
	}

	data = r.fetch(ctx, fmt.Sprintf("%s://%s/robots.txt", u.Scheme, u.Host))

	r.mu.Lock()
	r.hosts[u.Host] = data
	r.mu.Unlock()
	return data
}

func (r *RobotsChecker) fetch(ctx context.Context, robotsURL string) *robotstxt.RobotsData {
	allowAll, _ := robotstxt.FromStatusAndBytes(http.StatusNotFound, nil)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return allowAll
	}
	req.Header.Set("User-Agent", r.ua)

	resp, err := r.client.Do(req)
	if err != nil {
		return allowAll
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return allowAll
	}
	return data
}

// AgentToken reduces a User-Agent header to the product token robots.txt
// groups are matched against ("feverpipe/0.1 (+url)" -> "feverpipe")
func AgentToken(ua string) string {
	fields := strings.Fields(ua)
	if len(fields) == 0 {
		return ua
	}
	product, _, _ := strings.Cut(fields[0], "/")
	return product
}
