package util

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestRobotsChecker_Check(t *testing.T) {
	var fetches int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		atomic.AddInt32(&fetches, 1)
		_, _ = w.Write([]byte("User-agent: feverpipe\nDisallow: /private\nCrawl-delay: 2\n\nUser-agent: *\nDisallow: /\n"))
	}))
	defer srv.Close()

	rc := NewRobotsChecker(srv.Client(), "feverpipe/0.1 (+https://example.com)")
	ctx := context.Background()

	allowed, delay, err := rc.Check(ctx, srv.URL+"/w/api.php?action=query")
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if !allowed {
		t.Error("expected api path to be allowed")
	}
	if delay != 2*time.Second {
		t.Errorf("expected crawl delay 2s, got %v", delay)
	}

	allowed, _, _ = rc.Check(ctx, srv.URL+"/private/page")
	if allowed {
		t.Error("expected /private to be disallowed")
	}

	if n := atomic.LoadInt32(&fetches); n != 1 {
		t.Errorf("expected robots.txt to be fetched once, got %d", n)
	}
}

func TestRobotsChecker_MissingRobotsAllows(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	rc := NewRobotsChecker(srv.Client(), "feverpipe")
	allowed, _, err := rc.Check(context.Background(), srv.URL+"/anything")
	if err != nil || !allowed {
		t.Errorf("expected allowed, got %v, %v", allowed, err)
	}
}

func TestAgentToken(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"feverpipe/0.1 (+https://github.com/ppiankov/feverpipe)", "feverpipe"},
		{"curl", "curl"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := AgentToken(tt.in); got != tt.want {
			t.Errorf("AgentToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestProxyFunc(t *testing.T) {
	fn := proxyFunc("http://proxy:8080", "http://secure-proxy:8443")

	req, _ := http.NewRequest(http.MethodGet, "https://en.wikipedia.org/w/api.php", nil)
	u, err := fn(req)
	if err != nil || u.Host != "secure-proxy:8443" {
		t.Errorf("https proxy = %v, %v", u, err)
	}

	req, _ = http.NewRequest(http.MethodGet, "http://en.wikipedia.org/w/api.php", nil)
	u, err = fn(req)
	if err != nil || u.Host != "proxy:8080" {
		t.Errorf("http proxy = %v, %v", u, err)
	}
}
