package util

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/appscope/internal/model"
)

func robotsServer(t *testing.T, status int, body string, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRobotsChecker_Rules(t *testing.T) {
	var hits int32
	srv := robotsServer(t, http.StatusOK, "User-agent: AppScope\nDisallow: /private\nCrawl-delay: 2\n\nUser-agent: *\nDisallow: /\n", &hits)

	checker := NewRobotsChecker(srv.Client(), "AppScope/0.1 (+https://example.com)")

	allowed, delay, err := checker.CanFetch(context.Background(), srv.URL+"/us/rss/customerreviews/json")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 2*time.Second, delay)

	allowed, _, err = checker.CanFetch(context.Background(), srv.URL+"/private/x")
	require.NoError(t, err)
	assert.False(t, allowed)

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "robots.txt should be fetched once per host")

	checker.Clear()
	_, _, _ = checker.CanFetch(context.Background(), srv.URL+"/x")
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestRobotsChecker_MissingFileAllows(t *testing.T) {
	srv := robotsServer(t, http.StatusNotFound, "", nil)
	checker := NewRobotsChecker(srv.Client(), "AppScope/0.1")

	allowed, delay, err := checker.CanFetch(context.Background(), srv.URL+"/anything")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Zero(t, delay)
}

func TestRobotsChecker_ServerErrorDisallows(t *testing.T) {
	srv := robotsServer(t, http.StatusServiceUnavailable, "", nil)
	checker := NewRobotsChecker(srv.Client(), "AppScope/0.1")

	allowed, _, err := checker.CanFetch(context.Background(), srv.URL+"/anything")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestRobotsChecker_UnreachableAllows(t *testing.T) {
	checker := NewRobotsChecker(&http.Client{Timeout: time.Second}, "AppScope/0.1")

	allowed, _, err := checker.CanFetch(context.Background(), "http://127.0.0.1:1/feed")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRobotsChecker_BadURL(t *testing.T) {
	checker := NewRobotsChecker(nil, "AppScope/0.1")

	_, _, err := checker.CanFetch(context.Background(), "::bad")
	assert.Error(t, err)
}

func TestNormalizeUserAgent(t *testing.T) {
	assert.Equal(t, "AppScope", NormalizeUserAgent("AppScope/0.1 (+https://github.com/ppiankov/appscope)"))
	assert.Equal(t, "curl", NormalizeUserAgent("curl"))
	assert.Equal(t, "", NormalizeUserAgent(""))
}

func TestNewProxyFunc(t *testing.T) {
	proxy := NewProxyFunc("http://proxy.internal:3128", "http://secure.internal:3128", "itunes.apple.com")

	req := func(raw string) *http.Request {
		u, err := url.Parse(raw)
		require.NoError(t, err)
		return &http.Request{URL: u}
	}

	got, err := proxy(req("http://example.com/feed"))
	require.NoError(t, err)
	assert.Equal(t, "proxy.internal:3128", got.Host)

	got, err = proxy(req("https://example.com/feed"))
	require.NoError(t, err)
	assert.Equal(t, "secure.internal:3128", got.Host)

	got, err = proxy(req("https://itunes.apple.com/lookup"))
	require.NoError(t, err)
	assert.Nil(t, got, "NO_PROXY hosts bypass the proxy")
}

func TestNewHTTPClient(t *testing.T) {
	client := NewHTTPClient(model.HTTPConfig{Timeout: 7 * time.Second})
	assert.Equal(t, 7*time.Second, client.Timeout)

	var redirects int32
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&redirects, 1)
		http.Redirect(w, r, srv.URL+"/next", http.StatusFound)
	}))
	defer srv.Close()

	_, err := client.Get(srv.URL)
	assert.Error(t, err)
	assert.Equal(t, int32(maxRedirects), atomic.LoadInt32(&redirects))
}
