package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/appscope/internal/model"
)

func TestLimiter_New(t *testing.T) {
	assert.Equal(t, 3, NewLimiter(2, 3).defaultBurst)
	assert.Equal(t, 1, NewLimiter(2, -1).defaultBurst, "negative burst defaults to 1")

	fromConfig := NewLimiterFromConfig(model.RateLimitingConfig{RequestsPerSecond: 2, BurstSize: 1})
	assert.Equal(t, 1, fromConfig.defaultBurst)
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	assert.NoError(t, limiter.Wait(ctx, "https://itunes.apple.com/us/rss/customerreviews/page=1/id=1/json"))
	assert.NoError(t, limiter.Wait(ctx, "https://example.com"))
}

func TestLimiter_WaitCancelled(t *testing.T) {
	limiter := NewLimiter(0.01, 1)
	url := "https://itunes.apple.com/feed"

	require.True(t, limiter.Allow(url), "first request should pass")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, limiter.Wait(ctx, url))
}

func TestLimiter_WaitWithDelay(t *testing.T) {
	limiter := NewLimiter(100, 1)

	start := time.Now()
	require.NoError(t, limiter.WaitWithDelay(context.Background(), "https://example.com", 50*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestLimiter_RateLimit(t *testing.T) {
	limiter := NewLimiter(1, 1)
	url := "https://itunes.apple.com/a"

	require.NoError(t, limiter.Wait(context.Background(), url))

	// Same host, different path shares the budget.
	assert.False(t, limiter.Allow("https://ITUNES.apple.com/b"), "tokens should be exhausted")
	assert.True(t, limiter.Allow("https://other.example"), "other host has its own budget")
}

func TestLimiter_Unlimited(t *testing.T) {
	limiter := NewLimiter(0, 1)
	for i := 0; i < 10; i++ {
		require.True(t, limiter.Allow("https://example.com"), "request %d", i)
	}
}

func TestLimiter_SetHostRate(t *testing.T) {
	limiter := NewLimiter(10, 10)
	limiter.SetHostRate("slow.example", 0.1, 1)

	assert.True(t, limiter.Allow("https://slow.example/x"), "first request should pass")
	assert.False(t, limiter.Allow("https://slow.example/y"), "second request should fail")
	assert.True(t, limiter.Allow("https://fast.example"), "other host should pass")
}

func TestHostOf(t *testing.T) {
	host, err := hostOf("https://iTunes.Apple.com/lookup?id=1")
	require.NoError(t, err)
	assert.Equal(t, "itunes.apple.com", host)

	_, err = hostOf("::invalid")
	assert.Error(t, err, "invalid URL")
	_, err = hostOf("relative/path")
	assert.Error(t, err, "URL without host")
}
