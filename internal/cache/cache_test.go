package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/appscope/internal/model"
)

func TestKey(t *testing.T) {
	a := Key("feed", "us", "123", "1")
	b := Key("feed", "us", "123", "2")
	c := Key("lookup", "us", "123", "1")

	assert.True(t, strings.HasPrefix(a, "appscope:v1:feed:"))
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, a, Key("feed", "us", "123", "1"))
	assert.NotEqual(t, Key("feed", "us1", "23"), Key("feed", "us", "123"))
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	require.NoError(t, c.Set("k", []byte("v"), 0))
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)
	assert.Equal(t, 1, c.Len())

	require.NoError(t, c.Delete("k"))
	_, ok = c.Get("k")
	assert.False(t, ok)

	require.NoError(t, c.Set("a", []byte("1"), 0))
	require.NoError(t, c.Clear())
	assert.Equal(t, 0, c.Len())
}

func TestDiskCache_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)

	require.NoError(t, c.Set("appscope:v1:feed:abc", []byte(`{"feed":{}}`), 0))

	got, ok := c.Get("appscope:v1:feed:abc")
	require.True(t, ok)
	assert.Equal(t, `{"feed":{}}`, string(got))

	// No temp files are left behind.
	matches, err := filepath.Glob(filepath.Join(dir, "*", ".tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, matches)

	require.NoError(t, c.Delete("appscope:v1:feed:abc"))
	_, ok = c.Get("appscope:v1:feed:abc")
	assert.False(t, ok)
	assert.NoError(t, c.Delete("appscope:v1:feed:abc"), "deleting a missing key is not an error")
}

func TestDiskCache_Expiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set("k", []byte("v"), 0))

	now = now.Add(30 * time.Second)
	_, ok := c.Get("k")
	assert.True(t, ok)

	now = now.Add(time.Minute)
	_, ok = c.Get("k")
	assert.False(t, ok)

	_, err := os.Stat(c.path("k"))
	assert.True(t, os.IsNotExist(err), "expired entry should be removed")
}

func TestDiskCache_CorruptEntry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	path := c.path("k")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	memory := NewMemoryCache(time.Minute, time.Minute)
	disk := NewDiskCache(t.TempDir(), time.Hour)
	c := NewLayered(memory, disk)

	require.NoError(t, disk.Set("k", []byte("v"), 0))
	assert.Equal(t, 0, memory.Len())

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", string(got))
	assert.Equal(t, 1, memory.Len())

	require.NoError(t, c.Delete("k"))
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestNew(t *testing.T) {
	assert.IsType(t, Nop{}, New(model.CacheConfig{Enabled: false}))
	assert.IsType(t, &MemoryCache{}, New(model.CacheConfig{Enabled: true, MemoryTTL: time.Minute}))
	assert.IsType(t, &LayeredCache{}, New(model.CacheConfig{Enabled: true, Dir: t.TempDir()}))

	nop := Nop{}
	require.NoError(t, nop.Set("k", []byte("v"), 0))
	_, ok := nop.Get("k")
	assert.False(t, ok)
}
