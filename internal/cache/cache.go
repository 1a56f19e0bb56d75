// Package cache keeps fetched feed pages and store lookups between runs so
// repeated analyses of the same app do not hit the store again.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/ppiankov/appscope/internal/model"
)

const keyPrefix = "appscope:v1:"

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key builds a namespaced cache key. kind separates feeds from lookups and
// parts identify the request, e.g. Key("feed", "us", "284882215", "3").
func Key(kind string, parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return keyPrefix + kind + ":" + hex.EncodeToString(hash[:])
}

// New builds the cache described by cfg. A disabled cache never stores
// anything.
func New(cfg model.CacheConfig) Cache {
	if !cfg.Enabled {
		return Nop{}
	}
	if cfg.Dir == "" {
		return NewMemoryCache(cfg.MemoryTTL, 10*time.Minute)
	}
	return NewLayeredCache(cfg.MemoryTTL, cfg.Dir, cfg.DiskTTL)
}

// Nop is a cache that stores nothing
type Nop struct{}

func (Nop) Get(string) ([]byte, bool)               { return nil, false }
func (Nop) Set(string, []byte, time.Duration) error { return nil }
func (Nop) Delete(string) error                     { return nil }
func (Nop) Clear() error                            { return nil }
