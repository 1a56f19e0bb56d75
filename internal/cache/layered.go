package cache

import (
	"errors"
	"time"
)

// LayeredCache checks memory first and falls back to disk, promoting disk
// hits into memory
type LayeredCache struct {
	memory Cache
	disk   Cache
}

// NewLayeredCache creates a memory-over-disk cache
func NewLayeredCache(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *LayeredCache {
	return NewLayered(NewMemoryCache(memoryTTL, 10*time.Minute), NewDiskCache(diskDir, diskTTL))
}

// NewLayered stacks two arbitrary caches
func NewLayered(memory, disk Cache) *LayeredCache {
	return &LayeredCache{memory: memory, disk: disk}
}

func (c *LayeredCache) Get(key string) ([]byte, bool) {
	if val, found := c.memory.Get(key); found {
		return val, true
	}

	if val, found := c.disk.Get(key); found {
		_ = c.memory.Set(key, val, 0)
		return val, true
	}

	return nil, false
}

// Set stores the value in both layers. The memory layer keeps its own
// default TTL; ttl applies to disk.
func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	if err := c.memory.Set(key, value, 0); err != nil {
		return err
	}
	return c.disk.Set(key, value, ttl)
}

func (c *LayeredCache) Delete(key string) error {
	return errors.Join(c.memory.Delete(key), c.disk.Delete(key))
}

func (c *LayeredCache) Clear() error {
	return errors.Join(c.memory.Clear(), c.disk.Clear())
}
