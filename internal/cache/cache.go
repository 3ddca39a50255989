// Package cache holds the bounded, path-keyed content caches shared between
// the panels of one kind and that kind's content manager.
package cache

import (
	"os"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

const (
	// DefaultDirectoryCapacity bounds the directory listing cache.
	DefaultDirectoryCapacity = 16384
	// DefaultPreviewCapacity bounds the preview cache.
	DefaultPreviewCapacity = 4096
)

// Item is a cached value. Clone must return a copy that shares no mutable
// state with the receiver; Modified is the timestamp observed when the value
// was built.
type Item[T any] interface {
	Clone() T
	Modified() time.Time
}

// Cache is a least-recently-used map from canonical path to content. Every
// call holds the lock only for a single lookup or insert.
type Cache[T Item[T]] struct {
	mu       sync.Mutex
	lru      *simplelru.LRU[string, T]
	capacity int
}

// New returns a cache holding at most capacity entries. A non-positive
// capacity is raised to one.
func New[T Item[T]](capacity int) *Cache[T] {
	if capacity <= 0 {
		capacity = 1
	}
	lru, err := simplelru.NewLRU[string, T](capacity, nil)
	if err != nil {
		// Only returned for non-positive sizes.
		panic(err)
	}
	return &Cache[T]{lru: lru, capacity: capacity}
}

// Get returns a clone of the value for path and marks it most recently used.
func (c *Cache[T]) Get(path string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.lru.Get(path)
	if !ok {
		var zero T
		return zero, false
	}
	return v.Clone(), true
}

// Insert stores value under path. When a new key pushes the cache past its
// capacity, the least recently used value is removed and returned.
func (c *Cache[T]) Insert(path string, value T) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var (
		evicted T
		ok      bool
	)
	if !c.lru.Contains(path) && c.lru.Len() >= c.capacity {
		_, evicted, ok = c.lru.RemoveOldest()
	}
	c.lru.Add(path, value)
	return evicted, ok
}

// Contains reports whether path is cached without touching its recency.
func (c *Cache[T]) Contains(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Contains(path)
}

// Len returns the number of cached entries.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Capacity returns the maximum number of entries.
func (c *Cache[T]) Capacity() int {
	return c.capacity
}

// RequiresUpdate reports whether the cached value for path is missing or
// older than the file's current modification time. The filesystem is queried
// before the lock is taken. A path that cannot be stat'ed never needs an
// update.
func (c *Cache[T]) RequiresUpdate(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	live := info.ModTime()

	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.lru.Peek(path)
	if !ok {
		return true
	}
	return !v.Modified().Equal(live)
}
