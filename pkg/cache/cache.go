// Package cache provides a bounded LRU cache with msgpack persistence. The
// batch runner keeps per-file graph reports in it, keyed by content digest.
package cache

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// Options configures the cache.
type Options struct {
	// MaxSize is the maximum number of entries. 0 means unlimited.
	MaxSize int
}

// Stats counts lookups since creation or the last ResetStats.
type Stats struct {
	Hits   int64
	Misses int64
}

// HitRate returns hits / lookups, or 0 with no lookups.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Cache is an LRU cache safe for concurrent use.
type Cache[V any] struct {
	mu      sync.Mutex
	items   map[string]*item[V]
	lru     list[V]
	maxSize int
	stats   Stats
}

// record is the persisted form of one entry.
type record[V any] struct {
	Key   string `msgpack:"key"`
	Value V      `msgpack:"value"`
}

type item[V any] struct {
	record[V]
	prev, next *item[V]
}

// list is a doubly-linked list, most recently used at head.
type list[V any] struct {
	head, tail *item[V]
	len        int
}

func (l *list[V]) pushFront(it *item[V]) {
	it.prev = nil
	it.next = l.head
	if l.head != nil {
		l.head.prev = it
	}
	l.head = it
	if l.tail == nil {
		l.tail = it
	}
	l.len++
}

func (l *list[V]) remove(it *item[V]) {
	if it.prev != nil {
		it.prev.next = it.next
	} else {
		l.head = it.next
	}
	if it.next != nil {
		it.next.prev = it.prev
	} else {
		l.tail = it.prev
	}
	it.prev, it.next = nil, nil
	l.len--
}

func (l *list[V]) moveToFront(it *item[V]) {
	if it == l.head {
		return
	}
	l.remove(it)
	l.pushFront(it)
}

// New creates an empty cache.
func New[V any](opts Options) *Cache[V] {
	return &Cache[V]{
		items:   make(map[string]*item[V]),
		maxSize: opts.MaxSize,
	}
}

// Get returns the value for key and marks it most recently used.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	it, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		var zero V
		return zero, false
	}
	c.stats.Hits++
	c.lru.moveToFront(it)
	return it.Value, true
}

// Set stores value under key, evicting the least recently used entries
// beyond MaxSize.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(key, value)
}

func (c *Cache[V]) set(key string, value V) {
	if it, ok := c.items[key]; ok {
		it.Value = value
		c.lru.moveToFront(it)
		return
	}
	it := &item[V]{record: record[V]{Key: key, Value: value}}
	c.items[key] = it
	c.lru.pushFront(it)
	for c.maxSize > 0 && c.lru.len > c.maxSize {
		oldest := c.lru.tail
		c.lru.remove(oldest)
		delete(c.items, oldest.Key)
	}
}

// Delete removes key.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if it, ok := c.items[key]; ok {
		c.lru.remove(it)
		delete(c.items, key)
	}
}

// Clear removes every entry.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*item[V])
	c.lru = list[V]{}
}

// Len returns the number of entries.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Keys returns the keys from most to least recently used.
func (c *Cache[V]) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, c.lru.len)
	for it := c.lru.head; it != nil; it = it.next {
		keys = append(keys, it.Key)
	}
	return keys
}

// Stats returns the lookup counters.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// ResetStats zeroes the lookup counters.
func (c *Cache[V]) ResetStats() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = Stats{}
}

// Save writes the entries with msgpack, least recently used first, so Load
// restores the same order.
func (c *Cache[V]) Save(w io.Writer) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	records := make([]record[V], 0, c.lru.len)
	for it := c.lru.tail; it != nil; it = it.prev {
		records = append(records, it.record)
	}
	if err := msgpack.NewEncoder(w).Encode(records); err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}
	return nil
}

// Load replaces the contents with entries written by Save.
func (c *Cache[V]) Load(r io.Reader) error {
	var records []record[V]
	if err := msgpack.NewDecoder(r).Decode(&records); err != nil {
		return fmt.Errorf("failed to decode cache: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*item[V])
	c.lru = list[V]{}
	for _, rec := range records {
		c.set(rec.Key, rec.Value)
	}
	return nil
}

// SaveFile writes the cache to path, creating parent directories.
func (c *Cache[V]) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	if err := c.Save(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadFile reads a cache written by SaveFile. A missing file leaves the
// cache empty and is not an error.
func (c *Cache[V]) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to open cache file: %w", err)
	}
	defer f.Close()
	return c.Load(f)
}
