// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package respcache is a fixed-capacity least-recently-used store for upstream response bodies.

Entries expire after a fixed TTL and bodies are kept zstd-compressed whenever that saves space.
All methods are safe for concurrent use.
*/
package respcache

import (
	"container/list"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

var (
	ErrInvalidSize = errors.New("must provide a positive size")
	ErrInvalidTTL  = errors.New("must provide a positive TTL")
)

// Cache holds response bodies keyed by an opaque string.
// Construct it with [New]; the zero value is not ready for use.
type Cache struct {
	size  int
	ttl   time.Duration
	order *list.List
	items map[string]*list.Element
	mu    sync.Mutex
	enc   *zstd.Encoder
	dec   *zstd.Decoder

	now func() time.Time
}

type entry struct {
	key        string
	url        string
	body       []byte
	compressed bool
	expiresAt  time.Time
}

// New creates a cache holding at most size entries, each valid for ttl.
func New(size int, ttl time.Duration) (*Cache, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	if ttl <= 0 {
		return nil, ErrInvalidTTL
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}

	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, err
	}

	return &Cache{
		size:  size,
		ttl:   ttl,
		order: list.New(),
		items: make(map[string]*list.Element),
		enc:   enc,
		dec:   dec,
		now:   time.Now,
	}, nil
}

// Put stores body under key, remembering the URL it came from for prefix invalidation.
// Put reports whether an older entry was evicted to make room.
func (c *Cache) Put(key, url string, body []byte) bool {
	stored, compressed := c.pack(body)

	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(c.ttl)

	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)

		ent := el.Value.(*entry)
		ent.url = url
		ent.body = stored
		ent.compressed = compressed
		ent.expiresAt = expiresAt

		return false
	}

	c.items[key] = c.order.PushFront(&entry{
		key:        key,
		url:        url,
		body:       stored,
		compressed: compressed,
		expiresAt:  expiresAt,
	})

	if c.order.Len() <= c.size {
		return false
	}

	if oldest := c.order.Back(); oldest != nil {
		c.drop(oldest)
	}

	return true
}

// Get returns a copy of the body stored under key. Expired entries are removed and reported missing.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()

	el, ok := c.items[key]
	if !ok {
		c.mu.Unlock()
		return nil, false
	}

	ent := el.Value.(*entry)
	if !c.now().Before(ent.expiresAt) {
		c.drop(el)
		c.mu.Unlock()

		return nil, false
	}

	c.order.MoveToFront(el)

	body, compressed := ent.body, ent.compressed

	c.mu.Unlock()

	return c.unpack(body, compressed)
}

// Remove deletes key and reports whether it was present.
func (c *Cache) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if ok {
		c.drop(el)
	}

	return ok
}

// InvalidatePrefix removes every entry whose URL starts with prefix and returns the removed URLs.
func (c *Cache) InvalidatePrefix(prefix string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var removed []string

	for el := c.order.Back(); el != nil; {
		prev := el.Prev()

		if ent := el.Value.(*entry); strings.HasPrefix(ent.url, prefix) {
			removed = append(removed, ent.url)
			c.drop(el)
		}

		el = prev
	}

	return removed
}

// Len returns the number of entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.order.Len()
}

func (c *Cache) drop(el *list.Element) {
	c.order.Remove(el)
	delete(c.items, el.Value.(*entry).key)
}

// pack compresses body when it shrinks. The zstd encoder allows concurrent EncodeAll calls.
func (c *Cache) pack(body []byte) ([]byte, bool) {
	if len(body) == 0 {
		return nil, false
	}

	if packed := c.enc.EncodeAll(body, nil); len(packed) < len(body) {
		return packed, true
	}

	copied := make([]byte, len(body))
	copy(copied, body)

	return copied, false
}

func (c *Cache) unpack(body []byte, compressed bool) ([]byte, bool) {
	if !compressed {
		copied := make([]byte, len(body))
		copy(copied, body)

		return copied, true
	}

	decoded, err := c.dec.DecodeAll(body, nil)
	if err != nil {
		return nil, false
	}

	return decoded, true
}
