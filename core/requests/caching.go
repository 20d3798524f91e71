// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

package requests

import (
	"context"
	"hash/fnv"
	"strconv"
	"strings"
)

type cacheControlKeyType struct{}

var cacheControlKey = cacheControlKeyType{}

// WithCacheControl forwards a downstream Cache-Control header so that
// "no-cache" skips the response cache and "no-store" keeps the response out of it.
func WithCacheControl(ctx context.Context, header string) context.Context {
	return context.WithValue(ctx, cacheControlKey, strings.ToLower(header))
}

// CacheControlFrom returns the header stored by WithCacheControl, lower-cased.
func CacheControlFrom(ctx context.Context) string {
	v, _ := ctx.Value(cacheControlKey).(string)
	return v
}

// cachePolicy says whether a GET may be answered from the cache and whether its response may be stored.
type cachePolicy struct {
	key    string
	read   bool
	write  bool
	cached []byte
}

// cacheKey binds a response to the full SESSDATA value as well as the URL,
// so a logged-in response is never served to another session.
func cacheKey(url, sessData string) string {
	hasher := fnv.New64a()

	_, _ = hasher.Write([]byte(url + ":" + sessData))

	return strconv.FormatUint(hasher.Sum64(), 16)
}

func (c *Client) determineCachePolicy(ctx context.Context, url, sessData string) cachePolicy {
	if c.cache == nil {
		return cachePolicy{}
	}

	control := CacheControlFrom(ctx)
	if strings.Contains(control, "no-cache") {
		return cachePolicy{}
	}

	policy := cachePolicy{
		key:   cacheKey(url, sessData),
		read:  true,
		write: !strings.Contains(control, "no-store"),
	}

	if body, ok := c.cache.Get(policy.key); ok {
		policy.cached = body
	}

	return policy
}

// InvalidatePrefix drops cached responses whose URL starts with prefix.
// Write operations call it so a following read sees the new state.
func (c *Client) InvalidatePrefix(prefix string) []string {
	if c.cache == nil {
		return nil
	}

	return c.cache.InvalidatePrefix(prefix)
}
