// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"maps"
	"net/http"
	"strings"

	"codeberg.org/biliread/biliread/configs"
)

var (
	// baseHeaders defines the default headers to be set in responses.
	//
	// Biliread-Version and Biliread-Revision are added dynamically in SetResponseHeaders.
	baseHeaders = http.Header{
		"Referrer-Policy":        {"no-referrer"},
		"X-Frame-Options":        {"DENY"},
		"X-Content-Type-Options": {"nosniff"},
		"Content-Security-Policy": {strings.Join([]string{
			"default-src 'none'",
			"base-uri 'none'",
			"form-action 'none'",
			"frame-ancestors 'none'",
			"style-src 'unsafe-inline'",
			// article images stay on bilibili's CDN
			"img-src https://*.hdslb.com https://*.biliimg.com data:",
		}, "; ")},
	}

	// cachedPrefixes get a short shared cache lifetime; upstream data changes slowly.
	cachedPrefixes = []string{"/article/", "/articlelist/", "/music/"}
)

const sharedCacheControl = "public, max-age=300, stale-while-revalidate=600"

// SetResponseHeaders adds default headers to HTTP responses.
func SetResponseHeaders(w http.ResponseWriter, r *http.Request, next http.Handler) {
	headers := w.Header()

	maps.Insert(headers, maps.All(baseHeaders))

	headers.Set("Cache-Control", cacheControlFor(r))
	headers.Set("Biliread-Version", config.BuildVersion)
	headers.Set("Biliread-Revision", config.Global.Build.Revision())

	next.ServeHTTP(w, r)
}

func cacheControlFor(r *http.Request) string {
	if config.Global.Development.InDevelopment || r.Method != http.MethodGet {
		return "no-store"
	}

	for _, prefix := range cachedPrefixes {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return sharedCacheControl
		}
	}

	return "private, no-cache"
}
