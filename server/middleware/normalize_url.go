// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"net/http"
	"regexp"
	"strings"
)

// bilibiliArticlePath matches the path of an article on bilibili itself, so that swapping the
// host of a bilibili link for ours lands on the rendered article.
var bilibiliArticlePath = regexp.MustCompile(`^/read/(?:mobile/|cv)(\d+)/?$`)

// NormalizeURL is a middleware that handles URL normalization by:
// 1. Redirecting bilibili article paths (/read/cvN, /read/mobile/N) to /article/N/html.
// 2. Removing trailing slashes from URLs (except root).
func NormalizeURL(w http.ResponseWriter, r *http.Request, next http.Handler) {
	if m := bilibiliArticlePath.FindStringSubmatch(r.URL.Path); m != nil {
		http.Redirect(w, r, "/article/"+m[1]+"/html", http.StatusMovedPermanently)

		return
	}

	if hasTrailingSlash(r) {
		removeTrailingSlash(w, r)

		return
	}

	next.ServeHTTP(w, r)
}

// hasTrailingSlash checks if a request path has a trailing slash (except root).
func hasTrailingSlash(r *http.Request) bool {
	return r.URL.Path != "/" && strings.HasSuffix(r.URL.Path, "/")
}

// removeTrailingSlash removes trailing slash and redirects, keeping the query.
func removeTrailingSlash(w http.ResponseWriter, r *http.Request) {
	target := *r.URL
	target.Path = strings.TrimRight(target.Path, "/")
	target.RawPath = ""

	if target.Path == "" {
		target.Path = "/"
	}

	http.Redirect(w, r, target.String(), http.StatusPermanentRedirect)
}
