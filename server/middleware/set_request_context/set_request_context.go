// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

package set_request_context

import (
	"net/http"

	"codeberg.org/biliread/biliread/core/requests"
	"codeberg.org/biliread/biliread/server/request_context"
)

// WithRequestContext is a middleware that attaches a RequestContext to each HTTP request.
//
// The request id is echoed in the X-Request-Id response header. A Cache-Control request header
// is forwarded to the upstream response cache, so a client's no-cache reload refetches from bilibili.
func WithRequestContext(w http.ResponseWriter, r *http.Request, next http.Handler) {
	ctx := request_context.WithRequestContext(r.Context())

	if cc := r.Header.Get("Cache-Control"); cc != "" {
		ctx = requests.WithCacheControl(ctx, cc)
	}

	w.Header().Set("X-Request-Id", request_context.FromContext(ctx).RequestID)

	next.ServeHTTP(w, r.WithContext(ctx))
}
