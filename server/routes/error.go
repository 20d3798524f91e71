// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"fmt"
	"net/http"

	"codeberg.org/biliread/biliread/server/request_context"
)

// ErrorPage writes the request's error as plain text, with the status stored in the request context.
func ErrorPage(w http.ResponseWriter, r *http.Request) {
	ctx := request_context.FromRequest(r)

	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(ctx.StatusCode)

	message := http.StatusText(ctx.StatusCode)
	if ctx.RequestError != nil {
		message = ctx.RequestError.Error()
	}

	_, _ = fmt.Fprintf(w, "%d %s\n\nrequest id: %s\n", ctx.StatusCode, message, ctx.RequestID)
}
