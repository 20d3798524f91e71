// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

// The code in this file redirects bilibili.com paths that carry their id in the query string.
// Paths with the id in the path are handled by middleware.NormalizeURL.
//
// Add more redirects in (*Router).DefineRoutes

package router

import (
	"net/http"

	"codeberg.org/biliread/biliread/server/utils"
)

// redirectWithQueryParam redirects to targetPrefix + the value of preservedParam + targetSuffix.
//
// Example:   /read/mobile?id=<id>   ->   /article/<id>/html
func redirectWithQueryParam(targetPrefix, preservedParam, targetSuffix string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := utils.GetQueryParam(r, preservedParam)
		if id == "" {
			http.NotFound(w, r)

			return
		}

		http.Redirect(w, r, targetPrefix+id+targetSuffix, http.StatusPermanentRedirect)
	}
}
