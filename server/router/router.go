// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

package router

import (
	"net/http"
	"slices"

	"codeberg.org/biliread/biliread/server/middleware"
)

// Router is an http.ServeMux behind a middleware chain.
type Router struct {
	*http.ServeMux

	middlewares []middleware.Middleware
	chain       http.Handler
}

// NewRouter returns a Router with an empty chain.
func NewRouter() *Router {
	mux := http.NewServeMux()

	return &Router{
		ServeMux: mux,
		chain:    mux,
	}
}

// Use appends m to the chain. Middleware added first runs first.
func (router *Router) Use(m middleware.Middleware) {
	router.middlewares = append(router.middlewares, m)

	var handler http.Handler = router.ServeMux
	for _, mw := range slices.Backward(router.middlewares) {
		handler = middleware.Wrap(mw, handler)
	}

	router.chain = handler
}

// route registers an error-returning handler; middleware.CatchError turns its error into a response.
func (router *Router) route(pattern string, handler func(w http.ResponseWriter, r *http.Request) error) {
	router.HandleFunc(pattern, middleware.CatchError(handler))
}

func (router *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	router.chain.ServeHTTP(w, r)
}
