// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

package router

import (
	"net/http"
	"net/http/pprof"
	"runtime/trace"
	"time"

	"codeberg.org/biliread/biliread/configs"
	"codeberg.org/biliread/biliread/server/routes"
)

// DefineRoutes registers every handler of s on the router, without middleware.
func (router *Router) DefineRoutes(s *routes.Service) {
	router.route("GET /healthz", routes.Health)

	// Article routes
	router.route("GET /article/{cvid}/markdown", s.ArticleMarkdown)
	router.route("GET /article/{cvid}/json", s.ArticleJSON)
	router.route("GET /article/{cvid}/html", s.ArticleHTML)
	router.route("GET /article/{cvid}/info", s.ArticleInfo)
	router.route("GET /article/{cvid}/dynamic", s.ArticleDynamic)
	router.route("POST /article/{cvid}/{action}", s.ArticleAction)
	router.route("GET /article/rank", s.ArticleRank)
	router.route("GET /articlelist/{rlid}", s.ArticleList)
	router.HandleFunc("GET /read/mobile", redirectWithQueryParam("/article/", "id", "/html"))

	// Music routes
	router.route("GET /music/index", s.MusicIndex)
	router.route("GET /music/recommend", s.MusicRecommend)

	// Link routes
	router.route("GET /resolve", s.Resolve)

	if config.Global.Development.InDevelopment {
		registerDebugRoutes(router)
	}
}

var flightRecorder = trace.NewFlightRecorder(trace.FlightRecorderConfig{MinAge: time.Minute})

func registerDebugRoutes(router *Router) {
	err := flightRecorder.Start()
	if err != nil {
		panic(err)
	}

	router.HandleFunc("GET /debug/pprof/", pprof.Index)
	router.HandleFunc("GET /debug/pprof/cmdline", pprof.Cmdline)
	router.HandleFunc("GET /debug/pprof/profile", pprof.Profile)
	router.HandleFunc("GET /debug/pprof/symbol", pprof.Symbol)
	router.HandleFunc("GET /debug/pprof/trace", pprof.Trace)
	router.HandleFunc("GET /debug/flight", func(w http.ResponseWriter, r *http.Request) {
		_, _ = flightRecorder.WriteTo(w)
	})
}
