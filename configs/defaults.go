// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"time"

	"codeberg.org/biliread/biliread/core/article"
	"codeberg.org/biliread/biliread/core/requests"
)

const (
	DefaultHost                  = "localhost"
	DefaultPort                  = "8383"
	defaultCacheTTLMinutes       = 10
	defaultRequestTimeoutSeconds = 15
)

// SetDefaults populates the configuration with default values.
func (cfg *ServerConfig) SetDefaults() {
	// Host and Port are filled in by validateListener unless a unix socket is configured.

	cfg.Request.UserAgent = requests.DefaultUserAgent
	cfg.Request.AcceptLanguage = "zh-CN,zh;q=0.9,en;q=0.5"
	cfg.Request.Referer = requests.DefaultReferer
	cfg.Request.Timeout = defaultRequestTimeoutSeconds * time.Second
	cfg.Request.RequestsPerSecond = 0
	cfg.Request.Burst = 1

	cfg.Cache.Enabled = false
	cfg.Cache.Size = 100
	cfg.Cache.TTL = defaultCacheTTLMinutes * time.Minute

	cfg.XRef.Store = MemoryStore
	cfg.XRef.Path = "./data/xref.db"

	cfg.Article.ResolveConcurrency = article.DefaultResolveConcurrency

	cfg.Development.SaveResponses = false
	cfg.Development.ResponseSaveLocation = "/tmp/biliread/responses"

	cfg.Log.Level = "info"
	cfg.Log.Outputs = []string{"/dev/stderr"}
	cfg.Log.Format = "console"
}
