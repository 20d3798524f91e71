// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

package requests

import (
	"net/url"
	"time"

	"codeberg.org/biliread/biliread/core/credential"
)

// RequestOptions describe a single upstream call made through [Client.Do].
type RequestOptions struct {
	Method     string
	URL        string
	Query      url.Values
	Form       url.Values // POST only, sent as application/x-www-form-urlencoded
	Credential *credential.Credential
}

// Options configure a [Client].
type Options struct {
	UserAgent      string
	AcceptLanguage string
	Referer        string
	Timeout        time.Duration

	// CacheSize is the number of GET responses kept in memory. Zero disables caching.
	CacheSize int
	CacheTTL  time.Duration

	// RequestsPerSecond paces outgoing requests. Zero disables pacing.
	RequestsPerSecond float64
	Burst             int
}
