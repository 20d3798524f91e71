// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package initialstate extracts the server-rendered page state that bilibili web pages embed as

	<script>window.__INITIAL_STATE__={...};(function(){...})();</script>
*/
package initialstate

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"
)

const (
	marker      = "window.__INITIAL_STATE__="
	trailerIIFE = ";(function"
)

var (
	ErrNotFound    = errors.New("page has no initial state")
	ErrInvalidJSON = errors.New("initial state is not valid JSON")
)

// Extract returns the raw JSON object assigned to window.__INITIAL_STATE__ in page.
func Extract(page []byte) ([]byte, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	var script string

	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if strings.Contains(text, marker) {
			script = text
			return false
		}

		return true
	})

	if script == "" {
		return nil, ErrNotFound
	}

	_, state, _ := strings.Cut(script, marker)

	if before, _, found := strings.Cut(state, trailerIIFE); found {
		state = before
	}

	state = strings.TrimSuffix(strings.TrimSpace(state), ";")

	if !gjson.Valid(state) {
		return nil, ErrInvalidJSON
	}

	return []byte(state), nil
}
