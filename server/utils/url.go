// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

package utils

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

var errNotPositive = errors.New("must be a positive number")

// GetQueryParam retrieves the value of a query parameter by name.
//
// If the parameter is not present, it returns the provided default value or an empty string.
func GetQueryParam(r *http.Request, name string, defaultValue ...string) string {
	v := r.URL.Query().Get(name)
	if v != "" {
		return v
	}

	if len(defaultValue) > 0 {
		return defaultValue[0]
	}

	return ""
}

// GetPathVar retrieves the value of a path variable by name.
//
// If the variable is not present, it returns the provided default value or an empty string.
func GetPathVar(r *http.Request, name string, defaultValue ...string) string {
	v := r.PathValue(name)
	if v != "" {
		return v
	}

	if len(defaultValue) > 0 {
		return defaultValue[0]
	}

	return ""
}

// ParseID parses a positive bilibili numeric id, tolerating the usual two-letter prefix
// ("cv123", "au456", "rl789") in any letter case.
func ParseID(raw, prefix string) (int64, error) {
	s := strings.TrimSpace(raw)
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		s = s[len(prefix):]
	}

	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", raw, err)
	}

	if id <= 0 {
		return 0, fmt.Errorf("invalid id %q: %w", raw, errNotPositive)
	}

	return id, nil
}

// GetIntQueryParam parses an optional integer query parameter, returning def when absent.
func GetIntQueryParam(r *http.Request, name string, def int) (int, error) {
	v := GetQueryParam(r, name)
	if v == "" {
		return def, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, v, err)
	}

	return n, nil
}
