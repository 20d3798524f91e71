// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

package article

import "errors"

var (
	// ErrNotParsed is returned by render methods called before FetchContent succeeded.
	ErrNotParsed = errors.New("article: content has not been fetched and parsed")

	// ErrUnknownColorName means a colour class names no entry in the editor palette.
	ErrUnknownColorName = errors.New("article: unknown color name")

	// ErrUnresolvedLink is returned when rendering an empty link that was never resolved.
	ErrUnresolvedLink = errors.New("article: unresolved link")

	errNoReadInfo = errors.New("article: initial state has no readInfo")
)
