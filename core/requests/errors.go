// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

package requests

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAPI is matched by every *APIError.
	ErrAPI = errors.New("bilibili API returned an error")

	// ErrNetwork is matched by every *NetworkError.
	ErrNetwork = errors.New("request to bilibili failed")

	errInvalidJSON = errors.New("response contained invalid JSON")
)

// APIError is a response whose envelope carried a non-zero code.
type APIError struct {
	// Code is the envelope's code field, e.g. -404 or 4011.
	Code int64

	// Message is taken from the envelope's message field, falling back to msg.
	Message string
}

func (e *APIError) Error() string {
	var b strings.Builder

	b.WriteString(ErrAPI.Error())
	fmt.Fprintf(&b, " (code: %d)", e.Code)

	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}

	return b.String()
}

func (e *APIError) Unwrap() error {
	return ErrAPI
}

// NetworkError is a transport failure or an HTTP status of 400 and above.
type NetworkError struct {
	URL string

	// StatusCode is zero when no response was received.
	StatusCode int

	Err error
}

func (e *NetworkError) Error() string {
	var b strings.Builder

	b.WriteString(ErrNetwork.Error())
	b.WriteString(": ")
	b.WriteString(e.URL)

	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status code: %d)", e.StatusCode)
	}

	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}

	return b.String()
}

// Unwrap exposes both the ErrNetwork sentinel and the underlying cause.
func (e *NetworkError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrNetwork}
	}

	return []error{ErrNetwork, e.Err}
}
