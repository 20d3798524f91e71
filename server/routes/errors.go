// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"errors"
	"fmt"
	"net/http"

	"codeberg.org/biliread/biliread/core/article"
	"codeberg.org/biliread/biliread/core/credential"
	"codeberg.org/biliread/biliread/core/linkparse"
	"codeberg.org/biliread/biliread/core/requests"
)

// HTTPError attaches a response status to an error.
type HTTPError struct {
	StatusCode int
	Err        error
}

func (e *HTTPError) Error() string { return e.Err.Error() }

func (e *HTTPError) Unwrap() error { return e.Err }

// BadRequest marks err as the client's fault.
func BadRequest(err error) error {
	return &HTTPError{StatusCode: http.StatusBadRequest, Err: err}
}

func badRequestf(format string, args ...any) error {
	return BadRequest(fmt.Errorf(format, args...))
}

// StatusFor picks the response status for an error returned by a handler.
func StatusFor(err error) int {
	var (
		httpErr *HTTPError
		netErr  *requests.NetworkError
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &httpErr):
		return httpErr.StatusCode
	case errors.Is(err, credential.ErrNoSessData), errors.Is(err, credential.ErrNoBiliJct):
		return http.StatusUnauthorized
	case errors.Is(err, linkparse.ErrUnsupported):
		return http.StatusUnprocessableEntity
	case errors.As(err, &netErr) && netErr.StatusCode == http.StatusNotFound:
		return http.StatusNotFound
	case errors.Is(err, requests.ErrAPI), errors.Is(err, requests.ErrNetwork):
		return http.StatusBadGateway
	case errors.Is(err, article.ErrUnknownColorName):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
