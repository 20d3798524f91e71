// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package audit logs HTTP traffic, both the requests BiliRead serves and the ones it makes to bilibili.
*/
package audit

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path"
	"runtime/trace"
	"strconv"
	"time"

	servertiming "github.com/mitchellh/go-server-timing"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Destination describes where an HTTP exchange went.
type Destination string

const (
	ToUser     Destination = "user"
	ToBilibili Destination = "bilibili"

	responseFilePermissions = 0o600
)

var (
	// SaveResponses enables writing upstream response bodies to ResponseDirectory.
	SaveResponses bool

	// ResponseDirectory receives saved bodies, one file per request id.
	ResponseDirectory string
)

// Span records one HTTP exchange in flight.
type Span struct {
	task     *trace.Task
	start    time.Time
	duration time.Duration
	metric   *servertiming.Metric

	Destination Destination
	RequestID   string
	Method      string
	URL         string
	StatusCode  int
	CacheHit    bool
	Error       error
	Body        []byte // only kept for response saving, never logged

	savedAs string
}

// SetDefaultLogger installs a readable console logger before configuration is loaded.
func SetDefaultLogger() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime})
}

// timingName follows the Server-Timing token syntax: base64 without padding.
func (span *Span) timingName() string {
	return string(span.Destination) + "$" + span.Method + "$" + base64.RawURLEncoding.EncodeToString([]byte(span.URL))
}

// Begin starts timing the span and registers a Server-Timing metric when the
// context carries a timing header.
func (span *Span) Begin(ctx context.Context) context.Context {
	span.start = time.Now()

	ctx, span.task = trace.NewTask(ctx, "http."+string(span.Destination))

	if timing := servertiming.FromContext(ctx); timing != nil {
		span.metric = timing.NewMetric(span.timingName())
		span.metric.Extra = map[string]string{
			"start": strconv.FormatFloat(float64(span.start.UnixNano())/float64(time.Millisecond), 'f', -1, 64),
		}
	}

	return ctx
}

// End stops the clock. Calling it more than once is harmless.
func (span *Span) End() {
	if span.task == nil {
		return
	}

	span.duration = time.Since(span.start)
	span.task.End()
	span.task = nil

	if span.metric != nil {
		span.metric.Duration = span.duration
	}
}

// Duration is the measured time between Begin and End.
func (span *Span) Duration() time.Duration {
	return span.duration
}

// Log writes the span at debug level, saving the body first if configured.
func (span *Span) Log() {
	if span.Destination == ToBilibili && SaveResponses && len(span.Body) > 0 {
		filename := path.Join(ResponseDirectory, span.RequestID)

		if err := os.WriteFile(filename, span.Body, responseFilePermissions); err != nil {
			log.Err(err).
				Str("request_id", span.RequestID).
				Msg("Failed to save response")
		} else {
			span.savedAs = filename
		}
	}

	event := log.Debug().
		Str("sys", "http").
		Str("destination", string(span.Destination)).
		Str("request_id", span.RequestID).
		Str("method", span.Method).
		Str("url", span.URL).
		Int("status_code", span.StatusCode).
		Str("len", humanizeSize(len(span.Body))).
		Dur("dur", span.duration)

	if span.CacheHit {
		event.Bool("cache_hit", true)
	}

	if span.savedAs != "" {
		event.Str("response_filename", span.savedAs)
	}

	if span.Error != nil {
		event.Err(span.Error)
	}

	event.Send()
}

const (
	bytesInKB = 1024
	bytesInMB = bytesInKB * bytesInKB
)

func humanizeSize(n int) string {
	switch {
	case n < bytesInKB:
		return strconv.Itoa(n)
	case n < bytesInMB:
		return fmt.Sprintf("%.2fK", float64(n)/bytesInKB)
	default:
		return fmt.Sprintf("%.2fM", float64(n)/bytesInMB)
	}
}
