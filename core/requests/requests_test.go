// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

package requests

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/biliread/biliread/core/credential"
)

func TestProcessJSONResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     string
		want     string
		wantCode int64
		wantMsg  string
		invalid  bool
	}{
		{name: "data", body: `{"code":0,"message":"0","data":{"mid":7}}`, want: `{"mid":7}`},
		{name: "result", body: `{"code":0,"result":[1,2]}`, want: `[1,2]`},
		{name: "no envelope", body: `{"list":[]}`, want: `{"list":[]}`},
		{name: "null data", body: `{"code":0,"data":null}`, want: `null`},
		{name: "api error", body: `{"code":-404,"message":"啥都木有"}`, wantCode: -404, wantMsg: "啥都木有"},
		{name: "api error msg", body: `{"code":72000000,"msg":"参数错误"}`, wantCode: 72000000, wantMsg: "参数错误"},
		{name: "invalid", body: `<html>`, invalid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := processJSONResponse([]byte(tt.body))

			switch {
			case tt.invalid:
				require.ErrorIs(t, err, errInvalidJSON)
			case tt.wantCode != 0:
				var apiErr *APIError

				require.ErrorAs(t, err, &apiErr)
				assert.ErrorIs(t, err, ErrAPI)
				assert.Equal(t, tt.wantCode, apiErr.Code)
				assert.Equal(t, tt.wantMsg, apiErr.Message)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, string(got))
			}
		})
	}
}

func TestGetJSONSendsCookiesAndQuery(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("SESSDATA")
		if assert.NoError(t, err) {
			assert.Equal(t, "sess", cookie.Value)
		}

		assert.Equal(t, "7", r.URL.Query().Get("id"))
		assert.Equal(t, DefaultReferer, r.Header.Get("Referer"))
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))

		fmt.Fprint(w, `{"code":0,"data":{"id":7}}`)
	}))
	t.Cleanup(server.Close)

	client, err := New(Options{})
	require.NoError(t, err)

	got, err := client.GetJSON(context.Background(), server.URL+"/x/article/viewinfo",
		url.Values{"id": {"7"}}, &credential.Credential{SESSDATA: "sess"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7}`, string(got))
}

func TestPostFormAddsCSRF(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, formContentType, r.Header.Get("Content-Type"))

		if assert.NoError(t, r.ParseForm()) {
			assert.Equal(t, "12", r.PostForm.Get("id"))
			assert.Equal(t, "jct", r.PostForm.Get("csrf"))
			assert.Equal(t, "jct", r.PostForm.Get("csrf_token"))
		}

		fmt.Fprint(w, `{"code":0,"data":null}`)
	}))
	t.Cleanup(server.Close)

	client, err := New(Options{})
	require.NoError(t, err)

	form := url.Values{"id": {"12"}}

	_, err = client.PostForm(context.Background(), server.URL, form,
		&credential.Credential{SESSDATA: "sess", BiliJct: "jct"})
	require.NoError(t, err)
	assert.Empty(t, form.Get("csrf"), "caller's form must not be modified")
}

func TestHTTPErrorIsNetworkError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusPreconditionFailed)
	}))
	t.Cleanup(server.Close)

	client, err := New(Options{})
	require.NoError(t, err)

	_, err = client.GetJSON(context.Background(), server.URL, nil, nil)

	var netErr *NetworkError

	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, http.StatusPreconditionFailed, netErr.StatusCode)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.False(t, errors.Is(err, ErrAPI))
}

func TestTransportErrorIsNetworkError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	client, err := New(Options{})
	require.NoError(t, err)

	_, err = client.GetJSON(context.Background(), addr, nil, nil)
	require.ErrorIs(t, err, ErrNetwork)
}

func TestResponseCache(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, `{"code":0,"data":"ok"}`)
	}))
	t.Cleanup(server.Close)

	client, err := New(Options{CacheSize: 8, CacheTTL: time.Minute})
	require.NoError(t, err)

	ctx := context.Background()
	anon := (*credential.Credential)(nil)

	for range 3 {
		_, err := client.GetJSON(ctx, server.URL+"/a", nil, anon)
		require.NoError(t, err)
	}

	assert.Equal(t, int32(1), hits.Load())

	// A different session never shares cached responses.
	_, err = client.GetJSON(ctx, server.URL+"/a", nil, &credential.Credential{SESSDATA: "other"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())

	_, err = client.GetJSON(WithCacheControl(ctx, "no-cache"), server.URL+"/a", nil, anon)
	require.NoError(t, err)
	assert.Equal(t, int32(3), hits.Load())

	assert.Len(t, client.InvalidatePrefix(server.URL+"/a"), 2)

	_, err = client.GetJSON(ctx, server.URL+"/a", nil, anon)
	require.NoError(t, err)
	assert.Equal(t, int32(4), hits.Load())
}

func TestInitialState(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><script>window.__INITIAL_STATE__={"readInfo":{"id":9}};(function(){}());</script></html>`)
	}))
	t.Cleanup(server.Close)

	client, err := New(Options{})
	require.NoError(t, err)

	state, err := client.InitialState(context.Background(), server.URL+"/read/cv9", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"readInfo":{"id":9}}`, string(state))
}

func TestFinalURLFollowsRedirects(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/short", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/video/BV1xx411c7mD?share=1", http.StatusFound)
	})
	mux.HandleFunc("/video/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "<html></html>")
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := New(Options{CacheSize: 4, CacheTTL: time.Minute})
	require.NoError(t, err)

	for range 2 {
		final, err := client.FinalURL(context.Background(), server.URL+"/short")
		require.NoError(t, err)
		assert.Equal(t, server.URL+"/video/BV1xx411c7mD?share=1", final)
	}
}

func TestRateLimiterHonoursContext(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"code":0,"data":1}`)
	}))
	t.Cleanup(server.Close)

	client, err := New(Options{RequestsPerSecond: 0.001, Burst: 1})
	require.NoError(t, err)

	_, err = client.GetJSON(context.Background(), server.URL, nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = client.GetJSON(ctx, server.URL, nil, nil)
	require.Error(t, err)
}
