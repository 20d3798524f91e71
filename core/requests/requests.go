// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package requests performs calls against the bilibili web API.

Responses use the envelope {"code": 0, "message": "0", "data": ...}. A non-zero code becomes an
*APIError; transport failures and HTTP statuses of 400 and above become a *NetworkError.
*/
package requests

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"codeberg.org/biliread/biliread/core/audit"
	"codeberg.org/biliread/biliread/core/credential"
	"codeberg.org/biliread/biliread/core/initialstate"
	"codeberg.org/biliread/biliread/core/requests/respcache"
	"codeberg.org/biliread/biliread/server/request_context"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"
	DefaultReferer = "https://www.bilibili.com"

	formContentType = "application/x-www-form-urlencoded"
)

// Client is safe for concurrent use.
type Client struct {
	http    *http.Client
	cache   *respcache.Cache
	limiter *rate.Limiter

	userAgent      string
	acceptLanguage string
	referer        string
}

// New builds a Client. A zero Options value gives an uncached, unpaced client.
func New(opts Options) (*Client, error) {
	c := &Client{
		http:           newHTTPClient(opts.Timeout),
		userAgent:      opts.UserAgent,
		acceptLanguage: opts.AcceptLanguage,
		referer:        opts.Referer,
	}

	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}

	if c.referer == "" {
		c.referer = DefaultReferer
	}

	if opts.CacheSize > 0 {
		cache, err := respcache.New(opts.CacheSize, opts.CacheTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to create response cache: %w", err)
		}

		c.cache = cache

		log.Info().
			Int("size", opts.CacheSize).
			Dur("ttl", opts.CacheTTL).
			Msg("Initialized API response cache")
	}

	if opts.RequestsPerSecond > 0 {
		burst := max(opts.Burst, 1)
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	return c, nil
}

// GetJSON performs a GET and returns the envelope's data field.
func (c *Client) GetJSON(ctx context.Context, endpoint string, params url.Values, cred *credential.Credential) ([]byte, error) {
	_, body, err := c.Do(ctx, RequestOptions{
		Method:     http.MethodGet,
		URL:        endpoint,
		Query:      params,
		Credential: cred,
	})
	if err != nil {
		return nil, err
	}

	return processJSONResponse(body)
}

// PostForm performs a form POST and returns the envelope's data field.
//
// The bili_jct cookie is sent back as the csrf and csrf_token fields, which every
// bilibili write endpoint checks.
func (c *Client) PostForm(ctx context.Context, endpoint string, form url.Values, cred *credential.Credential) ([]byte, error) {
	payload := url.Values{}

	for k, v := range form {
		payload[k] = v
	}

	if csrf := cred.CSRF(); csrf != "" {
		payload.Set("csrf", csrf)
		payload.Set("csrf_token", csrf)
	}

	_, body, err := c.Do(ctx, RequestOptions{
		Method:     http.MethodPost,
		URL:        endpoint,
		Form:       payload,
		Credential: cred,
	})
	if err != nil {
		return nil, err
	}

	return processJSONResponse(body)
}

// GetHTML fetches a web page as-is.
func (c *Client) GetHTML(ctx context.Context, pageURL string, cred *credential.Credential) ([]byte, error) {
	_, body, err := c.Do(ctx, RequestOptions{
		Method:     http.MethodGet,
		URL:        pageURL,
		Credential: cred,
	})

	return body, err
}

// InitialState fetches a page and returns its window.__INITIAL_STATE__ object.
func (c *Client) InitialState(ctx context.Context, pageURL string, cred *credential.Credential) ([]byte, error) {
	page, err := c.GetHTML(ctx, pageURL, cred)
	if err != nil {
		return nil, err
	}

	state, err := initialstate.Extract(page)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", pageURL, err)
	}

	return state, nil
}

// FinalURL follows redirects from rawURL and returns where they end.
func (c *Client) FinalURL(ctx context.Context, rawURL string) (string, error) {
	// A cached response has no Request to read the final URL from.
	ctx = WithCacheControl(ctx, "no-cache")

	resp, _, err := c.Do(ctx, RequestOptions{
		Method: http.MethodGet,
		URL:    rawURL,
	})
	if err != nil {
		return "", err
	}

	if resp.Request == nil || resp.Request.URL == nil {
		return rawURL, nil
	}

	return resp.Request.URL.String(), nil
}

// Do sends a request and returns the response together with its fully read body.
//
// GET responses may be served from the cache, in which case the returned response
// carries no Request. Statuses of 400 and above are returned as *NetworkError.
func (c *Client) Do(ctx context.Context, opts RequestOptions) (*http.Response, []byte, error) {
	fullURL := opts.URL
	if len(opts.Query) > 0 {
		sep := "?"
		if strings.Contains(fullURL, "?") {
			sep = "&"
		}

		fullURL += sep + opts.Query.Encode()
	}

	var policy cachePolicy

	if opts.Method == http.MethodGet {
		policy = c.determineCachePolicy(ctx, fullURL, opts.Credential.Cookies()["SESSDATA"])
		if policy.cached != nil {
			return &http.Response{
				StatusCode: http.StatusOK,
				Header:     http.Header{},
				Body:       io.NopCloser(bytes.NewReader(policy.cached)),
			}, policy.cached, nil
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	req, err := c.newRequest(ctx, opts.Method, fullURL, opts)
	if err != nil {
		return nil, nil, err
	}

	resp, body, err := c.sendRequest(ctx, req)
	if err != nil {
		return nil, nil, &NetworkError{URL: fullURL, Err: err}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, nil, &NetworkError{URL: fullURL, StatusCode: resp.StatusCode}
	}

	if policy.write && resp.StatusCode == http.StatusOK {
		c.cache.Put(policy.key, fullURL, body)
	}

	return resp, body, nil
}

// processJSONResponse unwraps the bilibili envelope.
//
// Bodies without a code field are returned whole. Bangumi endpoints put the payload
// under result instead of data.
func processJSONResponse(body []byte) ([]byte, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: %.200s", errInvalidJSON, body)
	}

	result := gjson.ParseBytes(body)

	code := result.Get("code")
	if !code.Exists() {
		return body, nil
	}

	if code.Int() != 0 {
		message := result.Get("message").String()
		if message == "" {
			message = result.Get("msg").String()
		}

		return nil, &APIError{Code: code.Int(), Message: message}
	}

	for _, field := range []string{"data", "result"} {
		if payload := result.Get(field); payload.Exists() {
			return []byte(payload.Raw), nil
		}
	}

	return body, nil
}

func (c *Client) newRequest(ctx context.Context, method, fullURL string, opts RequestOptions) (*http.Request, error) {
	var reqBody io.Reader

	if method == http.MethodPost {
		reqBody = strings.NewReader(opts.Form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Referer", c.referer)

	if c.acceptLanguage != "" {
		req.Header.Set("Accept-Language", c.acceptLanguage)
	}

	if method == http.MethodPost {
		req.Header.Set("Content-Type", formContentType)
	}

	for name, value := range opts.Credential.Cookies() {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	return req, nil
}

// sendRequest executes req, reads the body for auditing and hands back a response
// whose Body can still be read.
func (c *Client) sendRequest(ctx context.Context, req *http.Request) (_ *http.Response, _ []byte, err error) {
	span := audit.Span{
		Destination: audit.ToBilibili,
		RequestID:   requestID(ctx),
		Method:      req.Method,
		URL:         req.URL.String(),
	}

	defer func() { span.Error = err }()

	_ = span.Begin(ctx)
	defer span.End()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	span.StatusCode = resp.StatusCode

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	span.Body = body

	span.End()
	span.Log()

	resp.Body = io.NopCloser(bytes.NewReader(body))

	return resp, body, nil
}

func requestID(ctx context.Context) string {
	upstream := uuid.NewString()[:8]

	if id := request_context.FromContext(ctx).RequestID; id != "" {
		return id + "-" + upstream
	}

	return upstream
}
