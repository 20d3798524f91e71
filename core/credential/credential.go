// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package credential holds the cookie values that authenticate requests against bilibili.

Session management (login, cookie refresh) is out of scope; callers obtain these values
elsewhere and pass them in.
*/
package credential

import "errors"

var (
	// ErrNoSessData is returned by operations that require a logged-in session.
	ErrNoSessData = errors.New("credential: SESSDATA is required")

	// ErrNoBiliJct is returned by write operations, which need bili_jct as the CSRF token.
	ErrNoBiliJct = errors.New("credential: bili_jct is required")
)

// Credential is the opaque credential context passed to API calls.
//
// The zero value (or a nil pointer) is an anonymous visitor.
type Credential struct {
	SESSDATA   string `yaml:"sessdata"`
	BiliJct    string `yaml:"biliJct"`
	Buvid3     string `yaml:"buvid3"`
	DedeUserID string `yaml:"dedeUserId"`
}

// Cookies returns the non-empty credential values keyed by cookie name.
func (c *Credential) Cookies() map[string]string {
	cookies := make(map[string]string, 4)

	if c == nil {
		return cookies
	}

	for name, value := range map[string]string{
		"SESSDATA":   c.SESSDATA,
		"bili_jct":   c.BiliJct,
		"buvid3":     c.Buvid3,
		"DedeUserID": c.DedeUserID,
	} {
		if value != "" {
			cookies[name] = value
		}
	}

	return cookies
}

// CSRF returns the token sent as the csrf form field on write requests.
func (c *Credential) CSRF() string {
	if c == nil {
		return ""
	}

	return c.BiliJct
}

// RequireSessData reports ErrNoSessData when no session cookie is set.
func (c *Credential) RequireSessData() error {
	if c == nil || c.SESSDATA == "" {
		return ErrNoSessData
	}

	return nil
}

// RequireWrite checks the cookies needed by like/favourite/coin requests.
func (c *Credential) RequireWrite() error {
	if err := c.RequireSessData(); err != nil {
		return err
	}

	if c.BiliJct == "" {
		return ErrNoBiliJct
	}

	return nil
}
