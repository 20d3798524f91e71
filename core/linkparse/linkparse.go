// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package linkparse maps bilibili links to the kind of resource they point at and its numeric id.

Short links on b23.tv are followed over the network before parsing.
*/
package linkparse

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Kind identifies the type of resource a link points at.
type Kind string

const (
	KindVideo   Kind = "video"
	KindArticle Kind = "article"
	KindAudio   Kind = "audio"
	KindLive    Kind = "live"
	KindBangumi Kind = "bangumi"
	KindUser    Kind = "user"
	KindManga   Kind = "manga"
)

// Resource is a parsed link.
type Resource struct {
	Kind Kind
	ID   int64
}

var ErrUnsupported = errors.New("unsupported link")

// Redirector follows HTTP redirects. *requests.Client implements it.
type Redirector interface {
	FinalURL(ctx context.Context, rawURL string) (string, error)
}

var (
	reBVID    = regexp.MustCompile(`(?i)\b(BV[0-9A-Za-z]{10})\b`)
	reAID     = regexp.MustCompile(`(?i)^av(\d+)$`)
	reCVID    = regexp.MustCompile(`(?i)^cv(\d+)$`)
	reAUID    = regexp.MustCompile(`(?i)^au(\d+)$`)
	reEPID    = regexp.MustCompile(`(?i)^ep(\d+)$`)
	reMCID    = regexp.MustCompile(`(?i)^mc(\d+)$`)
	reNumeric = regexp.MustCompile(`^\d+$`)
)

var shortLinkHosts = map[string]bool{
	"b23.tv":      true,
	"bili2233.cn": true,
}

// Resolver parses links, following short links through its Redirector.
type Resolver struct {
	redirects Redirector
}

// NewResolver returns a Resolver. A nil Redirector makes every short link unsupported.
func NewResolver(redirects Redirector) *Resolver {
	return &Resolver{redirects: redirects}
}

// Resolve parses link. Links that point at nothing this package knows return ErrUnsupported.
func (r *Resolver) Resolve(ctx context.Context, link string) (Resource, error) {
	u, err := parseURL(link)
	if err != nil {
		return Resource{}, err
	}

	if shortLinkHosts[strings.ToLower(u.Hostname())] {
		if r.redirects == nil {
			return Resource{}, fmt.Errorf("%w: %s", ErrUnsupported, link)
		}

		final, err := r.redirects.FinalURL(ctx, u.String())
		if err != nil {
			return Resource{}, fmt.Errorf("failed to follow short link %s: %w", link, err)
		}

		u, err = parseURL(final)
		if err != nil {
			return Resource{}, err
		}

		// One hop only; a short link pointing at another short link is not followed.
		if shortLinkHosts[strings.ToLower(u.Hostname())] {
			return Resource{}, fmt.Errorf("%w: %s", ErrUnsupported, link)
		}
	}

	return Parse(u)
}

// Parse maps an absolute URL without following redirects.
func Parse(u *url.URL) (Resource, error) {
	host := strings.ToLower(u.Hostname())
	segments := pathSegments(u.Path)

	switch {
	case host == "live.bilibili.com":
		if len(segments) > 0 && reNumeric.MatchString(segments[0]) {
			return numeric(KindLive, segments[0])
		}

	case host == "space.bilibili.com":
		if len(segments) > 0 && reNumeric.MatchString(segments[0]) {
			return numeric(KindUser, segments[0])
		}

	case host == "manga.bilibili.com":
		for _, seg := range segments {
			if m := reMCID.FindStringSubmatch(seg); m != nil {
				return numeric(KindManga, m[1])
			}
		}

	case host == "bilibili.com" || strings.HasSuffix(host, ".bilibili.com"):
		return parseMainSite(u, segments)
	}

	return Resource{}, fmt.Errorf("%w: %s", ErrUnsupported, u)
}

func parseMainSite(u *url.URL, segments []string) (Resource, error) {
	if len(segments) == 0 {
		return Resource{}, fmt.Errorf("%w: %s", ErrUnsupported, u)
	}

	switch segments[0] {
	case "video":
		if len(segments) > 1 {
			return videoID(segments[1])
		}

	case "read":
		// /read/cv123 and /read/mobile/123 or /read/mobile?id=123
		if len(segments) > 1 {
			if m := reCVID.FindStringSubmatch(segments[1]); m != nil {
				return numeric(KindArticle, m[1])
			}

			if segments[1] == "mobile" {
				if len(segments) > 2 && reNumeric.MatchString(segments[2]) {
					return numeric(KindArticle, segments[2])
				}

				if id := u.Query().Get("id"); reNumeric.MatchString(id) {
					return numeric(KindArticle, id)
				}
			}
		}

	case "audio":
		if len(segments) > 1 {
			if m := reAUID.FindStringSubmatch(segments[1]); m != nil {
				return numeric(KindAudio, m[1])
			}
		}

	case "bangumi":
		if len(segments) > 2 && segments[1] == "play" {
			if m := reEPID.FindStringSubmatch(segments[2]); m != nil {
				return numeric(KindBangumi, m[1])
			}
		}
	}

	// www.bilibili.com/av170001 and www.bilibili.com/BV1xx411c7mD
	if res, err := videoID(segments[0]); err == nil {
		return res, nil
	}

	return Resource{}, fmt.Errorf("%w: %s", ErrUnsupported, u)
}

func videoID(segment string) (Resource, error) {
	if m := reAID.FindStringSubmatch(segment); m != nil {
		return numeric(KindVideo, m[1])
	}

	if m := reBVID.FindStringSubmatch(segment); m != nil && len(m[1]) == len(segment) {
		aid, err := BVToAID(m[1])
		if err != nil {
			return Resource{}, err
		}

		return Resource{Kind: KindVideo, ID: aid}, nil
	}

	return Resource{}, fmt.Errorf("%w: %s", ErrUnsupported, segment)
}

func numeric(kind Kind, digits string) (Resource, error) {
	id, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return Resource{}, fmt.Errorf("invalid %s id %q: %w", kind, digits, err)
	}

	return Resource{Kind: kind, ID: id}, nil
}

// parseURL accepts protocol-relative and scheme-less links as emitted by the article editor.
func parseURL(link string) (*url.URL, error) {
	link = strings.TrimSpace(link)

	switch {
	case strings.HasPrefix(link, "//"):
		link = "https:" + link
	case !strings.Contains(link, "://"):
		link = "https://" + link
	}

	u, err := url.Parse(link)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupported, err)
	}

	if u.Host == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, link)
	}

	return u, nil
}

func pathSegments(p string) []string {
	var segments []string

	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}

	return segments
}
