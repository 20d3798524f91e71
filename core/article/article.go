// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

package article

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/singleflight"

	"codeberg.org/biliread/biliread/core/credential"
	"codeberg.org/biliread/biliread/core/linkparse"
	"codeberg.org/biliread/biliread/core/xref"
)

// noteCategories are the article categories used for notes (笔记).
var noteCategories = map[int64]bool{41: true, 42: true}

// Getter performs GET requests returning the unwrapped data of an API response.
type Getter interface {
	GetJSON(ctx context.Context, endpoint string, params url.Values, cred *credential.Credential) ([]byte, error)
}

// Caller is everything an Article needs from the HTTP layer. *requests.Client implements it.
type Caller interface {
	Getter
	PostForm(ctx context.Context, endpoint string, form url.Values, cred *credential.Credential) ([]byte, error)
	InitialState(ctx context.Context, pageURL string, cred *credential.Credential) ([]byte, error)
}

// cacheInvalidator is implemented by callers that cache responses.
type cacheInvalidator interface {
	InvalidatePrefix(prefix string) []string
}

// Article is a column (专栏) identified by its cv number.
//
// An Article is safe for concurrent use. Content is fetched and parsed at most once.
type Article struct {
	cvid        int64
	caller      Caller
	credential  *credential.Credential
	registry    *xref.Registry
	resolver    LinkResolver
	concurrency int

	flight singleflight.Group
	mu     sync.Mutex
	state  []byte
	doc    *Document
	parsed atomic.Bool
}

type Option func(*Article)

func WithCredential(cred *credential.Credential) Option {
	return func(a *Article) { a.credential = cred }
}

// WithRegistry makes the article publish what it learns about itself, and consult it first.
func WithRegistry(registry *xref.Registry) Option {
	return func(a *Article) { a.registry = registry }
}

// WithLinkResolver sets how empty links in the body are turned into cards.
// Without one, such links are dropped.
func WithLinkResolver(resolver LinkResolver) Option {
	return func(a *Article) { a.resolver = resolver }
}

func WithResolveConcurrency(n int) Option {
	return func(a *Article) { a.concurrency = n }
}

func New(cvid int64, caller Caller, opts ...Option) *Article {
	a := &Article{
		cvid:        cvid,
		caller:      caller,
		concurrency: DefaultResolveConcurrency,
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.resolver == nil {
		a.resolver = linkparse.NewResolver(nil)
	}

	return a
}

func (a *Article) CVID() int64 { return a.cvid }

// GetAll returns the page state of the article: content, tags, publish time, title,
// related articles and more. The first successful result is kept.
func (a *Article) GetAll(ctx context.Context) ([]byte, error) {
	a.mu.Lock()
	state := a.state
	a.mu.Unlock()

	if state != nil {
		return state, nil
	}

	v, err, _ := a.flight.Do("state", func() (any, error) {
		a.mu.Lock()
		cached := a.state
		a.mu.Unlock()

		if cached != nil {
			return cached, nil
		}

		state, err := a.caller.InitialState(ctx, pageURL(a.cvid), a.credential)
		if err != nil {
			return nil, err
		}

		readInfo := gjson.GetBytes(state, "readInfo")
		if !readInfo.IsObject() {
			return nil, fmt.Errorf("%w (cv%d)", errNoReadInfo, a.cvid)
		}

		a.publish(ctx, readInfo)

		a.mu.Lock()
		a.state = state
		a.mu.Unlock()

		return state, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]byte), nil
}

func (a *Article) publish(ctx context.Context, readInfo gjson.Result) {
	if a.registry == nil {
		return
	}

	facts := xref.ArticleFacts{
		CVID:      a.cvid,
		DynamicID: readInfo.Get("dyn_id_str").String(),
		IsNote:    noteCategories[readInfo.Get("category.id").Int()],
	}

	if err := a.registry.PublishArticle(ctx, facts); err != nil {
		log.Warn().Err(err).Int64("cvid", a.cvid).Msg("Failed to record article cross references")
	}
}

// FetchContent fetches the article and parses its body. Concurrent and repeated calls
// share one fetch and one parse.
func (a *Article) FetchContent(ctx context.Context) error {
	if a.parsed.Load() {
		return nil
	}

	_, err, _ := a.flight.Do("parse", func() (any, error) {
		if a.parsed.Load() {
			return nil, nil
		}

		state, err := a.GetAll(ctx)
		if err != nil {
			return nil, err
		}

		readInfo := gjson.GetBytes(state, "readInfo")

		nodes, err := Parse(readInfo.Get("content").String())
		if err != nil {
			return nil, fmt.Errorf("cv%d: %w", a.cvid, err)
		}

		nodes, err = Resolve(ctx, nodes, a.resolver, a.concurrency)
		if err != nil {
			return nil, err
		}

		a.mu.Lock()
		a.doc = &Document{Meta: metaFromReadInfo(readInfo), Children: nodes}
		a.mu.Unlock()

		a.parsed.Store(true)

		return nil, nil
	})

	return err
}

// Document returns the parsed article, or ErrNotParsed.
func (a *Article) Document() (*Document, error) {
	if !a.parsed.Load() {
		return nil, ErrNotParsed
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	return a.doc, nil
}

func (a *Article) Markdown() (string, error) {
	doc, err := a.Document()
	if err != nil {
		return "", err
	}

	return doc.Markdown()
}

func (a *Article) JSON() (map[string]any, error) {
	doc, err := a.Document()
	if err != nil {
		return nil, err
	}

	return doc.JSON()
}

func (a *Article) JSONBytes() ([]byte, error) {
	doc, err := a.Document()
	if err != nil {
		return nil, err
	}

	return doc.JSONBytes()
}

// GetInfo returns view counts, the author mid and the viewer's like/favourite/coin state.
func (a *Article) GetInfo(ctx context.Context) ([]byte, error) {
	return a.caller.GetJSON(ctx, endpointViewInfo, a.idParams(), a.credential)
}

// GetDetail returns the article as served to the mobile client.
func (a *Article) GetDetail(ctx context.Context) ([]byte, error) {
	return a.caller.GetJSON(ctx, endpointView, a.idParams(), a.credential)
}

func (a *Article) SetLike(ctx context.Context, status bool) ([]byte, error) {
	if err := a.credential.RequireWrite(); err != nil {
		return nil, err
	}

	likeType := "2"
	if status {
		likeType = "1"
	}

	form := a.idParams()
	form.Set("type", likeType)

	return a.write(ctx, endpointLike, form)
}

func (a *Article) SetFavorite(ctx context.Context, status bool) ([]byte, error) {
	if err := a.credential.RequireWrite(); err != nil {
		return nil, err
	}

	endpoint := endpointFavoriteDel
	if status {
		endpoint = endpointFavoriteAdd
	}

	return a.write(ctx, endpoint, a.idParams())
}

// AddCoins gives the article one coin, the only amount bilibili allows for articles.
func (a *Article) AddCoins(ctx context.Context) ([]byte, error) {
	if err := a.credential.RequireWrite(); err != nil {
		return nil, err
	}

	info, err := a.GetInfo(ctx)
	if err != nil {
		return nil, err
	}

	form := url.Values{
		"aid":      {strconv.FormatInt(a.cvid, 10)},
		"multiply": {"1"},
		"upid":     {strconv.FormatInt(gjson.GetBytes(info, "mid").Int(), 10)},
		"avtype":   {"2"},
	}

	return a.write(ctx, endpointCoin, form)
}

func (a *Article) write(ctx context.Context, endpoint string, form url.Values) ([]byte, error) {
	data, err := a.caller.PostForm(ctx, endpoint, form, a.credential)
	if err != nil {
		return nil, err
	}

	if inv, ok := a.caller.(cacheInvalidator); ok {
		inv.InvalidatePrefix(endpointViewInfo + "?" + a.idParams().Encode())
	}

	return data, nil
}

// DynamicID returns the id of the social post (dynamic, also opus) every article has.
// Comments and likes are shared between the two.
func (a *Article) DynamicID(ctx context.Context) (string, error) {
	if a.registry != nil {
		id, ok, err := a.registry.ArticleDynamic(ctx, a.cvid)
		if err != nil {
			return "", err
		}

		if ok {
			return id, nil
		}
	}

	state, err := a.GetAll(ctx)
	if err != nil {
		return "", err
	}

	return gjson.GetBytes(state, "readInfo.dyn_id_str").String(), nil
}

// IsNote reports whether the article is a note.
func (a *Article) IsNote(ctx context.Context) (bool, error) {
	if a.registry != nil {
		isNote, ok, err := a.registry.ArticleIsNote(ctx, a.cvid)
		if err != nil {
			return false, err
		}

		if ok {
			return isNote, nil
		}
	}

	state, err := a.GetAll(ctx)
	if err != nil {
		return false, err
	}

	return noteCategories[gjson.GetBytes(state, "readInfo.category.id").Int()], nil
}

// NoteRef identifies a public note.
type NoteRef struct {
	CVID       int64
	Public     bool
	Credential *credential.Credential
}

// TurnToNote returns the article as a public note without checking that it is one; see IsNote.
func (a *Article) TurnToNote() NoteRef {
	return NoteRef{CVID: a.cvid, Public: true, Credential: a.credential}
}

func (a *Article) idParams() url.Values {
	return url.Values{"id": {strconv.FormatInt(a.cvid, 10)}}
}
