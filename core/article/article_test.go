// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

package article

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"

	"codeberg.org/biliread/biliread/core/credential"
	"codeberg.org/biliread/biliread/core/linkparse"
	"codeberg.org/biliread/biliread/core/xref"
)

type call struct {
	endpoint string
	values   url.Values
}

type fakeCaller struct {
	state      string
	stateCalls atomic.Int32
	delay      time.Duration

	mu    sync.Mutex
	gets  []call
	posts []call
	data  map[string]string

	invalidated []string
}

func (f *fakeCaller) GetJSON(_ context.Context, endpoint string, params url.Values, _ *credential.Credential) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.gets = append(f.gets, call{endpoint, params})

	return []byte(f.data[endpoint]), nil
}

func (f *fakeCaller) PostForm(_ context.Context, endpoint string, form url.Values, _ *credential.Credential) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.posts = append(f.posts, call{endpoint, form})

	return []byte("null"), nil
}

func (f *fakeCaller) InitialState(_ context.Context, pageURL string, _ *credential.Credential) ([]byte, error) {
	f.stateCalls.Add(1)
	time.Sleep(f.delay)

	if !strings.Contains(pageURL, "/read/cv") {
		return nil, linkparse.ErrUnsupported
	}

	return []byte(f.state), nil
}

func (f *fakeCaller) InvalidatePrefix(prefix string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.invalidated = append(f.invalidated, prefix)

	return nil
}

const sampleState = `{
	"readInfo": {
		"id": 42,
		"title": "测试专栏",
		"publish_time": 1700000000,
		"dyn_id_str": "880000000000000001",
		"category": {"id": 41, "name": "笔记"},
		"tags": [{"tid": 1, "name": "tag"}],
		"words": 12.5,
		"content": "<p style=\"text-align: center;\">Hello <strong>world</strong></p><figure class=\"img-box\"><img class=\"video-card\" aid=\"2\"></figure><figure class=\"img-box\"><img data-src=\"//i0.hdslb.com/x.png\"><figcaption>cap</figcaption></figure><a href=\"https://www.bilibili.com/read/cv7\"></a>"
	}
}`

func newTestArticle(caller *fakeCaller, store xref.Store) *Article {
	return New(42, caller,
		WithRegistry(xref.NewRegistry(store)),
		WithLinkResolver(linkparse.NewResolver(nil)),
		WithCredential(&credential.Credential{SESSDATA: "s", BiliJct: "j"}),
	)
}

func TestRenderBeforeFetch(t *testing.T) {
	t.Parallel()

	a := New(42, &fakeCaller{state: sampleState})

	_, err := a.Markdown()
	require.ErrorIs(t, err, ErrNotParsed)

	_, err = a.JSON()
	require.ErrorIs(t, err, ErrNotParsed)

	_, err = a.JSONBytes()
	require.ErrorIs(t, err, ErrNotParsed)
}

func TestFetchContentOnce(t *testing.T) {
	t.Parallel()

	caller := &fakeCaller{state: sampleState, delay: 20 * time.Millisecond}
	a := newTestArticle(caller, xref.NewMemoryStore())

	var wg sync.WaitGroup

	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()
			assert.NoError(t, a.FetchContent(context.Background()))
		}()
	}

	wg.Wait()

	require.NoError(t, a.FetchContent(context.Background()))
	assert.Equal(t, int32(1), caller.stateCalls.Load())
}

func TestArticleMarkdown(t *testing.T) {
	t.Parallel()

	a := newTestArticle(&fakeCaller{state: sampleState}, xref.NewMemoryStore())
	require.NoError(t, a.FetchContent(context.Background()))

	md, err := a.Markdown()
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(md, "---\n"))

	var meta map[string]any

	body, err := frontmatter.Parse(strings.NewReader(md), &meta)
	require.NoError(t, err)

	assert.Equal(t, "测试专栏", meta["title"])
	assert.NotContains(t, meta, "content")
	assert.EqualValues(t, 1700000000, meta["publish_time"])

	assert.Equal(t,
		"Hello&emsp; **world** \n\n"+
			"[视频 av2](https://www.bilibili.com/av2)\n\n"+
			"![cap](https://i0.hdslb.com/x.png)\n\n"+
			"[文章 cv7](https://www.bilibili.com/read/cv7)\n\n",
		strings.TrimLeft(string(body), "\n"))

	var html bytes.Buffer
	require.NoError(t, goldmark.Convert(body, &html))
	assert.Contains(t, html.String(), `<a href="https://www.bilibili.com/av2">视频 av2</a>`)
}

func TestArticleJSON(t *testing.T) {
	t.Parallel()

	a := newTestArticle(&fakeCaller{state: sampleState}, xref.NewMemoryStore())
	require.NoError(t, a.FetchContent(context.Background()))

	first, err := a.JSONBytes()
	require.NoError(t, err)

	second, err := a.JSONBytes()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var doc struct {
		Type     string           `json:"type"`
		Meta     map[string]any   `json:"meta"`
		Children []map[string]any `json:"children"`
	}

	require.NoError(t, json.Unmarshal(first, &doc))
	assert.Equal(t, "Article", doc.Type)
	assert.Equal(t, "880000000000000001", doc.Meta["dyn_id_str"])
	assert.InDelta(t, 12.5, doc.Meta["words"], 0)
	require.Len(t, doc.Children, 4)
	assert.Equal(t, "ParagraphNode", doc.Children[0]["type"])
	assert.Equal(t, "center", doc.Children[0]["align"])
	assert.Equal(t, "ImageNode", doc.Children[2]["type"])
	assert.Equal(t, "https://i0.hdslb.com/x.png", doc.Children[2]["url"])
}

func TestArticlePublishesCrossReferences(t *testing.T) {
	t.Parallel()

	store := xref.NewMemoryStore()
	caller := &fakeCaller{state: sampleState}
	a := newTestArticle(caller, store)
	ctx := context.Background()

	require.NoError(t, a.FetchContent(ctx))

	registry := xref.NewRegistry(store)

	cvid, ok, err := registry.DynamicArticle(ctx, "880000000000000001")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(42), cvid)

	isOpus, ok, err := registry.DynamicIsOpus(ctx, "880000000000000001")
	require.NoError(t, err)
	assert.True(t, ok && isOpus)

	dyn, err := a.DynamicID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "880000000000000001", dyn)

	isNote, err := a.IsNote(ctx)
	require.NoError(t, err)
	assert.True(t, isNote)

	assert.Equal(t, NoteRef{CVID: 42, Public: true, Credential: a.credential}, a.TurnToNote())
	assert.Equal(t, int32(1), caller.stateCalls.Load())
}

func TestDynamicIDWithoutRegistry(t *testing.T) {
	t.Parallel()

	caller := &fakeCaller{state: sampleState}
	a := New(42, caller)

	dyn, err := a.DynamicID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "880000000000000001", dyn)
}

func TestFetchContentMissingReadInfo(t *testing.T) {
	t.Parallel()

	a := New(42, &fakeCaller{state: `{"other":1}`})

	err := a.FetchContent(context.Background())
	require.ErrorIs(t, err, errNoReadInfo)

	_, err = a.Markdown()
	require.ErrorIs(t, err, ErrNotParsed)
}

func TestFetchContentUnknownColor(t *testing.T) {
	t.Parallel()

	state := `{"readInfo":{"content":"<span class=\"color-nope\">x</span>"}}`

	err := New(42, &fakeCaller{state: state}).FetchContent(context.Background())
	require.ErrorIs(t, err, ErrUnknownColorName)
}

func TestDocumentMarkdownSkipsFailingNodes(t *testing.T) {
	t.Parallel()

	doc := &Document{
		Meta: map[string]any{"title": "t"},
		Children: []Node{
			&Paragraph{Children: []Node{txt("a")}},
			&Image{URL: "%zz"},
			&Paragraph{Children: []Node{txt("b")}},
		},
	}

	md, err := doc.Markdown()
	require.NoError(t, err)
	assert.Equal(t, "---\ntitle: t\n\n---\n\na\n\nb\n\n", md)

	_, err = doc.JSON()
	require.Error(t, err)
}

func TestWriteOperations(t *testing.T) {
	t.Parallel()

	caller := &fakeCaller{
		state: sampleState,
		data:  map[string]string{endpointViewInfo: `{"mid":99}`},
	}
	a := newTestArticle(caller, xref.NewMemoryStore())
	ctx := context.Background()

	_, err := a.SetLike(ctx, true)
	require.NoError(t, err)

	_, err = a.SetLike(ctx, false)
	require.NoError(t, err)

	_, err = a.SetFavorite(ctx, true)
	require.NoError(t, err)

	_, err = a.SetFavorite(ctx, false)
	require.NoError(t, err)

	_, err = a.AddCoins(ctx)
	require.NoError(t, err)

	require.Len(t, caller.posts, 5)
	assert.Equal(t, call{endpointLike, url.Values{"id": {"42"}, "type": {"1"}}}, caller.posts[0])
	assert.Equal(t, call{endpointLike, url.Values{"id": {"42"}, "type": {"2"}}}, caller.posts[1])
	assert.Equal(t, endpointFavoriteAdd, caller.posts[2].endpoint)
	assert.Equal(t, endpointFavoriteDel, caller.posts[3].endpoint)
	assert.Equal(t, call{endpointCoin, url.Values{
		"aid": {"42"}, "multiply": {"1"}, "upid": {"99"}, "avtype": {"2"},
	}}, caller.posts[4])

	assert.Contains(t, caller.invalidated, endpointViewInfo+"?id=42")
}

func TestWriteOperationsNeedCredential(t *testing.T) {
	t.Parallel()

	caller := &fakeCaller{}
	ctx := context.Background()

	_, err := New(1, caller).SetLike(ctx, true)
	require.ErrorIs(t, err, credential.ErrNoSessData)

	_, err = New(1, caller, WithCredential(&credential.Credential{SESSDATA: "s"})).AddCoins(ctx)
	require.ErrorIs(t, err, credential.ErrNoBiliJct)

	assert.Empty(t, caller.posts)
	assert.Empty(t, caller.gets)
}

func TestReadEndpoints(t *testing.T) {
	t.Parallel()

	caller := &fakeCaller{}
	ctx := context.Background()
	a := New(5, caller)

	_, err := a.GetInfo(ctx)
	require.NoError(t, err)

	_, err = a.GetDetail(ctx)
	require.NoError(t, err)

	_, err = NewArticleList(11, caller, nil).GetContent(ctx)
	require.NoError(t, err)

	_, err = GetArticleRank(ctx, caller, RankWeek)
	require.NoError(t, err)

	assert.Equal(t, []call{
		{endpointViewInfo, url.Values{"id": {"5"}}},
		{endpointView, url.Values{"id": {"5"}}},
		{endpointListContent, url.Values{"id": {"11"}}},
		{endpointRank, url.Values{"cid": {"2"}}},
	}, caller.gets)
}

func TestParseRankingType(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]RankingType{
		"":                     RankYesterday,
		"month":                RankMonth,
		"week":                 RankWeek,
		"yesterday":            RankYesterday,
		"day_before_yesterday": RankDayBeforeYesterday,
		"1":                    RankMonth,
		"2":                    RankWeek,
		"4":                    RankDayBeforeYesterday,
	} {
		got, ok := ParseRankingType(name)
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}

	for _, name := range []string{"decade", "0", "5", "-1"} {
		_, ok := ParseRankingType(name)
		assert.False(t, ok, name)
	}
}
