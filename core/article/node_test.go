// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

package article

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func txt(s string) *Text { return &Text{Text: s} }

func TestTextMarkdownEscaping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "abc", "abc"},
		{"reserved", `a*b_c~d|e<f>g$h\i`, `a\*b\_c\~d\|e\<f\>g\$h\\i`},
		{"doubled", "**", `\*\*`},
		{"whitespace", "a b\tc d", "a&emsp;b&emsp;c&emsp;d"},
		{"cjk", "专栏", "专栏"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := txt(tt.in).Markdown()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInlineContainers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		node Node
		want string
	}{
		{"bold trims", &Bold{Children: []Node{txt("x")}}, " **x** "},
		{"bold empty", &Bold{}, ""},
		{"italic", &Italic{Children: []Node{txt("x")}}, " *x* "},
		{"italic empty", &Italic{}, ""},
		{"del", &Del{Children: []Node{txt("x")}}, " ~~x~~ "},
		{"underline", &Underline{Children: []Node{txt("x")}}, ` $\underline{x}$ `},
		{"underline empty", &Underline{}, ""},
		{"heading", &Heading{Children: []Node{txt("T")}}, "## T\n\n"},
		{"heading empty", &Heading{}, ""},
		{"paragraph", &Paragraph{Align: AlignCenter, Children: []Node{txt("p")}}, "p\n\n"},
		{"color", &Color{Color: "56c1fe", Children: []Node{txt("c")}}, "c"},
		{"font size", &FontSize{Size: 20, Children: []Node{txt("f")}}, "f"},
		{"blockquote", &Blockquote{Children: []Node{txt("a"), &Paragraph{Children: []Node{txt("b")}}}}, "> ab\n> \n> \n\n"},
		{"separator", &Separator{}, "\n------\n"},
		{"anchor", &Anchor{URL: "https://x.y", Text: "[a]"}, `[\[a]](https://x.y)`},
		{"latex inline", &Latex{Code: "e=mc^2"}, "$e=mc^2$"},
		{"latex block", &Latex{Code: "a\nb"}, "$$\na\nb\n$$"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := tt.node.Markdown()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListMarkdown(t *testing.T) {
	t.Parallel()

	items := func() []Node {
		return []Node{
			&ListItem{Children: []Node{txt("one")}},
			&ListItem{Children: []Node{txt("two")}},
			&ListItem{Children: []Node{txt("three")}},
		}
	}

	got, err := (&OrderedList{Children: items()}).Markdown()
	require.NoError(t, err)
	assert.Equal(t, "1. one\n2. two\n3. three", got)

	got, err = (&UnorderedList{Children: items()}).Markdown()
	require.NoError(t, err)
	assert.Equal(t, "- one\n- two\n- three", got)
}

func TestCardMarkdown(t *testing.T) {
	t.Parallel()

	tests := []struct {
		node Node
		want string
	}{
		{&VideoCard{AID: 2}, "[视频 av2](https://www.bilibili.com/av2)\n\n"},
		{&ArticleCard{CVID: 3}, "[文章 cv3](https://www.bilibili.com/read/cv3)\n\n"},
		{&BangumiCard{EPID: 4}, "[番剧 ep4](https://www.bilibili.com/bangumi/play/ep4)\n\n"},
		{&MusicCard{AUID: 5}, "[音乐 au5](https://www.bilibili.com/audio/au5)\n\n"},
		{&ShopCard{PWID: 6}, "[会员购 6](https://show.bilibili.com/platform/detail.html?id=6)\n\n"},
		{&ComicCard{MCID: 7}, "[漫画 mc7](https://manga.bilibili.com/m/detail/mc7)\n\n"},
		{&LiveCard{RoomID: 8}, "[直播 8](https://live.bilibili.com/8)\n\n"},
	}

	for _, tt := range tests {
		got, err := tt.node.Markdown()
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestImageNormalisesURLOnce(t *testing.T) {
	t.Parallel()

	img := &Image{URL: "//i0.hdslb.com/bfs/article/x.png", Alt: "a[b"}

	for range 2 {
		md, err := img.Markdown()
		require.NoError(t, err)
		assert.Equal(t, "![a\\[b](https://i0.hdslb.com/bfs/article/x.png)\n\n", md)

		obj, err := img.JSON()
		require.NoError(t, err)
		assert.Equal(t, "https://i0.hdslb.com/bfs/article/x.png", obj["url"])
	}

	assert.Equal(t, "https://i0.hdslb.com/bfs/article/x.png", img.URL)

	absolute := &Image{URL: "https://example.com/x.png"}
	md, err := absolute.Markdown()
	require.NoError(t, err)
	assert.Equal(t, "![](https://example.com/x.png)\n\n", md)
}

func TestImageBadURL(t *testing.T) {
	t.Parallel()

	_, err := (&Image{URL: "%zz"}).Markdown()
	require.Error(t, err)

	_, err = (&Paragraph{Children: []Node{&Image{URL: "%zz"}}}).Markdown()
	require.Error(t, err)
}

func TestCodeUnescapesOnce(t *testing.T) {
	t.Parallel()

	code := &Code{Code: "a &amp;lt; b", Lang: "go"}

	md, err := code.Markdown()
	require.NoError(t, err)
	assert.Equal(t, "```go\na &lt; b\n```\n\n", md)

	obj, err := code.JSON()
	require.NoError(t, err)
	assert.Equal(t, "a &lt; b", obj["code"])

	md, err = (&Code{Code: "x"}).Markdown()
	require.NoError(t, err)
	assert.Equal(t, "```\nx\n```\n\n", md)
}

func TestUnresolvedLinkFails(t *testing.T) {
	t.Parallel()

	link := &UnresolvedLink{Href: "https://b23.tv/x"}

	_, err := link.Markdown()
	require.ErrorIs(t, err, ErrUnresolvedLink)

	_, err = (&Bold{Children: []Node{link}}).JSON()
	require.ErrorIs(t, err, ErrUnresolvedLink)
}

func TestNodeJSON(t *testing.T) {
	t.Parallel()

	node := &Paragraph{Align: AlignRight, Children: []Node{
		&Color{Color: "ff968d", Children: []Node{txt("red")}},
		&FontSize{Size: 23, Children: []Node{txt("big")}},
		&LiveCard{RoomID: 9},
		&Separator{},
	}}

	got, err := node.JSON()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"type":  "ParagraphNode",
		"align": "right",
		"children": []any{
			map[string]any{"type": "ColorNode", "color": "ff968d", "children": []any{
				map[string]any{"type": "TextNode", "text": "red"},
			}},
			map[string]any{"type": "FontSizeNode", "size": 23, "children": []any{
				map[string]any{"type": "TextNode", "text": "big"},
			}},
			map[string]any{"type": "LiveCardNode", "room_id": int64(9)},
			map[string]any{"type": "SeparatorNode"},
		},
	}, got)
}
