// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

package article

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
		want []Node
	}{
		{
			name: "paragraph alignment",
			html: `<p style="text-align: center;">a</p><p>b</p><p style="text-align: right;">c</p><p style="color: red">d</p>`,
			want: []Node{
				&Paragraph{Align: AlignCenter, Children: []Node{txt("a")}},
				&Paragraph{Align: AlignLeft, Children: []Node{txt("b")}},
				&Paragraph{Align: AlignRight, Children: []Node{txt("c")}},
				&Paragraph{Align: AlignLeft, Children: []Node{txt("d")}},
			},
		},
		{
			name: "inline styles",
			html: `<h1>T</h1><p><strong>b</strong><span style="text-decoration: line-through;">d</span></p>`,
			want: []Node{
				&Heading{Children: []Node{txt("T")}},
				&Paragraph{Align: AlignLeft, Children: []Node{
					&Bold{Children: []Node{txt("b")}},
					&Del{Children: []Node{txt("d")}},
				}},
			},
		},
		{
			name: "unrecognised tags dropped with their children",
			html: `<p>a<em>b</em><i>c</i><u>d</u></p><section><p>e</p></section>`,
			want: []Node{
				&Paragraph{Align: AlignLeft, Children: []Node{txt("a")}},
			},
		},
		{
			name: "span variants",
			html: `<span class="font-size-20">f</span><span class="color-blue-01">c</span>` +
				`<span style="font-weight: bold">s</span><span class="other">o</span><span class="other"></span><span>p</span>`,
			want: []Node{
				&FontSize{Size: 20, Children: []Node{txt("f")}},
				&Color{Color: "56c1fe", Children: []Node{txt("c")}},
				txt("s"),
				txt("o"),
				txt("p"),
			},
		},
		{
			name: "lists and quotes",
			html: `<blockquote>q</blockquote><ol><li>1</li><li>2</li></ol><ul><li>x</li></ul>`,
			want: []Node{
				&Blockquote{Children: []Node{txt("q")}},
				&OrderedList{Children: []Node{
					&ListItem{Children: []Node{txt("1")}},
					&ListItem{Children: []Node{txt("2")}},
				}},
				&UnorderedList{Children: []Node{&ListItem{Children: []Node{txt("x")}}}},
			},
		},
		{
			name: "div is transparent and unknown tags vanish",
			html: `<div><div>a</div><section>gone</section></div><!-- note -->`,
			want: []Node{txt("a")},
		},
		{
			name: "links",
			html: `<a href="https://example.com">site</a><a href="https://b23.tv/x"></a>`,
			want: []Node{
				&Anchor{URL: "https://example.com", Text: "site"},
				&UnresolvedLink{Href: "https://b23.tv/x"},
			},
		},
		{
			name: "inline images",
			html: `<img class="latex" alt="%5Cfrac%7Ba%7D%7Bb%7D"><img data-src="//i0.hdslb.com/x.png">`,
			want: []Node{
				&Latex{Code: `\frac{a}{b}`},
				&Image{URL: "//i0.hdslb.com/x.png"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Parse(tt.html)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFigures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
		want []Node
	}{
		{
			name: "two video cards",
			html: `<figure class="img-box"><img class="video-card nomal" aid="100,200"></figure>`,
			want: []Node{&VideoCard{AID: 100}, &VideoCard{AID: 200}},
		},
		{
			name: "prefixed cards",
			html: `<figure class="img-box"><img class="fanju-card" aid="ep374717"></figure>` +
				`<figure class="img-box"><img class="music-card" aid="au590187"></figure>` +
				`<figure class="img-box"><img class="shop-card" aid="pw19051"></figure>`,
			want: []Node{&BangumiCard{EPID: 374717}, &MusicCard{AUID: 590187}, &ShopCard{PWID: 19051}},
		},
		{
			name: "plain id cards",
			html: `<figure class="img-box"><img class="article-card" aid="1"></figure>` +
				`<figure class="img-box"><img class="caricature-card" aid="28565,9"></figure>` +
				`<figure class="img-box"><img class="live-card" aid="22603245"></figure>`,
			want: []Node{&ArticleCard{CVID: 1}, &ComicCard{MCID: 28565}, &ComicCard{MCID: 9}, &LiveCard{RoomID: 22603245}},
		},
		{
			name: "malformed card id is skipped",
			html: `<figure class="img-box"><img class="video-card" aid="100,abc"></figure>`,
			want: []Node{&VideoCard{AID: 100}},
		},
		{
			name: "separator",
			html: `<figure class="img-box"><img class="cut-off-1 cut-off" data-src="//x/cut.png"></figure>`,
			want: []Node{&Separator{}},
		},
		{
			name: "seamless image with caption",
			html: `<figure class="img-box"><img class="seamless" data-src="//i0.hdslb.com/a.jpg"><figcaption>caption</figcaption></figure>`,
			want: []Node{&Image{URL: "//i0.hdslb.com/a.jpg", Alt: "caption"}},
		},
		{
			name: "image without class",
			html: `<figure class="img-box"><img data-src="//i0.hdslb.com/b.jpg"></figure>`,
			want: []Node{&Image{URL: "//i0.hdslb.com/b.jpg"}},
		},
		{
			name: "empty figure",
			html: `<figure class="img-box"></figure><figure class="other"><img data-src="x"></figure>`,
			want: nil,
		},
		{
			name: "code box",
			html: `<figure class="code-box"><pre data-lang="text/X-Go@Go" codecontent="fmt.Println(%22hi%22)%0A"></pre></figure>`,
			want: []Node{&Code{Lang: "text/x-go", Code: "fmt.Println(\"hi\")\n"}},
		},
		{
			name: "code box with malformed escape",
			html: `<figure class="code-box"><pre data-lang="python" codecontent="100%"></pre></figure>`,
			want: []Node{&Code{Lang: "python", Code: "100%"}},
		},
		{
			name: "code box decodes valid escapes around a malformed one",
			html: `<figure class="code-box"><pre data-lang="python" codecontent="print(%22a%22, 100%, %zz)"></pre></figure>`,
			want: []Node{&Code{Lang: "python", Code: `print("a", 100%, %zz)`}},
		},
		{
			name: "code box without pre",
			html: `<figure class="code-box"></figure>`,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Parse(tt.html)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseUnknownColor(t *testing.T) {
	t.Parallel()

	_, err := Parse(`<p>ok <span class="color-unknown-name">x</span></p>`)
	require.ErrorIs(t, err, ErrUnknownColorName)
	assert.Contains(t, err.Error(), "unknown-name")
}

func TestParseUnrecognisedTagsRenderNothing(t *testing.T) {
	t.Parallel()

	nodes, err := Parse(`<p>a<em>b</em><i>c</i><u>d</u></p>`)
	require.NoError(t, err)
	require.Len(t, nodes, 1)

	md, err := nodes[0].Markdown()
	require.NoError(t, err)
	assert.Equal(t, "a\n\n", md)
}

func TestLenientUnescape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"%22a%22 100%", `"a" 100%`},
		{"%E4%BD%A0%", "你%"},
		{"%4", "%4"},
		{"a+b", "a+b"},
		{"%FF", "\uFFFD"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, lenientUnescape(tt.in), tt.in)
	}
}

func TestParsePreservesWhitespaceText(t *testing.T) {
	t.Parallel()

	got, err := Parse("<p>a</p>\n<p>b</p>")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, txt("\n"), got[1])
}
