// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

package article

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	reFontSize = regexp.MustCompile(`font-size-(\d\d)`)
	reColor    = regexp.MustCompile(`color-(.*);?`)

	lowerCaser = cases.Lower(language.Und)
)

// Parse converts the editor HTML of an article body into nodes.
//
// Empty links become [UnresolvedLink] placeholders; run [Resolve] before rendering.
// The only content error is a colour class outside the editor palette.
func Parse(content string) ([]Node, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<div>" + content + "</div>"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse article content: %w", err)
	}

	return parseContents(doc.Find("body > div").First())
}

func parseContents(sel *goquery.Selection) ([]Node, error) {
	var (
		nodes []Node
		err   error
	)

	sel.Contents().EachWithBreak(func(_ int, child *goquery.Selection) bool {
		var parsed []Node

		parsed, err = parseNode(child)
		if err != nil {
			return false
		}

		nodes = append(nodes, parsed...)

		return true
	})

	if err != nil {
		return nil, err
	}

	return nodes, nil
}

func parseNode(s *goquery.Selection) ([]Node, error) {
	n := s.Get(0)

	switch n.Type {
	case html.TextNode:
		return []Node{&Text{Text: n.Data}}, nil
	case html.ElementNode:
		return parseElement(s, n.Data)
	default:
		// comments and doctypes
		return nil, nil
	}
}

//nolint:cyclop // one case per tag
func parseElement(s *goquery.Selection, tag string) ([]Node, error) {
	switch tag {
	case "p":
		children, err := parseContents(s)
		if err != nil {
			return nil, err
		}

		return []Node{&Paragraph{Align: paragraphAlign(s), Children: children}}, nil

	case "h1":
		return wrap(s, func(c []Node) Node { return &Heading{Children: c} })

	case "strong":
		return wrap(s, func(c []Node) Node { return &Bold{Children: c} })

	case "span":
		return parseSpan(s)

	case "blockquote":
		return wrap(s, func(c []Node) Node { return &Blockquote{Children: c} })

	case "figure":
		return parseFigure(s), nil

	case "ol":
		return wrap(s, func(c []Node) Node { return &OrderedList{Children: c} })

	case "ul":
		return wrap(s, func(c []Node) Node { return &UnorderedList{Children: c} })

	case "li":
		return wrap(s, func(c []Node) Node { return &ListItem{Children: c} })

	case "a":
		href := s.AttrOr("href", "")

		contents := s.Contents()
		if contents.Length() == 0 {
			return []Node{&UnresolvedLink{Href: href}}, nil
		}

		return []Node{&Anchor{URL: href, Text: firstContentText(contents)}}, nil

	case "img":
		if classTokens(s).Contains("latex") {
			return []Node{&Latex{Code: lenientUnescape(s.AttrOr("alt", ""))}}, nil
		}

		return []Node{&Image{URL: imageSource(s)}}, nil

	case "div":
		return parseContents(s)

	default:
		return nil, nil
	}
}

func wrap(s *goquery.Selection, build func([]Node) Node) ([]Node, error) {
	children, err := parseContents(s)
	if err != nil {
		return nil, err
	}

	return []Node{build(children)}, nil
}

func paragraphAlign(s *goquery.Selection) Align {
	style := s.AttrOr("style", "")

	switch {
	case strings.Contains(style, "text-align: center"):
		return AlignCenter
	case strings.Contains(style, "text-align: right"):
		return AlignRight
	default:
		return AlignLeft
	}
}

// parseSpan handles the editor's inline styles. Spans that carry no recognised
// style are dropped when empty and flattened into the parent otherwise.
func parseSpan(s *goquery.Selection) ([]Node, error) {
	if style, ok := s.Attr("style"); ok {
		if strings.Contains(style, "text-decoration: line-through") {
			return wrap(s, func(c []Node) Node { return &Del{Children: c} })
		}

		return flattenNonEmpty(s)
	}

	fields := strings.Fields(s.AttrOr("class", ""))
	if len(fields) == 0 {
		return flattenNonEmpty(s)
	}

	className := fields[0]

	switch {
	case strings.Contains(className, "font-size"):
		m := reFontSize.FindStringSubmatch(className)
		if m == nil {
			log.Debug().Str("class", className).Msg("Font size class without a size, flattening")
			return flattenNonEmpty(s)
		}

		size, _ := strconv.Atoi(m[1])

		return wrap(s, func(c []Node) Node { return &FontSize{Size: size, Children: c} })

	case strings.Contains(className, "color"):
		m := reColor.FindStringSubmatch(className)
		if m == nil {
			return flattenNonEmpty(s)
		}

		name := strings.TrimSuffix(m[1], ";")

		hex, ok := colorPalette[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColorName, name)
		}

		return wrap(s, func(c []Node) Node { return &Color{Color: hex, Children: c} })

	default:
		return flattenNonEmpty(s)
	}
}

func flattenNonEmpty(s *goquery.Selection) ([]Node, error) {
	if s.Text() == "" {
		return nil, nil
	}

	return parseContents(s)
}

func parseFigure(s *goquery.Selection) []Node {
	classes := classTokens(s)

	switch {
	case classes.Contains("img-box"):
		return parseImageBox(s)
	case classes.Contains("code-box"):
		return parseCodeBox(s)
	default:
		return nil
	}
}

// parseImageBox emits separators, cards and images from an <figure class="img-box">.
// One figure may yield several of them.
func parseImageBox(figure *goquery.Selection) []Node {
	img := figure.Find("img").First()
	if img.Length() == 0 {
		return nil
	}

	if _, ok := img.Attr("class"); !ok {
		return []Node{captionedImage(figure, img)}
	}

	classes := classTokens(img)

	var nodes []Node

	if classes.Contains("cut-off") {
		nodes = append(nodes, &Separator{})
	}

	if aid, ok := img.Attr("aid"); ok {
		nodes = append(nodes, parseCards(classes, aid)...)
	}

	if classes.Contains("seamless") {
		nodes = append(nodes, captionedImage(figure, img))
	}

	return nodes
}

func parseCards(classes mapset.Set[string], aid string) []Node {
	var nodes []Node

	switch {
	case classes.Contains("video-card"):
		for _, id := range strings.Split(aid, ",") {
			if v, ok := parseCardID(id, 0); ok {
				nodes = append(nodes, &VideoCard{AID: v})
			}
		}

	case classes.Contains("article-card"):
		if v, ok := parseCardID(aid, 0); ok {
			nodes = append(nodes, &ArticleCard{CVID: v})
		}

	case classes.Contains("fanju-card"):
		if v, ok := parseCardID(aid, 2); ok {
			nodes = append(nodes, &BangumiCard{EPID: v})
		}

	case classes.Contains("music-card"):
		if v, ok := parseCardID(aid, 2); ok {
			nodes = append(nodes, &MusicCard{AUID: v})
		}

	case classes.Contains("shop-card"):
		if v, ok := parseCardID(aid, 2); ok {
			nodes = append(nodes, &ShopCard{PWID: v})
		}

	case classes.Contains("caricature-card"):
		for _, id := range strings.Split(aid, ",") {
			if v, ok := parseCardID(id, 0); ok {
				nodes = append(nodes, &ComicCard{MCID: v})
			}
		}

	case classes.Contains("live-card"):
		if v, ok := parseCardID(aid, 0); ok {
			nodes = append(nodes, &LiveCard{RoomID: v})
		}
	}

	return nodes
}

// parseCardID drops a fixed-length prefix ("ep", "au", "pw") before parsing.
func parseCardID(raw string, prefixLen int) (int64, bool) {
	raw = strings.TrimSpace(raw)
	if len(raw) < prefixLen {
		return 0, false
	}

	id, err := strconv.ParseInt(raw[prefixLen:], 10, 64)
	if err != nil {
		log.Debug().Str("aid", raw).Err(err).Msg("Skipping card with malformed id")
		return 0, false
	}

	return id, true
}

func captionedImage(figure, img *goquery.Selection) *Image {
	node := &Image{URL: imageSource(img)}

	if caption := figure.Find("figcaption").First(); caption.Length() > 0 {
		if contents := caption.Contents(); contents.Length() > 0 {
			node.Alt = firstContentText(contents)
		}
	}

	return node
}

func parseCodeBox(figure *goquery.Selection) []Node {
	pre := figure.Find("pre").First()
	if pre.Length() == 0 {
		return nil
	}

	lang, _, _ := strings.Cut(pre.AttrOr("data-lang", ""), "@")

	return []Node{&Code{
		Lang: lowerCaser.String(lang),
		Code: lenientUnescape(pre.AttrOr("codecontent", "")),
	}}
}

func imageSource(img *goquery.Selection) string {
	if src, ok := img.Attr("data-src"); ok {
		return src
	}

	return img.AttrOr("src", "")
}

func classTokens(s *goquery.Selection) mapset.Set[string] {
	return mapset.NewThreadUnsafeSet(strings.Fields(s.AttrOr("class", ""))...)
}

// firstContentText returns the first child's text: the data of a text node, or an element's text.
func firstContentText(contents *goquery.Selection) string {
	first := contents.First()
	if n := first.Get(0); n.Type == html.TextNode {
		return n.Data
	}

	return first.Text()
}

// lenientUnescape percent-decodes s escape by escape. Malformed escapes are kept as written and
// invalid UTF-8 becomes U+FFFD.
func lenientUnescape(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}

	buf := make([]byte, 0, len(s))

	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			buf = append(buf, unhex(s[i+1])<<4|unhex(s[i+2]))
			i += 2

			continue
		}

		buf = append(buf, s[i])
	}

	return strings.ToValidUTF8(string(buf), "\uFFFD")
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case c >= 'a':
		return c - 'a' + 10
	case c >= 'A':
		return c - 'A' + 10
	default:
		return c - '0'
	}
}
