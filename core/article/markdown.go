// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

package article

import (
	"fmt"
	"html"
	"net/url"
	"strconv"
	"strings"
)

// markdownEscaper escapes the characters that bilibili's Markdown flavour treats specially.
// The backslash itself is listed, so no character is escaped twice.
var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`|`, `\|`,
	`~`, `\~`,
	`_`, `\_`,
)

// whitespaceReplacer maps tabs, spaces and no-break spaces to &emsp; so indentation survives rendering.
var whitespaceReplacer = strings.NewReplacer(
	"\t", "&emsp;",
	" ", "&emsp;",
	"\u00a0", "&emsp;",
)

func renderChildren(nodes []Node) (string, error) {
	var b strings.Builder

	for _, node := range nodes {
		md, err := node.Markdown()
		if err != nil {
			return "", err
		}

		b.WriteString(md)
	}

	return b.String(), nil
}

// wrapInline renders children between prefix and suffix, or nothing when they render empty.
func wrapInline(nodes []Node, prefix, suffix string) (string, error) {
	text, err := renderChildren(nodes)
	if err != nil || text == "" {
		return "", err
	}

	return prefix + text + suffix, nil
}

func (n *Paragraph) Markdown() (string, error) {
	text, err := renderChildren(n.Children)
	if err != nil {
		return "", err
	}

	return text + "\n\n", nil
}

func (n *Heading) Markdown() (string, error) {
	return wrapInline(n.Children, "## ", "\n\n")
}

func (n *Bold) Markdown() (string, error) {
	text, err := renderChildren(n.Children)
	if err != nil || text == "" {
		return "", err
	}

	return " **" + strings.TrimSpace(text) + "** ", nil
}

func (n *Italic) Markdown() (string, error) {
	return wrapInline(n.Children, " *", "* ")
}

func (n *Del) Markdown() (string, error) {
	return wrapInline(n.Children, " ~~", "~~ ")
}

func (n *Underline) Markdown() (string, error) {
	return wrapInline(n.Children, ` $\underline{`, `}$ `)
}

func (n *Blockquote) Markdown() (string, error) {
	text, err := renderChildren(n.Children)
	if err != nil {
		return "", err
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = "> " + line
	}

	return strings.Join(lines, "\n") + "\n\n", nil
}

func (n *UnorderedList) Markdown() (string, error) {
	items := make([]string, 0, len(n.Children))

	for _, child := range n.Children {
		md, err := child.Markdown()
		if err != nil {
			return "", err
		}

		items = append(items, "- "+md)
	}

	return strings.Join(items, "\n"), nil
}

func (n *OrderedList) Markdown() (string, error) {
	items := make([]string, 0, len(n.Children))

	for i, child := range n.Children {
		md, err := child.Markdown()
		if err != nil {
			return "", err
		}

		items = append(items, strconv.Itoa(i+1)+". "+md)
	}

	return strings.Join(items, "\n"), nil
}

func (n *ListItem) Markdown() (string, error) { return renderChildren(n.Children) }

func (n *Color) Markdown() (string, error) { return renderChildren(n.Children) }

func (n *FontSize) Markdown() (string, error) { return renderChildren(n.Children) }

func (n *Text) Markdown() (string, error) {
	return markdownEscaper.Replace(whitespaceReplacer.Replace(n.Text)), nil
}

// absoluteURL rewrites n.URL to https: once if it has no scheme.
func (n *Image) absoluteURL() (string, error) {
	n.normalize.Do(func() {
		u, err := url.Parse(n.URL)
		if err != nil {
			n.normalizeErr = fmt.Errorf("image url %q: %w", n.URL, err)
			return
		}

		if u.Scheme == "" {
			n.URL = "https:" + n.URL
		}
	})

	return n.URL, n.normalizeErr
}

func (n *Image) Markdown() (string, error) {
	u, err := n.absoluteURL()
	if err != nil {
		return "", err
	}

	return "![" + strings.ReplaceAll(n.Alt, "[", `\[`) + "](" + u + ")\n\n", nil
}

func (n *Latex) Markdown() (string, error) {
	if strings.Contains(n.Code, "\n") {
		return "$$\n" + n.Code + "\n$$", nil
	}

	return "$" + n.Code + "$", nil
}

// source unescapes HTML entities in n.Code the first time it is called.
func (n *Code) source() string {
	n.unescape.Do(func() {
		n.Code = html.UnescapeString(n.Code)
	})

	return n.Code
}

func (n *Code) Markdown() (string, error) {
	return "```" + n.Lang + "\n" + n.source() + "\n```\n\n", nil
}

func (*Separator) Markdown() (string, error) { return "\n------\n", nil }

func (n *Anchor) Markdown() (string, error) {
	return "[" + strings.ReplaceAll(n.Text, "[", `\[`) + "](" + n.URL + ")", nil
}

func (n *VideoCard) Markdown() (string, error) {
	return fmt.Sprintf("[视频 av%d](https://www.bilibili.com/av%d)\n\n", n.AID, n.AID), nil
}

func (n *ArticleCard) Markdown() (string, error) {
	return fmt.Sprintf("[文章 cv%d](https://www.bilibili.com/read/cv%d)\n\n", n.CVID, n.CVID), nil
}

func (n *BangumiCard) Markdown() (string, error) {
	return fmt.Sprintf("[番剧 ep%d](https://www.bilibili.com/bangumi/play/ep%d)\n\n", n.EPID, n.EPID), nil
}

func (n *MusicCard) Markdown() (string, error) {
	return fmt.Sprintf("[音乐 au%d](https://www.bilibili.com/audio/au%d)\n\n", n.AUID, n.AUID), nil
}

func (n *ShopCard) Markdown() (string, error) {
	return fmt.Sprintf("[会员购 %d](https://show.bilibili.com/platform/detail.html?id=%d)\n\n", n.PWID, n.PWID), nil
}

func (n *ComicCard) Markdown() (string, error) {
	return fmt.Sprintf("[漫画 mc%d](https://manga.bilibili.com/m/detail/mc%d)\n\n", n.MCID, n.MCID), nil
}

func (n *LiveCard) Markdown() (string, error) {
	return fmt.Sprintf("[直播 %d](https://live.bilibili.com/%d)\n\n", n.RoomID, n.RoomID), nil
}

func (n *UnresolvedLink) Markdown() (string, error) {
	return "", fmt.Errorf("%w: %s", ErrUnresolvedLink, n.Href)
}
