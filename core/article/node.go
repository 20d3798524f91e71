// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

package article

import "sync"

// Node is one element of a parsed article body.
//
// The set of implementations is closed; it is one of the types declared in this file.
type Node interface {
	// Markdown renders the node and its descendants.
	Markdown() (string, error)

	// JSON returns a lossless description of the node, with a "type" discriminator.
	JSON() (map[string]any, error)

	isNode()
}

// Align is a paragraph's text alignment.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Containers.
type (
	Paragraph struct {
		Align    Align
		Children []Node
	}

	Heading struct{ Children []Node }

	Bold struct{ Children []Node }

	Italic struct{ Children []Node }

	// Del is struck-through text.
	Del struct{ Children []Node }

	Underline struct{ Children []Node }

	Blockquote struct{ Children []Node }

	UnorderedList struct{ Children []Node }

	OrderedList struct{ Children []Node }

	ListItem struct{ Children []Node }

	// Color is text in one of the editor's palette colours, stored as a hex string without '#'.
	Color struct {
		Color    string
		Children []Node
	}

	FontSize struct {
		Size     int
		Children []Node
	}
)

// Leaves.
type (
	Text struct{ Text string }

	// Image URLs without a scheme are made absolute with https: the first time the node is rendered.
	Image struct {
		URL string
		Alt string

		normalize    sync.Once
		normalizeErr error
	}

	// Latex is a formula, rendered as a block when it spans several lines.
	Latex struct{ Code string }

	// Code holds HTML-escaped source until the first render unescapes it.
	Code struct {
		Code string
		Lang string

		unescape sync.Once
	}

	Separator struct{}

	Anchor struct {
		URL  string
		Text string
	}

	VideoCard struct{ AID int64 }

	ArticleCard struct{ CVID int64 }

	BangumiCard struct{ EPID int64 }

	MusicCard struct{ AUID int64 }

	ShopCard struct{ PWID int64 }

	ComicCard struct{ MCID int64 }

	LiveCard struct{ RoomID int64 }

	// UnresolvedLink is an empty <a> awaiting [Resolve]. Rendering one is an error.
	UnresolvedLink struct{ Href string }
)

func (*Paragraph) isNode()      {}
func (*Heading) isNode()        {}
func (*Bold) isNode()           {}
func (*Italic) isNode()         {}
func (*Del) isNode()            {}
func (*Underline) isNode()      {}
func (*Blockquote) isNode()     {}
func (*UnorderedList) isNode()  {}
func (*OrderedList) isNode()    {}
func (*ListItem) isNode()       {}
func (*Color) isNode()          {}
func (*FontSize) isNode()       {}
func (*Text) isNode()           {}
func (*Image) isNode()          {}
func (*Latex) isNode()          {}
func (*Code) isNode()           {}
func (*Separator) isNode()      {}
func (*Anchor) isNode()         {}
func (*VideoCard) isNode()      {}
func (*ArticleCard) isNode()    {}
func (*BangumiCard) isNode()    {}
func (*MusicCard) isNode()      {}
func (*ShopCard) isNode()       {}
func (*ComicCard) isNode()      {}
func (*LiveCard) isNode()       {}
func (*UnresolvedLink) isNode() {}

// children returns a pointer to a container's child list, or nil for leaves.
func children(n Node) *[]Node {
	switch n := n.(type) {
	case *Paragraph:
		return &n.Children
	case *Heading:
		return &n.Children
	case *Bold:
		return &n.Children
	case *Italic:
		return &n.Children
	case *Del:
		return &n.Children
	case *Underline:
		return &n.Children
	case *Blockquote:
		return &n.Children
	case *UnorderedList:
		return &n.Children
	case *OrderedList:
		return &n.Children
	case *ListItem:
		return &n.Children
	case *Color:
		return &n.Children
	case *FontSize:
		return &n.Children
	default:
		return nil
	}
}
