// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

package article

import "fmt"

// childrenJSON fails on the first child that fails; JSON output never drops nodes.
func childrenJSON(nodes []Node) ([]any, error) {
	out := make([]any, 0, len(nodes))

	for _, node := range nodes {
		obj, err := node.JSON()
		if err != nil {
			return nil, err
		}

		out = append(out, obj)
	}

	return out, nil
}

func containerJSON(typ string, nodes []Node, fields map[string]any) (map[string]any, error) {
	kids, err := childrenJSON(nodes)
	if err != nil {
		return nil, err
	}

	obj := map[string]any{"type": typ, "children": kids}
	for k, v := range fields {
		obj[k] = v
	}

	return obj, nil
}

func (n *Paragraph) JSON() (map[string]any, error) {
	return containerJSON("ParagraphNode", n.Children, map[string]any{"align": string(n.Align)})
}

func (n *Heading) JSON() (map[string]any, error) {
	return containerJSON("HeadingNode", n.Children, nil)
}

func (n *Bold) JSON() (map[string]any, error) {
	return containerJSON("BoldNode", n.Children, nil)
}

func (n *Italic) JSON() (map[string]any, error) {
	return containerJSON("ItalicNode", n.Children, nil)
}

func (n *Del) JSON() (map[string]any, error) {
	return containerJSON("DelNode", n.Children, nil)
}

func (n *Underline) JSON() (map[string]any, error) {
	return containerJSON("UnderlineNode", n.Children, nil)
}

func (n *Blockquote) JSON() (map[string]any, error) {
	return containerJSON("BlockquoteNode", n.Children, nil)
}

func (n *UnorderedList) JSON() (map[string]any, error) {
	return containerJSON("UlNode", n.Children, nil)
}

func (n *OrderedList) JSON() (map[string]any, error) {
	return containerJSON("OlNode", n.Children, nil)
}

func (n *ListItem) JSON() (map[string]any, error) {
	return containerJSON("LiNode", n.Children, nil)
}

func (n *Color) JSON() (map[string]any, error) {
	return containerJSON("ColorNode", n.Children, map[string]any{"color": n.Color})
}

func (n *FontSize) JSON() (map[string]any, error) {
	return containerJSON("FontSizeNode", n.Children, map[string]any{"size": n.Size})
}

func (n *Text) JSON() (map[string]any, error) {
	return map[string]any{"type": "TextNode", "text": n.Text}, nil
}

func (n *Image) JSON() (map[string]any, error) {
	u, err := n.absoluteURL()
	if err != nil {
		return nil, err
	}

	return map[string]any{"type": "ImageNode", "url": u, "alt": n.Alt}, nil
}

func (n *Latex) JSON() (map[string]any, error) {
	return map[string]any{"type": "LatexNode", "code": n.Code}, nil
}

func (n *Code) JSON() (map[string]any, error) {
	return map[string]any{"type": "CodeNode", "code": n.source(), "lang": n.Lang}, nil
}

func (*Separator) JSON() (map[string]any, error) {
	return map[string]any{"type": "SeparatorNode"}, nil
}

func (n *Anchor) JSON() (map[string]any, error) {
	return map[string]any{"type": "AnchorNode", "url": n.URL, "text": n.Text}, nil
}

func (n *VideoCard) JSON() (map[string]any, error) {
	return map[string]any{"type": "VideoCardNode", "aid": n.AID}, nil
}

func (n *ArticleCard) JSON() (map[string]any, error) {
	return map[string]any{"type": "ArticleCardNode", "cvid": n.CVID}, nil
}

func (n *BangumiCard) JSON() (map[string]any, error) {
	return map[string]any{"type": "BangumiCardNode", "epid": n.EPID}, nil
}

func (n *MusicCard) JSON() (map[string]any, error) {
	return map[string]any{"type": "MusicCardNode", "auid": n.AUID}, nil
}

func (n *ShopCard) JSON() (map[string]any, error) {
	return map[string]any{"type": "ShopCardNode", "pwid": n.PWID}, nil
}

func (n *ComicCard) JSON() (map[string]any, error) {
	return map[string]any{"type": "ComicCardNode", "mcid": n.MCID}, nil
}

func (n *LiveCard) JSON() (map[string]any, error) {
	return map[string]any{"type": "LiveCardNode", "room_id": n.RoomID}, nil
}

func (n *UnresolvedLink) JSON() (map[string]any, error) {
	return nil, fmt.Errorf("%w: %s", ErrUnresolvedLink, n.Href)
}
