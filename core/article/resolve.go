// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

package article

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"codeberg.org/biliread/biliread/core/linkparse"
)

// DefaultResolveConcurrency bounds concurrent link lookups for one article.
const DefaultResolveConcurrency = 4

// LinkResolver maps a link to a bilibili resource. *linkparse.Resolver implements it.
type LinkResolver interface {
	Resolve(ctx context.Context, link string) (linkparse.Resource, error)
}

// placeholder locates an UnresolvedLink: index within the slice pointed to by list.
type placeholder struct {
	list  *[]Node
	index int
	href  string
}

// Resolve replaces every UnresolvedLink in nodes with the card for the resource it points at.
//
// Lookups run concurrently, at most limit at a time, and their results are put back in
// document order. Links that fail to resolve, or resolve to a kind without a card, are dropped.
// Only cancellation of ctx is returned as an error. The backing arrays of nodes are reused.
func Resolve(ctx context.Context, nodes []Node, resolver LinkResolver, limit int) ([]Node, error) {
	var found []placeholder

	collectPlaceholders(&nodes, &found)

	if len(found) == 0 {
		return nodes, nil
	}

	if limit <= 0 {
		limit = DefaultResolveConcurrency
	}

	// slots[i] is the replacement for found[i]; nil drops the element.
	slots := make([]Node, len(found))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, ph := range found {
		g.Go(func() error {
			res, err := resolver.Resolve(gctx, ph.href)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}

				log.Debug().Err(err).Str("href", ph.href).Msg("Dropping link that could not be resolved")

				return nil
			}

			slots[i] = cardFor(res)
			if slots[i] == nil {
				log.Debug().Str("href", ph.href).Str("kind", string(res.Kind)).Msg("Dropping link to unsupported resource")
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, ph := range found {
		(*ph.list)[ph.index] = slots[i]
	}

	compact(&nodes)

	return nodes, nil
}

func collectPlaceholders(list *[]Node, found *[]placeholder) {
	for i, node := range *list {
		if link, ok := node.(*UnresolvedLink); ok {
			*found = append(*found, placeholder{list: list, index: i, href: link.Href})
			continue
		}

		if kids := children(node); kids != nil {
			collectPlaceholders(kids, found)
		}
	}
}

// compact removes the nil entries left by dropped links, at every depth.
func compact(list *[]Node) {
	kept := (*list)[:0]

	for _, node := range *list {
		if node == nil {
			continue
		}

		if kids := children(node); kids != nil {
			compact(kids)
		}

		kept = append(kept, node)
	}

	clear((*list)[len(kept):])
	*list = kept
}

func cardFor(res linkparse.Resource) Node {
	switch res.Kind {
	case linkparse.KindVideo:
		return &VideoCard{AID: res.ID}
	case linkparse.KindAudio:
		return &MusicCard{AUID: res.ID}
	case linkparse.KindLive:
		return &LiveCard{RoomID: res.ID}
	case linkparse.KindArticle:
		return &ArticleCard{CVID: res.ID}
	default:
		return nil
	}
}
