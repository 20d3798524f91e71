// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

package article

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

// Document is one parsed article.
type Document struct {
	Meta     map[string]any
	Children []Node
}

// Markdown renders YAML front matter followed by the body.
//
// Rendering is best-effort: a top-level node that fails to render is left out,
// and the failures are logged.
func (d *Document) Markdown() (string, error) {
	front, err := yaml.Marshal(d.Meta)
	if err != nil {
		return "", fmt.Errorf("failed to encode front matter: %w", err)
	}

	var (
		b       strings.Builder
		skipped *multierror.Error
	)

	b.WriteString("---\n")
	b.Write(front)
	b.WriteString("\n---\n\n")

	for _, node := range d.Children {
		md, err := node.Markdown()
		if err != nil {
			skipped = multierror.Append(skipped, err)
			continue
		}

		b.WriteString(md)
	}

	if err := skipped.ErrorOrNil(); err != nil {
		log.Debug().Err(err).Int("count", skipped.Len()).Msg("Skipped nodes while rendering Markdown")
	}

	return b.String(), nil
}

// JSON returns {"type": "Article", "meta": ..., "children": [...]}. Unlike Markdown,
// any node failure fails the whole rendering.
func (d *Document) JSON() (map[string]any, error) {
	children, err := childrenJSON(d.Children)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"type":     "Article",
		"meta":     d.Meta,
		"children": children,
	}, nil
}

// JSONBytes encodes [Document.JSON].
func (d *Document) JSONBytes() ([]byte, error) {
	obj, err := d.JSON()
	if err != nil {
		return nil, err
	}

	return json.Marshal(obj)
}

// metaFromReadInfo converts readInfo, minus its content, to plain Go values.
// Integral numbers stay int64 so that ids and timestamps survive YAML and JSON encoding intact.
func metaFromReadInfo(readInfo gjson.Result) map[string]any {
	meta := make(map[string]any)

	readInfo.ForEach(func(key, value gjson.Result) bool {
		if key.String() != "content" {
			meta[key.String()] = plainValue(value)
		}

		return true
	})

	return meta
}

func plainValue(v gjson.Result) any {
	switch v.Type {
	case gjson.Null:
		return nil
	case gjson.False:
		return false
	case gjson.True:
		return true
	case gjson.String:
		return v.Str
	case gjson.Number:
		if !strings.ContainsAny(v.Raw, ".eE") {
			if n, err := strconv.ParseInt(v.Raw, 10, 64); err == nil {
				return n
			}
		}

		return v.Num
	case gjson.JSON:
		if v.IsArray() {
			items := make([]any, 0)
			for _, item := range v.Array() {
				items = append(items, plainValue(item))
			}

			return items
		}

		obj := make(map[string]any)
		v.ForEach(func(key, value gjson.Result) bool {
			obj[key.String()] = plainValue(value)
			return true
		})

		return obj
	default:
		return nil
	}
}
