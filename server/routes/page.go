// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

var (
	markdownRenderer = goldmark.New(goldmark.WithExtensions(extension.GFM, meta.Meta))

	articlePageTemplate = template.Must(template.New("article").Parse(`<!DOCTYPE html>
<html lang="zh">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{ .Title }}</title>
</head>
<body>
<article>
{{ if .Title }}<h1>{{ .Title }}</h1>{{ end }}
{{ if .Author }}<p class="author">{{ .Author }}</p>{{ end }}
{{ .Body }}
</article>
</body>
</html>
`))
)

type articlePage struct {
	Title  string
	Author string
	Body   template.HTML
}

// renderArticlePage converts article Markdown, front matter included, to a full HTML page.
func renderArticlePage(source []byte) ([]byte, error) {
	ctx := parser.NewContext()
	doc := markdownRenderer.Parser().Parse(text.NewReader(source), parser.WithContext(ctx))

	frontMatter, err := meta.TryGet(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read front matter: %w", err)
	}

	var body bytes.Buffer
	if err := markdownRenderer.Renderer().Render(&body, source, doc); err != nil {
		return nil, fmt.Errorf("failed to render markdown: %w", err)
	}

	page := articlePage{
		Title: stringField(frontMatter, "title"),
		// The renderer omits raw HTML found in the source.
		Body: template.HTML(body.String()), // #nosec G203
	}

	if author, ok := frontMatter["author"].(map[any]any); ok {
		page.Author = fmt.Sprint(author["name"])
	}

	var out bytes.Buffer
	if err := articlePageTemplate.Execute(&out, page); err != nil {
		return nil, fmt.Errorf("failed to render page: %w", err)
	}

	return out.Bytes(), nil
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key]; ok && v != nil {
		return fmt.Sprint(v)
	}

	return ""
}
