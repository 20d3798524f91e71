// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package xref records facts linking bilibili entities to each other, such as the social post
(dynamic) that every article has, or whether an article is a note.

Facts are set once per key: the first writer wins and later writes are ignored. The host
application owns the [Store] and passes a [Registry] to whatever needs it.
*/
package xref

import "context"

// Namespace partitions keys in a Store.
type Namespace string

const (
	ArticleToDynamic Namespace = "article2dynamic"
	DynamicToArticle Namespace = "dynamic2article"
	DynamicIsArticle Namespace = "dynamic_is_article"
	DynamicIsOpus    Namespace = "dynamic_is_opus"
	ArticleIsNote    Namespace = "article_is_note"
)

// Store is a set-once key/value store.
type Store interface {
	// Get returns the value stored under key and whether one exists.
	Get(ctx context.Context, ns Namespace, key string) (string, bool, error)

	// SetIfAbsent stores value unless key already has one, and reports whether it stored it.
	SetIfAbsent(ctx context.Context, ns Namespace, key, value string) (bool, error)
}
