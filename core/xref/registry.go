// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

package xref

import (
	"context"
	"fmt"
	"strconv"
)

// Registry is a typed view over a Store.
type Registry struct {
	store Store
}

func NewRegistry(store Store) *Registry {
	return &Registry{store: store}
}

// ArticleFacts are what fetching an article reveals about it.
type ArticleFacts struct {
	CVID      int64
	DynamicID string
	IsNote    bool
}

type fact struct {
	ns         Namespace
	key, value string
}

// PublishArticle records every fact about an article. Facts already known are left untouched.
func (r *Registry) PublishArticle(ctx context.Context, facts ArticleFacts) error {
	cvid := strconv.FormatInt(facts.CVID, 10)

	writes := []fact{{ArticleIsNote, cvid, strconv.FormatBool(facts.IsNote)}}

	if facts.DynamicID != "" {
		writes = append(writes,
			fact{ArticleToDynamic, cvid, facts.DynamicID},
			fact{DynamicToArticle, facts.DynamicID, cvid},
			fact{DynamicIsArticle, facts.DynamicID, "true"},
			fact{DynamicIsOpus, facts.DynamicID, "true"},
		)
	}

	for _, w := range writes {
		if _, err := r.store.SetIfAbsent(ctx, w.ns, w.key, w.value); err != nil {
			return err
		}
	}

	return nil
}

// ArticleDynamic returns the dynamic id of article cvid.
func (r *Registry) ArticleDynamic(ctx context.Context, cvid int64) (string, bool, error) {
	return r.store.Get(ctx, ArticleToDynamic, strconv.FormatInt(cvid, 10))
}

// DynamicArticle returns the article a dynamic belongs to.
func (r *Registry) DynamicArticle(ctx context.Context, dynamicID string) (int64, bool, error) {
	value, ok, err := r.store.Get(ctx, DynamicToArticle, dynamicID)
	if err != nil || !ok {
		return 0, false, err
	}

	cvid, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("xref: corrupt %s value %q: %w", DynamicToArticle, value, err)
	}

	return cvid, true, nil
}

func (r *Registry) DynamicIsArticle(ctx context.Context, dynamicID string) (bool, bool, error) {
	return r.getBool(ctx, DynamicIsArticle, dynamicID)
}

func (r *Registry) DynamicIsOpus(ctx context.Context, dynamicID string) (bool, bool, error) {
	return r.getBool(ctx, DynamicIsOpus, dynamicID)
}

func (r *Registry) ArticleIsNote(ctx context.Context, cvid int64) (bool, bool, error) {
	return r.getBool(ctx, ArticleIsNote, strconv.FormatInt(cvid, 10))
}

func (r *Registry) getBool(ctx context.Context, ns Namespace, key string) (bool, bool, error) {
	value, ok, err := r.store.Get(ctx, ns, key)
	if err != nil || !ok {
		return false, false, err
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, false, fmt.Errorf("xref: corrupt %s value %q: %w", ns, value, err)
	}

	return b, true, nil
}
