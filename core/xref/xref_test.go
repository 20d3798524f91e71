// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

package xref

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())

	sqldb, err := sql.Open("sqlite3", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqldb.Close() })

	db := bun.NewDB(sqldb, sqlitedialect.New())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, NewBunStore(db).CreateSchema(ctx))

	return db
}

func stores(t *testing.T) map[string]Store {
	t.Helper()

	return map[string]Store{
		"memory": NewMemoryStore(),
		"bun":    NewBunStore(newTestDB(t)),
	}
}

func TestStoreSetOnce(t *testing.T) {
	t.Parallel()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, ok, err := store.Get(ctx, ArticleToDynamic, "1")
			require.NoError(t, err)
			assert.False(t, ok)

			stored, err := store.SetIfAbsent(ctx, ArticleToDynamic, "1", "900")
			require.NoError(t, err)
			assert.True(t, stored)

			stored, err = store.SetIfAbsent(ctx, ArticleToDynamic, "1", "901")
			require.NoError(t, err)
			assert.False(t, stored)

			value, ok, err := store.Get(ctx, ArticleToDynamic, "1")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "900", value)

			// Namespaces do not collide.
			_, ok, err = store.Get(ctx, DynamicToArticle, "1")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestRegistryPublishArticle(t *testing.T) {
	t.Parallel()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			registry := NewRegistry(store)

			require.NoError(t, registry.PublishArticle(ctx, ArticleFacts{CVID: 42, DynamicID: "777", IsNote: true}))

			dyn, ok, err := registry.ArticleDynamic(ctx, 42)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "777", dyn)

			cvid, ok, err := registry.DynamicArticle(ctx, "777")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, int64(42), cvid)

			isArticle, ok, err := registry.DynamicIsArticle(ctx, "777")
			require.NoError(t, err)
			assert.True(t, ok && isArticle)

			isOpus, ok, err := registry.DynamicIsOpus(ctx, "777")
			require.NoError(t, err)
			assert.True(t, ok && isOpus)

			isNote, ok, err := registry.ArticleIsNote(ctx, 42)
			require.NoError(t, err)
			assert.True(t, ok && isNote)

			_, ok, err = registry.ArticleIsNote(ctx, 43)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestRegistryCorruptValue(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	_, _ = store.SetIfAbsent(context.Background(), ArticleIsNote, "5", "perhaps")

	_, _, err := NewRegistry(store).ArticleIsNote(context.Background(), 5)
	require.Error(t, err)
}

func TestMemoryStoreConcurrentSetIfAbsent(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)

	for i := range 50 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			stored, err := store.SetIfAbsent(context.Background(), DynamicToArticle, "d", fmt.Sprint(i))
			if err == nil && stored {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, 1, wins)
}
