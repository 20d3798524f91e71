// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

package xref

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

var errNoDatabase = errors.New("xref: bun store requires a database")

// BunStore persists facts in a SQL table so they survive restarts.
type BunStore struct {
	db *bun.DB
}

type refModel struct {
	bun.BaseModel `bun:"table:xrefs"`

	Namespace string    `bun:"namespace,pk"`
	Key       string    `bun:"ref_key,pk"`
	Value     string    `bun:"value,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

func NewBunStore(db *bun.DB) *BunStore {
	return &BunStore{db: db}
}

// CreateSchema creates the backing table if it does not exist yet.
func (s *BunStore) CreateSchema(ctx context.Context) error {
	if s.db == nil {
		return errNoDatabase
	}

	if _, err := s.db.NewCreateTable().Model((*refModel)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("xref: create table: %w", err)
	}

	return nil
}

func (s *BunStore) Get(ctx context.Context, ns Namespace, key string) (string, bool, error) {
	if s.db == nil {
		return "", false, errNoDatabase
	}

	var model refModel

	err := s.db.NewSelect().
		Model(&model).
		Where("namespace = ?", string(ns)).
		Where("ref_key = ?", key).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}

		return "", false, fmt.Errorf("xref: get %s/%s: %w", ns, key, err)
	}

	return model.Value, true, nil
}

func (s *BunStore) SetIfAbsent(ctx context.Context, ns Namespace, key, value string) (bool, error) {
	if s.db == nil {
		return false, errNoDatabase
	}

	model := refModel{
		Namespace: string(ns),
		Key:       key,
		Value:     value,
		CreatedAt: time.Now().UTC(),
	}

	res, err := s.db.NewInsert().
		Model(&model).
		On("CONFLICT (namespace, ref_key) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("xref: set %s/%s: %w", ns, key, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("xref: set %s/%s: %w", ns, key, err)
	}

	return n > 0, nil
}
