// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

package xref

import (
	"context"
	"sync"
)

type memoryKey struct {
	ns  Namespace
	key string
}

// MemoryStore keeps facts for the lifetime of the process.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[memoryKey]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[memoryKey]string)}
}

func (s *MemoryStore) Get(_ context.Context, ns Namespace, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[memoryKey{ns, key}]

	return value, ok, nil
}

func (s *MemoryStore) SetIfAbsent(_ context.Context, ns Namespace, key, value string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := memoryKey{ns, key}
	if _, ok := s.values[k]; ok {
		return false, nil
	}

	s.values[k] = value

	return true, nil
}
