package persistence

import (
	"context"
	"slices"
	"sync"
)

type MemoryBackend struct {
	mu   sync.RWMutex
	docs map[int64][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{docs: make(map[int64][]byte)}
}

func (b *MemoryBackend) Read(_ context.Context, userID int64) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, ok := b.docs[userID]
	if !ok {
		return nil, ErrNotFound
	}

	return slices.Clone(data), nil
}

func (b *MemoryBackend) Write(_ context.Context, userID int64, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.docs[userID] = slices.Clone(data)

	return nil
}
