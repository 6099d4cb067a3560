package imagestore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/yanqian/skinscan/internal/domain/detection"
)

// MemoryStore keeps lesion images in memory. Useful for tests and local dev.
type MemoryStore struct {
	mu     sync.RWMutex
	images map[string][]byte
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{images: make(map[string][]byte)}
}

// Put stores a copy of data under key.
func (s *MemoryStore) Put(_ context.Context, key string, data []byte, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[key] = bytes.Clone(data)
	return nil
}

// Get returns a reader over the stored image.
func (s *MemoryStore) Get(_ context.Context, key string) (io.ReadCloser, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.images[key]
	if !ok {
		return nil, 0, fmt.Errorf("image %q not found", key)
	}
	return io.NopCloser(bytes.NewReader(data)), int64(len(data)), nil
}

// Delete removes the image; missing keys are ignored.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.images, key)
	return nil
}

var _ detection.ImageStorage = (*MemoryStore)(nil)
