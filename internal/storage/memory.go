package storage

import (
	"context"
	"sync"
)

type memoryBlobs struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory builds an in-process adapter for development and tests.
func NewMemory() Adapter {
	return jsonAdapter{blobs: &memoryBlobs{data: make(map[string][]byte)}}
}

// NewMemoryWithRaw seeds raw documents, bypassing encoding. Tests use it to
// plant malformed JSON.
func NewMemoryWithRaw(raw map[string]string) Adapter {
	blobs := &memoryBlobs{data: make(map[string][]byte, len(raw))}
	for k, v := range raw {
		blobs.data[k] = []byte(v)
	}
	return jsonAdapter{blobs: blobs}
}

func (m *memoryBlobs) get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, true, nil
}

func (m *memoryBlobs) put(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = data
	return nil
}

func (m *memoryBlobs) del(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
