package repository

import (
	"context"
	"sync"
)

// MemoryBackend holds collections in process memory.
type MemoryBackend struct {
	mu       sync.RWMutex
	data     map[Collection][]byte
	readErr  error
	writeErr error
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[Collection][]byte)}
}

// FailWith makes subsequent reads and writes return the given errors; nil clears them.
func (m *MemoryBackend) FailWith(readErr, writeErr error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErr = readErr
	m.writeErr = writeErr
}

func (m *MemoryBackend) Read(ctx context.Context, c Collection) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	data, ok := m.data[c]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *MemoryBackend) Write(ctx context.Context, writes []Write) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	for _, w := range writes {
		data := make([]byte, len(w.Data))
		copy(data, w.Data)
		m.data[w.Collection] = data
	}
	return nil
}

var _ Backend = (*MemoryBackend)(nil)
