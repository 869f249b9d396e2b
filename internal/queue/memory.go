package queue

import (
	"context"
	"sync"
)

// MemorySlots is a process-local Slots implementation for tests. Like the
// sqlite backend it refuses to write under a cancelled context.
type MemorySlots struct {
	mu   sync.Mutex
	data map[string][]byte
	err  error
	puts int
}

// NewMemorySlots creates empty in-memory slots
func NewMemorySlots() *MemorySlots {
	return &MemorySlots{data: make(map[string][]byte)}
}

func (m *MemorySlots) Get(_ context.Context, name string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, false, m.err
	}
	d, ok := m.data[name]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(d))
	copy(cp, d)
	return cp, true, nil
}

func (m *MemorySlots) Put(ctx context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if m.err != nil {
		return m.err
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	m.data[name] = cp
	m.puts++
	return nil
}

// SetError makes every subsequent Get and Put fail with err
func (m *MemorySlots) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Raw stores data directly, bypassing the queue encoding
func (m *MemorySlots) Raw(name string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[name] = data
}

// PutCount returns how many successful Put calls were made
func (m *MemorySlots) PutCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}
