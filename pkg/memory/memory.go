package memory

import "sync"

// Memory keeps the most recent entries up to a fixed capacity
type Memory[T any] struct {
	entries  []T
	capacity int
	mu       sync.RWMutex
}

func NewMemory[T any](capacity int) *Memory[T] {
	return &Memory[T]{
		entries:  make([]T, 0, capacity),
		capacity: capacity,
	}
}

// All returns a copy of the stored entries, oldest first
func (m *Memory[T]) All() []T {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]T, len(m.entries))
	copy(out, m.entries)
	return out
}

// Last returns up to n of the newest entries, oldest first
func (m *Memory[T]) Last(n int) []T {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if n > len(m.entries) {
		n = len(m.entries)
	}
	out := make([]T, n)
	copy(out, m.entries[len(m.entries)-n:])
	return out
}

// Latest returns the newest entry
func (m *Memory[T]) Latest() (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var zero T
	if len(m.entries) == 0 {
		return zero, false
	}
	return m.entries[len(m.entries)-1], true
}

func (m *Memory[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Store appends an entry, dropping the oldest when full
func (m *Memory[T]) Store(v T) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append(m.entries, v)
	if len(m.entries) > m.capacity {
		m.entries = m.entries[1:]
	}
}
