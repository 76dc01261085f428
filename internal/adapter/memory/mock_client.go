package memory

import (
	"context"
	"sync"
)

// MockStore is an in-memory Store for tests and MODE=MOCK runs.
type MockStore struct {
	mu      sync.Mutex
	entries map[string]Match
}

// NewMockStore creates an empty mock store.
func NewMockStore() *MockStore {
	return &MockStore{entries: make(map[string]Match)}
}

// Ensure MockStore implements Store interface.
var _ Store = (*MockStore)(nil)

// Query returns up to topK stored entries. Scores are fixed; the mock does
// no real similarity ranking.
func (m *MockStore) Query(ctx context.Context, text string, topK int) ([]Match, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	var matches []Match
	for _, e := range m.entries {
		if len(matches) >= topK {
			break
		}
		e.Score = 0.9
		matches = append(matches, e)
	}
	return matches, nil
}

// Upsert stores the entry.
func (m *MockStore) Upsert(ctx context.Context, id, content string, metadata map[string]string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[id] = Match{ID: id, Content: content, Metadata: metadata}
	return nil
}

// Len returns the number of stored entries.
func (m *MockStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
