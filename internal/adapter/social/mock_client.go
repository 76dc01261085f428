package social

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/domain"
)

// MockPoster is a mock Poster for tests and MODE=MOCK runs.
type MockPoster struct {
	mu    sync.Mutex
	posts []domain.ContentPiece

	// Err, when set, is returned by every Post call.
	Err error
}

// NewMockPoster creates a new mock poster.
func NewMockPoster() *MockPoster {
	return &MockPoster{}
}

// Ensure MockPoster implements Poster interface.
var _ Poster = (*MockPoster)(nil)

// Post records the piece and returns a fake post id.
func (m *MockPoster) Post(ctx context.Context, piece domain.ContentPiece) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	if m.Err != nil {
		return "", m.Err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.posts = append(m.posts, piece)
	return fmt.Sprintf("mock-post-%d-%d", len(m.posts), time.Now().UnixNano()), nil
}

// Posts returns the pieces posted so far.
func (m *MockPoster) Posts() []domain.ContentPiece {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.ContentPiece, len(m.posts))
	copy(out, m.posts)
	return out
}
