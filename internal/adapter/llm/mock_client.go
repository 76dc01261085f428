package llm

import (
	"context"
	"fmt"
	"strings"
)

// MockClient is a mock implementation of Generator for testing and for
// running the platform without credentials.
type MockClient struct{}

// NewMockClient creates a new mock generation client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Ensure MockClient implements Generator interface.
var _ Generator = (*MockClient)(nil)

// Generate returns a canned response shaped by the prompt. Prompts asking
// for JSON get a parseable JSON body so the writer path stays exercised.
func (m *MockClient) Generate(ctx context.Context, system, user string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	if strings.Contains(system, "JSON") {
		return `{"content": "[MOCK] Here is a LinkedIn post drafted from the brief. What do you think?", "hashtags": ["ai", "automation"]}`, nil
	}

	return fmt.Sprintf("[MOCK] Strategic brief for: %s", truncate(user, 120)), nil
}

// truncate truncates a string to the given length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
