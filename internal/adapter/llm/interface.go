package llm

import "context"

// Generator defines the interface for text generation.
type Generator interface {
	// Generate sends a single-turn generation request and returns the
	// assistant text.
	Generate(ctx context.Context, system, user string) (string, error)
}

// Ensure Client implements Generator interface.
var _ Generator = (*Client)(nil)
