package llm

import "context"

type Provider interface {
	// Answer returns the backend's full text response for one prompt.
	Answer(ctx context.Context, prompt string) (string, error)
	Close() error
}
