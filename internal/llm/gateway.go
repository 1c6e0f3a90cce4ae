package llm

import (
	"context"
)

// Request is a single completion request against a generative model.
type Request struct {
	Prompt      string
	System      string
	MaxTokens   int
	Temperature float64
}

// Response is the completion returned by a gateway.
type Response struct {
	Content    string
	StopReason string
}

// Gateway invokes one named generative model. Every generative sub-task in
// the pipeline (question generation, claim extraction, claim verification)
// and the model under test itself go through this interface, which keeps the
// stages mockable in tests.
type Gateway interface {
	Invoke(ctx context.Context, request Request) (*Response, error)
}

// Embedder produces an embedding vector for a text chunk. Used by the ingest
// job and by vector-mode evidence retrieval.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
