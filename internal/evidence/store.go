package evidence

import (
	"context"

	"github.com/dmoraru/llm-reliability-gate/internal/models"
)

// Store looks up passages in the trusted corpus. An empty result is success,
// not an error.
type Store interface {
	// Search runs a lexical match against passage content.
	Search(ctx context.Context, query string, index string, limit int) ([]models.Document, error)
	// SearchVector runs a kNN query against the embedding field.
	SearchVector(ctx context.Context, vector []float32, index string, k int) ([]models.Document, error)
	// Sample returns up to limit arbitrary passages, used to seed prompt
	// generation with corpus context.
	Sample(ctx context.Context, index string, limit int) ([]models.Document, error)
	// IndexDocument and ClearIndex are ingestion-side operations; the
	// evaluation pipeline itself never calls them.
	IndexDocument(ctx context.Context, index string, id string, doc models.Document) error
	ClearIndex(ctx context.Context, index string) error
}
