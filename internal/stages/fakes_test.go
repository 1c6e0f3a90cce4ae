package stages

import (
	"context"

	"github.com/dmoraru/llm-reliability-gate/internal/config"
	"github.com/dmoraru/llm-reliability-gate/internal/llm"
	"github.com/dmoraru/llm-reliability-gate/internal/models"
	"github.com/rs/zerolog"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func testConfig() *config.Config {
	return &config.Config{
		UseCase: "test",
		Thresholds: config.Thresholds{
			Deploy: 0.8,
			Warn:   0.5,
		},
		Evaluation: config.Evaluation{NumPrompts: 2},
		Elasticsearch: config.Elasticsearch{
			Host:      "localhost",
			Port:      9200,
			Index:     "trusted_docs",
			Retrieval: "text",
		},
	}
}

// fakeGateway scripts gateway behavior per call.
type fakeGateway struct {
	respond func(request llm.Request) (*llm.Response, error)
	calls   []llm.Request
}

func (f *fakeGateway) Invoke(ctx context.Context, request llm.Request) (*llm.Response, error) {
	f.calls = append(f.calls, request)
	return f.respond(request)
}

// respondWith returns a gateway yielding the given contents in call order,
// repeating the last one when calls exceed the script.
func respondWith(contents ...string) *fakeGateway {
	i := 0
	return &fakeGateway{
		respond: func(llm.Request) (*llm.Response, error) {
			content := contents[len(contents)-1]
			if i < len(contents) {
				content = contents[i]
			}
			i++
			return &llm.Response{Content: content}, nil
		},
	}
}

// fakeStore scripts evidence store behavior.
type fakeStore struct {
	searchFn func(query string, index string, limit int) ([]models.Document, error)
	sampleFn func(index string, limit int) ([]models.Document, error)
	vectorFn func(vector []float32, index string, k int) ([]models.Document, error)
	queries  []string
}

func (f *fakeStore) Search(ctx context.Context, query string, index string, limit int) ([]models.Document, error) {
	f.queries = append(f.queries, query)
	if f.searchFn == nil {
		return nil, nil
	}
	return f.searchFn(query, index, limit)
}

func (f *fakeStore) SearchVector(ctx context.Context, vector []float32, index string, k int) ([]models.Document, error) {
	if f.vectorFn == nil {
		return nil, nil
	}
	return f.vectorFn(vector, index, k)
}

func (f *fakeStore) Sample(ctx context.Context, index string, limit int) ([]models.Document, error) {
	if f.sampleFn == nil {
		return nil, nil
	}
	return f.sampleFn(index, limit)
}

func (f *fakeStore) IndexDocument(ctx context.Context, index string, id string, doc models.Document) error {
	return nil
}

func (f *fakeStore) ClearIndex(ctx context.Context, index string) error {
	return nil
}

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}
