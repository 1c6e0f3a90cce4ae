package evidence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"
	"github.com/dmoraru/llm-reliability-gate/internal/models"
	"github.com/rs/zerolog"
)

// ElasticStore is the Elasticsearch-backed Store.
type ElasticStore struct {
	client *elasticsearch.Client
	logger *zerolog.Logger
}

func NewElasticStore(host string, port int, logger *zerolog.Logger) (*ElasticStore, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{fmt.Sprintf("http://%s:%d", host, port)},
	})
	if err != nil {
		return nil, fmt.Errorf("unable to create elasticsearch client: %w", err)
	}

	return &ElasticStore{
		client: client,
		logger: logger,
	}, nil
}

type searchHits struct {
	Hits struct {
		Hits []struct {
			Source models.Document `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (s *ElasticStore) Search(ctx context.Context, query string, index string, limit int) ([]models.Document, error) {
	body := map[string]any{
		"query": map[string]any{
			"match": map[string]any{
				"content": query,
			},
		},
		"size": limit,
	}
	return s.search(ctx, index, body)
}

func (s *ElasticStore) SearchVector(ctx context.Context, vector []float32, index string, k int) ([]models.Document, error) {
	body := map[string]any{
		"knn": map[string]any{
			"field":          "embedding",
			"query_vector":   vector,
			"k":              k,
			"num_candidates": 100,
		},
	}
	return s.search(ctx, index, body)
}

func (s *ElasticStore) Sample(ctx context.Context, index string, limit int) ([]models.Document, error) {
	body := map[string]any{
		"query": map[string]any{
			"match_all": map[string]any{},
		},
		"size": limit,
	}
	return s.search(ctx, index, body)
}

func (s *ElasticStore) search(ctx context.Context, index string, body map[string]any) ([]models.Document, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("unable to encode search body: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(index),
		s.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search returned %s", res.Status())
	}

	var hits searchHits
	if err := json.NewDecoder(res.Body).Decode(&hits); err != nil {
		return nil, fmt.Errorf("unable to decode search response: %w", err)
	}

	docs := make([]models.Document, 0, len(hits.Hits.Hits))
	for _, hit := range hits.Hits.Hits {
		docs = append(docs, hit.Source)
	}
	return docs, nil
}

func (s *ElasticStore) IndexDocument(ctx context.Context, index string, id string, doc models.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("unable to encode document: %w", err)
	}

	// Refresh makes the document searchable immediately, which matters when
	// an evaluation run follows an ingest in the same request cycle.
	res, err := s.client.Index(
		index,
		bytes.NewReader(body),
		s.client.Index.WithContext(ctx),
		s.client.Index.WithDocumentID(id),
		s.client.Index.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("index request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index returned %s", res.Status())
	}
	return nil
}

func (s *ElasticStore) ClearIndex(ctx context.Context, index string) error {
	res, err := s.client.Indices.Delete(
		[]string{index},
		s.client.Indices.Delete.WithContext(ctx),
		s.client.Indices.Delete.WithIgnoreUnavailable(true),
	)
	if err != nil {
		return fmt.Errorf("delete index request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("delete index returned %s", res.Status())
	}

	s.logger.Info().Str("index", index).Msg("index cleared")
	return nil
}
