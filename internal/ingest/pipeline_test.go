package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmoraru/llm-reliability-gate/internal/config"
	"github.com/dmoraru/llm-reliability-gate/internal/models"
	"github.com/rs/zerolog"
)

func testLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

type recordingStore struct {
	docs     []models.Document
	cleared  []string
	indexErr error
	clearErr error
}

func (s *recordingStore) Search(ctx context.Context, query string, index string, limit int) ([]models.Document, error) {
	return nil, nil
}

func (s *recordingStore) SearchVector(ctx context.Context, vector []float32, index string, k int) ([]models.Document, error) {
	return nil, nil
}

func (s *recordingStore) Sample(ctx context.Context, index string, limit int) ([]models.Document, error) {
	return nil, nil
}

func (s *recordingStore) IndexDocument(ctx context.Context, index string, id string, doc models.Document) error {
	if s.indexErr != nil {
		return s.indexErr
	}
	s.docs = append(s.docs, doc)
	return nil
}

func (s *recordingStore) ClearIndex(ctx context.Context, index string) error {
	if s.clearErr != nil {
		return s.clearErr
	}
	s.cleared = append(s.cleared, index)
	return nil
}

type stubEmbedder struct {
	vector []float32
	err    error
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.vector, nil
}

func docsDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return dir
}

func ingestConfig(dir string) *config.Config {
	return &config.Config{
		Elasticsearch: config.Elasticsearch{Index: "trusted_docs"},
		DocSources:    []config.DocSource{{Type: "file", Path: dir}},
	}
}

func TestIngestor_IndexesMarkdownAndText(t *testing.T) {
	dir := docsDir(t, map[string]string{
		"guide.md":   "The timeout defaults to 30 seconds.",
		"notes.txt":  "Retries are capped at three attempts.",
		"image.png":  "binary noise",
		"other.json": `{"skipped": true}`,
	})

	store := &recordingStore{}
	ingestor := NewIngestor(store, nil, ingestConfig(dir), testLogger())

	stats, err := ingestor.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.Indexed != 2 {
		t.Errorf("expected 2 indexed chunks, got %d", stats.Indexed)
	}
	if stats.Errors != 0 {
		t.Errorf("expected 0 errors, got %d", stats.Errors)
	}
	for _, doc := range store.docs {
		if doc.Source == "" {
			t.Error("indexed document lost its source path")
		}
	}
}

func TestIngestor_ClearFirst(t *testing.T) {
	dir := docsDir(t, map[string]string{"doc.md": "content"})
	store := &recordingStore{}
	ingestor := NewIngestor(store, nil, ingestConfig(dir), testLogger())

	if _, err := ingestor.Run(context.Background(), true); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(store.cleared) != 1 || store.cleared[0] != "trusted_docs" {
		t.Errorf("expected the index to be cleared, got %v", store.cleared)
	}
}

func TestIngestor_ClearFailureAborts(t *testing.T) {
	dir := docsDir(t, map[string]string{"doc.md": "content"})
	store := &recordingStore{clearErr: errors.New("index locked")}
	ingestor := NewIngestor(store, nil, ingestConfig(dir), testLogger())

	if _, err := ingestor.Run(context.Background(), true); err == nil {
		t.Error("expected an error when the index cannot be cleared")
	}
	if len(store.docs) != 0 {
		t.Errorf("nothing should be indexed after a clear failure, got %d docs", len(store.docs))
	}
}

func TestIngestor_EmbedsChunks(t *testing.T) {
	dir := docsDir(t, map[string]string{"doc.md": "content"})
	store := &recordingStore{}
	embedder := &stubEmbedder{vector: []float32{0.1, 0.2}}
	ingestor := NewIngestor(store, embedder, ingestConfig(dir), testLogger())

	if _, err := ingestor.Run(context.Background(), false); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(store.docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(store.docs))
	}
	if len(store.docs[0].Embedding) != 2 {
		t.Errorf("expected the embedding to be attached, got %v", store.docs[0].Embedding)
	}
}

func TestIngestor_EmbedFailureStillIndexes(t *testing.T) {
	dir := docsDir(t, map[string]string{"doc.md": "content"})
	store := &recordingStore{}
	embedder := &stubEmbedder{err: errors.New("embedding model down")}
	ingestor := NewIngestor(store, embedder, ingestConfig(dir), testLogger())

	stats, err := ingestor.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.Indexed != 1 {
		t.Errorf("chunk should be indexed without a vector, got %d indexed", stats.Indexed)
	}
	if len(store.docs) != 1 || store.docs[0].Embedding != nil {
		t.Errorf("expected a vectorless document, got %+v", store.docs)
	}
}

func TestIngestor_IndexFailuresCounted(t *testing.T) {
	dir := docsDir(t, map[string]string{"doc.md": "content"})
	store := &recordingStore{indexErr: errors.New("mapping conflict")}
	ingestor := NewIngestor(store, nil, ingestConfig(dir), testLogger())

	stats, err := ingestor.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("per-chunk failures must not abort the run: %v", err)
	}
	if stats.Indexed != 0 || stats.Errors != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestIngestor_UnsupportedSourceSkipped(t *testing.T) {
	cfg := &config.Config{
		Elasticsearch: config.Elasticsearch{Index: "trusted_docs"},
		DocSources:    []config.DocSource{{Type: "s3", Path: "bucket://docs"}},
	}
	store := &recordingStore{}
	ingestor := NewIngestor(store, nil, cfg, testLogger())

	stats, err := ingestor.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.Indexed != 0 || stats.Errors != 0 {
		t.Errorf("unsupported sources are skipped, got %+v", stats)
	}
}

func TestChunkText_MergesAndSplits(t *testing.T) {
	small := "Paragraph one.\n\nParagraph two."
	chunks := chunkText(small)
	if len(chunks) != 1 {
		t.Fatalf("small paragraphs should merge into 1 chunk, got %d", len(chunks))
	}
	if !strings.Contains(chunks[0], "Paragraph one.") || !strings.Contains(chunks[0], "Paragraph two.") {
		t.Errorf("merged chunk missing content: %q", chunks[0])
	}

	big := strings.Repeat("a", 1000) + "\n\n" + strings.Repeat("b", 1000)
	chunks = chunkText(big)
	if len(chunks) != 2 {
		t.Errorf("oversized paragraphs should split, got %d chunks", len(chunks))
	}

	if got := chunkText("\n\n  \n\n"); got != nil {
		t.Errorf("whitespace-only input should yield no chunks, got %v", got)
	}
}
