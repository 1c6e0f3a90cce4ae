package ingest

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/dmoraru/llm-reliability-gate/internal/config"
	"github.com/dmoraru/llm-reliability-gate/internal/evidence"
	"github.com/dmoraru/llm-reliability-gate/internal/llm"
	"github.com/dmoraru/llm-reliability-gate/internal/models"
	"github.com/rs/zerolog"
)

// maxChunkChars caps one indexed passage; files split on blank lines and
// paragraphs are merged up to this budget.
const maxChunkChars = 1500

// Ingestor loads trusted documentation into the evidence index: walk the
// configured sources, chunk, embed, index. It runs outside the evaluation
// pipeline and is triggered by the ingest service operation.
type Ingestor struct {
	store    evidence.Store
	embedder llm.Embedder
	cfg      *config.Config
	logger   *zerolog.Logger
}

func NewIngestor(store evidence.Store, embedder llm.Embedder, cfg *config.Config, logger *zerolog.Logger) *Ingestor {
	return &Ingestor{
		store:    store,
		embedder: embedder,
		cfg:      cfg,
		logger:   logger,
	}
}

// Stats summarizes one ingest run.
type Stats struct {
	Indexed int `json:"indexed"`
	Errors  int `json:"errors"`
}

// Run processes every configured doc source. Per-file and per-chunk failures
// are counted, logged and skipped; only an unusable index aborts.
func (i *Ingestor) Run(ctx context.Context, clearFirst bool) (Stats, error) {
	index := i.cfg.Elasticsearch.Index

	if clearFirst {
		if err := i.store.ClearIndex(ctx, index); err != nil {
			return Stats{}, err
		}
	}

	var stats Stats
	for _, source := range i.cfg.DocSources {
		if source.Type != "file" || source.Path == "" {
			i.logger.Warn().Str("type", source.Type).Str("path", source.Path).Msg("unsupported doc source, skipping")
			continue
		}
		i.ingestDir(ctx, index, source.Path, &stats)
	}

	i.logger.Info().Int("indexed", stats.Indexed).Int("errors", stats.Errors).Msg("ingest complete")
	return stats, nil
}

func (i *Ingestor) ingestDir(ctx context.Context, index string, dir string, stats *Stats) {
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".txt" && ext != ".md" {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			i.logger.Error().Err(err).Str("file", path).Msg("unable to read source file")
			stats.Errors++
			return nil
		}

		for _, chunk := range chunkText(string(content)) {
			if err := i.indexChunk(ctx, index, path, chunk); err != nil {
				i.logger.Error().Err(err).Str("file", path).Msg("unable to index chunk")
				stats.Errors++
				continue
			}
			stats.Indexed++
		}
		return nil
	})
	if err != nil {
		i.logger.Error().Err(err).Str("dir", dir).Msg("source walk failed")
		stats.Errors++
	}
}

func (i *Ingestor) indexChunk(ctx context.Context, index string, source string, chunk string) error {
	doc := models.Document{
		Content: chunk,
		Source:  source,
	}

	// Indexing proceeds without an embedding when the embedder fails; the
	// chunk stays reachable through lexical search.
	if i.embedder != nil {
		vector, err := i.embedder.Embed(ctx, chunk)
		if err != nil {
			i.logger.Warn().Err(err).Str("source", source).Msg("embedding failed, indexing without vector")
		} else {
			doc.Embedding = vector
		}
	}

	return i.store.IndexDocument(ctx, index, uuid.NewString(), doc)
}

// chunkText splits on blank lines and merges paragraphs up to the chunk
// budget. Oversized single paragraphs are kept whole.
func chunkText(text string) []string {
	paragraphs := strings.Split(text, "\n\n")

	var chunks []string
	var current strings.Builder
	for _, paragraph := range paragraphs {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}
		if current.Len() > 0 && current.Len()+len(paragraph) > maxChunkChars {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(paragraph)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
