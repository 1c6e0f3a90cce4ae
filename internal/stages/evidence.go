package stages

import (
	"context"

	"github.com/dmoraru/llm-reliability-gate/internal/evidence"
	"github.com/dmoraru/llm-reliability-gate/internal/llm"
	"github.com/dmoraru/llm-reliability-gate/internal/models"
	"github.com/rs/zerolog"
)

// topEvidenceDocs caps how many passages one bundle carries.
const topEvidenceDocs = 3

// EvidenceRetriever maps each claim with non-empty text to its top passages.
// A lookup failure for one claim records an empty bundle and moves on, so a
// flaky index never costs the rest of the run.
type EvidenceRetriever struct {
	store    evidence.Store
	embedder llm.Embedder
	logger   *zerolog.Logger
}

// NewEvidenceRetriever builds the retriever. embedder may be nil when the
// retrieval mode is "text".
func NewEvidenceRetriever(store evidence.Store, embedder llm.Embedder, logger *zerolog.Logger) *EvidenceRetriever {
	return &EvidenceRetriever{
		store:    store,
		embedder: embedder,
		logger:   logger,
	}
}

func (r *EvidenceRetriever) Name() string { return "retrieve-evidence" }

func (r *EvidenceRetriever) Run(ctx context.Context, state *models.RunState) error {
	index := state.Config.Elasticsearch.Index
	mode := state.Config.Elasticsearch.Retrieval

	for _, claim := range state.Claims {
		if claim.Text == "" {
			continue
		}

		docs, err := r.lookup(ctx, claim.Text, index, mode)
		if err != nil {
			r.logger.Warn().
				Err(err).
				Str("claim", truncate(claim.Text, 40)).
				Msg("evidence lookup failed, recording empty bundle")
			docs = nil
		}

		if len(docs) > topEvidenceDocs {
			docs = docs[:topEvidenceDocs]
		}

		state.Evidence = append(state.Evidence, models.EvidenceBundle{
			Claim:     claim,
			Documents: docs,
		})
	}

	r.logger.Info().Int("bundles", len(state.Evidence)).Msg("retrieved evidence")
	return nil
}

func (r *EvidenceRetriever) lookup(ctx context.Context, query string, index string, mode string) ([]models.Document, error) {
	if mode == "vector" && r.embedder != nil {
		vector, err := r.embedder.Embed(ctx, query)
		if err != nil {
			return nil, err
		}
		return r.store.SearchVector(ctx, vector, index, topEvidenceDocs)
	}
	return r.store.Search(ctx, query, index, topEvidenceDocs)
}
