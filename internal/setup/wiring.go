package setup

import (
	"context"
	"fmt"
	"os"

	"github.com/dmoraru/llm-reliability-gate/internal/audit"
	"github.com/dmoraru/llm-reliability-gate/internal/config"
	"github.com/dmoraru/llm-reliability-gate/internal/evidence"
	"github.com/dmoraru/llm-reliability-gate/internal/ingest"
	"github.com/dmoraru/llm-reliability-gate/internal/llm"
	"github.com/dmoraru/llm-reliability-gate/internal/llm/bedrock"
	"github.com/dmoraru/llm-reliability-gate/internal/llm/ollama"
	"github.com/dmoraru/llm-reliability-gate/internal/pipeline"
	"github.com/dmoraru/llm-reliability-gate/internal/stages"
	"github.com/rs/zerolog"
)

// NewRunner wires one evaluation pipeline from an effective config snapshot.
// Each run gets freshly constructed, explicitly injected clients; nothing is
// shared through globals.
func NewRunner(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*pipeline.Runner, error) {
	verifierClient, err := newBedrockClient(ctx, cfg.VerificationModel.ModelID)
	if err != nil {
		return nil, fmt.Errorf("failed to create verification model client: %w", err)
	}

	targetGateway, err := newTargetGateway(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create target model client: %w", err)
	}

	store, err := evidence.NewElasticStore(cfg.Elasticsearch.Host, cfg.Elasticsearch.Port, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create evidence store client: %w", err)
	}

	retry := llm.DefaultRetryPolicy()
	verifierGateway := llm.WithRetry(verifierClient, retry)
	targetGateway = llm.WithRetry(targetGateway, retry)

	var embedder llm.Embedder
	if cfg.Elasticsearch.Retrieval == "vector" {
		embedder = verifierClient
	}

	var recorder pipeline.Recorder
	if cfg.Audit.RedisAddr != "" {
		redisClient, err := audit.Connect(ctx, cfg.Audit.RedisAddr, cfg.Audit.RedisPassword, 3, logger)
		if err != nil {
			// Auditing is best-effort by contract; a missing Redis must not
			// block evaluations.
			logger.Warn().Err(err).Msg("audit store unavailable, auditing disabled for this run")
		} else {
			recorder = audit.NewRedisRecorder(redisClient, logger)
		}
	}

	pipelineStages := []pipeline.Stage{
		stages.NewPromptGenerator(verifierGateway, store, logger),
		stages.NewResponseCollector(targetGateway, logger),
		stages.NewClaimExtractor(verifierGateway, logger),
		stages.NewEvidenceRetriever(store, embedder, logger),
		stages.NewClaimVerifier(verifierGateway, logger),
		stages.NewRiskScorer(logger),
	}

	return pipeline.NewRunner(pipelineStages, recorder, logger), nil
}

// NewIngestor wires the document ingestion job.
func NewIngestor(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*ingest.Ingestor, error) {
	store, err := evidence.NewElasticStore(cfg.Elasticsearch.Host, cfg.Elasticsearch.Port, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create evidence store client: %w", err)
	}

	embedClient, err := newBedrockClient(ctx, cfg.VerificationModel.ModelID)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding client: %w", err)
	}

	return ingest.NewIngestor(store, embedClient, cfg, logger), nil
}

func newBedrockClient(ctx context.Context, modelID string) (*bedrock.Client, error) {
	region := getEnv("AWS_REGION", "us-east-1")
	return bedrock.NewClient(ctx, region, modelID)
}

func newTargetGateway(ctx context.Context, cfg *config.Config) (llm.Gateway, error) {
	switch cfg.TargetModel.Provider {
	case "bedrock":
		return newBedrockClient(ctx, cfg.TargetModel.ModelID)
	case "ollama":
		return ollama.NewClient(os.Getenv("OLLAMA_BASE_URL"), cfg.TargetModel.ModelID), nil
	default:
		return nil, fmt.Errorf("unknown target model provider %q", cfg.TargetModel.Provider)
	}
}

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}

	return value
}
