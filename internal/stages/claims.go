package stages

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/dmoraru/llm-reliability-gate/internal/llm"
	"github.com/dmoraru/llm-reliability-gate/internal/llmjson"
	"github.com/dmoraru/llm-reliability-gate/internal/models"
	"github.com/rs/zerolog"
)

const extractionPromptTemplate = `Identify the main factual claims in the following text.
Return only a JSON list of strings, where each string is a claim.
Do not include opinions or questions.

Text: %s

Output JSON:`

// ClaimExtractor turns each non-error response into zero or more atomic
// claims. Malformed extractor output yields zero claims for that response,
// never a pipeline abort; an empty array is a valid, successful outcome.
type ClaimExtractor struct {
	gateway llm.Gateway
	logger  *zerolog.Logger
}

func NewClaimExtractor(gateway llm.Gateway, logger *zerolog.Logger) *ClaimExtractor {
	return &ClaimExtractor{
		gateway: gateway,
		logger:  logger,
	}
}

func (e *ClaimExtractor) Name() string { return "extract-claims" }

func (e *ClaimExtractor) Run(ctx context.Context, state *models.RunState) error {
	for _, response := range state.Responses {
		if response.Errored() {
			continue
		}

		prompt := fmt.Sprintf(extractionPromptTemplate, response.Text)
		resp, err := e.gateway.Invoke(ctx, llm.Request{Prompt: prompt})
		if err != nil {
			e.logger.Warn().Err(err).Msg("claim extraction call failed, skipping response")
			continue
		}

		texts, err := llmjson.StringArray(resp.Content)
		if err != nil {
			e.logger.Warn().
				Err(err).
				Str("content", truncate(resp.Content, 100)).
				Msg("unparsable extraction output, zero claims for response")
			continue
		}

		for _, text := range texts {
			state.Claims = append(state.Claims, models.Claim{
				ID:             uuid.NewString(),
				Text:           text,
				SourcePrompt:   response.Prompt,
				SourceResponse: response.Text,
			})
		}
	}

	e.logger.Info().Int("claims", len(state.Claims)).Msg("extracted claims")
	return nil
}
