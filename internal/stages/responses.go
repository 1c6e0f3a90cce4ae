package stages

import (
	"context"

	"github.com/dmoraru/llm-reliability-gate/internal/llm"
	"github.com/dmoraru/llm-reliability-gate/internal/models"
	"github.com/rs/zerolog"
)

// ResponseCollector invokes the model under test once per prompt. A failed
// call is recorded as an error-marker response so the run keeps its full
// prompt/response ledger; downstream stages skip errored responses.
type ResponseCollector struct {
	gateway llm.Gateway
	logger  *zerolog.Logger
}

func NewResponseCollector(gateway llm.Gateway, logger *zerolog.Logger) *ResponseCollector {
	return &ResponseCollector{
		gateway: gateway,
		logger:  logger,
	}
}

func (c *ResponseCollector) Name() string { return "collect-responses" }

func (c *ResponseCollector) Run(ctx context.Context, state *models.RunState) error {
	for _, prompt := range state.Prompts {
		resp, err := c.gateway.Invoke(ctx, llm.Request{Prompt: prompt})
		if err != nil {
			c.logger.Warn().Err(err).Str("prompt", truncate(prompt, 40)).Msg("target model call failed")
			state.Responses = append(state.Responses, models.Response{
				Prompt:  prompt,
				Text:    models.ErrorPrefix + " " + err.Error(),
				IsError: true,
			})
			continue
		}

		state.Responses = append(state.Responses, models.Response{
			Prompt: prompt,
			Text:   resp.Content,
		})
	}

	c.logger.Info().Int("responses", len(state.Responses)).Msg("collected model responses")
	return nil
}
