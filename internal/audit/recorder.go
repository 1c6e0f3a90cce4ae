package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/dmoraru/llm-reliability-gate/internal/models"
	"github.com/rs/zerolog"
)

// RedisRecorder stores the full run record as JSON keyed by run id. Records
// are advisory: the pipeline treats write failures as log-and-continue.
type RedisRecorder struct {
	client *redis.Client
	logger *zerolog.Logger
}

func NewRedisRecorder(client *redis.Client, logger *zerolog.Logger) *RedisRecorder {
	return &RedisRecorder{
		client: client,
		logger: logger,
	}
}

type record struct {
	RunID     string                  `json:"run_id"`
	CreatedAt time.Time               `json:"created_at"`
	UseCase   string                  `json:"use_case"`
	Prompts   []string                `json:"prompts"`
	Responses []models.Response       `json:"responses"`
	Claims    []models.Claim          `json:"claims"`
	Verdicts  []models.Verdict        `json:"verdicts"`
	Score     *models.Score           `json:"score"`
}

func (r *RedisRecorder) Record(ctx context.Context, state *models.RunState) error {
	payload, err := json.Marshal(record{
		RunID:     state.RunID,
		CreatedAt: state.CreatedAt,
		UseCase:   state.Config.UseCase,
		Prompts:   state.Prompts,
		Responses: state.Responses,
		Claims:    state.Claims,
		Verdicts:  state.Verdicts,
		Score:     state.Score,
	})
	if err != nil {
		return fmt.Errorf("unable to encode audit record: %w", err)
	}

	key := "audit:" + state.RunID
	if err := r.client.Set(ctx, key, payload, 0).Err(); err != nil {
		return fmt.Errorf("unable to write audit record %s: %w", key, err)
	}

	r.logger.Debug().Str("key", key).Msg("audit record written")
	return nil
}
