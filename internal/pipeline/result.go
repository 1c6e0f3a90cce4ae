package pipeline

import (
	"time"

	"github.com/dmoraru/llm-reliability-gate/internal/models"
)

// RunResult is the caller-facing shape of a completed run.
type RunResult struct {
	RunID     string        `json:"run_id"`
	Timestamp time.Time     `json:"timestamp"`
	Score     *models.Score `json:"score"`
	Details   Details       `json:"details"`
}

type Details struct {
	NumPrompts   int              `json:"num_prompts"`
	NumResponses int              `json:"num_responses"`
	NumClaims    int              `json:"num_claims"`
	Verdicts     []models.Verdict `json:"verdicts"`
}

// BuildResult projects a completed run state into the response shape.
func BuildResult(state *models.RunState) RunResult {
	return RunResult{
		RunID:     state.RunID,
		Timestamp: state.CreatedAt,
		Score:     state.Score,
		Details: Details{
			NumPrompts:   len(state.Prompts),
			NumResponses: len(state.Responses),
			NumClaims:    len(state.Claims),
			Verdicts:     state.Verdicts,
		},
	}
}
