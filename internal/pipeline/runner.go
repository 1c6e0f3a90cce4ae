package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/dmoraru/llm-reliability-gate/internal/models"
	"github.com/rs/zerolog"
)

// Stage is one transformation step over the shared run state. Stages run in
// fixed order; each populates exactly one RunState list and absorbs its own
// per-item failures. An error returned here aborts the whole run.
type Stage interface {
	Name() string
	Run(ctx context.Context, state *models.RunState) error
}

// Recorder persists the full run record after a successful scoring. Writes
// are best-effort: a failure is logged and never fails the run.
type Recorder interface {
	Record(ctx context.Context, state *models.RunState) error
}

// Runner drives the evaluation pipeline over one exclusively owned RunState.
// A caller either receives a fully populated Score or an error; partial
// results are never returned.
type Runner struct {
	stages   []Stage
	recorder Recorder
	logger   *zerolog.Logger
}

// NewRunner builds a runner. recorder may be nil when auditing is disabled.
func NewRunner(stages []Stage, recorder Recorder, logger *zerolog.Logger) *Runner {
	return &Runner{
		stages:   stages,
		recorder: recorder,
		logger:   logger,
	}
}

// Execute stamps the run identity once, then runs every stage in order. No
// stage is skipped; the first stage error aborts the run unretried.
func (r *Runner) Execute(ctx context.Context, state *models.RunState) error {
	state.RunID = uuid.NewString()
	state.CreatedAt = time.Now().UTC()

	r.logger.Info().Str("run_id", state.RunID).Str("use_case", state.Config.UseCase).Msg("starting evaluation run")

	for i, stage := range r.stages {
		r.logger.Info().Int("step", i+1).Str("stage", stage.Name()).Msg("running stage")
		if err := stage.Run(ctx, state); err != nil {
			return fmt.Errorf("stage %s failed: %w", stage.Name(), err)
		}
	}

	if state.Score == nil {
		return fmt.Errorf("pipeline completed without a score")
	}

	if r.recorder != nil {
		if err := r.recorder.Record(ctx, state); err != nil {
			r.logger.Warn().Err(err).Str("run_id", state.RunID).Msg("audit record write failed")
		}
	}

	r.logger.Info().
		Str("run_id", state.RunID).
		Str("decision", string(state.Score.Decision)).
		Float64("risk", state.Score.Risk).
		Msg("evaluation run complete")
	return nil
}
