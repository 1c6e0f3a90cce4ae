package stages

import (
	"context"

	"github.com/dmoraru/llm-reliability-gate/internal/models"
	"github.com/rs/zerolog"
)

// RiskScorer folds the verdict multiset into a reliability score and the
// deployment decision. Pure apart from logging; identical verdicts always
// yield an identical Score.
type RiskScorer struct {
	logger *zerolog.Logger
}

func NewRiskScorer(logger *zerolog.Logger) *RiskScorer {
	return &RiskScorer{logger: logger}
}

func (s *RiskScorer) Name() string { return "score-risk" }

func (s *RiskScorer) Run(ctx context.Context, state *models.RunState) error {
	score := Compute(state.Verdicts, state.Config.Thresholds.Deploy, state.Config.Thresholds.Warn)
	state.Score = &score

	s.logger.Info().
		Int("total_claims", score.TotalClaims).
		Float64("reliability", score.Reliability).
		Float64("risk", score.Risk).
		Str("decision", string(score.Decision)).
		Msg("scoring complete")
	return nil
}

// Compute derives the Score from a verdict multiset and the two reliability
// thresholds. An empty multiset yields the "unknown" sentinel, which only
// happens when no claims were ever produced and must stay distinguishable
// from a genuinely reliable run. Thresholds gate on reliability, never on
// risk.
func Compute(verdicts []models.Verdict, deployThreshold float64, warnThreshold float64) models.Score {
	if len(verdicts) == 0 {
		return models.Score{
			Decision: models.DecisionUnknown,
			Risk:     0.0,
		}
	}

	score := models.Score{TotalClaims: len(verdicts)}
	for _, verdict := range verdicts {
		switch verdict.Label {
		case models.LabelSupported:
			score.Supported++
		case models.LabelWeaklySupported:
			score.WeaklySupported++
		default:
			score.Unsupported++
		}
	}

	total := float64(score.TotalClaims)
	score.Reliability = (float64(score.Supported) + 0.5*float64(score.WeaklySupported)) / total
	score.Risk = 1.0 - score.Reliability

	switch {
	case score.Reliability >= deployThreshold:
		score.Decision = models.DecisionDeploy
	case score.Reliability >= warnThreshold:
		score.Decision = models.DecisionWarn
	default:
		score.Decision = models.DecisionReject
	}

	return score
}
