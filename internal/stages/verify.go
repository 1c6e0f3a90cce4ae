package stages

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmoraru/llm-reliability-gate/internal/llm"
	"github.com/dmoraru/llm-reliability-gate/internal/llmjson"
	"github.com/dmoraru/llm-reliability-gate/internal/models"
	"github.com/rs/zerolog"
)

const (
	// maxEvidenceChars bounds the verifier's context cost. Truncation is a
	// silent, deterministic policy, not an error.
	maxEvidenceChars = 2000

	// rawPrefixChars is how much unparsable verifier output gets embedded in
	// the diagnostic justification.
	rawPrefixChars = 200

	noEvidenceMarker = "No relevant evidence found."
)

const verificationPromptTemplate = `CRITICAL: You must return ONLY valid JSON. No conversational text, no explanations, no headers.

Instruction: Verify the following CLAIM against the provided EVIDENCE.
Labels:
- "supported": Evidence directly proves the claim.
- "weakly_supported": Evidence suggests it but isn't conclusive.
- "unsupported": Evidence contradicts or doesn't mention the claim.

EVIDENCE: %s
CLAIM: %s

Output Format (JSON only): {"label": "supported|weakly_supported|unsupported", "justification": "short explanation"}`

// ClaimVerifier judges each claim against its evidence bundle with the
// verification model. Every failure path degrades to an unsupported verdict
// with a diagnostic justification: verification failure must never be
// silently optimistic.
type ClaimVerifier struct {
	gateway llm.Gateway
	logger  *zerolog.Logger
}

func NewClaimVerifier(gateway llm.Gateway, logger *zerolog.Logger) *ClaimVerifier {
	return &ClaimVerifier{
		gateway: gateway,
		logger:  logger,
	}
}

func (v *ClaimVerifier) Name() string { return "verify-claims" }

func (v *ClaimVerifier) Run(ctx context.Context, state *models.RunState) error {
	for _, bundle := range state.Evidence {
		claimText := bundle.Claim.Text
		if claimText == "" {
			continue
		}

		evidenceBlock := buildEvidenceBlock(bundle.Documents)
		prompt := fmt.Sprintf(verificationPromptTemplate, evidenceBlock, claimText)

		resp, err := v.gateway.Invoke(ctx, llm.Request{Prompt: prompt, Temperature: 0.0})
		if err != nil {
			v.logger.Warn().Err(err).Str("claim", truncate(claimText, 40)).Msg("verifier call failed")
			state.Verdicts = append(state.Verdicts, models.Verdict{
				ClaimText:     claimText,
				Label:         models.LabelUnsupported,
				Justification: fmt.Sprintf("Error during verification: %v", err),
			})
			continue
		}

		state.Verdicts = append(state.Verdicts, v.parseVerdict(claimText, resp.Content))
	}

	v.logger.Info().Int("verdicts", len(state.Verdicts)).Msg("verified claims")
	return nil
}

func (v *ClaimVerifier) parseVerdict(claimText string, content string) models.Verdict {
	obj, err := llmjson.VerdictObject(content)
	if err != nil {
		v.logger.Warn().
			Err(err).
			Str("content", truncate(content, 100)).
			Msg("unparsable verifier output, defaulting to unsupported")
		return models.Verdict{
			ClaimText:     claimText,
			Label:         models.LabelUnsupported,
			Justification: fmt.Sprintf("Parse error on verifier response: %s", truncate(content, rawPrefixChars)),
		}
	}

	if !models.ValidLabel(obj.Label) {
		v.logger.Warn().Str("label", obj.Label).Msg("unknown verdict label, defaulting to unsupported")
		return models.Verdict{
			ClaimText:     claimText,
			Label:         models.LabelUnsupported,
			Justification: fmt.Sprintf("Invalid label %q on verifier response: %s", obj.Label, truncate(content, rawPrefixChars)),
		}
	}

	justification := obj.Justification
	if justification == "" {
		justification = "No justification provided."
	}

	return models.Verdict{
		ClaimText:     claimText,
		Label:         models.Label(obj.Label),
		Justification: justification,
	}
}

// buildEvidenceBlock joins document contents under the character budget. The
// verifier model always receives a well-formed block, even with no evidence.
func buildEvidenceBlock(docs []models.Document) string {
	contents := make([]string, 0, len(docs))
	for _, doc := range docs {
		if doc.Content != "" {
			contents = append(contents, doc.Content)
		}
	}

	block := strings.Join(contents, "\n\n")
	if block == "" {
		return noEvidenceMarker
	}
	return truncate(block, maxEvidenceChars)
}
