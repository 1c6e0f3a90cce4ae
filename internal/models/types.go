package models

import (
	"strings"
	"time"

	"github.com/dmoraru/llm-reliability-gate/internal/config"
)

// Label is the verifier's judgement for a single claim.
type Label string

const (
	LabelSupported       Label = "supported"
	LabelWeaklySupported Label = "weakly_supported"
	LabelUnsupported     Label = "unsupported"
)

// ValidLabel reports whether s is one of the three known verdict labels.
func ValidLabel(s string) bool {
	switch Label(s) {
	case LabelSupported, LabelWeaklySupported, LabelUnsupported:
		return true
	}
	return false
}

// Decision is the deployment gate outcome for a run.
type Decision string

const (
	DecisionDeploy  Decision = "deploy"
	DecisionWarn    Decision = "warn"
	DecisionReject  Decision = "reject"
	DecisionUnknown Decision = "unknown"
)

// ErrorPrefix marks a response recorded for a failed model call. Responses
// carrying it stay in the run state for audit but are excluded from claim
// extraction.
const ErrorPrefix = "ERROR:"

// Response is one answer from the model under test.
type Response struct {
	Prompt  string `json:"prompt"`
	Text    string `json:"text"`
	IsError bool   `json:"is_error"`
}

// Errored reports whether the response records a failed model call,
// either via the flag or the reserved text marker.
func (r Response) Errored() bool {
	return r.IsError || strings.HasPrefix(r.Text, ErrorPrefix)
}

// Claim is one atomic factual statement extracted from a response.
type Claim struct {
	ID             string `json:"id"`
	Text           string `json:"text"`
	SourcePrompt   string `json:"source_prompt"`
	SourceResponse string `json:"source_response"`
}

// Document is one passage from the trusted corpus.
type Document struct {
	Content   string    `json:"content"`
	Source    string    `json:"source"`
	Embedding []float32 `json:"embedding,omitempty"`
}

// EvidenceBundle holds the passages retrieved for one claim. An empty
// Documents slice means no evidence was found and is a valid outcome.
type EvidenceBundle struct {
	Claim     Claim      `json:"claim"`
	Documents []Document `json:"documents"`
}

// Verdict is the outcome of checking one claim against its evidence.
type Verdict struct {
	ClaimText     string `json:"claim"`
	Label         Label  `json:"label"`
	Justification string `json:"justification"`
}

// Score aggregates all verdicts of a run. Decision is "unknown" only when
// TotalClaims is zero.
type Score struct {
	TotalClaims     int      `json:"total_claims"`
	Supported       int      `json:"supported"`
	WeaklySupported int      `json:"weakly_supported"`
	Unsupported     int      `json:"unsupported"`
	Reliability     float64  `json:"reliability"`
	Risk            float64  `json:"risk"`
	Decision        Decision `json:"decision"`
}

// RunState is the single mutable aggregate threaded through the pipeline.
// Each slice is populated by exactly one stage and never mutated by a later
// one. One RunState belongs to exactly one run; runs never share state.
type RunState struct {
	RunID     string           `json:"run_id"`
	CreatedAt time.Time        `json:"created_at"`
	Config    *config.Config   `json:"-"`
	Prompts   []string         `json:"prompts"`
	Responses []Response       `json:"responses"`
	Claims    []Claim          `json:"claims"`
	Evidence  []EvidenceBundle `json:"evidence"`
	Verdicts  []Verdict        `json:"verdicts"`
	Score     *Score           `json:"score,omitempty"`
}

// NewRunState returns an empty run state bound to an effective config
// snapshot. RunID and CreatedAt are stamped by the pipeline runner.
func NewRunState(cfg *config.Config) *RunState {
	return &RunState{Config: cfg}
}
