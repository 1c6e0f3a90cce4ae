package stages

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dmoraru/llm-reliability-gate/internal/llm"
	"github.com/dmoraru/llm-reliability-gate/internal/models"
)

func TestResponseCollector_OnePerPrompt(t *testing.T) {
	gateway := &fakeGateway{
		respond: func(request llm.Request) (*llm.Response, error) {
			return &llm.Response{Content: "answer to " + request.Prompt}, nil
		},
	}
	collector := NewResponseCollector(gateway, newTestLogger())

	state := &models.RunState{
		Config:  testConfig(),
		Prompts: []string{"p1", "p2", "p3"},
	}

	if err := collector.Run(context.Background(), state); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(state.Responses) != 3 {
		t.Fatalf("expected 3 responses, got %d", len(state.Responses))
	}
	for i, response := range state.Responses {
		if response.Prompt != state.Prompts[i] {
			t.Errorf("response %d out of order: %q", i, response.Prompt)
		}
		if response.Text != "answer to "+state.Prompts[i] {
			t.Errorf("unexpected text %q", response.Text)
		}
		if response.Errored() {
			t.Errorf("response %d wrongly flagged as errored", i)
		}
	}
}

func TestResponseCollector_FailureRecordsErrorMarker(t *testing.T) {
	gateway := &fakeGateway{
		respond: func(request llm.Request) (*llm.Response, error) {
			if request.Prompt == "p2" {
				return nil, errors.New("model timed out")
			}
			return &llm.Response{Content: "fine"}, nil
		},
	}
	collector := NewResponseCollector(gateway, newTestLogger())

	state := &models.RunState{
		Config:  testConfig(),
		Prompts: []string{"p1", "p2", "p3"},
	}

	if err := collector.Run(context.Background(), state); err != nil {
		t.Fatalf("a failed call must not abort the run: %v", err)
	}
	if len(state.Responses) != 3 {
		t.Fatalf("expected 3 responses, got %d", len(state.Responses))
	}

	failed := state.Responses[1]
	if !failed.IsError || !failed.Errored() {
		t.Error("failed call should be marked as errored")
	}
	if !strings.HasPrefix(failed.Text, models.ErrorPrefix) {
		t.Errorf("errored response text should carry the marker, got %q", failed.Text)
	}
	if !strings.Contains(failed.Text, "model timed out") {
		t.Errorf("errored response should carry the cause, got %q", failed.Text)
	}
	if state.Responses[0].Errored() || state.Responses[2].Errored() {
		t.Error("healthy responses must not be flagged")
	}
}
