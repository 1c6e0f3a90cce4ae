// Package llmjson recovers JSON values from generative model output. Models
// asked for strict JSON still wrap it in prose or markdown fences often
// enough that every call site needs the same repair: trim, unwrap the first
// fenced block if present, then parse against an explicitly accepted shape.
// Callers map a parse failure to their own conservative fallback; this
// package never guesses.
package llmjson

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StripFence returns the content of the first closed markdown code fence
// found anywhere in the text, otherwise the trimmed text unchanged. Models
// routinely lead the fence with prose ("Here is the JSON: ..."), so the
// opening marker is searched for, not anchored.
func StripFence(content string) string {
	content = strings.TrimSpace(content)

	open := strings.Index(content, "```")
	if open == -1 {
		return content
	}

	// skip the opening marker and its optional language tag
	rest := content[open+3:]
	bodyStart := strings.Index(rest, "\n")
	if bodyStart == -1 {
		return content
	}

	body := rest[bodyStart+1:]
	closing := strings.Index(body, "```")
	if closing == -1 {
		return content
	}

	return strings.TrimSpace(body[:closing])
}

// StringArray parses model output expected to be a JSON array of strings.
// An object wrapping the array under a "claims" key is also accepted, since
// models frequently produce that shape unprompted. Anything else is an error.
func StringArray(raw string) ([]string, error) {
	content := StripFence(raw)

	var arr []string
	if err := json.Unmarshal([]byte(content), &arr); err == nil {
		return arr, nil
	}

	var wrapped struct {
		Claims []string `json:"claims"`
	}
	if err := json.Unmarshal([]byte(content), &wrapped); err == nil && wrapped.Claims != nil {
		return wrapped.Claims, nil
	}

	return nil, fmt.Errorf("output is neither a string array nor a claims object")
}

// LabelObject is the strict verdict shape requested from the verifier model.
type LabelObject struct {
	Label         string `json:"label"`
	Justification string `json:"justification"`
}

// VerdictObject parses model output expected to be a {label, justification}
// object. The label is lowercased; validation against the known label set is
// the caller's concern.
func VerdictObject(raw string) (*LabelObject, error) {
	content := StripFence(raw)

	var obj LabelObject
	if err := json.Unmarshal([]byte(content), &obj); err != nil {
		return nil, fmt.Errorf("output is not a label object: %w", err)
	}
	if obj.Label == "" {
		return nil, fmt.Errorf("label object has no label")
	}

	obj.Label = strings.ToLower(strings.TrimSpace(obj.Label))
	return &obj, nil
}
