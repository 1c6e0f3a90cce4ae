package llm

import (
	"errors"
	"fmt"
)

// ProviderError is a non-transient model invocation failure: bad credentials,
// exhausted quota, unknown model. It is not retried.
type ProviderError struct {
	Provider string
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ThrottlingError is a transient rate-limit rejection. It is the only error
// class the retry policy retries.
type ThrottlingError struct {
	Provider string
	Err      error
}

func (e *ThrottlingError) Error() string {
	return fmt.Sprintf("%s: throttled: %v", e.Provider, e.Err)
}

func (e *ThrottlingError) Unwrap() error { return e.Err }

// UnsupportedModelError means the requested model family has no known
// request/response mapping in the adapter.
type UnsupportedModelError struct {
	ModelID string
}

func (e *UnsupportedModelError) Error() string {
	return fmt.Sprintf("no request mapping for model %q", e.ModelID)
}

// IsThrottling reports whether err is (or wraps) a ThrottlingError.
func IsThrottling(err error) bool {
	var t *ThrottlingError
	return errors.As(err, &t)
}
