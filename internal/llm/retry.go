package llm

import (
	"context"
	"fmt"
	"time"
)

// RetryPolicy is a bounded retry schedule decoupled from the call site so it
// can be tested without real delays. The backoff before attempt n+1 is
// n * Unit. Only errors matching Retryable are retried; everything else
// propagates immediately.
type RetryPolicy struct {
	MaxAttempts int
	Unit        time.Duration
	Retryable   func(error) bool
}

// DefaultRetryPolicy retries throttling responses up to 3 attempts.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Unit:        time.Second,
		Retryable:   IsThrottling,
	}
}

// Do runs fn under the policy.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if p.Retryable == nil || !p.Retryable(lastErr) {
			return lastErr
		}
		if attempt == p.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * p.Unit):
		}
	}
	return fmt.Errorf("max retries %d exceeded: %w", p.MaxAttempts, lastErr)
}

type retryingGateway struct {
	inner  Gateway
	policy RetryPolicy
}

// WithRetry wraps a gateway so every Invoke applies the policy.
func WithRetry(inner Gateway, policy RetryPolicy) Gateway {
	return &retryingGateway{inner: inner, policy: policy}
}

func (g *retryingGateway) Invoke(ctx context.Context, request Request) (*Response, error) {
	var resp *Response
	err := g.policy.Do(ctx, func() error {
		var invokeErr error
		resp, invokeErr = g.inner.Invoke(ctx, request)
		return invokeErr
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
