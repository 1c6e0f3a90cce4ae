package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/dmoraru/llm-reliability-gate/internal/llm"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Connect opens the audit store connection and verifies it with a bounded
// ping retry. Auditing is optional: callers treat an error here as
// "auditing disabled", never as a fatal cause.
func Connect(ctx context.Context, addr string, password string, maxRetries int, logger *zerolog.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DialTimeout: 5 * time.Second,
		ReadTimeout: 3 * time.Second,
	})

	policy := llm.RetryPolicy{
		MaxAttempts: maxRetries,
		Unit:        time.Second,
		Retryable:   func(error) bool { return true },
	}

	err := policy.Do(ctx, func() error {
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Str("addr", addr).Msg("audit store ping failed")
			return err
		}
		return nil
	})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("unable to reach audit store at %s: %w", addr, err)
	}

	logger.Info().Str("addr", addr).Msg("audit store connected")
	return client, nil
}
