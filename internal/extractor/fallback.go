package extractor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"publicpulse/internal/port"
)

// circuitState tracks rate-limit backoff for a single extractor.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackExtractor tries extractors in order, skipping those with open
// circuits. It implements port.DocumentExtractor.
type FallbackExtractor struct {
	extractors []port.DocumentExtractor
	circuits   []*circuitState
	names      []string
	log        *zap.Logger
}

// NewFallbackExtractor creates a FallbackExtractor from an ordered list of
// extractors and their names.
func NewFallbackExtractor(extractors []port.DocumentExtractor, names []string, log *zap.Logger) *FallbackExtractor {
	circuits := make([]*circuitState, len(extractors))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	return &FallbackExtractor{
		extractors: extractors,
		circuits:   circuits,
		names:      names,
		log:        log,
	}
}

func (f *FallbackExtractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	now := time.Now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, ex := range f.extractors {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			f.log.Warn("skipping extractor with open circuit",
				zap.String("extractor", f.names[i]),
				zap.Time("reset_at", resetAt))
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		out, err := ex.Extract(ctx, input)
		if err == nil {
			return out, nil
		}

		f.log.Warn("extractor failed",
			zap.String("extractor", f.names[i]),
			zap.Error(err))
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
		}
	}

	if lastErr == nil || allRateLimited {
		// Everything was skipped or rate limited.
		retryAfter := time.Until(earliestReset)
		if retryAfter < 0 {
			retryAfter = time.Second
		}
		return nil, NewRateLimitError("all", fmt.Errorf("all extractors rate limited"), int(retryAfter.Seconds()))
	}

	return nil, fmt.Errorf("all extractors failed: %w", lastErr)
}
