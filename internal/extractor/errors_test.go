package extractor

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewRateLimitError_Defaults(t *testing.T) {
	base := errors.New("429 too many requests")

	err := NewRateLimitError("gemini", base, 0)
	assert.Equal(t, 60*time.Second, err.RetryAfter)
	assert.ErrorIs(t, err, base)

	err = NewRateLimitError("gemini", base, 30)
	assert.Equal(t, 30*time.Second, err.RetryAfter)
	assert.Contains(t, err.Error(), "gemini")
}

func TestParseRetryAfterHeader(t *testing.T) {
	assert.Equal(t, 0, ParseRetryAfterHeader(""))
	assert.Equal(t, 0, ParseRetryAfterHeader("Wed, 21 Oct 2026 07:28:00 GMT"))
	assert.Equal(t, 42, ParseRetryAfterHeader("42"))
}
