package openfoodfacts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewRateLimiter_Unlimited(t *testing.T) {
	r := NewRateLimiter(RateLimitConfig{})
	for i := 0; i < 100; i++ {
		assert.True(t, r.Allow())
	}
}

func TestRateLimiter_Burst(t *testing.T) {
	r := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 2})

	assert.True(t, r.Allow())
	assert.True(t, r.Allow())
	assert.False(t, r.Allow())
}

func TestRateLimiter_RecordRateLimitError(t *testing.T) {
	r := NewRateLimiter(RateLimitConfig{})
	r.RecordRateLimitError(time.Hour)

	assert.False(t, r.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Wait(ctx), context.DeadlineExceeded)
}

func TestRateLimiter_RecordRateLimitError_IgnoresNonPositive(t *testing.T) {
	r := NewRateLimiter(RateLimitConfig{})
	r.RecordRateLimitError(0)
	r.RecordRateLimitError(-time.Second)

	assert.True(t, r.Allow())
	assert.NoError(t, r.Wait(context.Background()))
}
