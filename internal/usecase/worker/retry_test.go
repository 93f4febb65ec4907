//go:build unit

package worker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryPolicy_NextDelay(t *testing.T) {
	policy := RetryPolicy{
		MaxAttempts:   5,
		InitialDelay:  10 * time.Second,
		MaxDelay:      time.Minute,
		BackoffFactor: 2,
	}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{attempt: 0, want: 10 * time.Second},
		{attempt: 1, want: 10 * time.Second},
		{attempt: 2, want: 20 * time.Second},
		{attempt: 3, want: 40 * time.Second},
		{attempt: 4, want: time.Minute},
		{attempt: 80, want: time.Minute},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, policy.NextDelay(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestRetryPolicy_Defaults(t *testing.T) {
	var policy RetryPolicy
	assert.Equal(t, time.Second, policy.NextDelay(1))
	assert.Equal(t, 2*time.Second, policy.NextDelay(2))
	assert.False(t, policy.Exhausted(100), "zero MaxAttempts retries forever")
}

func TestRetryPolicy_Exhausted(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3}
	assert.False(t, policy.Exhausted(1))
	assert.False(t, policy.Exhausted(2))
	assert.True(t, policy.Exhausted(3))
	assert.True(t, policy.Exhausted(4))
}
