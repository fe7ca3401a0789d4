package worker_test

import (
	"testing"
	"time"

	"github.com/goto/lineage/pkg/worker"
	"github.com/stretchr/testify/assert"
)

func TestExponentialBackoff(t *testing.T) {
	b := worker.ExponentialBackoff{
		Multiplier:   2,
		InitialDelay: time.Second,
		MaxDelay:     10 * time.Second,
	}

	cases := []struct {
		attempt  int
		expected time.Duration
	}{
		{attempt: 0, expected: time.Second},
		{attempt: 1, expected: time.Second},
		{attempt: 2, expected: 2 * time.Second},
		{attempt: 3, expected: 4 * time.Second},
		{attempt: 5, expected: 10 * time.Second},
		{attempt: 500, expected: 10 * time.Second},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.expected, b.Backoff(tc.attempt), "attempt %d", tc.attempt)
	}
}

func TestExponentialBackoffJitter(t *testing.T) {
	b := worker.ExponentialBackoff{
		Multiplier:   1,
		InitialDelay: time.Second,
		Jitter:       0.5,
	}

	for i := 0; i < 50; i++ {
		d := b.Backoff(3)
		assert.GreaterOrEqual(t, d, time.Second)
		assert.LessOrEqual(t, d, 1500*time.Millisecond)
	}
}

func TestConstAndFuncBackoff(t *testing.T) {
	assert.Equal(t, 3*time.Second, worker.ConstBackoff{Delay: 3 * time.Second}.Backoff(7))

	f := worker.BackoffFunc(func(attempt int) time.Duration { return time.Duration(attempt) * time.Minute })
	assert.Equal(t, 2*time.Minute, f.Backoff(2))
}
