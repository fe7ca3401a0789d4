package worker

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrInvalidJobHandler = errors.New("job handler is not valid")

var (
	DefaultMaxAttempts                     = 3
	DefaultTimeout                         = 5 * time.Second
	DefaultBackoffStrategy BackoffStrategy = DefaultExponentialBackoff
)

// JobFunc handles one job. Returning a RetryableError asks for another
// attempt, any other error kills the job.
type JobFunc func(ctx context.Context, spec JobSpec) error

type JobHandler struct {
	Handle JobFunc
	Opts   JobOptions
}

type JobOptions struct {
	MaxAttempts int
	Timeout     time.Duration
	Backoff     BackoffStrategy
}

func (h *JobHandler) sanitize() error {
	if h.Handle == nil {
		return fmt.Errorf("%w: handle function must be set", ErrInvalidJobHandler)
	}
	if h.Opts.MaxAttempts <= 0 {
		h.Opts.MaxAttempts = DefaultMaxAttempts
	}
	if h.Opts.Timeout <= 0 {
		h.Opts.Timeout = DefaultTimeout
	}
	if h.Opts.Backoff == nil {
		h.Opts.Backoff = DefaultBackoffStrategy
	}
	return nil
}
