package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

type JobStatus string

const (
	// StatusPending is the status of a job that has to be attempted again.
	StatusPending JobStatus = ""
	StatusDone    JobStatus = "done"
	StatusDead    JobStatus = "dead"
)

// cancelledRetryDelay is how long a job interrupted by shutdown waits
// before it becomes ready again.
const cancelledRetryDelay = 5 * time.Second

var ErrInvalidJob = errors.New("job is not valid")

// JobSpec is what a producer enqueues: a job type and an opaque payload
// understood by the handler registered for the type.
type JobSpec struct {
	Type    string    `json:"type"`
	Payload []byte    `json:"payload"`
	RunAt   time.Time `json:"run_at"`
}

// Job is a JobSpec together with its execution history.
type Job struct {
	ID ulid.ULID `json:"id"`
	JobSpec

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	AttemptsDone  int       `json:"attempts_done"`
	Status        JobStatus `json:"-"`
	LastAttemptAt time.Time `json:"last_attempt_at,omitempty"`
	LastError     string    `json:"last_error,omitempty"`
}

// NewJob validates spec and stamps it with an id and timestamps. Job types
// are case insensitive.
func NewJob(spec JobSpec) (Job, error) {
	spec.Type = strings.ToLower(strings.TrimSpace(spec.Type))
	if spec.Type == "" {
		return Job{}, fmt.Errorf("%w: job type must be set", ErrInvalidJob)
	}

	now := time.Now()
	if spec.RunAt.IsZero() {
		spec.RunAt = now
	}

	return Job{
		ID:        ulid.Make(),
		JobSpec:   spec,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Attempt runs h for the job and records the outcome on the job. A panic
// inside the handler kills the job; a RetryableError reschedules it while
// attempts remain.
func (j *Job) Attempt(ctx context.Context, now time.Time, h JobHandler) {
	defer func() {
		if v := recover(); v != nil {
			j.Status = StatusDead
			j.LastError = fmt.Sprintf("panic: %v", v)
		}
		j.AttemptsDone++
		j.LastAttemptAt = now
		j.UpdatedAt = now
	}()

	if err := ctx.Err(); err != nil {
		j.RunAt = now.Add(cancelledRetryDelay)
		j.LastError = fmt.Sprintf("canceled: %v", err)
		return
	}

	runCtx, cancel := context.WithTimeout(ctx, h.Opts.Timeout)
	defer cancel()

	err := h.Handle(runCtx, j.JobSpec)
	if err == nil {
		j.Status = StatusDone
		return
	}

	j.LastError = err.Error()
	attempt := j.AttemptsDone + 1
	if IsRetryable(err) && attempt < h.Opts.MaxAttempts {
		j.RunAt = now.Add(h.Opts.Backoff.Backoff(attempt))
		return
	}
	j.Status = StatusDead
}
