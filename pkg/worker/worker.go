package worker

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/goto/salt/log"
	"golang.org/x/sync/errgroup"
)

const (
	minPollInterval = 100 * time.Millisecond
	maxIdleBackoff  = 5 * time.Second
	// jobs of an unregistered type are parked for this long
	unknownTypeDelay = 5 * time.Minute
)

// Worker polls a JobProcessor for ready jobs and dispatches them to the
// handler registered for their type.
type Worker struct {
	processor JobProcessor
	logger    log.Logger

	threads           int
	pollInterval      time.Duration
	activePollPercent float64

	mu       sync.RWMutex
	handlers map[string]JobHandler
}

type Option func(w *Worker) error

// WithRunConfig sets the number of polling threads and the base poll
// interval. Values below the minimums are raised.
func WithRunConfig(threads int, pollInterval time.Duration) Option {
	return func(w *Worker) error {
		if threads <= 0 {
			threads = 1
		}
		if pollInterval < minPollInterval {
			pollInterval = minPollInterval
		}
		w.threads = threads
		w.pollInterval = pollInterval
		return nil
	}
}

// WithActivePollPercent sets the share of threads that keep polling at the
// base interval when the queue is empty. The others back off.
func WithActivePollPercent(pct float64) Option {
	return func(w *Worker) error {
		if pct < 0 || pct > 100 {
			return fmt.Errorf("active poll percent must be within [0, 100]: %v", pct)
		}
		w.activePollPercent = pct
		return nil
	}
}

func WithLogger(l log.Logger) Option {
	return func(w *Worker) error {
		if l != nil {
			w.logger = l
		}
		return nil
	}
}

func WithJobHandler(typ string, h JobHandler) Option {
	return func(w *Worker) error {
		return w.Register(typ, h)
	}
}

func New(processor JobProcessor, opts ...Option) (*Worker, error) {
	w := &Worker{
		processor:         processor,
		logger:            log.NewNoop(),
		threads:           1,
		pollInterval:      time.Second,
		activePollPercent: 20,
		handlers:          make(map[string]JobHandler),
	}
	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, fmt.Errorf("new worker: %w", err)
		}
	}
	return w, nil
}

// Register binds a handler to a job type.
func (w *Worker) Register(typ string, h JobHandler) error {
	if err := h.sanitize(); err != nil {
		return fmt.Errorf("register handler: %w: type '%s'", err, typ)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.handlers[typ]; ok {
		return fmt.Errorf("register handler: %w: type '%s'", ErrTypeExists, typ)
	}
	w.handlers[typ] = h
	return nil
}

func (w *Worker) Enqueue(ctx context.Context, specs ...JobSpec) error {
	jobs := make([]Job, 0, len(specs))
	for _, spec := range specs {
		job, err := NewJob(spec)
		if err != nil {
			return fmt.Errorf("worker enqueue: %w", err)
		}
		jobs = append(jobs, job)
	}
	return w.processor.Enqueue(ctx, jobs...)
}

// Run blocks until ctx is done. Cancellation is a clean shutdown and
// returns nil.
func (w *Worker) Run(ctx context.Context) error {
	active := int(math.Ceil(float64(w.threads) * w.activePollPercent / 100))

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < w.threads; i++ {
		id := i
		g.Go(func() error {
			w.poll(ctx, w.backoffFor(id < active))
			w.logger.Debug("worker thread exited", "thread", id)
			return nil
		})
	}
	_ = g.Wait()

	w.logger.Info("all worker threads exited")
	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

func (w *Worker) backoffFor(activePoll bool) BackoffStrategy {
	if activePoll {
		return ConstBackoff{Delay: w.pollInterval}
	}
	return ExponentialBackoff{
		Multiplier:   1.6,
		InitialDelay: w.pollInterval,
		MaxDelay:     maxIdleBackoff,
		Jitter:       0.5,
	}
}

func (w *Worker) poll(ctx context.Context, backoff BackoffStrategy) {
	timer := time.NewTimer(w.pollInterval)
	defer timer.Stop()

	idle := 1
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		types := w.types()
		if len(types) == 0 {
			w.logger.Warn("no job handler registered, skipping poll")
			timer.Reset(backoff.Backoff(idle))
			continue
		}

		err := w.processor.Process(ctx, types, w.execute)
		switch {
		case errors.Is(err, ErrNoJob):
			idle++
		case err != nil:
			w.logger.Error("process job failed", "err", err)
			idle = 1
		default:
			idle = 1
		}
		timer.Reset(backoff.Backoff(idle))
	}
}

func (w *Worker) execute(ctx context.Context, job Job) Job {
	start := time.Now()

	h, ok := w.handler(job.Type)
	if !ok {
		job.LastError = ErrUnknownType.Error()
		job.RunAt = start.Add(unknownTypeDelay)
		return job
	}

	job.Attempt(ctx, start, h)

	w.logger.Info("job attempted",
		"job_id", job.ID,
		"job_type", job.Type,
		"attempts_done", job.AttemptsDone,
		"job_status", job.Status,
		"last_error", job.LastError,
		"time_ms", time.Since(start).Milliseconds(),
	)
	return job
}

func (w *Worker) handler(typ string) (JobHandler, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	h, ok := w.handlers[typ]
	return h, ok
}

func (w *Worker) types() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	types := make([]string, 0, len(w.handlers))
	for typ := range w.handlers {
		types = append(types, typ)
	}
	sort.Strings(types)
	return types
}
