package worker

import "context"

//go:generate mockery --name=JobProcessor -r --case underscore --with-expecter --structname JobProcessor --filename job_processor_mock.go --output=./mocks

// JobProcessor is the queue behind a Worker.
type JobProcessor interface {
	// Enqueue stores all jobs or none of them.
	Enqueue(ctx context.Context, jobs ...Job) error

	// Process locks one ready job of the given types, hands it to fn and
	// stores the result: done jobs are removed, dead jobs are moved aside
	// and the rest are rescheduled. Returns ErrNoJob when nothing is ready.
	Process(ctx context.Context, types []string, fn JobExecutorFunc) error
}

// JobExecutorFunc attempts a job and returns it with the outcome recorded.
type JobExecutorFunc func(ctx context.Context, job Job) Job

type JobTypeStats struct {
	Type   string `json:"type"`
	Active int    `json:"active"`
	Dead   int    `json:"dead"`
}

//go:generate mockery --name=DeadJobManager -r --case underscore --with-expecter --structname DeadJobManager --filename dead_job_manager_mock.go --output=./mocks

type DeadJobManager interface {
	Stats(ctx context.Context) ([]JobTypeStats, error)
	DeadJobs(ctx context.Context, size, offset int) ([]Job, error)
	Resurrect(ctx context.Context, jobIDs []string) error
	ClearDeadJobs(ctx context.Context, jobIDs []string) error
}
