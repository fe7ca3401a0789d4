package pgq

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/goto/lineage/pkg/worker"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	_ "github.com/newrelic/go-agent/v3/integrations/nrpgx" // register instrumented DB driver
	"go.nhat.io/otelsql"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"
)

const (
	pgDriverName  = "nrpgx"
	jobsTable     = "jobs_queue"
	deadJobsTable = "dead_jobs"
)

var jobColumns = []string{
	"id", "type", "run_at", "payload", "created_at",
	"updated_at", "attempts_done", "last_attempt_at", "last_error",
}

// Processor is a worker.JobProcessor on two postgres tables: jobs_queue
// holds pending jobs and dead_jobs holds jobs that ran out of attempts.
// Ready jobs are claimed with FOR UPDATE SKIP LOCKED so any number of
// workers can share the queue.
type Processor struct {
	db *sql.DB
}

func NewProcessor(ctx context.Context, cfg Config) (*Processor, error) {
	driverName, err := otelsql.Register(
		pgDriverName,
		otelsql.TraceQueryWithoutArgs(),
		otelsql.TraceRowsClose(),
		otelsql.TraceRowsAffected(),
		otelsql.WithSystem(semconv.DBSystemPostgreSQL),
		otelsql.WithInstanceName("pgq"),
	)
	if err != nil {
		return nil, fmt.Errorf("new pgq processor: %w", err)
	}

	db, err := sql.Open(driverName, cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("new pgq processor: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("new pgq processor: %w", err)
	}

	if err := otelsql.RecordStats(
		db,
		otelsql.WithSystem(semconv.DBSystemPostgreSQL),
		otelsql.WithInstanceName("pgq"),
	); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("new pgq processor: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	if cfg.MaxIdleConns != 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxLifetime(cfg.ConnMaxLifetimeWithJitter())
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return &Processor{db: db}, nil
}

// NewProcessorWithDB wraps an already opened database.
func NewProcessorWithDB(db *sql.DB) *Processor {
	return &Processor{db: db}
}

func (p *Processor) Enqueue(ctx context.Context, jobs ...worker.Job) error {
	if len(jobs) == 0 {
		return nil
	}

	insert := sq.Insert(jobsTable).Columns("id", "type", "run_at", "payload", "created_at", "updated_at")
	for _, j := range jobs {
		insert = insert.Values(j.ID.String(), j.Type, j.RunAt.UTC(), j.Payload, j.CreatedAt.UTC(), j.UpdatedAt.UTC())
	}

	if _, err := insert.PlaceholderFormat(sq.Dollar).RunWith(p.db).ExecContext(ctx); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("enqueue jobs: %w: %s", worker.ErrJobExists, pgErr.Detail)
		}
		return fmt.Errorf("enqueue jobs: %w", err)
	}
	return nil
}

// Process claims the oldest ready job of the given types and stores the
// outcome of fn within the same transaction.
func (p *Processor) Process(ctx context.Context, types []string, fn worker.JobExecutorFunc) error {
	err := p.withTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		job, err := pickupJob(ctx, tx, types)
		if errors.Is(err, sql.ErrNoRows) {
			return worker.ErrNoJob
		}
		if err != nil {
			return fmt.Errorf("pickup job: %w", err)
		}

		result := fn(ctx, job)
		switch result.Status {
		case worker.StatusDone:
			return deleteJobs(ctx, tx, jobsTable, []string{result.ID.String()})
		case worker.StatusDead:
			return markJobDead(ctx, tx, result)
		default:
			return scheduleRetry(ctx, tx, result)
		}
	})
	if err != nil {
		return fmt.Errorf("pgq process: %w", err)
	}
	return nil
}

func (p *Processor) Close() error { return p.db.Close() }

func (p *Processor) withTx(ctx context.Context, fn func(context.Context, *sql.Tx) error) (err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
