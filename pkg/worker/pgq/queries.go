package pgq

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/goto/lineage/pkg/worker"
	"github.com/oklog/ulid/v2"
)

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanJob reads the columns listed in jobColumns. Dead jobs have no run_at
// so the caller selects NULL in its place.
func scanJob(row rowScanner) (worker.Job, error) {
	var (
		job           worker.Job
		id            string
		runAt         sql.NullTime
		lastAttemptAt sql.NullTime
		lastErr       sql.NullString
	)
	if err := row.Scan(
		&id, &job.Type, &runAt, &job.Payload, &job.CreatedAt,
		&job.UpdatedAt, &job.AttemptsDone, &lastAttemptAt, &lastErr,
	); err != nil {
		return worker.Job{}, err
	}

	uid, err := ulid.ParseStrict(id)
	if err != nil {
		return worker.Job{}, fmt.Errorf("parse ULID: %w", err)
	}

	job.ID = uid
	job.RunAt = runAt.Time
	job.LastAttemptAt = lastAttemptAt.Time
	job.LastError = lastErr.String
	return job, nil
}

func pickupJob(ctx context.Context, r sq.BaseRunner, types []string) (worker.Job, error) {
	row := sq.Select(jobColumns...).
		From(jobsTable).
		Where(sq.Eq{"type": types}).
		Where(sq.Expr("run_at <= current_timestamp")).
		OrderBy("run_at ASC", "id ASC").
		Limit(1).
		Suffix("FOR UPDATE SKIP LOCKED").
		PlaceholderFormat(sq.Dollar).
		RunWith(r).
		QueryRowContext(ctx)

	return scanJob(row)
}

func deleteJobs(ctx context.Context, r sq.BaseRunner, table string, ids []string) error {
	res, err := sq.Delete(table).
		Where(sq.Eq{"id": ids}).
		PlaceholderFormat(sq.Dollar).
		RunWith(r).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete from %s: check rows affected: %w", table, err)
	}
	if int(n) != len(ids) {
		return fmt.Errorf("delete from %s: expected %d rows, affected %d", table, len(ids), n)
	}
	return nil
}

func markJobDead(ctx context.Context, r sq.BaseRunner, job worker.Job) error {
	_, err := sq.Insert(deadJobsTable).
		Columns(
			"id", "type", "payload", "created_at",
			"updated_at", "attempts_done", "last_attempt_at", "last_error",
		).
		Values(
			job.ID.String(), job.Type, job.Payload, job.CreatedAt.UTC(),
			job.UpdatedAt.UTC(), job.AttemptsDone, job.LastAttemptAt.UTC(), job.LastError,
		).
		PlaceholderFormat(sq.Dollar).
		RunWith(r).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("mark job dead: %w", err)
	}

	if err := deleteJobs(ctx, r, jobsTable, []string{job.ID.String()}); err != nil {
		return fmt.Errorf("mark job dead: %w", err)
	}
	return nil
}

func scheduleRetry(ctx context.Context, r sq.BaseRunner, job worker.Job) error {
	res, err := sq.Update(jobsTable).
		Set("run_at", job.RunAt.UTC()).
		Set("updated_at", job.UpdatedAt.UTC()).
		Set("attempts_done", job.AttemptsDone).
		Set("last_attempt_at", job.LastAttemptAt.UTC()).
		Set("last_error", job.LastError).
		Where(sq.Eq{"id": job.ID.String()}).
		PlaceholderFormat(sq.Dollar).
		RunWith(r).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("schedule retry: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("schedule retry: check rows affected: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("schedule retry: rows affected: %d", n)
	}
	return nil
}
