package pgq

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/goto/lineage/pkg/worker"
)

// Stats returns the number of pending and dead jobs per job type.
func (p *Processor) Stats(ctx context.Context) ([]worker.JobTypeStats, error) {
	const query = `SELECT COALESCE(q.type, d.type) AS type,
		COALESCE(q.active, 0) AS active,
		COALESCE(d.dead, 0) AS dead
	FROM (SELECT type, count(*) AS active FROM jobs_queue GROUP BY type) AS q
	FULL JOIN (SELECT type, count(*) AS dead FROM dead_jobs GROUP BY type) AS d
		ON q.type = d.type
	ORDER BY 1`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgq stats: %w", err)
	}
	defer rows.Close()

	var stats []worker.JobTypeStats
	for rows.Next() {
		var st worker.JobTypeStats
		if err := rows.Scan(&st.Type, &st.Active, &st.Dead); err != nil {
			return nil, fmt.Errorf("pgq stats: scan row: %w", err)
		}
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgq stats: %w", err)
	}
	return stats, nil
}

func (p *Processor) DeadJobs(ctx context.Context, size, offset int) ([]worker.Job, error) {
	rows, err := sq.Select(
		"id", "type", "NULL", "payload", "created_at",
		"updated_at", "attempts_done", "last_attempt_at", "last_error",
	).
		From(deadJobsTable).
		OrderBy("id ASC").
		Limit(uint64(size)).
		Offset(uint64(offset)).
		PlaceholderFormat(sq.Dollar).
		RunWith(p.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list dead jobs: %w", err)
	}
	defer rows.Close()

	var jobs []worker.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("list dead jobs: scan row: %w", err)
		}
		job.Status = worker.StatusDead
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list dead jobs: %w", err)
	}
	return jobs, nil
}

// Resurrect moves dead jobs back to the queue with a fresh attempt budget.
func (p *Processor) Resurrect(ctx context.Context, jobIDs []string) error {
	err := p.withTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		_, err := sq.Insert(jobsTable).
			Columns("id", "type", "run_at", "payload", "created_at", "updated_at", "attempts_done", "last_attempt_at", "last_error").
			Select(
				sq.Select("id", "type", "current_timestamp", "payload", "created_at", "current_timestamp", "0", "last_attempt_at", "last_error").
					From(deadJobsTable).
					Where(sq.Eq{"id": jobIDs}),
			).
			PlaceholderFormat(sq.Dollar).
			RunWith(tx).
			ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("requeue: %w", err)
		}

		return deleteJobs(ctx, tx, deadJobsTable, jobIDs)
	})
	if err != nil {
		return fmt.Errorf("resurrect dead jobs: %w", err)
	}
	return nil
}

func (p *Processor) ClearDeadJobs(ctx context.Context, jobIDs []string) error {
	if err := deleteJobs(ctx, p.db, deadJobsTable, jobIDs); err != nil {
		return fmt.Errorf("clear dead jobs: %w", err)
	}
	return nil
}
