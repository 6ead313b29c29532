package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/openreport/portal/internal/portal/domain"
)

type outboxRepo struct {
	db dbtx
}

const outboxColumns = `id, type, payload, status, attempts, next_attempt_at,
	last_error, locked_at, locked_by, created_at, updated_at`

func (r *outboxRepo) EnqueueJob(ctx context.Context, job domain.OutboxJob) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notification_outbox (`+outboxColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.Type, string(job.Payload), job.Status, job.Attempts,
		job.NextAttemptAt, mapStringNull(job.LastError),
		mapOptionalTime(job.LockedAt), mapStringNull(job.LockedBy),
		job.CreatedAt, job.UpdatedAt,
	)
	return err
}

func (r *outboxRepo) GetJobByID(ctx context.Context, id string) (domain.OutboxJob, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+outboxColumns+` FROM notification_outbox WHERE id = ?`, id)
	return scanJob(row)
}

func (r *outboxRepo) ListDueJobs(ctx context.Context, now time.Time, limit int) ([]domain.OutboxJob, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+outboxColumns+` FROM notification_outbox
		WHERE status = ? AND next_attempt_at <= ?
		ORDER BY created_at ASC
		LIMIT ?`,
		domain.JobStatusPending, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.OutboxJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

// ClaimJob is the duplicate-send guard: one conditional UPDATE moves the
// job to processing, so concurrent workers polling the same batch cannot
// both win a job.
func (r *outboxRepo) ClaimJob(ctx context.Context, id string, now time.Time, lockedBy string) (domain.OutboxJob, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE notification_outbox
		SET status = ?, locked_at = ?, locked_by = ?, updated_at = ?
		WHERE id = ? AND status = ? AND next_attempt_at <= ?
		RETURNING `+outboxColumns,
		domain.JobStatusProcessing, now, lockedBy, now,
		id, domain.JobStatusPending, now)
	return scanJob(row)
}

func (r *outboxRepo) MarkJobSent(ctx context.Context, id string, now time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE notification_outbox
		SET status = ?, locked_at = NULL, locked_by = NULL, updated_at = ?
		WHERE id = ? AND status = ?`,
		domain.JobStatusSent, now, id, domain.JobStatusProcessing)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *outboxRepo) RescheduleJob(ctx context.Context, id string, attempts int, nextAttemptAt time.Time, lastError string, now time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE notification_outbox
		SET status = ?, attempts = ?, next_attempt_at = ?, last_error = ?,
		    locked_at = NULL, locked_by = NULL, updated_at = ?
		WHERE id = ? AND status = ?`,
		domain.JobStatusPending, attempts, nextAttemptAt, lastError, now,
		id, domain.JobStatusProcessing)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *outboxRepo) MarkJobFailed(ctx context.Context, id string, attempts int, lastError string, now time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE notification_outbox
		SET status = ?, attempts = ?, last_error = ?,
		    locked_at = NULL, locked_by = NULL, updated_at = ?
		WHERE id = ? AND status = ?`,
		domain.JobStatusFailed, attempts, lastError, now,
		id, domain.JobStatusProcessing)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *outboxRepo) ReleaseStuckJobs(ctx context.Context, cutoff time.Time, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE notification_outbox
		SET status = ?, locked_at = NULL, locked_by = NULL, updated_at = ?
		WHERE status = ? AND locked_at <= ?`,
		domain.JobStatusPending, now, domain.JobStatusProcessing, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *outboxRepo) DeleteFinishedJobs(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM notification_outbox
		WHERE status IN (?, ?) AND updated_at <= ?`,
		domain.JobStatusSent, domain.JobStatusFailed, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanJob(s scanner) (domain.OutboxJob, error) {
	var (
		job       domain.OutboxJob
		payload   string
		lastError sql.NullString
		lockedAt  sql.NullTime
		lockedBy  sql.NullString
	)
	err := s.Scan(
		&job.ID, &job.Type, &payload, &job.Status, &job.Attempts,
		&job.NextAttemptAt, &lastError, &lockedAt, &lockedBy,
		&job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return domain.OutboxJob{}, mapNotFound(err)
	}

	job.Payload = json.RawMessage(payload)
	job.LastError = mapNullString(lastError)
	job.LockedAt = mapNullTimePtr(lockedAt)
	job.LockedBy = mapNullString(lockedBy)
	return job, nil
}
