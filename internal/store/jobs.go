package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// Job is the persisted record of one generation run. Live progress stays
// in memory; this table is the durable history.
type Job struct {
	ID          uuid.UUID  `json:"id"`
	EventID     uuid.UUID  `json:"event_id"`
	Status      string     `json:"status"`
	Total       int        `json:"total"`
	Rendered    int        `json:"rendered"`
	Failed      int        `json:"failed"`
	ArchivePath string     `json:"-"`
	ArchiveSize int64      `json:"archive_size,omitempty"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

// HasArchive reports whether the job still has a downloadable archive.
func (j *Job) HasArchive() bool {
	return j.ArchivePath != ""
}

// CreateJob records the start of a generation run. The id is assigned by
// the caller so it can be handed to clients before the first write.
func (s *Store) CreateJob(ctx context.Context, id, eventID uuid.UUID, status string, total int) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO jobs (id, event_id, status, total)
		VALUES ($1, $2, $3, $4)`,
		toPgUUID(id), toPgUUID(eventID), status, total,
	)
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

// FinishJob records a job's terminal state.
func (s *Store) FinishJob(ctx context.Context, id uuid.UUID, status string, rendered, failed int, archivePath string, archiveSize int64, errMsg string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE jobs
		SET status = $2, rendered = $3, failed = $4, archive_path = $5, archive_size = $6, error = $7, finished_at = now()
		WHERE id = $1`,
		toPgUUID(id), status, rendered, failed, toPgText(archivePath), archiveSize, toPgText(errMsg),
	)
	if err != nil {
		return fmt.Errorf("finish job: %w", err)
	}
	return nil
}

// GetJob fetches one job.
func (s *Store) GetJob(ctx context.Context, id uuid.UUID) (*Job, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, event_id, status, total, rendered, failed, archive_path, archive_size, error, started_at, finished_at
		FROM jobs
		WHERE id = $1`,
		toPgUUID(id),
	)
	return scanJob(row)
}

// ListJobs returns recent jobs across all events, newest first.
func (s *Store) ListJobs(ctx context.Context, limit int) ([]Job, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, event_id, status, total, rendered, failed, archive_path, archive_size, error, started_at, finished_at
		FROM jobs
		ORDER BY started_at DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()
	return collectJobs(rows)
}

// ListJobsForEvent returns one event's jobs, newest first.
func (s *Store) ListJobsForEvent(ctx context.Context, eventID uuid.UUID, limit int) ([]Job, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, event_id, status, total, rendered, failed, archive_path, archive_size, error, started_at, finished_at
		FROM jobs
		WHERE event_id = $1
		ORDER BY started_at DESC
		LIMIT $2`,
		toPgUUID(eventID), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list jobs for event: %w", err)
	}
	defer rows.Close()
	return collectJobs(rows)
}

// ListExpiredArtifacts returns jobs whose archives finished before cutoff
// and are still on disk. The cleanup scheduler removes the files and then
// calls ClearArchive.
func (s *Store) ListExpiredArtifacts(ctx context.Context, cutoff time.Time) ([]Job, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, event_id, status, total, rendered, failed, archive_path, archive_size, error, started_at, finished_at
		FROM jobs
		WHERE archive_path IS NOT NULL AND finished_at IS NOT NULL AND finished_at < $1`,
		cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("list expired artifacts: %w", err)
	}
	defer rows.Close()
	return collectJobs(rows)
}

// ClearArchive drops a job's archive path after the file is deleted.
func (s *Store) ClearArchive(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `UPDATE jobs SET archive_path = NULL WHERE id = $1`, toPgUUID(id))
	if err != nil {
		return fmt.Errorf("clear archive: %w", err)
	}
	return nil
}

func scanJob(row rowScanner) (*Job, error) {
	j := &Job{}
	var pgID, pgEvent pgtype.UUID
	var archivePath, errMsg pgtype.Text
	var finished pgtype.Timestamptz
	err := row.Scan(&pgID, &pgEvent, &j.Status, &j.Total, &j.Rendered, &j.Failed, &archivePath, &j.ArchiveSize, &errMsg, &j.StartedAt, &finished)
	if err != nil {
		return nil, notFound(err)
	}
	j.ID = fromPgUUID(pgID)
	j.EventID = fromPgUUID(pgEvent)
	j.ArchivePath = fromPgText(archivePath)
	j.Error = fromPgText(errMsg)
	j.FinishedAt = fromPgTime(finished)
	return j, nil
}

func collectJobs(rows pgx.Rows) ([]Job, error) {
	jobs := []Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}
