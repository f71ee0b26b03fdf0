package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/certforge/certforge/internal/config"
	"github.com/certforge/certforge/internal/logging"
	"github.com/certforge/certforge/internal/render"
	"github.com/certforge/certforge/internal/store"
)

// jobRetention is how long finished jobs stay in memory for progress and
// result queries. The database row outlives this window.
const jobRetention = 5 * time.Minute

// Service provides the business logic for events, rosters and generation
// jobs.
type Service struct {
	store    *store.Store
	cfg      *config.Config
	renderer *render.Renderer
	sender   CertificateSender // nil when email delivery is not configured
	limiter  *JobLimiter

	mu   sync.RWMutex
	jobs map[uuid.UUID]*activeJob
}

// activeJob tracks one in-flight generation job. A single mutex guards
// progress, result and the listener list.
type activeJob struct {
	ID      uuid.UUID
	EventID uuid.UUID
	Cancel  context.CancelFunc
	Done    chan struct{}

	mu        sync.Mutex
	progress  Progress
	result    *JobResult
	listeners []chan Progress
}

// NewService creates a new Service instance and ensures the artifact
// directory exists.
func NewService(st *store.Store, cfg *config.Config, renderer *render.Renderer, sender CertificateSender) (*Service, error) {
	if err := os.MkdirAll(cfg.Generate.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	return &Service{
		store:    st,
		cfg:      cfg,
		renderer: renderer,
		sender:   sender,
		limiter:  NewJobLimiter(cfg.Generate.MaxConcurrent, cfg.Generate.MaxWaitTime),
		jobs:     make(map[uuid.UUID]*activeJob),
	}, nil
}

// Limiter exposes the job limiter for shutdown draining and monitoring.
func (s *Service) Limiter() *JobLimiter {
	return s.limiter
}

// EmailEnabled reports whether a certificate sender is configured.
func (s *Service) EmailEnabled() bool {
	return s.sender != nil
}

// Subscribe returns a channel that receives progress updates for a job.
// The channel is closed when the job completes. The current progress is
// delivered immediately so late subscribers see the latest state.
func (s *Service) Subscribe(jobID uuid.UUID) (<-chan Progress, error) {
	s.mu.RLock()
	job, ok := s.jobs[jobID]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}
	return job.subscribe(), nil
}

// JobProgress returns the current progress without blocking. Jobs that
// already left the in-memory window are reconstructed from the database.
func (s *Service) JobProgress(ctx context.Context, jobID uuid.UUID) (Progress, error) {
	s.mu.RLock()
	job, ok := s.jobs[jobID]
	s.mu.RUnlock()

	if ok {
		return job.snapshot(), nil
	}

	stored, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Progress{}, fmt.Errorf("job not found: %s", jobID)
		}
		return Progress{}, err
	}
	return progressFromStored(stored), nil
}

// JobResult returns the result of a generation job, waiting for completion
// if the job is still running.
func (s *Service) JobResult(ctx context.Context, jobID uuid.UUID) (*JobResult, error) {
	s.mu.RLock()
	job, ok := s.jobs[jobID]
	s.mu.RUnlock()

	if ok {
		select {
		case <-job.Done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		job.mu.Lock()
		defer job.mu.Unlock()
		return job.result, nil
	}

	stored, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("job not found: %s", jobID)
		}
		return nil, err
	}
	return resultFromStored(stored), nil
}

// CancelJob cancels an in-progress generation job.
func (s *Service) CancelJob(ctx context.Context, jobID uuid.UUID) error {
	s.mu.RLock()
	job, ok := s.jobs[jobID]
	s.mu.RUnlock()

	if !ok {
		return fmt.Errorf("job not found: %s", jobID)
	}

	job.Cancel()

	s.audit(ctx, store.AuditParams{
		ActorIP: ActorIPFromContext(ctx),
		Action:  store.ActionGenerateCancel,
		EventID: job.EventID,
		Detail:  "job " + jobID.String(),
	})
	return nil
}

// audit records an entry without failing the caller. Audit writes are
// best effort.
func (s *Service) audit(ctx context.Context, p store.AuditParams) {
	if err := s.store.InsertAudit(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("audit insert failed",
			"action", string(p.Action), "error", err)
	}
}

// register adds a job to the live map.
func (s *Service) register(job *activeJob) {
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()
}

// cleanup removes the job from tracking after a delay.
func (s *Service) cleanup(jobID uuid.UUID, delay time.Duration) {
	time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.jobs, jobID)
		s.mu.Unlock()
	})
}

// update mutates the progress under lock and notifies listeners. Slow
// listeners miss intermediate updates rather than blocking the job.
func (j *activeJob) update(fn func(*Progress)) {
	j.mu.Lock()
	defer j.mu.Unlock()

	fn(&j.progress)
	for _, ch := range j.listeners {
		select {
		case ch <- j.progress:
		default:
		}
	}
}

// snapshot returns a copy of the current progress.
func (j *activeJob) snapshot() Progress {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.progress
}

// subscribe registers a listener channel and seeds it with the current
// progress.
func (j *activeJob) subscribe() <-chan Progress {
	ch := make(chan Progress, 10)

	j.mu.Lock()
	j.listeners = append(j.listeners, ch)
	select {
	case ch <- j.progress:
	default:
	}
	j.mu.Unlock()

	return ch
}

// finish records the result, closes all listener channels and unblocks
// Done waiters.
func (j *activeJob) finish(result *JobResult) {
	j.mu.Lock()
	j.result = result
	for _, ch := range j.listeners {
		close(ch)
	}
	j.listeners = nil
	j.mu.Unlock()

	close(j.Done)
}

// progressFromStored rebuilds a Progress from a persisted job row.
func progressFromStored(job *store.Job) Progress {
	return Progress{
		JobID:    job.ID,
		EventID:  job.EventID,
		Phase:    JobPhase(job.Status),
		Total:    job.Total,
		Rendered: job.Rendered,
		Failed:   job.Failed,
		Error:    job.Error,
	}
}

// resultFromStored rebuilds a JobResult from a persisted job row. Per-row
// failure details live only in the archive manifest at this point.
func resultFromStored(job *store.Job) *JobResult {
	result := &JobResult{
		JobID:       job.ID,
		EventID:     job.EventID,
		Phase:       JobPhase(job.Status),
		Total:       job.Total,
		Rendered:    job.Rendered,
		FailedCount: job.Failed,
		ArchiveSize: job.ArchiveSize,
		Error:       job.Error,
	}
	if job.FinishedAt != nil {
		result.Duration = job.FinishedAt.Sub(job.StartedAt)
	}
	return result
}
