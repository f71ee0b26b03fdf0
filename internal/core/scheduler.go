package core

// scheduler.go provides background scheduling for maintenance tasks.
//
// The cleanup cycle runs periodically to:
//  1. Delete certificate archives whose retention window has passed and
//     clear their path in the jobs table
//  2. Purge audit log entries older than the retention policy, in batches
//
// The scheduler is long-running and context-aware for graceful shutdown.
// It logs progress and errors but does not fail the application if an
// individual cleanup step fails.

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/certforge/certforge/internal/config"
	"github.com/certforge/certforge/internal/store"
)

// StartCleanupScheduler starts a background loop that periodically removes
// expired archives and purges old audit entries. It runs immediately on
// start, then every CheckInterval, and stops when the context is cancelled.
func (s *Service) StartCleanupScheduler(ctx context.Context, cfg config.CleanupConfig) {
	slog.Info("cleanup scheduler started",
		"artifact_retention", cfg.ArtifactRetention.String(),
		"audit_retention_days", cfg.AuditRetentionDays,
		"batch_size", cfg.BatchSize,
	)

	// Run immediately on startup
	s.runCleanup(ctx, cfg)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("cleanup scheduler stopped")
			return
		case <-ticker.C:
			s.runCleanup(ctx, cfg)
		}
	}
}

// runCleanup performs one archive removal + audit purge cycle.
func (s *Service) runCleanup(ctx context.Context, cfg config.CleanupConfig) {
	slog.Debug("cleanup started")
	start := time.Now()

	archiveStart := time.Now()
	removed, err := s.removeExpiredArchives(ctx, cfg.ArtifactRetention)
	if err != nil {
		slog.Error("archive cleanup failed", "error", err)
	} else {
		slog.Info("removed expired archives",
			"archives_removed", removed,
			"duration_ms", time.Since(archiveStart).Milliseconds(),
		)
	}

	purgeStart := time.Now()
	purged, err := s.purgeOldAudit(ctx, cfg.AuditRetentionDays, cfg.BatchSize)
	if err != nil {
		slog.Error("audit purge failed", "error", err)
	} else {
		slog.Info("purged old audit entries",
			"entries_purged", purged,
			"duration_ms", time.Since(purgeStart).Milliseconds(),
		)
	}

	if removed > 0 || purged > 0 {
		s.audit(ctx, store.AuditParams{
			Action: store.ActionCleanup,
			Detail: fmt.Sprintf("%d archives removed, %d audit entries purged", removed, purged),
		})
	}

	slog.Info("cleanup completed", "duration_ms", time.Since(start).Milliseconds())
}

// removeExpiredArchives deletes archive files past their retention window
// and clears the path on the job row so downloads stop offering them.
func (s *Service) removeExpiredArchives(ctx context.Context, retention time.Duration) (int, error) {
	cutoff := time.Now().Add(-retention)
	jobs, err := s.store.ListExpiredArtifacts(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, job := range jobs {
		if err := os.Remove(job.ArchivePath); err != nil && !os.IsNotExist(err) {
			// Leave the row intact so the next cycle retries the delete.
			slog.Error("remove archive failed", "job_id", job.ID, "path", job.ArchivePath, "error", err)
			continue
		}
		if err := s.store.ClearArchive(ctx, job.ID); err != nil {
			slog.Error("clear archive failed", "job_id", job.ID, "error", err)
			continue
		}
		removed++
	}
	return removed, nil
}

// purgeOldAudit deletes audit entries older than daysToKeep in batches
// until none remain.
func (s *Service) purgeOldAudit(ctx context.Context, daysToKeep, batchSize int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -daysToKeep)

	var total int64
	for {
		n, err := s.store.PurgeAudit(ctx, cutoff, batchSize)
		if err != nil {
			return total, err
		}
		total += n
		if n < int64(batchSize) {
			return total, nil
		}
	}
}
