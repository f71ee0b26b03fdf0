package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/certforge/certforge/internal/store"
)

// ArchiveFile looks up a completed job and returns its row for archive
// download. The caller serves the file at ArchivePath; this only verifies
// the job is in a downloadable state and records the access.
func (s *Service) ArchiveFile(ctx context.Context, jobID uuid.UUID) (*store.Job, error) {
	stored, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("job not found: %s", jobID)
		}
		return nil, err
	}
	if JobPhase(stored.Status) != PhaseComplete {
		return nil, fmt.Errorf("job is %s, only complete jobs can be downloaded", stored.Status)
	}
	if !stored.HasArchive() {
		return nil, errors.New("job archive is no longer available")
	}

	s.audit(ctx, store.AuditParams{
		ActorIP: ActorIPFromContext(ctx),
		Action:  store.ActionDownload,
		EventID: stored.EventID,
		Detail:  "job " + jobID.String(),
	})
	return stored, nil
}
