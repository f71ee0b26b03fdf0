package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/certforge/certforge/internal/archive"
	"github.com/certforge/certforge/internal/logging"
	"github.com/certforge/certforge/internal/store"
)

// CertificateSender delivers one rendered certificate to a recipient.
// Implemented by the SMTP mailer; nil disables email delivery.
type CertificateSender interface {
	SendCertificate(ctx context.Context, to, recipientName, eventTitle string, png []byte, filename string) error
}

// ErrEmailDisabled is returned when email delivery is requested without
// SMTP configuration.
var ErrEmailDisabled = errors.New("email delivery is not configured")

// SendCertificates emails every generated certificate in a completed job's
// archive to its recipient. The archive manifest decides who gets what;
// recipients without an email address are counted, not failed. Delivery
// failures do not stop the run.
func (s *Service) SendCertificates(ctx context.Context, jobID uuid.UUID) (*SendReport, error) {
	if s.sender == nil {
		return nil, ErrEmailDisabled
	}

	stored, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("job not found: %s", jobID)
		}
		return nil, err
	}
	if JobPhase(stored.Status) != PhaseComplete {
		return nil, fmt.Errorf("job is %s, only complete jobs can be emailed", stored.Status)
	}
	if !stored.HasArchive() {
		return nil, errors.New("job archive is no longer available")
	}

	event, err := s.store.GetEvent(ctx, stored.EventID)
	if err != nil {
		return nil, err
	}

	entries, err := archive.ReadManifest(stored.ArchivePath)
	if err != nil {
		return nil, err
	}

	report := &SendReport{JobID: jobID}
	byFile := make(map[string]archive.ManifestEntry, len(entries))
	for _, e := range entries {
		if e.Status != archive.StatusGenerated {
			continue
		}
		if e.Email == "" {
			report.NoEmail++
			continue
		}
		byFile[e.File] = e
	}

	log := logging.ForJob(ctx, jobID)
	err = archive.EachFile(stored.ArchivePath, func(name string, data []byte) error {
		entry, ok := byFile[name]
		if !ok {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := s.sender.SendCertificate(ctx, entry.Email, entry.Name, event.Title, data, name); err != nil {
			report.Failed = append(report.Failed, SendFailure{Email: entry.Email, Reason: err.Error()})
			log.Warn("certificate email failed", "to", entry.Email, "error", err)
			return nil
		}
		report.Sent++
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, store.AuditParams{
		ActorIP: ActorIPFromContext(ctx),
		Action:  store.ActionEmailSend,
		EventID: stored.EventID,
		Detail: fmt.Sprintf("job %s: %d sent, %d failed, %d without email",
			jobID, report.Sent, len(report.Failed), report.NoEmail),
	})

	log.Info("certificate emails sent",
		"sent", report.Sent, "failed", len(report.Failed), "no_email", report.NoEmail)
	return report, nil
}
