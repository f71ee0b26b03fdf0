package core

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/certforge/certforge/internal/roster"
	"github.com/certforge/certforge/internal/store"
)

// UploadRoster parses a roster CSV and replaces the event's recipients with
// its valid rows. Parse errors from the roster package come back unwrapped
// so callers can map them to user-facing messages.
func (s *Service) UploadRoster(ctx context.Context, eventID uuid.UUID, fileName string, data []byte) (*UploadSummary, error) {
	if _, err := s.store.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}

	text, err := DecodeRoster(data, s.cfg.Upload.MaxFileSize)
	if err != nil {
		return nil, err
	}

	parsed, err := roster.Parse(text)
	if err != nil {
		return nil, err
	}

	recs := make([]store.RecipientParams, len(parsed.Recipients))
	for i, r := range parsed.Recipients {
		recs[i] = store.RecipientParams{
			Name:            r.Name,
			CertificationID: r.CertificationID,
			Email:           r.Email,
		}
	}

	inserted, err := s.store.ReplaceRecipients(ctx, eventID, recs)
	if err != nil {
		return nil, fmt.Errorf("replace recipients: %w", err)
	}

	s.audit(ctx, store.AuditParams{
		ActorIP: ActorIPFromContext(ctx),
		Action:  store.ActionRosterUpload,
		EventID: eventID,
		Detail:  fmt.Sprintf("%s: %d imported, %d skipped", fileName, inserted, len(parsed.Skipped)),
	})

	summary := &UploadSummary{
		EventID:     eventID,
		Imported:    int(inserted),
		Skipped:     len(parsed.Skipped),
		SkippedRows: skippedRowInfo(parsed.Skipped),
	}
	return summary, nil
}

// PreviewRoster parses a roster CSV without touching the database. The
// returned rows are capped at the configured preview length.
func (s *Service) PreviewRoster(ctx context.Context, data []byte) (*RosterPreview, error) {
	text, err := DecodeRoster(data, s.cfg.Upload.MaxFileSize)
	if err != nil {
		return nil, err
	}

	parsed, err := roster.Parse(text)
	if err != nil {
		return nil, err
	}

	limit := s.cfg.Upload.PreviewRows
	preview := &RosterPreview{
		Columns:     roster.RequiredColumns(),
		TotalValid:  len(parsed.Recipients),
		Skipped:     len(parsed.Skipped),
		SkippedRows: skippedRowInfo(parsed.Skipped),
	}

	for i, r := range parsed.Recipients {
		if i >= limit {
			preview.Truncated = true
			break
		}
		preview.Rows = append(preview.Rows, PreviewRecipient{
			Row:             r.Row,
			Name:            r.Name,
			CertificationID: r.CertificationID,
			Email:           r.Email,
		})
	}
	return preview, nil
}

// RosterTemplate returns the CSV template offered for download.
func RosterTemplate() []byte {
	return []byte("name,certification_id,email\n" +
		"John Doe,CERT-0001,john@example.com\n" +
		"Jane Roe,CERT-0002,\n")
}

func skippedRowInfo(skipped []roster.SkippedRow) []SkippedRowInfo {
	if len(skipped) == 0 {
		return nil
	}
	out := make([]SkippedRowInfo, len(skipped))
	for i, sk := range skipped {
		out[i] = SkippedRowInfo{Row: sk.Row, Reason: sk.Reason}
	}
	return out
}
