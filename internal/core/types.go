package core

import (
	"time"

	"github.com/google/uuid"
)

// JobPhase indicates the current stage of a generation job.
type JobPhase string

const (
	PhaseStarting  JobPhase = "starting"
	PhaseRendering JobPhase = "rendering"
	PhaseArchiving JobPhase = "archiving"
	PhaseComplete  JobPhase = "complete"
	PhaseFailed    JobPhase = "failed"
	PhaseCancelled JobPhase = "cancelled"
)

// Terminal reports whether the phase is final.
func (p JobPhase) Terminal() bool {
	return p == PhaseComplete || p == PhaseFailed || p == PhaseCancelled
}

// Progress represents the current state of a generation job.
type Progress struct {
	JobID    uuid.UUID `json:"jobId"`
	EventID  uuid.UUID `json:"eventId"`
	Phase    JobPhase  `json:"phase"`
	Total    int       `json:"total"`
	Rendered int       `json:"rendered"`
	Failed   int       `json:"failed"`
	Error    string    `json:"error,omitempty"` // non-empty if Phase is PhaseFailed
}

// Percent returns the progress as a percentage (0-100). Archiving counts
// as done for display purposes.
func (p Progress) Percent() int {
	if p.Phase == PhaseComplete || p.Phase == PhaseArchiving {
		return 100
	}
	if p.Total > 0 {
		return ((p.Rendered + p.Failed) * 100) / p.Total
	}
	return 0
}

// FailedCertificate describes one recipient whose certificate could not be
// rendered. The job still completes; failures are listed in the result and
// the archive manifest.
type FailedCertificate struct {
	Row             int    `json:"row"`
	RecipientName   string `json:"recipientName"`
	CertificationID string `json:"certificationId"`
	Reason          string `json:"reason"`
}

// JobResult contains the final result of a generation job. Failed holds
// per-recipient details while the job is in memory; after that only the
// count survives, with details preserved in the archive manifest.
type JobResult struct {
	JobID       uuid.UUID           `json:"jobId"`
	EventID     uuid.UUID           `json:"eventId"`
	Phase       JobPhase            `json:"phase"`
	Total       int                 `json:"total"`
	Rendered    int                 `json:"rendered"`
	FailedCount int                 `json:"failedCount"`
	Failed      []FailedCertificate `json:"failed,omitempty"`
	ArchiveSize int64               `json:"archiveSize,omitempty"`
	Duration    time.Duration       `json:"-"`
	Error       string              `json:"error,omitempty"`
}

// UploadSummary is returned after a roster upload replaces an event's
// recipients.
type UploadSummary struct {
	EventID     uuid.UUID        `json:"eventId"`
	Imported    int              `json:"imported"`
	Skipped     int              `json:"skipped"`
	SkippedRows []SkippedRowInfo `json:"skippedRows,omitempty"`
}

// SkippedRowInfo mirrors a skipped roster row for API responses.
type SkippedRowInfo struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// RosterPreview shows how a roster file would import without persisting it.
type RosterPreview struct {
	Columns     []string           `json:"columns"`
	Rows        []PreviewRecipient `json:"rows"`
	TotalValid  int                `json:"totalValid"`
	Skipped     int                `json:"skipped"`
	SkippedRows []SkippedRowInfo   `json:"skippedRows,omitempty"`
	Truncated   bool               `json:"truncated"`
}

// PreviewRecipient is one parsed roster row shown in a preview.
type PreviewRecipient struct {
	Row             int    `json:"row"`
	Name            string `json:"name"`
	CertificationID string `json:"certificationId"`
	Email           string `json:"email,omitempty"`
}

// SendReport summarizes an email delivery run over a completed job.
type SendReport struct {
	JobID   uuid.UUID     `json:"jobId"`
	Sent    int           `json:"sent"`
	NoEmail int           `json:"noEmail"`
	Failed  []SendFailure `json:"failed,omitempty"`
}

// SendFailure records one recipient whose email could not be delivered.
type SendFailure struct {
	Email  string `json:"email"`
	Reason string `json:"reason"`
}
