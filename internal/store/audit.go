package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// AuditAction is the kind of operation an audit entry records.
type AuditAction string

const (
	ActionEventCreate    AuditAction = "event_create"
	ActionTemplateUpload AuditAction = "template_upload"
	ActionRosterUpload   AuditAction = "roster_upload"
	ActionGenerate       AuditAction = "generate"
	ActionGenerateCancel AuditAction = "generate_cancel"
	ActionDownload       AuditAction = "download"
	ActionEmailSend      AuditAction = "email_send"
	ActionCleanup        AuditAction = "cleanup"
)

// AuditEntry is one row of the audit log.
type AuditEntry struct {
	ID         int64     `json:"id"`
	OccurredAt time.Time `json:"occurred_at"`
	ActorIP    string    `json:"actor_ip,omitempty"`
	Action     string    `json:"action"`
	EventID    uuid.UUID `json:"event_id,omitempty"`
	Detail     string    `json:"detail,omitempty"`
}

// AuditParams describes the entry to insert. EventID may be uuid.Nil for
// actions not tied to an event.
type AuditParams struct {
	ActorIP string
	Action  AuditAction
	EventID uuid.UUID
	Detail  string
}

// InsertAudit appends one entry to the audit log.
func (s *Store) InsertAudit(ctx context.Context, p AuditParams) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO audit_log (actor_ip, action, event_id, detail)
		VALUES ($1, $2, $3, $4)`,
		toPgText(p.ActorIP), string(p.Action), toPgUUID(p.EventID), toPgText(p.Detail),
	)
	if err != nil {
		return fmt.Errorf("insert audit: %w", err)
	}
	return nil
}

// ListAudit returns audit entries newest first.
func (s *Store) ListAudit(ctx context.Context, limit, offset int) ([]AuditEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, occurred_at, actor_ip, action, event_id, detail
		FROM audit_log
		ORDER BY occurred_at DESC, id DESC
		LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list audit: %w", err)
	}
	defer rows.Close()

	entries := []AuditEntry{}
	for rows.Next() {
		var e AuditEntry
		var ip, detail pgtype.Text
		var eventID pgtype.UUID
		if err := rows.Scan(&e.ID, &e.OccurredAt, &ip, &e.Action, &eventID, &detail); err != nil {
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		e.ActorIP = fromPgText(ip)
		e.EventID = fromPgUUID(eventID)
		e.Detail = fromPgText(detail)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// PurgeAudit deletes one batch of entries older than cutoff and reports
// how many went. Callers loop until it returns zero.
func (s *Store) PurgeAudit(ctx context.Context, cutoff time.Time, batchSize int) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM audit_log
		WHERE id IN (
			SELECT id FROM audit_log WHERE occurred_at < $1 ORDER BY id LIMIT $2
		)`,
		cutoff, batchSize,
	)
	if err != nil {
		return 0, fmt.Errorf("purge audit: %w", err)
	}
	return tag.RowsAffected(), nil
}
