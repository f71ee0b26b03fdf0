package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// Recipient is a stored roster row bound to an event.
type Recipient struct {
	ID              uuid.UUID `json:"id"`
	EventID         uuid.UUID `json:"event_id"`
	Position        int       `json:"position"`
	Name            string    `json:"name"`
	CertificationID string    `json:"certification_id"`
	Email           string    `json:"email,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// RecipientParams holds one roster row for insertion. Position is assigned
// from slice order.
type RecipientParams struct {
	Name            string
	CertificationID string
	Email           string
}

// ReplaceRecipients swaps an event's roster for a new one in a single
// transaction: the old rows are deleted, the new ones bulk-inserted with
// CopyFrom, and the event's updated_at bumped. Returns the inserted count.
func (s *Store) ReplaceRecipients(ctx context.Context, eventID uuid.UUID, recs []RecipientParams) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM recipients WHERE event_id = $1`, toPgUUID(eventID)); err != nil {
		return 0, fmt.Errorf("clear recipients: %w", err)
	}

	rows := make([][]any, len(recs))
	for i, r := range recs {
		rows[i] = []any{
			toPgUUID(uuid.New()),
			toPgUUID(eventID),
			i + 1,
			r.Name,
			r.CertificationID,
			toPgText(r.Email),
		}
	}

	inserted, err := tx.CopyFrom(ctx,
		pgx.Identifier{"recipients"},
		[]string{"id", "event_id", "position", "name", "certification_id", "email"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, fmt.Errorf("copy recipients: %w", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE events SET updated_at = now() WHERE id = $1`, toPgUUID(eventID)); err != nil {
		return 0, fmt.Errorf("touch event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

// ListRecipients returns an event's roster in upload order.
func (s *Store) ListRecipients(ctx context.Context, eventID uuid.UUID) ([]Recipient, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, event_id, position, name, certification_id, email, created_at
		FROM recipients
		WHERE event_id = $1
		ORDER BY position`,
		toPgUUID(eventID),
	)
	if err != nil {
		return nil, fmt.Errorf("list recipients: %w", err)
	}
	defer rows.Close()

	recs := []Recipient{}
	for rows.Next() {
		var r Recipient
		var pgID, pgEvent pgtype.UUID
		var email pgtype.Text
		if err := rows.Scan(&pgID, &pgEvent, &r.Position, &r.Name, &r.CertificationID, &email, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recipient: %w", err)
		}
		r.ID = fromPgUUID(pgID)
		r.EventID = fromPgUUID(pgEvent)
		r.Email = fromPgText(email)
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// CountRecipients returns the size of an event's roster.
func (s *Store) CountRecipients(ctx context.Context, eventID uuid.UUID) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM recipients WHERE event_id = $1`, toPgUUID(eventID),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count recipients: %w", err)
	}
	return n, nil
}
