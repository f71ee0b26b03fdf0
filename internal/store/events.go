package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Event is a certification event: the ceremony or course a batch of
// certificates belongs to.
type Event struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Issuer       string     `json:"issuer"`
	IssuedOn     *time.Time `json:"issued_on,omitempty"`
	AccentColor  string     `json:"accent_color"`
	TemplatePath string     `json:"-"`
	HasTemplate  bool       `json:"has_template"`
	Recipients   int        `json:"recipients"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// EventParams holds the caller-supplied fields for creating an event.
type EventParams struct {
	Title       string
	Issuer      string
	IssuedOn    *time.Time
	AccentColor string
}

// DefaultAccentColor is used when an event is created without one.
const DefaultAccentColor = "#1a365d"

// CreateEvent inserts a new event and returns it.
func (s *Store) CreateEvent(ctx context.Context, p EventParams) (*Event, error) {
	if p.AccentColor == "" {
		p.AccentColor = DefaultAccentColor
	}

	id := uuid.New()
	row := s.pool.QueryRow(ctx, `
		INSERT INTO events (id, title, issuer, issued_on, accent_color)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, title, issuer, issued_on, accent_color, template_path, created_at, updated_at`,
		toPgUUID(id), p.Title, p.Issuer, toPgDate(p.IssuedOn), p.AccentColor,
	)

	ev, err := scanEvent(row)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return ev, nil
}

// GetEvent fetches one event with its recipient count.
func (s *Store) GetEvent(ctx context.Context, id uuid.UUID) (*Event, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT e.id, e.title, e.issuer, e.issued_on, e.accent_color, e.template_path, e.created_at, e.updated_at,
		       (SELECT count(*) FROM recipients r WHERE r.event_id = e.id)
		FROM events e
		WHERE e.id = $1`,
		toPgUUID(id),
	)

	ev := &Event{}
	var pgID pgtype.UUID
	var issuedOn pgtype.Date
	var templatePath pgtype.Text
	var count int64
	err := row.Scan(&pgID, &ev.Title, &ev.Issuer, &issuedOn, &ev.AccentColor, &templatePath, &ev.CreatedAt, &ev.UpdatedAt, &count)
	if err != nil {
		return nil, notFound(err)
	}
	ev.ID = fromPgUUID(pgID)
	ev.IssuedOn = fromPgDate(issuedOn)
	ev.TemplatePath = fromPgText(templatePath)
	ev.HasTemplate = ev.TemplatePath != ""
	ev.Recipients = int(count)
	return ev, nil
}

// SetEventTemplate records the stored background template for an event.
func (s *Store) SetEventTemplate(ctx context.Context, id uuid.UUID, path string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE events SET template_path = $2, updated_at = now() WHERE id = $1`,
		toPgUUID(id), toPgText(path),
	)
	if err != nil {
		return fmt.Errorf("set event template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListEvents returns all events, newest first, with recipient counts.
func (s *Store) ListEvents(ctx context.Context) ([]Event, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT e.id, e.title, e.issuer, e.issued_on, e.accent_color, e.template_path, e.created_at, e.updated_at,
		       (SELECT count(*) FROM recipients r WHERE r.event_id = e.id)
		FROM events e
		ORDER BY e.created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var ev Event
		var pgID pgtype.UUID
		var issuedOn pgtype.Date
		var templatePath pgtype.Text
		var count int64
		if err := rows.Scan(&pgID, &ev.Title, &ev.Issuer, &issuedOn, &ev.AccentColor, &templatePath, &ev.CreatedAt, &ev.UpdatedAt, &count); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.ID = fromPgUUID(pgID)
		ev.IssuedOn = fromPgDate(issuedOn)
		ev.TemplatePath = fromPgText(templatePath)
		ev.HasTemplate = ev.TemplatePath != ""
		ev.Recipients = int(count)
		events = append(events, ev)
	}
	return events, rows.Err()
}

// rowScanner lets scanEvent work on both QueryRow and Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*Event, error) {
	ev := &Event{}
	var pgID pgtype.UUID
	var issuedOn pgtype.Date
	var templatePath pgtype.Text
	err := row.Scan(&pgID, &ev.Title, &ev.Issuer, &issuedOn, &ev.AccentColor, &templatePath, &ev.CreatedAt, &ev.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	ev.ID = fromPgUUID(pgID)
	ev.IssuedOn = fromPgDate(issuedOn)
	ev.TemplatePath = fromPgText(templatePath)
	ev.HasTemplate = ev.TemplatePath != ""
	return ev, nil
}
