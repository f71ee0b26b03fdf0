package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/certforge/certforge/internal/render"
	"github.com/certforge/certforge/internal/store"
)

const maxTitleLen = 200

// CreateEvent validates and persists a new certification event.
func (s *Service) CreateEvent(ctx context.Context, params store.EventParams) (*store.Event, error) {
	params.Title = strings.TrimSpace(params.Title)
	params.Issuer = strings.TrimSpace(params.Issuer)

	if params.Title == "" {
		return nil, errors.New("event title is required")
	}
	if len(params.Title) > maxTitleLen {
		return nil, fmt.Errorf("event title exceeds %d characters", maxTitleLen)
	}
	if params.Issuer == "" {
		return nil, errors.New("event issuer is required")
	}
	if params.AccentColor == "" {
		params.AccentColor = store.DefaultAccentColor
	}
	if _, err := render.ParseHexColor(params.AccentColor); err != nil {
		return nil, err
	}

	event, err := s.store.CreateEvent(ctx, params)
	if err != nil {
		return nil, err
	}

	s.audit(ctx, store.AuditParams{
		ActorIP: ActorIPFromContext(ctx),
		Action:  store.ActionEventCreate,
		EventID: event.ID,
		Detail:  event.Title,
	})
	return event, nil
}

// GetEvent fetches one event with its recipient count.
func (s *Service) GetEvent(ctx context.Context, id uuid.UUID) (*store.Event, error) {
	return s.store.GetEvent(ctx, id)
}

// ListEvents returns all events, newest first.
func (s *Service) ListEvents(ctx context.Context) ([]store.Event, error) {
	return s.store.ListEvents(ctx)
}

// ListRecipients returns an event's current roster in upload order.
func (s *Service) ListRecipients(ctx context.Context, eventID uuid.UUID) ([]store.Recipient, error) {
	if _, err := s.store.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.store.ListRecipients(ctx, eventID)
}

// JobHistory returns recent generation jobs, optionally scoped to one event.
func (s *Service) JobHistory(ctx context.Context, eventID uuid.UUID, limit int) ([]store.Job, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if eventID != uuid.Nil {
		return s.store.ListJobsForEvent(ctx, eventID, limit)
	}
	return s.store.ListJobs(ctx, limit)
}

// AuditTrail returns audit entries, newest first.
func (s *Service) AuditTrail(ctx context.Context, limit, offset int) ([]store.AuditEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListAudit(ctx, limit, offset)
}
