package core

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"

	_ "image/jpeg"
	_ "image/png"

	"github.com/google/uuid"

	"github.com/certforge/certforge/internal/store"
)

// Minimum template dimensions. Anything smaller upscales too visibly on the
// certificate canvas.
const (
	minTemplateWidth  = 400
	minTemplateHeight = 280
)

// UploadTemplate stores a background template image for an event. The image
// must decode as PNG or JPEG; it is scaled to the certificate canvas at
// render time, so roughly landscape uploads look best.
func (s *Service) UploadTemplate(ctx context.Context, eventID uuid.UUID, data []byte) (*store.Event, error) {
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if int64(len(data)) > s.cfg.Upload.MaxFileSize {
		return nil, &FileTooLargeError{Size: int64(len(data)), Max: s.cfg.Upload.MaxFileSize}
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("template is not a valid image: %w", err)
	}
	if format != "png" && format != "jpeg" {
		return nil, fmt.Errorf("unsupported template format %q, use PNG or JPEG", format)
	}
	if cfg.Width < minTemplateWidth || cfg.Height < minTemplateHeight {
		return nil, fmt.Errorf("template image is %dx%d, need at least %dx%d",
			cfg.Width, cfg.Height, minTemplateWidth, minTemplateHeight)
	}

	ext := ".png"
	if format == "jpeg" {
		ext = ".jpg"
	}
	dir := filepath.Join(s.cfg.Generate.OutputDir, "templates")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create template directory: %w", err)
	}
	path := filepath.Join(dir, eventID.String()+ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write template: %w", err)
	}

	// A re-upload in another format leaves the old file behind otherwise.
	if event.TemplatePath != "" && event.TemplatePath != path {
		os.Remove(event.TemplatePath)
	}

	if err := s.store.SetEventTemplate(ctx, eventID, path); err != nil {
		return nil, err
	}

	s.audit(ctx, store.AuditParams{
		ActorIP: ActorIPFromContext(ctx),
		Action:  store.ActionTemplateUpload,
		EventID: eventID,
		Detail:  fmt.Sprintf("%s %dx%d", format, cfg.Width, cfg.Height),
	})
	return s.store.GetEvent(ctx, eventID)
}

// RemoveTemplate deletes an event's background template, reverting its
// certificates to the default styled canvas.
func (s *Service) RemoveTemplate(ctx context.Context, eventID uuid.UUID) error {
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if event.TemplatePath == "" {
		return nil
	}

	if err := os.Remove(event.TemplatePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove template: %w", err)
	}
	return s.store.SetEventTemplate(ctx, eventID, "")
}

// loadTemplate decodes an event's background image for rendering. Events
// without a template return nil, which selects the default canvas.
func loadTemplate(path string) (image.Image, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open template: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode template: %w", err)
	}
	return img, nil
}
