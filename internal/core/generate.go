package core

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/certforge/certforge/internal/archive"
	"github.com/certforge/certforge/internal/logging"
	"github.com/certforge/certforge/internal/render"
	"github.com/certforge/certforge/internal/store"
)

// issuedOnFormat is the display format for the issue date on certificates.
const issuedOnFormat = "January 2, 2006"

// persistTimeout bounds the final database write of a job that may have
// outlived its own context.
const persistTimeout = 10 * time.Second

// ErrNoRecipients is returned when generation starts on an event whose
// roster is empty.
var ErrNoRecipients = errors.New("event has no recipients, upload a roster first")

// StartGeneration begins an asynchronous generation job for an event.
// Returns the job ID immediately. Use Subscribe or JobProgress for updates
// and JobResult for the outcome.
func (s *Service) StartGeneration(ctx context.Context, eventID uuid.UUID) (uuid.UUID, error) {
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return uuid.Nil, err
	}

	accent, err := render.ParseHexColor(event.AccentColor)
	if err != nil {
		return uuid.Nil, fmt.Errorf("event accent color: %w", err)
	}

	recipients, err := s.store.ListRecipients(ctx, eventID)
	if err != nil {
		return uuid.Nil, err
	}
	if len(recipients) == 0 {
		return uuid.Nil, ErrNoRecipients
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return uuid.Nil, err
	}

	jobID := uuid.New()
	if err := s.store.CreateJob(ctx, jobID, eventID, string(PhaseStarting), len(recipients)); err != nil {
		s.limiter.Release()
		return uuid.Nil, err
	}

	// The job context is detached from the request so the job survives the
	// response.
	jobCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Generate.Timeout)

	job := &activeJob{
		ID:      jobID,
		EventID: eventID,
		Cancel:  cancel,
		Done:    make(chan struct{}),
		progress: Progress{
			JobID:   jobID,
			EventID: eventID,
			Phase:   PhaseStarting,
			Total:   len(recipients),
		},
	}
	s.register(job)

	s.audit(ctx, store.AuditParams{
		ActorIP: ActorIPFromContext(ctx),
		Action:  store.ActionGenerate,
		EventID: eventID,
		Detail:  fmt.Sprintf("job %s, %d certificates", jobID, len(recipients)),
	})

	go s.runGeneration(jobCtx, job, event, accent, recipients)

	return jobID, nil
}

// runGeneration renders every certificate, bundles the archive and records
// the terminal state. Render failures do not abort the job; they surface in
// the result and the archive manifest.
func (s *Service) runGeneration(ctx context.Context, job *activeJob, event *store.Event, accent color.RGBA, recipients []store.Recipient) {
	start := time.Now()
	log := logging.ForJob(ctx, job.ID)

	defer func() {
		job.Cancel()
		s.limiter.Release()
		s.cleanup(job.ID, jobRetention)
	}()

	workDir, err := os.MkdirTemp(s.cfg.Generate.OutputDir, "job-*")
	if err != nil {
		s.finishJob(job, start, PhaseFailed, fmt.Sprintf("create work directory: %v", err), 0, nil, "", 0)
		return
	}
	defer os.RemoveAll(workDir)

	job.update(func(p *Progress) { p.Phase = PhaseRendering })
	log.Info("generation started",
		"event_id", event.ID,
		"recipients", len(recipients),
		"template", event.HasTemplate,
	)

	// Decoded once and shared read-only across the render workers.
	background, err := loadTemplate(event.TemplatePath)
	if err != nil {
		log.Warn("event template unusable, using default canvas", "error", err)
		background = nil
	}

	issuedOn := ""
	if event.IssuedOn != nil {
		issuedOn = event.IssuedOn.Format(issuedOnFormat)
	}

	var (
		mu       sync.Mutex
		files    = make([]*archive.File, len(recipients))
		failures []FailedCertificate
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Generate.Workers)

	for i, rec := range recipients {
		i, rec := i, rec // per-iteration copies; required for correctness when compiled before Go 1.22 loop semantics
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			png, err := s.renderSafe(render.Certificate{
				RecipientName:   rec.Name,
				CertificationID: rec.CertificationID,
				EventTitle:      event.Title,
				Issuer:          event.Issuer,
				IssuedOn:        issuedOn,
				Accent:          accent,
				Background:      background,
			})
			if err == nil {
				path := filepath.Join(workDir, fmt.Sprintf("%06d.png", i))
				if err = os.WriteFile(path, png, 0o644); err == nil {
					mu.Lock()
					files[i] = &archive.File{
						Name: render.CertificateFileName(rec.Name, rec.CertificationID),
						Path: path,
					}
					mu.Unlock()
					job.update(func(p *Progress) { p.Rendered++ })
					return nil
				}
			}

			mu.Lock()
			failures = append(failures, FailedCertificate{
				Row:             rec.Position + 1,
				RecipientName:   rec.Name,
				CertificationID: rec.CertificationID,
				Reason:          err.Error(),
			})
			mu.Unlock()
			job.update(func(p *Progress) { p.Failed++ })
			log.Warn("certificate render failed",
				"certification_id", rec.CertificationID, "error", err)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		snap := job.snapshot()
		if errors.Is(err, context.DeadlineExceeded) {
			s.finishJob(job, start, PhaseFailed, "generation timed out", snap.Rendered, failures, "", 0)
		} else {
			s.finishJob(job, start, PhaseCancelled, "cancelled", snap.Rendered, failures, "", 0)
		}
		log.Info("generation stopped", "reason", err)
		return
	}

	sort.Slice(failures, func(a, b int) bool { return failures[a].Row < failures[b].Row })

	job.update(func(p *Progress) { p.Phase = PhaseArchiving })

	members, names := dedupeMembers(files)
	manifest := buildManifest(recipients, files, names, failures)

	archivePath := filepath.Join(s.cfg.Generate.OutputDir, job.ID.String()+".zip")
	size, err := archive.Create(archivePath, members, manifest)
	if err != nil {
		s.finishJob(job, start, PhaseFailed, fmt.Sprintf("create archive: %v", err), len(members), failures, "", 0)
		return
	}

	s.finishJob(job, start, PhaseComplete, "", len(members), failures, archivePath, size)
	log.Info("generation complete",
		"rendered", len(members),
		"failed", len(failures),
		"archive_bytes", size,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// renderSafe turns a render panic into an error so one bad certificate
// cannot take down the worker pool.
func (s *Service) renderSafe(c render.Certificate) (png []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render panic: %v", r)
		}
	}()
	return s.renderer.Render(c)
}

// finishJob records a terminal state in memory and in the database. The
// database write uses a fresh context since the job's own may be done.
func (s *Service) finishJob(job *activeJob, start time.Time, phase JobPhase, errMsg string, rendered int, failures []FailedCertificate, archivePath string, archiveSize int64) {
	persistCtx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := s.store.FinishJob(persistCtx, job.ID, string(phase), rendered, len(failures), archivePath, archiveSize, errMsg); err != nil {
		logging.ForJob(persistCtx, job.ID).Error("persist job result failed", "error", err)
	}

	job.update(func(p *Progress) {
		p.Phase = phase
		p.Rendered = rendered
		p.Failed = len(failures)
		p.Error = errMsg
	})

	job.finish(&JobResult{
		JobID:       job.ID,
		EventID:     job.EventID,
		Phase:       phase,
		Total:       job.snapshot().Total,
		Rendered:    rendered,
		FailedCount: len(failures),
		Failed:      failures,
		ArchiveSize: archiveSize,
		Duration:    time.Since(start),
		Error:       errMsg,
	})
}

// dedupeMembers flattens rendered files into archive members, suffixing the
// rare member name collision left after sanitization. names holds the final
// member name per recipient index for the manifest.
func dedupeMembers(files []*archive.File) ([]archive.File, []string) {
	used := make(map[string]int)
	members := make([]archive.File, 0, len(files))
	names := make([]string, len(files))

	for i, f := range files {
		if f == nil {
			continue
		}
		name := f.Name
		if n := used[f.Name]; n > 0 {
			name = strings.TrimSuffix(name, ".png") + fmt.Sprintf("_%d.png", n+1)
		}
		used[f.Name]++
		names[i] = name
		members = append(members, archive.File{Name: name, Path: f.Path})
	}
	return members, names
}

// buildManifest produces one manifest line per recipient in roster order.
func buildManifest(recipients []store.Recipient, files []*archive.File, names []string, failures []FailedCertificate) []archive.ManifestEntry {
	reasons := make(map[int]string, len(failures))
	for _, f := range failures {
		reasons[f.Row] = f.Reason
	}

	manifest := make([]archive.ManifestEntry, 0, len(recipients))
	for i, rec := range recipients {
		row := rec.Position + 1
		entry := archive.ManifestEntry{
			Row:             row,
			Name:            rec.Name,
			CertificationID: rec.CertificationID,
			Email:           rec.Email,
		}
		if files[i] != nil {
			entry.File = names[i]
			entry.Status = archive.StatusGenerated
		} else {
			entry.Status = archive.StatusFailed
			entry.Detail = reasons[row]
		}
		manifest = append(manifest, entry)
	}
	return manifest
}
