package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/certforge/certforge/internal/core"
)

// sendTimeout bounds one email delivery run. SMTP is slow and a large
// roster at a few seconds per message does not fit the request timeout.
const sendTimeout = 10 * time.Minute

// handleStartGeneration kicks off an asynchronous generation job and
// returns its id. Progress arrives via the progress stream.
func (s *Server) handleStartGeneration(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "eventID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	jobID, err := s.service.StartGeneration(withActor(r.Context(), r), eventID)
	if err != nil {
		status := http.StatusBadRequest
		switch {
		case notFound(err):
			status = http.StatusNotFound
		case errors.Is(err, core.ErrTooManyJobs):
			status = http.StatusTooManyRequests
		}
		s.respondError(w, r, err, status)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": jobID.String()})
}

// handleJobProgress streams job progress via Server-Sent Events. The event
// id is the completion percentage, so a reconnecting client can pass
// lastEventId to skip states it has already seen.
func (s *Server) handleJobProgress(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "jobID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	lastEventIDStr := r.URL.Query().Get("lastEventId")
	var lastEventID int
	if lastEventIDStr != "" {
		lastEventID, _ = strconv.Atoi(lastEventIDStr)
	}

	updates, err := s.service.Subscribe(jobID)
	if err != nil {
		// The job already left the live window. Replay the stored state so
		// the client still gets a terminal event.
		s.replayStoredProgress(w, r, jobID)
		return
	}

	flusher, ok := startEventStream(w)
	if !ok {
		return
	}

	for {
		select {
		case progress, open := <-updates:
			if !open {
				// Channel closed, the job reached a terminal phase.
				fmt.Fprintf(w, "event: complete\ndata: {}\n\n")
				flusher.Flush()
				return
			}

			percent := progress.Percent()
			if lastEventIDStr != "" && percent <= lastEventID {
				continue
			}

			data, _ := json.Marshal(progress)
			fmt.Fprintf(w, "id: %d\nevent: progress\ndata: %s\n\n", percent, data)
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

// replayStoredProgress answers a progress request for a job no longer in
// memory with its persisted state and, when terminal, a closing event.
func (s *Server) replayStoredProgress(w http.ResponseWriter, r *http.Request, jobID uuid.UUID) {
	progress, err := s.service.JobProgress(r.Context(), jobID)
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}

	flusher, ok := startEventStream(w)
	if !ok {
		return
	}

	data, _ := json.Marshal(progress)
	fmt.Fprintf(w, "id: %d\nevent: progress\ndata: %s\n\n", progress.Percent(), data)
	if progress.Phase.Terminal() {
		fmt.Fprintf(w, "event: complete\ndata: {}\n\n")
	}
	flusher.Flush()
}

// startEventStream sets SSE headers and returns the flusher.
func startEventStream(w http.ResponseWriter) (http.Flusher, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return nil, false
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	return flusher, true
}

// handleJobResult returns the final outcome of a job, waiting for the job
// to finish if it is still running. The wait is bounded by the request
// timeout; the timeout middleware answers when the job outlasts it.
func (s *Server) handleJobResult(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "jobID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.service.JobResult(r.Context(), jobID)
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		status := http.StatusInternalServerError
		if notFound(err) {
			status = http.StatusNotFound
		}
		s.respondError(w, r, err, status)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleCancelJob cancels an in-progress generation job.
func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "jobID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.service.CancelJob(withActor(r.Context(), r), jobID); err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelling"})
}

// handleDownloadArchive serves a completed job's certificate archive.
func (s *Server) handleDownloadArchive(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "jobID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := s.service.ArchiveFile(withActor(r.Context(), r), jobID)
	if err != nil {
		status := http.StatusConflict
		switch {
		case notFound(err):
			status = http.StatusNotFound
		case strings.Contains(err.Error(), "no longer available"):
			status = http.StatusGone
		}
		s.respondError(w, r, err, status)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="certificates_%s.zip"`, job.ID))
	http.ServeFile(w, r, job.ArchivePath)
}

// handleSendCertificates emails a completed job's certificates to their
// recipients and reports the delivery outcome.
func (s *Server) handleSendCertificates(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "jobID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(withActor(r.Context(), r), sendTimeout)
	defer cancel()

	report, err := s.service.SendCertificates(ctx, jobID)
	if err != nil {
		status := http.StatusConflict
		switch {
		case errors.Is(err, core.ErrEmailDisabled):
			status = http.StatusServiceUnavailable
		case notFound(err):
			status = http.StatusNotFound
		}
		s.respondError(w, r, err, status)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleListJobs returns recent generation jobs across all events.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.service.JobHistory(r.Context(), uuid.Nil, queryInt(r, "limit", 50))
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

// handleEventHistory returns one event's generation jobs, newest first.
func (s *Server) handleEventHistory(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "eventID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	jobs, err := s.service.JobHistory(r.Context(), eventID, queryInt(r, "limit", 50))
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}
