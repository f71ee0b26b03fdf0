package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/certforge/certforge/internal/store"
)

// createEventRequest is the JSON body for creating an event.
type createEventRequest struct {
	Title       string `json:"title"`
	Issuer      string `json:"issuer"`
	IssuedOn    string `json:"issued_on,omitempty"`
	AccentColor string `json:"accent_color,omitempty"`
}

// handleCreateEvent creates a certification event.
func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	params := store.EventParams{
		Title:       req.Title,
		Issuer:      req.Issuer,
		AccentColor: req.AccentColor,
	}
	if req.IssuedOn != "" {
		issued, err := time.Parse("2006-01-02", req.IssuedOn)
		if err != nil {
			writeError(w, http.StatusBadRequest, "issued_on must be a YYYY-MM-DD date")
			return
		}
		params.IssuedOn = &issued
	}

	event, err := s.service.CreateEvent(withActor(r.Context(), r), params)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// handleListEvents returns all events, newest first.
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.service.ListEvents(r.Context())
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// handleGetEvent returns one event with its recipient count.
func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "eventID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	event, err := s.service.GetEvent(r.Context(), eventID)
	if err != nil {
		status := http.StatusInternalServerError
		if notFound(err) {
			status = http.StatusNotFound
		}
		s.respondError(w, r, err, status)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// handleListRecipients returns an event's roster in upload order.
func (s *Server) handleListRecipients(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "eventID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	recipients, err := s.service.ListRecipients(r.Context(), eventID)
	if err != nil {
		status := http.StatusInternalServerError
		if notFound(err) {
			status = http.StatusNotFound
		}
		s.respondError(w, r, err, status)
		return
	}
	writeJSON(w, http.StatusOK, recipients)
}

// handleUploadTemplate stores a background image for an event's
// certificates.
func (s *Server) handleUploadTemplate(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "eventID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, _, ok := s.formFile(w, r)
	if !ok {
		return
	}

	event, err := s.service.UploadTemplate(withActor(r.Context(), r), eventID, data)
	if err != nil {
		status := http.StatusBadRequest
		if notFound(err) {
			status = http.StatusNotFound
		}
		s.respondError(w, r, err, status)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// handleRemoveTemplate deletes an event's background image, reverting to
// the default canvas.
func (s *Server) handleRemoveTemplate(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "eventID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.service.RemoveTemplate(withActor(r.Context(), r), eventID); err != nil {
		status := http.StatusInternalServerError
		if notFound(err) {
			status = http.StatusNotFound
		}
		s.respondError(w, r, err, status)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
