package web

import (
	"net/http"

	"github.com/certforge/certforge/internal/core"
)

// handleUploadRoster replaces an event's recipients with the rows of an
// uploaded roster CSV.
func (s *Server) handleUploadRoster(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "eventID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, filename, ok := s.formFile(w, r)
	if !ok {
		return
	}

	summary, err := s.service.UploadRoster(withActor(r.Context(), r), eventID, filename, data)
	if err != nil {
		status := http.StatusBadRequest
		if notFound(err) {
			status = http.StatusNotFound
		}
		s.respondError(w, r, err, status)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// handlePreviewRoster parses a roster CSV and reports what an upload
// would import, without touching any event.
func (s *Server) handlePreviewRoster(w http.ResponseWriter, r *http.Request) {
	data, _, ok := s.formFile(w, r)
	if !ok {
		return
	}

	preview, err := s.service.PreviewRoster(r.Context(), data)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// handleRosterTemplate serves the CSV template for roster uploads.
func (s *Server) handleRosterTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="roster_template.csv"`)
	w.Write(core.RosterTemplate())
}
