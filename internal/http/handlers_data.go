package http

import (
	"net/http"

	"kasirpos/internal/store"
)

func (s *Server) handleDataSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.backups.Summary(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sum)
}

func (s *Server) handleDataExport(w http.ResponseWriter, r *http.Request) {
	snap, err := s.backups.Export(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="kasirpos-backup.json"`)
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDataImport(w http.ResponseWriter, r *http.Request) {
	var snap store.Snapshot
	if err := decodeJSONLimit(r, &snap, maxImportBytes); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sum, err := s.backups.Import(r.Context(), snap)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	s.invalidateReadCaches()
	respondJSON(w, http.StatusOK, sum)
}
