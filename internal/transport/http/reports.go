package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleResults serves every graded outcome, newest completion first.
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	outcomes, err := s.svc.Reports.Results(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, outcomes)
}

func (s *Server) handleUserResults(w http.ResponseWriter, r *http.Request) {
	detail, err := s.svc.Reports.UserDetail(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, detail)
}
