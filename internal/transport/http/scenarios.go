package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"incident-training-service/internal/scoring"
)

// handleCreateScenario authors a scenario graph. Rejections come back as 400
// with the validation reason.
func (s *Server) handleCreateScenario(w http.ResponseWriter, r *http.Request) {
	var spec scoring.ScenarioSpec
	if !decode(w, r, &spec) {
		return
	}
	id, err := s.svc.Scenarios.Create(r.Context(), spec)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	scenarios, err := s.svc.Scenarios.List(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, scenarios)
}

func (s *Server) handleGetScenario(w http.ResponseWriter, r *http.Request) {
	scenario, err := s.svc.Scenarios.Get(r.Context(), chi.URLParam(r, "scenarioID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, scenario)
}
