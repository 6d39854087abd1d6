package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"incident-training-service/internal/app"
	"incident-training-service/internal/domain"
)

type startIncidentRequest struct {
	ScenarioID string `json:"scenarioId"`
	Title      string `json:"title"`
}

type recordResponseRequest struct {
	UserID     string `json:"userId"`
	RoleID     string `json:"roleId"`
	QuestionID string `json:"questionId"`
	OptionID   string `json:"answerOptionId"`
	AnswerText string `json:"answerText"`
}

// incidentView adds the derived status to the stored incident.
type incidentView struct {
	domain.Incident
	EffectiveStatus domain.IncidentStatus `json:"effectiveStatus"`
}

func viewOf(incident domain.Incident) incidentView {
	return incidentView{Incident: incident, EffectiveStatus: incident.EffectiveStatus()}
}

func (s *Server) handleStartIncident(w http.ResponseWriter, r *http.Request) {
	var req startIncidentRequest
	if !decode(w, r, &req) {
		return
	}
	if req.ScenarioID == "" {
		respondErr(w, http.StatusBadRequest, "scenarioId is required")
		return
	}
	incident, err := s.svc.Incidents.Start(r.Context(), req.ScenarioID, req.Title)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, viewOf(incident))
}

func (s *Server) handleListIncidents(w http.ResponseWriter, r *http.Request) {
	incidents, err := s.svc.Incidents.List(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	views := make([]incidentView, 0, len(incidents))
	for _, incident := range incidents {
		views = append(views, viewOf(incident))
	}
	respond(w, http.StatusOK, views)
}

func (s *Server) handleGetIncident(w http.ResponseWriter, r *http.Request) {
	incident, err := s.svc.Incidents.Get(r.Context(), chi.URLParam(r, "incidentID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, viewOf(incident))
}

func (s *Server) handleCompleteIncident(w http.ResponseWriter, r *http.Request) {
	incident, err := s.svc.Incidents.Complete(r.Context(), chi.URLParam(r, "incidentID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, viewOf(incident))
}

// handleRecordResponse stores one answer and returns how it scored.
func (s *Server) handleRecordResponse(w http.ResponseWriter, r *http.Request) {
	var req recordResponseRequest
	if !decode(w, r, &req) {
		return
	}
	detail, err := s.svc.Incidents.RecordResponse(r.Context(), app.Submission{
		IncidentID: chi.URLParam(r, "incidentID"),
		UserID:     req.UserID,
		RoleID:     req.RoleID,
		QuestionID: req.QuestionID,
		OptionID:   req.OptionID,
		AnswerText: req.AnswerText,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, detail)
}

func (s *Server) handleIncidentResults(w http.ResponseWriter, r *http.Request) {
	outcomes, err := s.svc.Reports.IncidentResults(r.Context(), chi.URLParam(r, "incidentID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, outcomes)
}
