package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"incident-training-service/internal/domain"
	"incident-training-service/internal/scoring"
)

// Submission is one answer sent by a responder.
type Submission struct {
	IncidentID string `json:"incidentId"`
	UserID     string `json:"userId"`
	RoleID     string `json:"roleId,omitempty"`
	QuestionID string `json:"questionId"`
	OptionID   string `json:"answerOptionId,omitempty"`
	AnswerText string `json:"answerText,omitempty"`
}

// IncidentService runs incidents and records responses against them.
type IncidentService struct {
	incidents IncidentStore
	scenarios ScenarioRepository
	directory DirectoryStore
	publisher Publisher
	now       func() time.Time
	newID     func() string
}

func NewIncidentService(incidents IncidentStore, scenarios ScenarioRepository, directory DirectoryStore, publisher Publisher) *IncidentService {
	return NewIncidentServiceWith(incidents, scenarios, directory, publisher, time.Now, uuid.NewString)
}

// NewIncidentServiceWith is test-only for deterministic timestamps and ids.
func NewIncidentServiceWith(incidents IncidentStore, scenarios ScenarioRepository, directory DirectoryStore, publisher Publisher, now func() time.Time, newID func() string) *IncidentService {
	return &IncidentService{
		incidents: incidents,
		scenarios: scenarios,
		directory: directory,
		publisher: publisher,
		now:       now,
		newID:     newID,
	}
}

// Start opens a new incident for scenarioID. A blank title defaults to the scenario title.
func (s *IncidentService) Start(ctx context.Context, scenarioID, title string) (domain.Incident, error) {
	scenario, err := s.scenarios.GetScenario(ctx, scenarioID)
	if err != nil {
		return domain.Incident{}, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = scenario.Title
	}
	startedAt := s.now().UTC()
	incident := domain.Incident{
		ID:         s.newID(),
		ScenarioID: scenario.ID,
		Title:      title,
		Status:     domain.StatusInProgress,
		StartedAt:  &startedAt,
		Responses:  []domain.Response{},
	}
	if err := s.incidents.SaveIncident(ctx, incident); err != nil {
		return domain.Incident{}, err
	}
	return incident, nil
}

// Complete closes an incident; later responses are refused.
func (s *IncidentService) Complete(ctx context.Context, incidentID string) (domain.Incident, error) {
	current, err := s.incidents.GetIncident(ctx, incidentID)
	if err != nil {
		return domain.Incident{}, err
	}
	if closed(current) {
		return domain.Incident{}, domain.ErrIncidentClosed
	}
	incident, err := s.incidents.CompleteIncident(ctx, incidentID, s.now().UTC())
	if err != nil {
		return domain.Incident{}, err
	}
	s.publish(ctx, incidentID)
	return incident, nil
}

func (s *IncidentService) Get(ctx context.Context, incidentID string) (domain.Incident, error) {
	return s.incidents.GetIncident(ctx, incidentID)
}

func (s *IncidentService) List(ctx context.Context) ([]domain.Incident, error) {
	return s.incidents.ListIncidents(ctx)
}

// RecordResponse validates and stores one answer, returning how it scored.
func (s *IncidentService) RecordResponse(ctx context.Context, sub Submission) (domain.Detail, error) {
	incident, err := s.incidents.GetIncident(ctx, sub.IncidentID)
	if err != nil {
		return domain.Detail{}, err
	}
	if closed(incident) {
		return domain.Detail{}, domain.ErrIncidentClosed
	}

	user, err := s.directory.GetUser(ctx, sub.UserID)
	if err != nil {
		return domain.Detail{}, err
	}
	roleID := sub.RoleID
	if roleID == "" {
		roleID = user.RoleID
	} else if err := requireRole(ctx, s.directory, roleID); err != nil {
		return domain.Detail{}, err
	}

	scenario, err := s.scenarios.GetScenario(ctx, incident.ScenarioID)
	if err != nil {
		return domain.Detail{}, err
	}
	question, ok := scenario.Question(sub.QuestionID)
	if !ok {
		return domain.Detail{}, domain.ErrQuestionNotFound
	}

	var option *domain.AnswerOption
	answerText := strings.TrimSpace(sub.AnswerText)
	if sub.OptionID != "" {
		if option, ok = question.Option(sub.OptionID); !ok {
			return domain.Detail{}, domain.ErrOptionNotFound
		}
	} else if answerText == "" {
		return domain.Detail{}, fmt.Errorf("%w: answer needs an option or free text", domain.ErrInvalidRequest)
	}

	response := domain.Response{
		ID:         s.newID(),
		IncidentID: incident.ID,
		QuestionID: question.ID,
		OptionID:   sub.OptionID,
		AnswerText: answerText,
		UserID:     user.ID,
		RoleID:     roleID,
		AnsweredAt: s.now().UTC(),
	}
	if err := s.incidents.SaveResponse(ctx, response); err != nil {
		return domain.Detail{}, err
	}

	detail := domain.Detail{QuestionID: question.ID, Question: question.Text, Answer: answerText}
	if option != nil {
		detail.Points = option.Weight
		detail.Answer = option.Text
	}
	if detail.Answer == "" {
		detail.Answer = "-"
	}
	detail.Verdict = scoring.Verdict(option, detail.Points)

	s.publish(ctx, incident.ID)
	return detail, nil
}

func (s *IncidentService) publish(ctx context.Context, incidentID string) {
	if s.publisher != nil {
		s.publisher.Publish(ctx, incidentID)
	}
}

func closed(incident domain.Incident) bool {
	return incident.Status == domain.StatusCompleted || incident.CompletedAt != nil
}
