package domain

import "time"

// Verdict classifies a single response.
type Verdict string

const (
	VerdictCorrect   Verdict = "correct"
	VerdictPartial   Verdict = "partial"
	VerdictIncorrect Verdict = "incorrect"
)

// OutcomeStatus is the pass/fail grade of an outcome.
type OutcomeStatus string

const (
	OutcomePass OutcomeStatus = "pass"
	OutcomeFail OutcomeStatus = "fail"
)

// Detail is the per-question breakdown of an outcome.
type Detail struct {
	QuestionID string  `json:"questionId"`
	Question   string  `json:"question"`
	Answer     string  `json:"answer"`
	Points     int     `json:"points"`
	Verdict    Verdict `json:"verdict"`
}

// Outcome is the scored result of one user's participation in one incident.
type Outcome struct {
	ID              string        `json:"id"`
	IncidentID      string        `json:"incidentId"`
	ScenarioID      string        `json:"scenarioId,omitempty"`
	ScenarioTitle   string        `json:"scenarioTitle"`
	UserID          string        `json:"userId"`
	UserEmail       string        `json:"userEmail"`
	RoleID          string        `json:"roleId,omitempty"`
	RoleName        string        `json:"roleName,omitempty"`
	Score           int           `json:"score"`
	MaxScore        int           `json:"maxScore"`
	Pct             int           `json:"pct"`
	Status          OutcomeStatus `json:"status"`
	CompletedAt     *time.Time    `json:"completedAt"`
	DurationSeconds int64         `json:"durationSeconds"`
	Details         []Detail      `json:"details"`
}

// ResponseDetail is the raw per-response record in a user's history.
type ResponseDetail struct {
	QuestionID     string     `json:"questionId"`
	QuestionText   string     `json:"questionText"`
	AnswerOptionID string     `json:"answerOptionId,omitempty"`
	AnswerText     string     `json:"answerText"`
	IsCorrect      bool       `json:"isCorrect"`
	Points         int        `json:"points"`
	Verdict        Verdict    `json:"verdict"`
	AnsweredAt     *time.Time `json:"answeredAt,omitempty"`
}

// CompletedIncident is one incident a user has responded to.
type CompletedIncident struct {
	IncidentID      string           `json:"incidentId"`
	IncidentTitle   string           `json:"incidentTitle"`
	ScenarioID      string           `json:"scenarioId,omitempty"`
	ScenarioTitle   string           `json:"scenarioTitle"`
	Score           int              `json:"score"`
	MaxScore        int              `json:"maxScore"`
	Pct             int              `json:"pct"`
	Status          OutcomeStatus    `json:"status"`
	StartedAt       *time.Time       `json:"startedAt"`
	CompletedAt     *time.Time       `json:"completedAt"`
	DurationSeconds int64            `json:"durationSeconds"`
	Details         []Detail         `json:"details"`
	Responses       []ResponseDetail `json:"responses"`
}

// PendingIncident is an incident the user has not responded to.
type PendingIncident struct {
	IncidentID    string     `json:"incidentId"`
	IncidentTitle string     `json:"incidentTitle"`
	ScenarioTitle string     `json:"scenarioTitle"`
	Status        string     `json:"status"`
	StartedAt     *time.Time `json:"startedAt"`
}

// UserDetail summarizes a single user across all incidents.
type UserDetail struct {
	UserID             string              `json:"userId"`
	Username           string              `json:"username"`
	Email              string              `json:"email,omitempty"`
	RoleID             string              `json:"roleId,omitempty"`
	RoleName           string              `json:"roleName,omitempty"`
	CompletedIncidents []CompletedIncident `json:"completedIncidents"`
	PendingIncidents   []PendingIncident   `json:"pendingIncidents"`
}

// IncidentBoard is the live view of one incident's outcomes.
type IncidentBoard struct {
	IncidentID string    `json:"incidentId"`
	Outcomes   []Outcome `json:"outcomes"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
