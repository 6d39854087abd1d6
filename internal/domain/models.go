package domain

import "time"

// Role is a trainee role with a clearance level.
type Role struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Clearance ClearanceLevel `json:"clearance"`
}

// User is a trainee or administrator.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	RoleID   string `json:"roleId,omitempty"`
}

// AnswerOption is one selectable choice for a question.
type AnswerOption struct {
	ID         string `json:"id"`
	QuestionID string `json:"questionId"`
	Text       string `json:"text"`
	Weight     int    `json:"weight"`
	IsCorrect  bool   `json:"isCorrect"`
	Position   int    `json:"position"`
}

// Question is a single decision point within a scenario.
type Question struct {
	ID         string         `json:"id"`
	ScenarioID string         `json:"scenarioId"`
	Text       string         `json:"text"`
	Priority   Priority       `json:"priority"`
	Position   int            `json:"position"`
	MaxPoints  int            `json:"maxPoints"`
	Options    []AnswerOption `json:"answerOptions"`
	RoleIDs    []string       `json:"roleIds,omitempty"`
}

// Scenario is an authored training case.
type Scenario struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Risk        RiskLevel  `json:"risk"`
	CreatedAt   time.Time  `json:"createdAt"`
	Questions   []Question `json:"questions"`
}

// Question returns the scenario's question with the given id.
func (s *Scenario) Question(id string) (*Question, bool) {
	for i := range s.Questions {
		if s.Questions[i].ID == id {
			return &s.Questions[i], true
		}
	}
	return nil, false
}

// Option returns the question's option with the given id.
func (q *Question) Option(id string) (*AnswerOption, bool) {
	for i := range q.Options {
		if q.Options[i].ID == id {
			return &q.Options[i], true
		}
	}
	return nil, false
}

// Response is one recorded answer by one user to one question within one incident.
// OptionID is empty when no option was chosen; AnswerText is the free-text fallback.
type Response struct {
	ID         string    `json:"id"`
	IncidentID string    `json:"incidentId"`
	QuestionID string    `json:"questionId"`
	OptionID   string    `json:"answerOptionId,omitempty"`
	AnswerText string    `json:"answerText,omitempty"`
	UserID     string    `json:"userId"`
	RoleID     string    `json:"roleId,omitempty"`
	AnsweredAt time.Time `json:"answeredAt"`
}

// Incident is one run of a scenario.
type Incident struct {
	ID          string         `json:"id"`
	ScenarioID  string         `json:"scenarioId"`
	Title       string         `json:"title"`
	Status      IncidentStatus `json:"status"`
	StartedAt   *time.Time     `json:"startedAt,omitempty"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
	Responses   []Response     `json:"responses,omitempty"`
}

// EffectiveStatus reports Completed when a completion time was recorded or
// when responses exist without one; otherwise the stored status.
func (i *Incident) EffectiveStatus() IncidentStatus {
	if i.CompletedAt != nil || len(i.Responses) > 0 {
		return StatusCompleted
	}
	return i.Status
}

// Snapshot is a materialized graph of everything a report is computed from.
// Questions holds questions referenced by responses that may not be present in
// their incident's scenario.
type Snapshot struct {
	Scenarios []Scenario
	Incidents []Incident
	Users     []User
	Roles     []Role
	Questions []Question
}
