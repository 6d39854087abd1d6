package postgres

import (
	"time"

	"github.com/uptrace/bun"
	"incident-training-service/internal/domain"
)

// Row models mirror the tables one to one. Category columns are smallints
// holding the domain ordinals.

type roleRow struct {
	bun.BaseModel `bun:"table:roles"`

	ID        string `bun:"id,pk"`
	Name      string `bun:"name"`
	Clearance int    `bun:"clearance"`
}

type userRow struct {
	bun.BaseModel `bun:"table:users"`

	ID       string `bun:"id,pk"`
	Username string `bun:"username"`
	Email    string `bun:"email"`
	RoleID   string `bun:"role_id,nullzero"`
}

type scenarioRow struct {
	bun.BaseModel `bun:"table:scenarios"`

	ID          string    `bun:"id,pk"`
	Title       string    `bun:"title"`
	Description string    `bun:"description"`
	Risk        int       `bun:"risk"`
	CreatedAt   time.Time `bun:"created_at"`
}

type questionRow struct {
	bun.BaseModel `bun:"table:questions"`

	ID         string `bun:"id,pk"`
	ScenarioID string `bun:"scenario_id"`
	Text       string `bun:"text"`
	Priority   int    `bun:"priority"`
	Position   int    `bun:"position"`
	MaxPoints  int    `bun:"max_points"`
}

type optionRow struct {
	bun.BaseModel `bun:"table:answer_options"`

	ID         string `bun:"id,pk"`
	QuestionID string `bun:"question_id"`
	Text       string `bun:"text"`
	Weight     int    `bun:"weight"`
	IsCorrect  bool   `bun:"is_correct"`
	Position   int    `bun:"position"`
}

type questionRoleRow struct {
	bun.BaseModel `bun:"table:question_roles"`

	QuestionID string `bun:"question_id,pk"`
	RoleID     string `bun:"role_id,pk"`
	Position   int    `bun:"position"`
}

type incidentRow struct {
	bun.BaseModel `bun:"table:incidents"`

	ID          string     `bun:"id,pk"`
	ScenarioID  string     `bun:"scenario_id"`
	Title       string     `bun:"title"`
	Status      int        `bun:"status"`
	StartedAt   *time.Time `bun:"started_at"`
	CompletedAt *time.Time `bun:"completed_at"`
}

type responseRow struct {
	bun.BaseModel `bun:"table:responses"`

	ID         string    `bun:"id,pk"`
	IncidentID string    `bun:"incident_id"`
	QuestionID string    `bun:"question_id,nullzero"`
	OptionID   string    `bun:"answer_option_id,nullzero"`
	AnswerText string    `bun:"answer_text"`
	UserID     string    `bun:"user_id"`
	RoleID     string    `bun:"role_id,nullzero"`
	AnsweredAt time.Time `bun:"answered_at"`
}

func toRoleRow(r domain.Role) roleRow {
	return roleRow{ID: r.ID, Name: r.Name, Clearance: int(r.Clearance)}
}

func (r roleRow) toDomain() domain.Role {
	return domain.Role{ID: r.ID, Name: r.Name, Clearance: domain.ClearanceLevel(r.Clearance)}
}

func toUserRow(u domain.User) userRow {
	return userRow{ID: u.ID, Username: u.Username, Email: u.Email, RoleID: u.RoleID}
}

func (u userRow) toDomain() domain.User {
	return domain.User{ID: u.ID, Username: u.Username, Email: u.Email, RoleID: u.RoleID}
}

func toIncidentRow(i domain.Incident) incidentRow {
	return incidentRow{
		ID:          i.ID,
		ScenarioID:  i.ScenarioID,
		Title:       i.Title,
		Status:      int(i.Status),
		StartedAt:   i.StartedAt,
		CompletedAt: i.CompletedAt,
	}
}

func (i incidentRow) toDomain() domain.Incident {
	return domain.Incident{
		ID:          i.ID,
		ScenarioID:  i.ScenarioID,
		Title:       i.Title,
		Status:      domain.IncidentStatus(i.Status),
		StartedAt:   i.StartedAt,
		CompletedAt: i.CompletedAt,
		Responses:   []domain.Response{},
	}
}

func toResponseRow(r domain.Response) responseRow {
	return responseRow{
		ID:         r.ID,
		IncidentID: r.IncidentID,
		QuestionID: r.QuestionID,
		OptionID:   r.OptionID,
		AnswerText: r.AnswerText,
		UserID:     r.UserID,
		RoleID:     r.RoleID,
		AnsweredAt: r.AnsweredAt,
	}
}

func (r responseRow) toDomain() domain.Response {
	return domain.Response{
		ID:         r.ID,
		IncidentID: r.IncidentID,
		QuestionID: r.QuestionID,
		OptionID:   r.OptionID,
		AnswerText: r.AnswerText,
		UserID:     r.UserID,
		RoleID:     r.RoleID,
		AnsweredAt: r.AnsweredAt,
	}
}

// scenarioRows flattens a scenario graph into insertable rows.
func scenarioRows(s domain.Scenario) (scenarioRow, []questionRow, []optionRow, []questionRoleRow) {
	sc := scenarioRow{
		ID:          s.ID,
		Title:       s.Title,
		Description: s.Description,
		Risk:        int(s.Risk),
		CreatedAt:   s.CreatedAt,
	}
	var (
		questions []questionRow
		options   []optionRow
		links     []questionRoleRow
	)
	for _, q := range s.Questions {
		questions = append(questions, questionRow{
			ID:         q.ID,
			ScenarioID: s.ID,
			Text:       q.Text,
			Priority:   int(q.Priority),
			Position:   q.Position,
			MaxPoints:  q.MaxPoints,
		})
		for _, o := range q.Options {
			options = append(options, optionRow{
				ID:         o.ID,
				QuestionID: q.ID,
				Text:       o.Text,
				Weight:     o.Weight,
				IsCorrect:  o.IsCorrect,
				Position:   o.Position,
			})
		}
		for i, roleID := range q.RoleIDs {
			links = append(links, questionRoleRow{QuestionID: q.ID, RoleID: roleID, Position: i})
		}
	}
	return sc, questions, options, links
}

// assembleScenarios rebuilds scenario graphs from flat rows. Child rows must
// arrive already ordered by position; rows whose parent is absent are dropped.
func assembleScenarios(scenarios []scenarioRow, questions []questionRow, options []optionRow, links []questionRoleRow) []domain.Scenario {
	optionsByQuestion := make(map[string][]domain.AnswerOption)
	for _, o := range options {
		optionsByQuestion[o.QuestionID] = append(optionsByQuestion[o.QuestionID], domain.AnswerOption{
			ID:         o.ID,
			QuestionID: o.QuestionID,
			Text:       o.Text,
			Weight:     o.Weight,
			IsCorrect:  o.IsCorrect,
			Position:   o.Position,
		})
	}
	rolesByQuestion := make(map[string][]string)
	for _, l := range links {
		rolesByQuestion[l.QuestionID] = append(rolesByQuestion[l.QuestionID], l.RoleID)
	}
	questionsByScenario := make(map[string][]domain.Question)
	for _, q := range questions {
		opts := optionsByQuestion[q.ID]
		if opts == nil {
			opts = []domain.AnswerOption{}
		}
		questionsByScenario[q.ScenarioID] = append(questionsByScenario[q.ScenarioID], domain.Question{
			ID:         q.ID,
			ScenarioID: q.ScenarioID,
			Text:       q.Text,
			Priority:   domain.Priority(q.Priority),
			Position:   q.Position,
			MaxPoints:  q.MaxPoints,
			Options:    opts,
			RoleIDs:    rolesByQuestion[q.ID],
		})
	}

	out := make([]domain.Scenario, 0, len(scenarios))
	for _, s := range scenarios {
		qs := questionsByScenario[s.ID]
		if qs == nil {
			qs = []domain.Question{}
		}
		out = append(out, domain.Scenario{
			ID:          s.ID,
			Title:       s.Title,
			Description: s.Description,
			Risk:        domain.RiskLevel(s.Risk),
			CreatedAt:   s.CreatedAt,
			Questions:   qs,
		})
	}
	return out
}

// attachResponses groups responses under their incidents, preserving response order.
func attachResponses(incidents []incidentRow, responses []responseRow) []domain.Incident {
	byIncident := make(map[string][]domain.Response)
	for _, r := range responses {
		byIncident[r.IncidentID] = append(byIncident[r.IncidentID], r.toDomain())
	}
	out := make([]domain.Incident, 0, len(incidents))
	for _, row := range incidents {
		incident := row.toDomain()
		if rs, ok := byIncident[row.ID]; ok {
			incident.Responses = rs
		}
		out = append(out, incident)
	}
	return out
}
