package scoring

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"incident-training-service/internal/domain"
)

// Aggregator turns recorded responses into graded outcomes.
type Aggregator struct {
	newID func() string
}

// NewAggregator returns an Aggregator issuing random outcome ids.
func NewAggregator() *Aggregator {
	return &Aggregator{newID: uuid.NewString}
}

// NewAggregatorWith allows deterministic outcome ids in tests.
func NewAggregatorWith(newID func() string) *Aggregator {
	return &Aggregator{newID: newID}
}

// AggregateResults grades snap with a default Aggregator.
func AggregateResults(snap domain.Snapshot) []domain.Outcome {
	return NewAggregator().Aggregate(snap)
}

// Aggregate produces one outcome per (incident, user) pair that has at least
// one response, newest completion first. Missing links never fail the call;
// each gap degrades to a fallback value.
func (a *Aggregator) Aggregate(snap domain.Snapshot) []domain.Outcome {
	g := newGraph(snap)
	outcomes := make([]domain.Outcome, 0)

	for i := range snap.Incidents {
		incident := &snap.Incidents[i]
		if len(incident.Responses) == 0 {
			continue
		}
		for _, group := range groupByUser(incident.Responses) {
			outcomes = append(outcomes, a.outcome(g, incident, group))
		}
	}

	sort.SliceStable(outcomes, func(i, j int) bool {
		return laterFirst(outcomes[i].CompletedAt, outcomes[j].CompletedAt)
	})
	return outcomes
}

func (a *Aggregator) outcome(g *graph, incident *domain.Incident, group userResponses) domain.Outcome {
	t := g.grade(incident, group.responses)
	startedAt, completedAt := t.window(incident)
	pct := Percentage(t.score, t.maxScore)
	scenarioID, scenarioTitle := g.scenarioTitle(incident, "")

	out := domain.Outcome{
		ID:              a.newID(),
		IncidentID:      incident.ID,
		ScenarioID:      scenarioID,
		ScenarioTitle:   scenarioTitle,
		UserID:          group.userID,
		UserEmail:       fallbackEmail,
		Score:           t.score,
		MaxScore:        t.maxScore,
		Pct:             pct,
		Status:          Grade(pct),
		CompletedAt:     completedAt,
		DurationSeconds: DurationSeconds(startedAt, completedAt),
		Details:         t.details,
	}

	user := g.users[group.userID]
	if user != nil {
		out.UserEmail = contactOf(user)
	}

	roleID := group.roleID
	if roleID == "" && user != nil {
		roleID = user.RoleID
	}
	if roleID != "" {
		out.RoleID = roleID
		if role, ok := g.roles[roleID]; ok {
			out.RoleName = role.Name
		}
	}
	return out
}

// contactOf prefers the email, then the username, then a placeholder.
func contactOf(u *domain.User) string {
	if e := strings.TrimSpace(u.Email); e != "" {
		return e
	}
	if n := strings.TrimSpace(u.Username); n != "" {
		return n
	}
	return fallbackEmail
}

type userResponses struct {
	userID    string
	roleID    string
	responses []domain.Response
}

// groupByUser keeps users in order of their first response.
func groupByUser(responses []domain.Response) []userResponses {
	pos := make(map[string]int)
	var groups []userResponses
	for _, r := range responses {
		i, ok := pos[r.UserID]
		if !ok {
			i = len(groups)
			pos[r.UserID] = i
			groups = append(groups, userResponses{userID: r.UserID})
		}
		if groups[i].roleID == "" {
			groups[i].roleID = r.RoleID
		}
		groups[i].responses = append(groups[i].responses, r)
	}
	return groups
}
