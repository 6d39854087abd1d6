package scoring

import (
	"sort"

	"incident-training-service/internal/domain"
)

// SummarizeUser grades every incident in history and lists the incidents of
// snap the user has not responded to.
func SummarizeUser(user domain.User, history []domain.Response, snap domain.Snapshot) domain.UserDetail {
	g := newGraph(snap)

	detail := domain.UserDetail{
		UserID:             user.ID,
		Username:           user.Username,
		Email:              user.Email,
		RoleID:             user.RoleID,
		CompletedIncidents: make([]domain.CompletedIncident, 0),
		PendingIncidents:   make([]domain.PendingIncident, 0),
	}
	if role, ok := g.roles[user.RoleID]; ok {
		detail.RoleName = role.Name
	}

	byIncident := make(map[string][]domain.Response)
	var order []string
	for _, r := range history {
		if _, ok := byIncident[r.IncidentID]; !ok {
			order = append(order, r.IncidentID)
		}
		byIncident[r.IncidentID] = append(byIncident[r.IncidentID], r)
	}

	for _, incidentID := range order {
		incident := g.incidents[incidentID]
		t := g.grade(incident, byIncident[incidentID])
		startedAt, completedAt := t.window(incident)
		pct := Percentage(t.score, t.maxScore)
		scenarioID, scenarioTitle := g.scenarioTitle(incident, unknownScenarioTitle)

		ci := domain.CompletedIncident{
			IncidentID:      incidentID,
			ScenarioID:      scenarioID,
			ScenarioTitle:   scenarioTitle,
			Score:           t.score,
			MaxScore:        t.maxScore,
			Pct:             pct,
			Status:          Grade(pct),
			StartedAt:       startedAt,
			CompletedAt:     completedAt,
			DurationSeconds: DurationSeconds(startedAt, completedAt),
			Details:         t.details,
			Responses:       t.responses,
		}
		if incident != nil {
			ci.IncidentTitle = incident.Title
		}
		detail.CompletedIncidents = append(detail.CompletedIncidents, ci)
	}

	sort.SliceStable(detail.CompletedIncidents, func(i, j int) bool {
		return laterFirst(detail.CompletedIncidents[i].CompletedAt, detail.CompletedIncidents[j].CompletedAt)
	})

	for i := range snap.Incidents {
		incident := &snap.Incidents[i]
		if _, answered := byIncident[incident.ID]; answered {
			continue
		}
		title := unknownScenarioTitle
		if s, ok := g.scenarios[incident.ScenarioID]; ok {
			title = s.Title
		}
		detail.PendingIncidents = append(detail.PendingIncidents, domain.PendingIncident{
			IncidentID:    incident.ID,
			IncidentTitle: incident.Title,
			ScenarioTitle: title,
			Status:        incident.Status.String(),
			StartedAt:     incident.StartedAt,
		})
	}
	return detail
}
