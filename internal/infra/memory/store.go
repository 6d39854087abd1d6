package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"incident-training-service/internal/domain"
)

// Store keeps the whole training graph in process memory. It backs demo mode
// and tests, and hands out copies so callers never share its slices.
type Store struct {
	mu sync.RWMutex

	roles     map[string]domain.Role
	roleOrder []string
	users     map[string]domain.User
	userOrder []string

	scenarios     map[string]domain.Scenario
	scenarioOrder []string
	incidents     map[string]*domain.Incident
	incidentOrder []string
}

func NewStore() *Store {
	return &Store{
		roles:     make(map[string]domain.Role),
		users:     make(map[string]domain.User),
		scenarios: make(map[string]domain.Scenario),
		incidents: make(map[string]*domain.Incident),
	}
}

func (s *Store) SaveRole(_ context.Context, role domain.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roles[role.ID]; !ok {
		s.roleOrder = append(s.roleOrder, role.ID)
	}
	s.roles[role.ID] = role
	return nil
}

func (s *Store) ListRoles(_ context.Context) ([]domain.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listRolesLocked(), nil
}

func (s *Store) listRolesLocked() []domain.Role {
	out := make([]domain.Role, 0, len(s.roleOrder))
	for _, id := range s.roleOrder {
		out = append(out, s.roles[id])
	}
	return out
}

func (s *Store) SaveUser(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		s.userOrder = append(s.userOrder, user.ID)
	}
	s.users[user.ID] = user
	return nil
}

func (s *Store) GetUser(_ context.Context, userID string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[userID]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listUsersLocked(), nil
}

func (s *Store) listUsersLocked() []domain.User {
	out := make([]domain.User, 0, len(s.userOrder))
	for _, id := range s.userOrder {
		out = append(out, s.users[id])
	}
	return out
}

func (s *Store) SaveScenario(_ context.Context, scenario domain.Scenario) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.scenarios[scenario.ID]; !ok {
		s.scenarioOrder = append(s.scenarioOrder, scenario.ID)
	}
	s.scenarios[scenario.ID] = cloneScenario(scenario)
	return nil
}

// LoadScenario satisfies ScenarioLoader so the store can sit behind the TTL cache.
func (s *Store) LoadScenario(_ context.Context, scenarioID string) (domain.Scenario, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	scenario, ok := s.scenarios[scenarioID]
	if !ok {
		return domain.Scenario{}, domain.ErrScenarioNotFound
	}
	return cloneScenario(scenario), nil
}

func (s *Store) ListScenarios(_ context.Context) ([]domain.Scenario, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listScenariosLocked(), nil
}

func (s *Store) listScenariosLocked() []domain.Scenario {
	out := make([]domain.Scenario, 0, len(s.scenarioOrder))
	for _, id := range s.scenarioOrder {
		out = append(out, cloneScenario(s.scenarios[id]))
	}
	return out
}

func (s *Store) SaveIncident(_ context.Context, incident domain.Incident) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.incidents[incident.ID]; !ok {
		s.incidentOrder = append(s.incidentOrder, incident.ID)
	}
	stored := cloneIncident(incident)
	s.incidents[incident.ID] = &stored
	return nil
}

func (s *Store) GetIncident(_ context.Context, incidentID string) (domain.Incident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	incident, ok := s.incidents[incidentID]
	if !ok {
		return domain.Incident{}, domain.ErrIncidentNotFound
	}
	return cloneIncident(*incident), nil
}

func (s *Store) ListIncidents(_ context.Context) ([]domain.Incident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listIncidentsLocked(), nil
}

func (s *Store) listIncidentsLocked() []domain.Incident {
	out := make([]domain.Incident, 0, len(s.incidentOrder))
	for _, id := range s.incidentOrder {
		out = append(out, cloneIncident(*s.incidents[id]))
	}
	return out
}

func (s *Store) CompleteIncident(_ context.Context, incidentID string, at time.Time) (domain.Incident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	incident, ok := s.incidents[incidentID]
	if !ok {
		return domain.Incident{}, domain.ErrIncidentNotFound
	}
	incident.Status = domain.StatusCompleted
	incident.CompletedAt = &at
	return cloneIncident(*incident), nil
}

func (s *Store) SaveResponse(_ context.Context, response domain.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	incident, ok := s.incidents[response.IncidentID]
	if !ok {
		return domain.ErrIncidentNotFound
	}
	incident.Responses = append(incident.Responses, response)
	return nil
}

func (s *Store) ListUserResponses(_ context.Context, userID string) ([]domain.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Response, 0)
	for _, id := range s.incidentOrder {
		for _, r := range s.incidents[id].Responses {
			if r.UserID == userID {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

func (s *Store) LoadSnapshot(_ context.Context) (domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Snapshot{
		Scenarios: s.listScenariosLocked(),
		Incidents: s.listIncidentsLocked(),
		Users:     s.listUsersLocked(),
		Roles:     s.listRolesLocked(),
	}, nil
}

func (s *Store) LoadIncidentSnapshot(_ context.Context, incidentID string) (domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := domain.Snapshot{
		Users: s.listUsersLocked(),
		Roles: s.listRolesLocked(),
	}
	incident, ok := s.incidents[incidentID]
	if !ok {
		return snap, nil
	}
	snap.Incidents = []domain.Incident{cloneIncident(*incident)}
	if scenario, ok := s.scenarios[incident.ScenarioID]; ok {
		snap.Scenarios = []domain.Scenario{cloneScenario(scenario)}
	}
	return snap, nil
}

func cloneScenario(in domain.Scenario) domain.Scenario {
	out := in
	out.Questions = make([]domain.Question, len(in.Questions))
	for i, q := range in.Questions {
		q.Options = slices.Clone(q.Options)
		q.RoleIDs = slices.Clone(q.RoleIDs)
		out.Questions[i] = q
	}
	return out
}

func cloneIncident(in domain.Incident) domain.Incident {
	out := in
	out.Responses = slices.Clone(in.Responses)
	if out.Responses == nil {
		out.Responses = []domain.Response{}
	}
	if in.StartedAt != nil {
		t := *in.StartedAt
		out.StartedAt = &t
	}
	if in.CompletedAt != nil {
		t := *in.CompletedAt
		out.CompletedAt = &t
	}
	return out
}
