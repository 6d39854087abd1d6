package app

import (
	"context"
	"time"

	"incident-training-service/internal/domain"
)

// ScenarioRepository loads scenario content (from cache/backing store).
type ScenarioRepository interface {
	GetScenario(ctx context.Context, scenarioID string) (domain.Scenario, error)
}

// ScenarioStore persists authored scenario graphs.
type ScenarioStore interface {
	SaveScenario(ctx context.Context, scenario domain.Scenario) error
	ListScenarios(ctx context.Context) ([]domain.Scenario, error)
}

// DirectoryStore holds users and roles.
type DirectoryStore interface {
	SaveRole(ctx context.Context, role domain.Role) error
	ListRoles(ctx context.Context) ([]domain.Role, error)
	SaveUser(ctx context.Context, user domain.User) error
	GetUser(ctx context.Context, userID string) (domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
}

// IncidentStore holds incidents and their responses.
type IncidentStore interface {
	SaveIncident(ctx context.Context, incident domain.Incident) error
	GetIncident(ctx context.Context, incidentID string) (domain.Incident, error)
	ListIncidents(ctx context.Context) ([]domain.Incident, error)
	CompleteIncident(ctx context.Context, incidentID string, at time.Time) (domain.Incident, error)
	SaveResponse(ctx context.Context, response domain.Response) error
	ListUserResponses(ctx context.Context, userID string) ([]domain.Response, error)
}

// SnapshotLoader materializes the graph reports are computed from.
type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context) (domain.Snapshot, error)
	// LoadIncidentSnapshot returns a snapshot holding only incidentID, or one
	// without incidents when it does not exist.
	LoadIncidentSnapshot(ctx context.Context, incidentID string) (domain.Snapshot, error)
}

// FeedRepository abstracts how live incident feeds are tracked (in-memory, Redis, etc).
type FeedRepository interface {
	GetOrCreate(incidentID string) *Feed
	Get(incidentID string) (*Feed, bool)
	DeleteIfEmpty(incidentID string)
}

// Publisher is notified after an incident's responses change.
type Publisher interface {
	Publish(ctx context.Context, incidentID string)
}
