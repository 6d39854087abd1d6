package app

import (
	"context"

	"incident-training-service/internal/domain"
	"incident-training-service/internal/scoring"
)

// ScenarioService authors and reads training scenarios.
type ScenarioService struct {
	store     ScenarioStore
	cache     ScenarioRepository
	directory DirectoryStore
	builder   *scoring.Builder
}

func NewScenarioService(store ScenarioStore, cache ScenarioRepository, directory DirectoryStore) *ScenarioService {
	return NewScenarioServiceWith(store, cache, directory, scoring.NewBuilder())
}

// NewScenarioServiceWith is test-only for deterministic ids and clocks.
func NewScenarioServiceWith(store ScenarioStore, cache ScenarioRepository, directory DirectoryStore, builder *scoring.Builder) *ScenarioService {
	return &ScenarioService{store: store, cache: cache, directory: directory, builder: builder}
}

// Create validates spec, then persists the whole scenario graph in one write.
// Validation failures wrap domain.ErrInvalidScenario and nothing is stored.
func (s *ScenarioService) Create(ctx context.Context, spec scoring.ScenarioSpec) (string, error) {
	roles, err := s.directory.ListRoles(ctx)
	if err != nil {
		return "", err
	}
	scenario, err := s.builder.Build(spec, roles)
	if err != nil {
		return "", err
	}
	if err := s.store.SaveScenario(ctx, scenario); err != nil {
		return "", err
	}
	return scenario.ID, nil
}

func (s *ScenarioService) Get(ctx context.Context, scenarioID string) (domain.Scenario, error) {
	return s.cache.GetScenario(ctx, scenarioID)
}

func (s *ScenarioService) List(ctx context.Context) ([]domain.Scenario, error) {
	return s.store.ListScenarios(ctx)
}
