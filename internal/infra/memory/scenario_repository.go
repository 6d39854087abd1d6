package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"incident-training-service/internal/domain"
)

// ScenarioLoader fetches scenario content from a backing store.
type ScenarioLoader interface {
	LoadScenario(ctx context.Context, scenarioID string) (domain.Scenario, error)
}

// ScenarioRepository caches scenarios with TTL to avoid repeated DB hits.
// Scenarios are immutable once authored, so entries never need invalidation.
type ScenarioRepository struct {
	loader ScenarioLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.RWMutex
	rnd   *rand.Rand
	cache map[string]cachedScenario
}

type cachedScenario struct {
	scenario  domain.Scenario
	expiresAt time.Time
}

func NewScenarioRepository(loader ScenarioLoader, ttl time.Duration) *ScenarioRepository {
	return NewScenarioRepositoryWithClock(loader, ttl, time.Now)
}

// NewScenarioRepositoryWithClock is test-only for deterministic expiry.
func NewScenarioRepositoryWithClock(loader ScenarioLoader, ttl time.Duration, clock func() time.Time) *ScenarioRepository {
	return &ScenarioRepository{
		loader: loader,
		ttl:    ttl,
		clock:  clock,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedScenario),
	}
}

func (r *ScenarioRepository) GetScenario(ctx context.Context, scenarioID string) (domain.Scenario, error) {
	if scenario, ok := r.lookup(scenarioID); ok {
		return scenario, nil
	}

	result, err, _ := r.sf.Do(scenarioID, func() (interface{}, error) {
		if scenario, ok := r.lookup(scenarioID); ok {
			return scenario, nil
		}

		scenario, err := r.loader.LoadScenario(ctx, scenarioID)
		if err != nil {
			return domain.Scenario{}, err
		}

		r.mu.Lock()
		r.cache[scenarioID] = cachedScenario{
			scenario:  scenario,
			expiresAt: r.clock().Add(r.ttlWithJitterLocked()),
		}
		r.mu.Unlock()
		return scenario, nil
	})
	if err != nil {
		return domain.Scenario{}, err
	}
	return result.(domain.Scenario), nil
}

func (r *ScenarioRepository) lookup(scenarioID string) (domain.Scenario, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[scenarioID]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return domain.Scenario{}, false
	}
	return entry.scenario, true
}

func (r *ScenarioRepository) ttlWithJitterLocked() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticScenarioLoader is a simple loader backed by an in-memory map (useful for tests/demos).
type StaticScenarioLoader struct {
	scenarios map[string]domain.Scenario
}

func NewStaticScenarioLoader(scenarios map[string]domain.Scenario) *StaticScenarioLoader {
	return &StaticScenarioLoader{scenarios: scenarios}
}

func (l *StaticScenarioLoader) LoadScenario(_ context.Context, scenarioID string) (domain.Scenario, error) {
	if scenario, ok := l.scenarios[scenarioID]; ok {
		return scenario, nil
	}
	return domain.Scenario{}, domain.ErrScenarioNotFound
}
