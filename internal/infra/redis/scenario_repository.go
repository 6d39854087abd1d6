package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"incident-training-service/internal/domain"
)

// ScenarioLoader fetches scenario content from a backing store (e.g., Postgres).
type ScenarioLoader interface {
	LoadScenario(ctx context.Context, scenarioID string) (domain.Scenario, error)
}

// ScenarioRepository caches whole scenario graphs in Redis and falls back to a loader on cache miss.
// Each scenario is stored as JSON: SET scenario:{scenarioID} {json} EX ttl
// Redis failures degrade to a loader call; they never fail a read on their own.
type ScenarioRepository struct {
	client *redis.Client
	loader ScenarioLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewScenarioRepository(client *redis.Client, loader ScenarioLoader, ttl time.Duration) *ScenarioRepository {
	return &ScenarioRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *ScenarioRepository) GetScenario(ctx context.Context, scenarioID string) (domain.Scenario, error) {
	key := r.key(scenarioID)
	if scenario, ok := r.cached(ctx, key); ok {
		return scenario, nil
	}

	result, err, _ := r.sf.Do(scenarioID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if scenario, ok := r.cached(ctx, key); ok {
			return scenario, nil
		}

		scenario, err := r.loader.LoadScenario(ctx, scenarioID)
		if err != nil {
			return domain.Scenario{}, err
		}

		if payload, err := json.Marshal(scenario); err == nil {
			_ = r.client.Set(ctx, key, payload, r.ttlWithJitter()).Err()
		}
		return scenario, nil
	})
	if err != nil {
		return domain.Scenario{}, err
	}
	return result.(domain.Scenario), nil
}

func (r *ScenarioRepository) cached(ctx context.Context, key string) (domain.Scenario, bool) {
	payload, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return domain.Scenario{}, false
	}
	var scenario domain.Scenario
	if err := json.Unmarshal(payload, &scenario); err != nil {
		return domain.Scenario{}, false
	}
	return scenario, true
}

func (r *ScenarioRepository) key(scenarioID string) string {
	return "scenario:" + scenarioID
}

func (r *ScenarioRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
