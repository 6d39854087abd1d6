package redis

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"incident-training-service/internal/domain"
	"incident-training-service/internal/infra/memory"
)

func TestScenarioRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{
		ScenarioLoader: memory.NewStaticScenarioLoader(map[string]domain.Scenario{
			"sc-1": sampleScenario(),
		}),
	}
	repo := NewScenarioRepository(newClient(mr), loader, time.Minute)

	if _, err := repo.GetScenario(context.Background(), "sc-1"); err != nil {
		t.Fatalf("get scenario: %v", err)
	}
	if loader.calls.Load() != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls.Load())
	}
	if !mr.Exists("scenario:sc-1") {
		t.Fatalf("expected scenario cached in redis")
	}
	if ttl := mr.TTL("scenario:sc-1"); ttl < time.Minute || ttl > 66*time.Second {
		t.Fatalf("expected ttl with up to 10%% jitter, got %v", ttl)
	}

	// Second call should hit cache, loader not incremented.
	got, err := repo.GetScenario(context.Background(), "sc-1")
	if err != nil {
		t.Fatalf("get scenario 2: %v", err)
	}
	if loader.calls.Load() != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls.Load())
	}
	if got.Risk != domain.RiskHigh || len(got.Questions) != 1 || got.Questions[0].MaxPoints != 10 {
		t.Fatalf("cached scenario lost detail: %+v", got)
	}
	if opt, ok := got.Questions[0].Option("o2"); !ok || !opt.IsCorrect {
		t.Fatalf("expected correct option to survive the cache, got %+v", got.Questions[0].Options)
	}
}

func TestScenarioRepositoryFallsBackOnCorruptEntry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	if err := mr.Set("scenario:sc-1", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	loader := &countingLoader{
		ScenarioLoader: memory.NewStaticScenarioLoader(map[string]domain.Scenario{
			"sc-1": sampleScenario(),
		}),
	}
	repo := NewScenarioRepository(newClient(mr), loader, time.Minute)

	got, err := repo.GetScenario(context.Background(), "sc-1")
	if err != nil {
		t.Fatalf("get scenario: %v", err)
	}
	if got.Title != "Phishing triage" || loader.calls.Load() != 1 {
		t.Fatalf("expected loader fallback, got %+v after %d calls", got, loader.calls.Load())
	}
}

func TestScenarioRepositoryPropagatesNotFound(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	repo := NewScenarioRepository(newClient(mr), memory.NewStaticScenarioLoader(nil), time.Minute)
	if _, err := repo.GetScenario(context.Background(), "missing"); !errors.Is(err, domain.ErrScenarioNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if mr.Exists("scenario:missing") {
		t.Fatalf("misses must not be cached")
	}
}

type countingLoader struct {
	memory.ScenarioLoader
	calls atomic.Int32
}

func (l *countingLoader) LoadScenario(ctx context.Context, scenarioID string) (domain.Scenario, error) {
	l.calls.Add(1)
	return l.ScenarioLoader.LoadScenario(ctx, scenarioID)
}

func sampleScenario() domain.Scenario {
	return domain.Scenario{
		ID:    "sc-1",
		Title: "Phishing triage",
		Risk:  domain.RiskHigh,
		Questions: []domain.Question{
			{
				ID:         "q1",
				ScenarioID: "sc-1",
				Text:       "First containment step?",
				Priority:   domain.PriorityHigh,
				MaxPoints:  10,
				Options: []domain.AnswerOption{
					{ID: "o1", QuestionID: "q1", Text: "Ignore it"},
					{ID: "o2", QuestionID: "q1", Text: "Isolate host", Weight: 10, IsCorrect: true},
				},
			},
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
