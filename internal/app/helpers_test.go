package app_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"incident-training-service/internal/app"
	"incident-training-service/internal/domain"
	"incident-training-service/internal/infra/memory"
	"incident-training-service/internal/scoring"
)

var testNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type testEnv struct {
	store     *memory.Store
	scenarios *app.ScenarioService
	directory *app.DirectoryService
	incidents *app.IncidentService
	reports   *app.ReportService
	feeds     *app.FeedService
	clock     *testClock
}

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func sequence(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	cache := memory.NewScenarioRepository(store, time.Minute)
	clock := &testClock{now: testNow}

	reports := app.NewReportServiceWith(store, store, store, scoring.NewAggregatorWith(sequence("outcome")))
	feeds := app.NewFeedService(memory.NewFeedStore(), reports, nil)
	return &testEnv{
		store:     store,
		scenarios: app.NewScenarioServiceWith(store, cache, store, scoring.NewBuilderWith(clock.Now, sequence("sc"))),
		directory: app.NewDirectoryService(store),
		incidents: app.NewIncidentServiceWith(store, cache, store, feeds, clock.Now, sequence("inc")),
		reports:   reports,
		feeds:     feeds,
		clock:     clock,
	}
}

// seed authors one two-question scenario, a responder role and two users.
func (e *testEnv) seed(t *testing.T) (domain.Scenario, domain.User, domain.User) {
	t.Helper()
	ctx := context.Background()

	role, err := e.directory.CreateRole(ctx, "Responder", domain.ClearanceInternal)
	if err != nil {
		t.Fatalf("create role: %v", err)
	}
	alice, err := e.directory.CreateUser(ctx, "alice", "alice@example.com", role.ID)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	bob, err := e.directory.CreateUser(ctx, "bob", "", "")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	id, err := e.scenarios.Create(ctx, scoring.ScenarioSpec{
		Title: "Ransomware outbreak",
		Risk:  domain.RiskCritical,
		Questions: []scoring.QuestionSpec{
			{
				Text:    "First move?",
				RoleIDs: []string{role.ID},
				AnswerOptions: []scoring.OptionSpec{
					{Text: "Isolate hosts", Weight: 10, IsCorrect: true},
					{Text: "Email everyone", Weight: 2},
				},
			},
			{
				Text: "Who do you notify?",
				AnswerOptions: []scoring.OptionSpec{
					{Text: "Legal", Weight: 5, IsCorrect: true},
					{Text: "Nobody"},
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("create scenario: %v", err)
	}
	scenario, err := e.scenarios.Get(ctx, id)
	if err != nil {
		t.Fatalf("get scenario: %v", err)
	}
	return scenario, alice, bob
}

// optionByText finds an option of question q by its text.
func optionByText(t *testing.T, q domain.Question, text string) domain.AnswerOption {
	t.Helper()
	for _, o := range q.Options {
		if o.Text == text {
			return o
		}
	}
	t.Fatalf("option %q not found in question %q", text, q.Text)
	return domain.AnswerOption{}
}
