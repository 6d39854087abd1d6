package scoring_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"incident-training-service/internal/domain"
	"incident-training-service/internal/scoring"
)

func newTestBuilder() *scoring.Builder {
	n := 0
	clock := func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	return scoring.NewBuilderWith(clock, func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	})
}

func validSpec() scoring.ScenarioSpec {
	return scoring.ScenarioSpec{
		Title:       "  Ransomware on file server  ",
		Description: "Encrypted shares detected at 02:00",
		Risk:        domain.RiskHigh,
		Questions: []scoring.QuestionSpec{
			{
				Text:     "First action?",
				Priority: domain.PriorityCritical,
				RoleIDs:  []string{"r-analyst", "r-ghost", "r-analyst"},
				AnswerOptions: []scoring.OptionSpec{
					{Text: "Isolate the host", IsCorrect: true},
					{Text: "Reboot", Weight: 2},
					{Text: "   "},
				},
			},
			{Text: "   ", AnswerOptions: []scoring.OptionSpec{{Text: "ignored", IsCorrect: true}}},
			{
				Text: "Who do you notify?",
				AnswerOptions: []scoring.OptionSpec{
					{Text: "CISO", Weight: 3, IsCorrect: true},
					{Text: "Legal", Weight: 4, IsCorrect: true},
					{Text: "Nobody"},
				},
			},
		},
	}
}

func TestBuildScenario(t *testing.T) {
	roles := []domain.Role{{ID: "r-analyst", Name: "Analyst"}}

	scenario, err := newTestBuilder().Build(validSpec(), roles)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if scenario.Title != "Ransomware on file server" {
		t.Fatalf("expected trimmed title, got %q", scenario.Title)
	}
	if !scenario.CreatedAt.Equal(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected createdAt from clock, got %v", scenario.CreatedAt)
	}
	if len(scenario.Questions) != 2 {
		t.Fatalf("expected blank question dropped, got %d questions", len(scenario.Questions))
	}

	first := scenario.Questions[0]
	if len(first.Options) != 2 {
		t.Fatalf("expected blank option dropped, got %d options", len(first.Options))
	}
	if first.Options[0].Weight != scoring.DefaultCorrectWeight {
		t.Fatalf("expected correct option weight defaulted to 10, got %d", first.Options[0].Weight)
	}
	if first.Options[1].Weight != 2 {
		t.Fatalf("expected explicit weight kept, got %d", first.Options[1].Weight)
	}
	if first.MaxPoints != 10 {
		t.Fatalf("expected max points 10, got %d", first.MaxPoints)
	}
	if len(first.RoleIDs) != 1 || first.RoleIDs[0] != "r-analyst" {
		t.Fatalf("expected only known role linked once, got %v", first.RoleIDs)
	}
	if first.ScenarioID != scenario.ID || first.Options[0].QuestionID != first.ID {
		t.Fatalf("expected graph to be linked, got %+v", first)
	}

	second := scenario.Questions[1]
	if second.MaxPoints != 7 {
		t.Fatalf("expected additive max points 7, got %d", second.MaxPoints)
	}
	if second.Position != 1 {
		t.Fatalf("expected position 1, got %d", second.Position)
	}

	for _, q := range scenario.Questions {
		sum := 0
		for _, o := range q.Options {
			if o.IsCorrect {
				sum += o.Weight
			}
		}
		if q.MaxPoints != sum {
			t.Fatalf("question %s: max points %d != correct weight sum %d", q.ID, q.MaxPoints, sum)
		}
	}
}

func TestBuildScenarioKeepsExplicitCreatedAt(t *testing.T) {
	spec := validSpec()
	at := time.Date(2025, 12, 24, 18, 30, 0, 0, time.UTC)
	spec.CreatedAt = &at

	scenario, err := newTestBuilder().Build(spec, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !scenario.CreatedAt.Equal(at) {
		t.Fatalf("expected createdAt %v, got %v", at, scenario.CreatedAt)
	}
}

func TestBuildScenarioRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*scoring.ScenarioSpec)
		reason string
	}{
		{
			name:   "blank title",
			mutate: func(s *scoring.ScenarioSpec) { s.Title = "  \t " },
			reason: "title is required",
		},
		{
			name: "question with only blank options",
			mutate: func(s *scoring.ScenarioSpec) {
				s.Questions[0].AnswerOptions = []scoring.OptionSpec{{Text: " ", IsCorrect: true}, {Text: ""}}
			},
			reason: "has no answer options",
		},
		{
			name: "question without a correct option",
			mutate: func(s *scoring.ScenarioSpec) {
				s.Questions[2].AnswerOptions = []scoring.OptionSpec{{Text: "A", Weight: 5}, {Text: "B"}}
			},
			reason: "has no correct answer option",
		},
		{
			name: "negative weight",
			mutate: func(s *scoring.ScenarioSpec) {
				s.Questions[0].AnswerOptions[1].Weight = -1
			},
			reason: "weight must not be negative",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := validSpec()
			tt.mutate(&spec)

			scenario, err := newTestBuilder().Build(spec, nil)
			if !errors.Is(err, domain.ErrInvalidScenario) {
				t.Fatalf("expected ErrInvalidScenario, got %v", err)
			}
			var verr *domain.ValidationError
			if !errors.As(err, &verr) || !strings.Contains(verr.Reason, tt.reason) {
				t.Fatalf("expected reason containing %q, got %v", tt.reason, err)
			}
			if scenario.ID != "" || len(scenario.Questions) != 0 {
				t.Fatalf("expected no partial scenario, got %+v", scenario)
			}
		})
	}
}

func TestBuildScenarioWithoutQuestions(t *testing.T) {
	scenario, err := newTestBuilder().Build(scoring.ScenarioSpec{Title: "Tabletop"}, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(scenario.Questions) != 0 {
		t.Fatalf("expected no questions, got %d", len(scenario.Questions))
	}
}
