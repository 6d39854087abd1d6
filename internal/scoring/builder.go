package scoring

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"incident-training-service/internal/domain"
)

// DefaultCorrectWeight is applied to a correct option authored without a weight.
const DefaultCorrectWeight = 10

// OptionSpec is the authoring input for one answer option.
type OptionSpec struct {
	Text      string `json:"text" yaml:"text"`
	Weight    int    `json:"weight" yaml:"weight"`
	IsCorrect bool   `json:"isCorrect" yaml:"isCorrect"`
}

// QuestionSpec is the authoring input for one question.
type QuestionSpec struct {
	Text          string          `json:"text" yaml:"text"`
	Priority      domain.Priority `json:"priority" yaml:"priority"`
	RoleIDs       []string        `json:"roleIds" yaml:"roleIds"`
	AnswerOptions []OptionSpec    `json:"answerOptions" yaml:"answerOptions"`
}

// ScenarioSpec is a scenario-authoring request.
type ScenarioSpec struct {
	Title       string           `json:"title" yaml:"title"`
	Description string           `json:"description" yaml:"description"`
	CreatedAt   *time.Time       `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	Risk        domain.RiskLevel `json:"risk" yaml:"risk"`
	Questions   []QuestionSpec   `json:"questions" yaml:"questions"`
}

// Builder constructs validated scenario graphs.
type Builder struct {
	now   func() time.Time
	newID func() string
}

// NewBuilder returns a Builder stamping wall-clock times and random UUIDs.
func NewBuilder() *Builder {
	return NewBuilderWith(time.Now, uuid.NewString)
}

// NewBuilderWith allows deterministic clocks and ids in tests.
func NewBuilderWith(now func() time.Time, newID func() string) *Builder {
	return &Builder{now: now, newID: newID}
}

// BuildScenario builds spec with a default Builder.
func BuildScenario(spec ScenarioSpec, roles []domain.Role) (domain.Scenario, error) {
	return NewBuilder().Build(spec, roles)
}

// Build validates spec and returns the fully linked scenario. Blank questions
// and options are dropped, unknown role ids are ignored. Any validation
// failure aborts the whole build with a *domain.ValidationError.
func (b *Builder) Build(spec ScenarioSpec, roles []domain.Role) (domain.Scenario, error) {
	title := strings.TrimSpace(spec.Title)
	if title == "" {
		return domain.Scenario{}, domain.InvalidScenario("title is required")
	}

	createdAt := b.now().UTC()
	if spec.CreatedAt != nil && !spec.CreatedAt.IsZero() {
		createdAt = spec.CreatedAt.UTC()
	}

	known := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		known[r.ID] = struct{}{}
	}

	scenario := domain.Scenario{
		ID:          b.newID(),
		Title:       title,
		Description: strings.TrimSpace(spec.Description),
		Risk:        spec.Risk,
		CreatedAt:   createdAt,
		Questions:   make([]domain.Question, 0, len(spec.Questions)),
	}

	for qi, qs := range spec.Questions {
		text := strings.TrimSpace(qs.Text)
		if text == "" {
			continue
		}
		label := fmt.Sprintf("question %d (%q)", qi+1, text)

		question := domain.Question{
			ID:         b.newID(),
			ScenarioID: scenario.ID,
			Text:       text,
			Priority:   qs.Priority,
			Position:   len(scenario.Questions),
		}

		hasCorrect := false
		for oi, optSpec := range qs.AnswerOptions {
			optText := strings.TrimSpace(optSpec.Text)
			if optText == "" {
				continue
			}
			if optSpec.Weight < 0 {
				return domain.Scenario{}, domain.InvalidScenario(fmt.Sprintf("%s option %d: weight must not be negative", label, oi+1))
			}
			weight := optSpec.Weight
			if weight == 0 && optSpec.IsCorrect {
				weight = DefaultCorrectWeight
			}
			hasCorrect = hasCorrect || optSpec.IsCorrect
			question.Options = append(question.Options, domain.AnswerOption{
				ID:         b.newID(),
				QuestionID: question.ID,
				Text:       optText,
				Weight:     weight,
				IsCorrect:  optSpec.IsCorrect,
				Position:   len(question.Options),
			})
		}

		if len(question.Options) == 0 {
			return domain.Scenario{}, domain.InvalidScenario(label + " has no answer options")
		}
		if !hasCorrect {
			return domain.Scenario{}, domain.InvalidScenario(label + " has no correct answer option")
		}
		question.MaxPoints = MaxPoints(question)
		question.RoleIDs = resolveRoles(qs.RoleIDs, known)

		scenario.Questions = append(scenario.Questions, question)
	}

	return scenario, nil
}

// resolveRoles keeps the known ids in request order, without duplicates.
func resolveRoles(ids []string, known map[string]struct{}) []string {
	var out []string
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if _, ok := known[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
