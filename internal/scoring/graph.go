package scoring

import (
	"math"
	"strings"
	"time"

	"incident-training-service/internal/domain"
)

// PassThreshold is the minimum percentage graded as a pass.
const PassThreshold = 70

const (
	fallbackQuestionText = "Question"
	fallbackAnswerText   = "-"
	fallbackEmail        = "unknown@user"
	unknownScenarioTitle = "Unknown"
)

// graph resolves the plain-id references of a snapshot. It is built once per
// call and discarded with it.
type graph struct {
	scenarios map[string]*domain.Scenario
	incidents map[string]*domain.Incident
	questions map[string]*domain.Question
	options   map[string]*domain.AnswerOption
	users     map[string]*domain.User
	roles     map[string]*domain.Role
	maxPoints map[string]*MaxPointsIndex
}

func newGraph(snap domain.Snapshot) *graph {
	g := &graph{
		scenarios: make(map[string]*domain.Scenario, len(snap.Scenarios)),
		incidents: make(map[string]*domain.Incident, len(snap.Incidents)),
		questions: make(map[string]*domain.Question),
		options:   make(map[string]*domain.AnswerOption),
		users:     make(map[string]*domain.User, len(snap.Users)),
		roles:     make(map[string]*domain.Role, len(snap.Roles)),
		maxPoints: make(map[string]*MaxPointsIndex),
	}
	for i := range snap.Scenarios {
		s := &snap.Scenarios[i]
		g.scenarios[s.ID] = s
		for j := range s.Questions {
			g.addQuestion(&s.Questions[j])
		}
	}
	for i := range snap.Questions {
		if _, ok := g.questions[snap.Questions[i].ID]; !ok {
			g.addQuestion(&snap.Questions[i])
		}
	}
	for i := range snap.Incidents {
		g.incidents[snap.Incidents[i].ID] = &snap.Incidents[i]
	}
	for i := range snap.Users {
		g.users[snap.Users[i].ID] = &snap.Users[i]
	}
	for i := range snap.Roles {
		g.roles[snap.Roles[i].ID] = &snap.Roles[i]
	}
	return g
}

func (g *graph) addQuestion(q *domain.Question) {
	g.questions[q.ID] = q
	for k := range q.Options {
		if _, ok := g.options[q.Options[k].ID]; !ok {
			g.options[q.Options[k].ID] = &q.Options[k]
		}
	}
}

// index returns the max-points lookup of a scenario, seeded from its questions
// on first use. A missing scenario yields an empty index that fills by backfill.
func (g *graph) index(scenarioID string) *MaxPointsIndex {
	if idx, ok := g.maxPoints[scenarioID]; ok {
		return idx
	}
	var questions []domain.Question
	if s, ok := g.scenarios[scenarioID]; ok {
		questions = s.Questions
	}
	idx := NewMaxPointsIndex(questions)
	g.maxPoints[scenarioID] = idx
	return idx
}

// tally is the graded result of one user's responses within one incident.
type tally struct {
	score       int
	maxScore    int
	details     []domain.Detail
	responses   []domain.ResponseDetail
	firstAnswer *time.Time
	lastAnswer  *time.Time
}

// grade scores responses belonging to one incident. Each distinct question
// contributes its max points once, however often it was answered.
func (g *graph) grade(incident *domain.Incident, responses []domain.Response) tally {
	var scenario *domain.Scenario
	scenarioID := ""
	if incident != nil {
		scenarioID = incident.ScenarioID
		scenario = g.scenarios[scenarioID]
	}
	idx := g.index(scenarioID)

	t := tally{
		details:   make([]domain.Detail, 0, len(responses)),
		responses: make([]domain.ResponseDetail, 0, len(responses)),
	}
	counted := make(map[string]struct{}, len(responses))

	for _, r := range responses {
		var opt *domain.AnswerOption
		if r.OptionID != "" {
			opt = g.options[r.OptionID]
		}
		points := 0
		if opt != nil {
			points = opt.Weight
		}
		verdict := Verdict(opt, points)

		question := g.questions[r.QuestionID]
		if (question == nil || strings.TrimSpace(question.Text) == "") && scenario != nil {
			if sq, ok := scenario.Question(r.QuestionID); ok {
				question = sq
			}
		}
		questionText := fallbackQuestionText
		if question != nil && strings.TrimSpace(question.Text) != "" {
			questionText = question.Text
		}

		answerText := fallbackAnswerText
		switch {
		case opt != nil && strings.TrimSpace(opt.Text) != "":
			answerText = opt.Text
		case strings.TrimSpace(r.AnswerText) != "":
			answerText = r.AnswerText
		}

		t.score += points
		if _, ok := counted[r.QuestionID]; !ok {
			counted[r.QuestionID] = struct{}{}
			t.maxScore += idx.Resolve(r.QuestionID, question, points)
		}

		detail := domain.Detail{
			QuestionID: r.QuestionID,
			Question:   questionText,
			Answer:     answerText,
			Points:     points,
			Verdict:    verdict,
		}
		t.details = append(t.details, detail)

		rd := domain.ResponseDetail{
			QuestionID:     r.QuestionID,
			QuestionText:   questionText,
			AnswerOptionID: r.OptionID,
			AnswerText:     answerText,
			IsCorrect:      opt != nil && opt.IsCorrect,
			Points:         points,
			Verdict:        verdict,
		}
		if !r.AnsweredAt.IsZero() {
			at := r.AnsweredAt
			rd.AnsweredAt = &at
			if t.firstAnswer == nil || at.Before(*t.firstAnswer) {
				t.firstAnswer = &at
			}
			if t.lastAnswer == nil || at.After(*t.lastAnswer) {
				t.lastAnswer = &at
			}
		}
		t.responses = append(t.responses, rd)
	}
	return t
}

// window returns the start and completion times of an incident run, falling
// back to the earliest and latest answers when the incident has none recorded.
func (t tally) window(incident *domain.Incident) (startedAt, completedAt *time.Time) {
	startedAt, completedAt = t.firstAnswer, t.lastAnswer
	if incident != nil {
		if incident.StartedAt != nil && !incident.StartedAt.IsZero() {
			startedAt = incident.StartedAt
		}
		if incident.CompletedAt != nil && !incident.CompletedAt.IsZero() {
			completedAt = incident.CompletedAt
		}
	}
	return startedAt, completedAt
}

// Verdict classifies a chosen option: correct when flagged correct, partial
// when it still earned points, incorrect otherwise.
func Verdict(opt *domain.AnswerOption, points int) domain.Verdict {
	switch {
	case opt != nil && opt.IsCorrect:
		return domain.VerdictCorrect
	case points > 0:
		return domain.VerdictPartial
	default:
		return domain.VerdictIncorrect
	}
}

// Percentage rounds score/maxScore to a whole percent in [0, 100]; 0 when
// maxScore is not positive.
func Percentage(score, maxScore int) int {
	if maxScore <= 0 {
		return 0
	}
	pct := int(math.Round(float64(score) * 100 / float64(maxScore)))
	return min(max(pct, 0), 100)
}

// Grade maps a percentage to pass or fail.
func Grade(pct int) domain.OutcomeStatus {
	if pct >= PassThreshold {
		return domain.OutcomePass
	}
	return domain.OutcomeFail
}

// DurationSeconds is the whole seconds between start and end, never negative,
// and 0 when either end is unknown.
func DurationSeconds(start, end *time.Time) int64 {
	if start == nil || end == nil {
		return 0
	}
	return max(int64(end.Sub(*start)/time.Second), 0)
}

func (g *graph) scenarioTitle(incident *domain.Incident, fallback string) (id, title string) {
	if incident == nil {
		return "", fallback
	}
	if s, ok := g.scenarios[incident.ScenarioID]; ok {
		return s.ID, s.Title
	}
	if strings.TrimSpace(incident.Title) != "" {
		return incident.ScenarioID, incident.Title
	}
	return incident.ScenarioID, fallback
}

// laterFirst orders by completion time descending; unknown times sort last.
func laterFirst(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.After(*b)
	}
}
