package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"incident-training-service/internal/domain"
)

// ScenarioLoader loads one scenario graph straight from Postgres with pgx.
// It feeds the scenario caches on a miss.
type ScenarioLoader struct {
	pool *pgxpool.Pool
}

func NewScenarioLoader(pool *pgxpool.Pool) *ScenarioLoader {
	return &ScenarioLoader{pool: pool}
}

func (l *ScenarioLoader) LoadScenario(ctx context.Context, scenarioID string) (domain.Scenario, error) {
	var sc scenarioRow
	err := l.pool.QueryRow(ctx,
		`SELECT id::text, title, description, risk, created_at FROM scenarios WHERE id::text = $1`,
		scenarioID,
	).Scan(&sc.ID, &sc.Title, &sc.Description, &sc.Risk, &sc.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Scenario{}, domain.ErrScenarioNotFound
	}
	if err != nil {
		return domain.Scenario{}, fmt.Errorf("load scenario: %w", err)
	}

	questions, err := l.questions(ctx, sc.ID)
	if err != nil {
		return domain.Scenario{}, err
	}
	options, err := l.options(ctx, sc.ID)
	if err != nil {
		return domain.Scenario{}, err
	}
	links, err := l.links(ctx, sc.ID)
	if err != nil {
		return domain.Scenario{}, err
	}
	return assembleScenarios([]scenarioRow{sc}, questions, options, links)[0], nil
}

func (l *ScenarioLoader) questions(ctx context.Context, scenarioID string) ([]questionRow, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT id::text, scenario_id::text, text, priority, position, max_points
		FROM questions
		WHERE scenario_id::text = $1
		ORDER BY position, id`, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var out []questionRow
	for rows.Next() {
		var q questionRow
		if err := rows.Scan(&q.ID, &q.ScenarioID, &q.Text, &q.Priority, &q.Position, &q.MaxPoints); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (l *ScenarioLoader) options(ctx context.Context, scenarioID string) ([]optionRow, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT o.id::text, o.question_id::text, o.text, o.weight, o.is_correct, o.position
		FROM answer_options o
		JOIN questions q ON q.id = o.question_id
		WHERE q.scenario_id::text = $1
		ORDER BY o.position, o.id`, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("load answer options: %w", err)
	}
	defer rows.Close()

	var out []optionRow
	for rows.Next() {
		var o optionRow
		if err := rows.Scan(&o.ID, &o.QuestionID, &o.Text, &o.Weight, &o.IsCorrect, &o.Position); err != nil {
			return nil, fmt.Errorf("scan answer option: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (l *ScenarioLoader) links(ctx context.Context, scenarioID string) ([]questionRoleRow, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT qr.question_id::text, qr.role_id::text, qr.position
		FROM question_roles qr
		JOIN questions q ON q.id = qr.question_id
		WHERE q.scenario_id::text = $1
		ORDER BY qr.position`, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("load question roles: %w", err)
	}
	defer rows.Close()

	var out []questionRoleRow
	for rows.Next() {
		var link questionRoleRow
		if err := rows.Scan(&link.QuestionID, &link.RoleID, &link.Position); err != nil {
			return nil, fmt.Errorf("scan question role: %w", err)
		}
		out = append(out, link)
	}
	return out, rows.Err()
}
