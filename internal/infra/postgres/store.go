package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"golang.org/x/sync/errgroup"
	"incident-training-service/internal/domain"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeInvalidText         = "22P02"
)

// OpenDB opens a bun handle on dsn using the pure-Go pgdriver.
func OpenDB(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// Store persists the training graph in Postgres through bun.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

func (s *Store) SaveRole(ctx context.Context, role domain.Role) error {
	row := toRoleRow(role)
	_, err := s.db.NewInsert().Model(&row).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("clearance = EXCLUDED.clearance").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save role: %w", err)
	}
	return nil
}

func (s *Store) ListRoles(ctx context.Context) ([]domain.Role, error) {
	var rows []roleRow
	if err := s.db.NewSelect().Model(&rows).Order("name ASC", "id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	out := make([]domain.Role, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *Store) SaveUser(ctx context.Context, user domain.User) error {
	row := toUserRow(user)
	_, err := s.db.NewInsert().Model(&row).
		On("CONFLICT (id) DO UPDATE").
		Set("username = EXCLUDED.username").
		Set("email = EXCLUDED.email").
		Set("role_id = EXCLUDED.role_id").
		Exec(ctx)
	switch {
	case pgCode(err) == codeUniqueViolation:
		return fmt.Errorf("%w: username %q already taken", domain.ErrInvalidRequest, user.Username)
	case pgCode(err) == codeForeignKeyViolation:
		return domain.ErrRoleNotFound
	case err != nil:
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, userID string) (domain.User, error) {
	var row userRow
	err := s.db.NewSelect().Model(&row).Where("id = ?", userID).Scan(ctx)
	if err != nil {
		return domain.User{}, notFound(err, domain.ErrUserNotFound, "get user")
	}
	return row.toDomain(), nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	var rows []userRow
	if err := s.db.NewSelect().Model(&rows).Order("username ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]domain.User, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

// SaveScenario writes the scenario, its questions, options and role links in one transaction.
func (s *Store) SaveScenario(ctx context.Context, scenario domain.Scenario) error {
	sc, questions, options, links := scenarioRows(scenario)
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&sc).Exec(ctx); err != nil {
			return err
		}
		if len(questions) > 0 {
			if _, err := tx.NewInsert().Model(&questions).Exec(ctx); err != nil {
				return err
			}
		}
		if len(options) > 0 {
			if _, err := tx.NewInsert().Model(&options).Exec(ctx); err != nil {
				return err
			}
		}
		if len(links) > 0 {
			if _, err := tx.NewInsert().Model(&links).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save scenario: %w", err)
	}
	return nil
}

func (s *Store) ListScenarios(ctx context.Context) ([]domain.Scenario, error) {
	return s.loadScenarios(ctx, nil)
}

// LoadScenario satisfies the cache loader contract from the bun side.
func (s *Store) LoadScenario(ctx context.Context, scenarioID string) (domain.Scenario, error) {
	scenarios, err := s.loadScenarios(ctx, []string{scenarioID})
	if pgCode(err) == codeInvalidText {
		return domain.Scenario{}, domain.ErrScenarioNotFound
	}
	if err != nil {
		return domain.Scenario{}, err
	}
	if len(scenarios) == 0 {
		return domain.Scenario{}, domain.ErrScenarioNotFound
	}
	return scenarios[0], nil
}

// loadScenarios reads the given scenarios, or every scenario when ids is nil.
func (s *Store) loadScenarios(ctx context.Context, ids []string) ([]domain.Scenario, error) {
	var scenarios []scenarioRow
	q := s.db.NewSelect().Model(&scenarios).Order("created_at ASC", "id ASC")
	if ids != nil {
		q = q.Where("id IN (?)", bun.In(ids))
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("load scenarios: %w", err)
	}
	if len(scenarios) == 0 {
		return []domain.Scenario{}, nil
	}
	scenarioIDs := make([]string, 0, len(scenarios))
	for _, sc := range scenarios {
		scenarioIDs = append(scenarioIDs, sc.ID)
	}

	var questions []questionRow
	if err := s.db.NewSelect().Model(&questions).
		Where("scenario_id IN (?)", bun.In(scenarioIDs)).
		Order("position ASC", "id ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	questionIDs := make([]string, 0, len(questions))
	for _, q := range questions {
		questionIDs = append(questionIDs, q.ID)
	}

	var (
		options []optionRow
		links   []questionRoleRow
	)
	if len(questionIDs) > 0 {
		if err := s.db.NewSelect().Model(&options).
			Where("question_id IN (?)", bun.In(questionIDs)).
			Order("position ASC", "id ASC").
			Scan(ctx); err != nil {
			return nil, fmt.Errorf("load answer options: %w", err)
		}
		if err := s.db.NewSelect().Model(&links).
			Where("question_id IN (?)", bun.In(questionIDs)).
			Order("position ASC").
			Scan(ctx); err != nil {
			return nil, fmt.Errorf("load question roles: %w", err)
		}
	}
	return assembleScenarios(scenarios, questions, options, links), nil
}

func (s *Store) SaveIncident(ctx context.Context, incident domain.Incident) error {
	row := toIncidentRow(incident)
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		if pgCode(err) == codeForeignKeyViolation {
			return domain.ErrScenarioNotFound
		}
		return fmt.Errorf("save incident: %w", err)
	}
	return nil
}

func (s *Store) GetIncident(ctx context.Context, incidentID string) (domain.Incident, error) {
	var row incidentRow
	if err := s.db.NewSelect().Model(&row).Where("id = ?", incidentID).Scan(ctx); err != nil {
		return domain.Incident{}, notFound(err, domain.ErrIncidentNotFound, "get incident")
	}
	var responses []responseRow
	if err := s.db.NewSelect().Model(&responses).
		Where("incident_id = ?", incidentID).
		Order("answered_at ASC", "id ASC").
		Scan(ctx); err != nil {
		return domain.Incident{}, fmt.Errorf("load responses: %w", err)
	}
	return attachResponses([]incidentRow{row}, responses)[0], nil
}

func (s *Store) ListIncidents(ctx context.Context) ([]domain.Incident, error) {
	var rows []incidentRow
	if err := s.db.NewSelect().Model(&rows).OrderExpr("started_at ASC NULLS LAST, id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	var responses []responseRow
	if err := s.db.NewSelect().Model(&responses).Order("answered_at ASC", "id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("load responses: %w", err)
	}
	return attachResponses(rows, responses), nil
}

func (s *Store) CompleteIncident(ctx context.Context, incidentID string, at time.Time) (domain.Incident, error) {
	res, err := s.db.NewUpdate().Model((*incidentRow)(nil)).
		Set("status = ?", int(domain.StatusCompleted)).
		Set("completed_at = ?", at).
		Where("id = ?", incidentID).
		Exec(ctx)
	if err != nil {
		return domain.Incident{}, notFound(err, domain.ErrIncidentNotFound, "complete incident")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.Incident{}, domain.ErrIncidentNotFound
	}
	return s.GetIncident(ctx, incidentID)
}

func (s *Store) SaveResponse(ctx context.Context, response domain.Response) error {
	row := toResponseRow(response)
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		if pgCode(err) == codeForeignKeyViolation {
			return domain.ErrIncidentNotFound
		}
		return fmt.Errorf("save response: %w", err)
	}
	return nil
}

func (s *Store) ListUserResponses(ctx context.Context, userID string) ([]domain.Response, error) {
	var rows []responseRow
	err := s.db.NewSelect().Model(&rows).
		Where("user_id = ?", userID).
		Order("answered_at ASC", "id ASC").
		Scan(ctx)
	if pgCode(err) == codeInvalidText {
		return []domain.Response{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list user responses: %w", err)
	}
	out := make([]domain.Response, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

// LoadSnapshot reads the whole graph; the four reads run concurrently.
func (s *Store) LoadSnapshot(ctx context.Context) (domain.Snapshot, error) {
	var snap domain.Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.Scenarios, err = s.ListScenarios(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Incidents, err = s.ListIncidents(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Users, err = s.ListUsers(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Roles, err = s.ListRoles(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Snapshot{}, err
	}
	return snap, nil
}

func (s *Store) LoadIncidentSnapshot(ctx context.Context, incidentID string) (domain.Snapshot, error) {
	incident, err := s.GetIncident(ctx, incidentID)
	if errors.Is(err, domain.ErrIncidentNotFound) {
		return domain.Snapshot{}, nil
	}
	if err != nil {
		return domain.Snapshot{}, err
	}

	snap := domain.Snapshot{Incidents: []domain.Incident{incident}}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.Scenarios, err = s.loadScenarios(gctx, []string{incident.ScenarioID})
		return err
	})
	g.Go(func() (err error) {
		snap.Users, err = s.ListUsers(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Roles, err = s.ListRoles(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Snapshot{}, err
	}
	return snap, nil
}

// pgCode extracts the SQLSTATE of a pgdriver error, or "".
func pgCode(err error) string {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C')
	}
	return ""
}

// notFound maps missing rows and malformed ids to sentinel.
func notFound(err error, sentinel error, op string) error {
	if errors.Is(err, sql.ErrNoRows) || pgCode(err) == codeInvalidText {
		return sentinel
	}
	return fmt.Errorf("%s: %w", op, err)
}
