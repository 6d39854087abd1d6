package app

import (
	"context"

	"golang.org/x/sync/errgroup"
	"incident-training-service/internal/domain"
	"incident-training-service/internal/scoring"
)

// ReportService computes outcomes from the stored graph.
type ReportService struct {
	snapshots  SnapshotLoader
	incidents  IncidentStore
	directory  DirectoryStore
	aggregator *scoring.Aggregator
}

func NewReportService(snapshots SnapshotLoader, incidents IncidentStore, directory DirectoryStore) *ReportService {
	return NewReportServiceWith(snapshots, incidents, directory, scoring.NewAggregator())
}

// NewReportServiceWith is test-only for deterministic outcome ids.
func NewReportServiceWith(snapshots SnapshotLoader, incidents IncidentStore, directory DirectoryStore, aggregator *scoring.Aggregator) *ReportService {
	return &ReportService{snapshots: snapshots, incidents: incidents, directory: directory, aggregator: aggregator}
}

// Results grades every incident with responses, newest completion first.
func (s *ReportService) Results(ctx context.Context) ([]domain.Outcome, error) {
	snap, err := s.snapshots.LoadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.aggregator.Aggregate(snap), nil
}

// IncidentResults grades a single incident.
func (s *ReportService) IncidentResults(ctx context.Context, incidentID string) ([]domain.Outcome, error) {
	snap, err := s.snapshots.LoadIncidentSnapshot(ctx, incidentID)
	if err != nil {
		return nil, err
	}
	if len(snap.Incidents) == 0 {
		return nil, domain.ErrIncidentNotFound
	}
	return s.aggregator.Aggregate(snap), nil
}

// UserDetail loads the user, their history and the snapshot concurrently,
// then summarizes completed and pending incidents.
func (s *ReportService) UserDetail(ctx context.Context, userID string) (domain.UserDetail, error) {
	var (
		user    domain.User
		history []domain.Response
		snap    domain.Snapshot
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		user, err = s.directory.GetUser(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		history, err = s.incidents.ListUserResponses(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		snap, err = s.snapshots.LoadSnapshot(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.UserDetail{}, err
	}
	return scoring.SummarizeUser(user, history, snap), nil
}
