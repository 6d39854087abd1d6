package app

import (
	"context"

	"incident-training-service/internal/domain"
	"incident-training-service/internal/logger"
)

// FeedService keeps live incident boards current for websocket watchers.
type FeedService struct {
	feeds   FeedRepository
	reports *ReportService
	log     *logger.Logger
}

func NewFeedService(feeds FeedRepository, reports *ReportService, log *logger.Logger) *FeedService {
	if log == nil {
		log = logger.Nop()
	}
	return &FeedService{feeds: feeds, reports: reports, log: log}
}

// Join registers a watcher and returns the incident's current board.
// Unknown incidents are rejected before a feed is created.
func (s *FeedService) Join(ctx context.Context, incidentID, userID string) (domain.IncidentBoard, error) {
	outcomes, err := s.reports.IncidentResults(ctx, incidentID)
	if err != nil {
		return domain.IncidentBoard{}, err
	}
	feed := s.feeds.GetOrCreate(incidentID)
	feed.join(userID)
	return feed.publish(outcomes), nil
}

// Subscribe returns a channel that receives board updates for an incident.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *FeedService) Subscribe(_ context.Context, incidentID string) (<-chan domain.IncidentBoard, func(), error) {
	feed, ok := s.feeds.Get(incidentID)
	if !ok {
		return nil, nil, domain.ErrIncidentNotFound
	}
	ch, cancel := feed.subscribe()
	return ch, cancel, nil
}

// Publish recomputes the incident's outcomes and broadcasts them when anyone is watching.
func (s *FeedService) Publish(ctx context.Context, incidentID string) {
	feed, ok := s.feeds.Get(incidentID)
	if !ok {
		return
	}
	outcomes, err := s.reports.IncidentResults(ctx, incidentID)
	if err != nil {
		s.log.Warn("feed refresh failed", "incidentId", incidentID, "error", err)
		return
	}
	feed.publish(outcomes)
}

// Leave removes a watcher and drops the feed once nobody is left.
func (s *FeedService) Leave(_ context.Context, incidentID, userID string) {
	feed, ok := s.feeds.Get(incidentID)
	if !ok {
		return
	}
	feed.leave(userID)
	if feed.IsEmpty() {
		s.feeds.DeleteIfEmpty(incidentID)
	}
}
