package memory

import (
	"sync"

	"incident-training-service/internal/app"
)

// FeedStore is an in-memory implementation of app.FeedRepository.
type FeedStore struct {
	mu    sync.RWMutex
	feeds map[string]*app.Feed
}

func NewFeedStore() *FeedStore {
	return &FeedStore{
		feeds: make(map[string]*app.Feed),
	}
}

func (s *FeedStore) GetOrCreate(incidentID string) *app.Feed {
	s.mu.Lock()
	defer s.mu.Unlock()
	if feed, ok := s.feeds[incidentID]; ok {
		return feed
	}
	feed := app.NewFeed(incidentID)
	s.feeds[incidentID] = feed
	return feed
}

func (s *FeedStore) Get(incidentID string) (*app.Feed, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	feed, ok := s.feeds[incidentID]
	return feed, ok
}

func (s *FeedStore) DeleteIfEmpty(incidentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	feed, ok := s.feeds[incidentID]
	if !ok {
		return
	}
	if feed.IsEmpty() {
		delete(s.feeds, incidentID)
	}
}
