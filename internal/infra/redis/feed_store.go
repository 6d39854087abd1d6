package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"incident-training-service/internal/app"
)

// FeedStore is a Redis-aware implementation of app.FeedRepository.
// Feeds and their broadcast stay in process; Redis only marks which
// incidents are being watched so other instances can see it.
type FeedStore struct {
	client *redis.Client
	ttl    time.Duration
	mu     sync.RWMutex
	feeds  map[string]*app.Feed
}

func NewFeedStore(client *redis.Client, ttl time.Duration) *FeedStore {
	return &FeedStore{
		client: client,
		ttl:    ttl,
		feeds:  make(map[string]*app.Feed),
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
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(incidentID), "1", s.ttl).Err()
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
		_ = s.client.Del(context.Background(), s.key(incidentID)).Err()
	}
}

// Watched reports whether any instance marked incidentID as watched.
func (s *FeedStore) Watched(ctx context.Context, incidentID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(incidentID)).Result()
	return n > 0, err
}

func (s *FeedStore) key(incidentID string) string {
	return "incident:feed:" + incidentID
}
