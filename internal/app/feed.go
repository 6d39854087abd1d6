package app

import (
	"sync"
	"time"

	"incident-training-service/internal/domain"
)

// NewFeed is exported for infrastructure layers that need to seed feeds.
func NewFeed(incidentID string) *Feed {
	return newFeedWithClock(incidentID, time.Now)
}

// NewFeedWithClock is test-only for deterministic timestamps.
func NewFeedWithClock(incidentID string, now func() time.Time) *Feed {
	return newFeedWithClock(incidentID, now)
}

// Feed fans the latest outcomes of one incident out to its watchers.
type Feed struct {
	id          string
	now         func() time.Time
	mu          sync.RWMutex
	watchers    map[string]int
	outcomes    []domain.Outcome
	updatedAt   time.Time
	subscribers map[chan domain.IncidentBoard]struct{}
}

func newFeedWithClock(incidentID string, now func() time.Time) *Feed {
	return &Feed{
		id:          incidentID,
		now:         now,
		watchers:    make(map[string]int),
		outcomes:    []domain.Outcome{},
		updatedAt:   now(),
		subscribers: make(map[chan domain.IncidentBoard]struct{}),
	}
}

// ID returns the incident the feed belongs to.
func (f *Feed) ID() string { return f.id }

// join counts a watcher; the same user may hold several connections.
func (f *Feed) join(userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.watchers[userID]++
}

func (f *Feed) leave(userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.watchers[userID] <= 1 {
		delete(f.watchers, userID)
		return
	}
	f.watchers[userID]--
}

// IsEmpty reports whether the feed has no watchers.
func (f *Feed) IsEmpty() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.watchers) == 0
}

// Board returns the last published board.
func (f *Feed) Board() domain.IncidentBoard {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.boardLocked()
}

func (f *Feed) publish(outcomes []domain.Outcome) domain.IncidentBoard {
	f.mu.Lock()
	defer f.mu.Unlock()
	if outcomes == nil {
		outcomes = []domain.Outcome{}
	}
	f.outcomes = outcomes
	f.updatedAt = f.now()
	return f.broadcastLocked()
}

func (f *Feed) subscribe() (<-chan domain.IncidentBoard, func()) {
	ch := make(chan domain.IncidentBoard, 8)

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	initial := f.boardLocked()
	f.mu.Unlock()

	ch <- initial

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subscribers[ch]; ok {
			delete(f.subscribers, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

func (f *Feed) broadcastLocked() domain.IncidentBoard {
	board := f.boardLocked()
	for ch := range f.subscribers {
		select {
		case ch <- board:
		default:
			// Slow subscriber: drop its oldest board and keep the newest.
			select {
			case <-ch:
			default:
			}
			ch <- board
		}
	}
	return board
}

func (f *Feed) boardLocked() domain.IncidentBoard {
	return domain.IncidentBoard{
		IncidentID: f.id,
		Outcomes:   f.outcomes,
		UpdatedAt:  f.updatedAt,
	}
}
