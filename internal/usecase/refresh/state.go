package refresh

import (
	"sync"
	"time"

	"medfeed/internal/domain/entity"
)

// SourceFailure records one source that could not contribute to a snapshot.
// Failures are visible on the snapshot so diagnostics can tell "source had
// nothing new" apart from "source was unreachable".
type SourceFailure struct {
	SourceID   string
	Kind       string // fetch, status, decode, extract
	Message    string
	OccurredAt time.Time
}

// Snapshot is one immutable published state of the article list.
// Articles are sorted by title ascending; that ordering is the only
// guarantee consumers may rely on.
type Snapshot struct {
	Articles    []entity.Article
	Failures    []SourceFailure
	RefreshedAt time.Time
}

// State holds the current snapshot and fans it out to subscribers. It also
// carries the cycle status consumers poll: whether a refresh is running and
// the message of the last failed cycle.
// The zero value is not usable; call NewState.
type State struct {
	mu         sync.RWMutex
	snap       Snapshot
	lastErr    string
	refreshing bool

	subMu sync.Mutex
	subs  map[int]chan Snapshot
	next  int
}

// NewState returns an empty state with no published snapshot.
func NewState() *State {
	return &State{subs: make(map[int]chan Snapshot)}
}

// Snapshot returns a copy of the current snapshot. Slices are copied so
// callers can hold the result across later publishes.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySnapshot(s.snap)
}

// LastError returns the message of the last failed refresh cycle, or the
// empty string after a successful one.
func (s *State) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// SetError records the message of a failed refresh cycle. The current
// snapshot is left in place.
func (s *State) SetError(msg string) {
	s.mu.Lock()
	s.lastErr = msg
	s.mu.Unlock()
}

// Refreshing reports whether a refresh cycle is currently running.
func (s *State) Refreshing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshing
}

// SetRefreshing flips the in-progress flag around a refresh cycle.
func (s *State) SetRefreshing(v bool) {
	s.mu.Lock()
	s.refreshing = v
	s.mu.Unlock()
}

// Publish replaces the current snapshot, clears any failure message, and
// notifies all subscribers. Subscriber channels hold one pending snapshot;
// a slow subscriber has its stale pending value replaced rather than
// blocking the publisher.
func (s *State) Publish(snap Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.lastErr = ""
	s.mu.Unlock()

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- copySnapshot(snap):
		default:
			select {
			case <-ch:
			default:
			}
			ch <- copySnapshot(snap)
		}
	}
}

// Subscribe registers an observer for future snapshots. The returned cancel
// function must be called to release the subscription.
func (s *State) Subscribe() (<-chan Snapshot, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.next
	s.next++
	ch := make(chan Snapshot, 1)
	s.subs[id] = ch

	cancel := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

func copySnapshot(snap Snapshot) Snapshot {
	out := Snapshot{RefreshedAt: snap.RefreshedAt}
	if snap.Articles != nil {
		out.Articles = make([]entity.Article, len(snap.Articles))
		copy(out.Articles, snap.Articles)
	}
	if snap.Failures != nil {
		out.Failures = make([]SourceFailure, len(snap.Failures))
		copy(out.Failures, snap.Failures)
	}
	return out
}
