package coordinator

import (
	"sync"
	"time"

	"github.com/mkoopmans/tgtg-bridge/internal/model"
)

// coordinatorState holds the thread-safe snapshot cache.
type coordinatorState struct {
	mu sync.RWMutex

	// Last successfully published snapshot; zero value until the first
	// success.
	snapshot model.Snapshot

	// Failure bookkeeping for the current run of cycles.
	lastRefresh time.Time
	lastErr     error
	failures    int
	cycles      uint64

	// Output channel for snapshot consumers.
	updates chan Update
}

func newState() *coordinatorState {
	return &coordinatorState{
		updates: make(chan Update, UpdateBufferSize),
	}
}

// current returns a copy of the snapshot (read-locked).
func (s *coordinatorState) current() model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snapshot.Listings == nil {
		return model.Snapshot{}
	}

	listings := make(map[string]model.Listing, len(s.snapshot.Listings))
	for id, l := range s.snapshot.Listings {
		listings[id] = l
	}
	orders := make([]model.Order, len(s.snapshot.Orders))
	copy(orders, s.snapshot.Orders)

	return model.Snapshot{Listings: listings, Orders: orders}
}

// getListing returns a listing by item ID (read-locked).
func (s *coordinatorState) getListing(itemID string) (model.Listing, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.snapshot.Listings[itemID]
	return l, ok
}

// publish replaces the snapshot wholesale and notifies consumers
// (write-locked).
func (s *coordinatorState) publish(update Update) {
	s.mu.Lock()
	s.snapshot = update.Snapshot
	s.lastRefresh = update.At
	s.lastErr = nil
	s.failures = 0
	s.cycles++
	s.mu.Unlock()

	s.notifyUpdate(update)
}

// recordFailure notes a failed cycle, leaving the snapshot untouched
// (write-locked).
func (s *coordinatorState) recordFailure(err error) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastErr = err
	s.failures++
	s.cycles++
	return s.failures
}

// status returns current bookkeeping (read-locked). Mode is filled in by the
// Coordinator.
func (s *coordinatorState) status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		Cycles:              s.cycles,
		ListingCount:        len(s.snapshot.Listings),
		LastRefresh:         s.lastRefresh,
		LastError:           s.lastErr,
		ConsecutiveFailures: s.failures,
	}
}

// notifyUpdate sends an update to the updates channel (non-blocking).
func (s *coordinatorState) notifyUpdate(update Update) {
	select {
	case s.updates <- update:
	default:
		// Channel full, drop oldest by consuming one and retrying.
		select {
		case <-s.updates:
			s.updates <- update
		default:
		}
	}
}
