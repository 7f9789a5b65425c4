package service

import (
	"context"
	"sync"

	"github.com/ukydev/vehicle-monitor/internal/models"
)

// Subscription is the handle for an active-trip observation. It owns its
// own cancellation; there is no shared subscription state anywhere else.
type Subscription struct {
	cancel context.CancelFunc
	done   chan struct{}

	// mu serializes deliveries and fences termination: finish acquires it
	// before closing, so once Cancel returns no callback is running and
	// none will run again.
	mu     sync.Mutex
	closed bool
	err    error
}

// Cancel stops the subscription. When it returns, no further delivery occurs.
func (s *Subscription) Cancel() {
	s.cancel()
	s.finish(nil)
}

// Done is closed once the subscription stops delivering, whether by Cancel,
// context cancellation, or a feed failure.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Err reports why the subscription ended: the feed error after a failure,
// nil after Cancel or context cancellation.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Subscription) finish(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.err = err
	close(s.done)
}

func (s *Subscription) deliver(fn func(*models.Trip), trip *models.Trip) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	fn(trip)
}

// Observe subscribes to the vehicle's active trip. The callback receives the
// current in-progress trip, or nil when there is none: once immediately, then
// on every change. Deliveries never overlap. The returned handle stops the
// subscription; cancelling ctx stops it as well. When the underlying feed
// fails, Done closes and Err reports the failure so the caller can
// resubscribe.
func (s *TripService) Observe(ctx context.Context, userID, vehicleID string, fn func(*models.Trip)) (*Subscription, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	if vehicleID == "" {
		return nil, ErrInvalidVehicleID
	}

	watchCtx, cancel := context.WithCancel(ctx)

	events, err := s.trips.WatchActive(watchCtx, userID, vehicleID)
	if err != nil {
		cancel()
		return nil, err
	}

	// Snapshot after the watch is established so no transition between the
	// two is lost; a duplicate emission is possible, a missed one is not.
	current, err := s.trips.FindActive(watchCtx, userID, vehicleID)
	if err != nil {
		cancel()
		return nil, err
	}

	sub := &Subscription{cancel: cancel, done: make(chan struct{})}
	go func() {
		sub.deliver(fn, current)
		for change := range events {
			if change.Err != nil {
				cancel()
				sub.finish(change.Err)
				return
			}
			sub.deliver(fn, change.Trip)
		}
		sub.finish(nil)
	}()

	return sub, nil
}
