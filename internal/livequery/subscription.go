package livequery

import (
	"context"
	"errors"
	"sync"

	"microfeed/internal/models"
)

// Producer feeds a subscription until ctx is cancelled or it fails.
// emit may drop a pending, not yet consumed snapshot in favour of the new one.
type Producer func(ctx context.Context, emit func(models.Snapshot)) error

// Subscription is a lazy, unbounded, cancelable stream of full ordered
// snapshots for one scope.
type Subscription struct {
	scope   models.Scope
	updates chan models.Snapshot
	cancel  context.CancelFunc
	done    chan struct{}
	once    sync.Once

	mu  sync.Mutex
	err error
}

// Start runs produce in its own goroutine. The subscription ends when the
// parent ctx is done, Cancel is called, or produce returns.
func Start(ctx context.Context, scope models.Scope, produce Producer) *Subscription {
	ctx, cancel := context.WithCancel(ctx)

	s := &Subscription{
		scope:   scope,
		updates: make(chan models.Snapshot, 1),
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go func() {
		defer close(s.done)
		defer close(s.updates)

		err := produce(ctx, func(snap models.Snapshot) { s.emit(ctx, snap) })
		if err != nil && !errors.Is(err, context.Canceled) {
			s.mu.Lock()
			s.err = err
			s.mu.Unlock()
		}
	}()

	return s
}

func (s *Subscription) emit(ctx context.Context, snap models.Snapshot) {
	select {
	case s.updates <- snap:
		return
	case <-ctx.Done():
		return
	default:
	}

	// consumer is behind: replace the stale snapshot
	select {
	case <-s.updates:
	default:
	}

	select {
	case s.updates <- snap:
	case <-ctx.Done():
	}
}

func (s *Subscription) Scope() models.Scope {
	return s.scope
}

// Snapshots is closed once the subscription ends.
func (s *Subscription) Snapshots() <-chan models.Snapshot {
	return s.updates
}

// Cancel stops the producer and waits for it to exit. Safe to call any
// number of times.
func (s *Subscription) Cancel() {
	s.once.Do(s.cancel)
	<-s.done
}

// Done is closed after the producer has exited.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Err reports why the producer stopped, nil after a plain Cancel.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
