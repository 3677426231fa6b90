package feed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"microfeed/internal/livequery"
	"microfeed/internal/models"
)

// ErrScopeChanged is returned by a Mount that lost to a concurrent Mount of
// another scope.
var ErrScopeChanged = errors.New("область подписки сменилась")

// Source opens live queries.
type Source interface {
	Subscribe(ctx context.Context, scope models.Scope) (*livequery.Subscription, error)
}

// Synchronizer mirrors one live query into a local list of view rows. Every
// delivery replaces the list wholesale.
type Synchronizer[T any] struct {
	source  Source
	mapRow  func(models.Document) T
	onEvent func()

	mu      sync.Mutex
	scope   models.Scope
	mounted bool
	loaded  bool
	sub     *livequery.Subscription
	rows    []T
}

func NewSynchronizer[T any](source Source, mapRow func(models.Document) T) *Synchronizer[T] {
	return &Synchronizer[T]{source: source, mapRow: mapRow}
}

// NewFeed follows the posts collection, newest first.
func NewFeed(source Source) *Synchronizer[models.Post] {
	return NewSynchronizer(source, models.PostFromDocument)
}

// NewComments follows the comments of one post at a time.
func NewComments(source Source) *Synchronizer[models.Comment] {
	return NewSynchronizer(source, models.CommentFromDocument)
}

// OnChange sets the listener called after every replacement of the rows.
// It runs outside the synchronizer lock.
func (s *Synchronizer[T]) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEvent = fn
}

// Mount subscribes to scope. Mounting the scope already mounted is a no-op;
// a different scope drops the current rows and subscription first.
func (s *Synchronizer[T]) Mount(ctx context.Context, scope models.Scope) error {
	if err := scope.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.mounted && s.scope == scope {
		s.mu.Unlock()
		return nil
	}
	old := s.detach()
	s.mu.Unlock()

	if old != nil {
		old.Cancel()
		s.changed()
	}

	sub, err := s.source.Subscribe(ctx, scope)
	if err != nil {
		return fmt.Errorf("ошибка подписки на %s: %w", scope.Key(), err)
	}

	s.mu.Lock()
	if s.mounted {
		// a concurrent Mount won
		current := s.scope
		s.mu.Unlock()
		sub.Cancel()
		if current != scope {
			return fmt.Errorf("%w: запрошена %s, подключена %s", ErrScopeChanged, scope.Key(), current.Key())
		}
		return nil
	}
	s.scope = scope
	s.mounted = true
	s.sub = sub
	s.mu.Unlock()

	go s.drain(sub)
	return nil
}

// Unmount releases the subscription. Safe to call any number of times.
func (s *Synchronizer[T]) Unmount() {
	s.mu.Lock()
	old := s.detach()
	s.mu.Unlock()

	if old != nil {
		old.Cancel()
		s.changed()
	}
}

// detach must be called with mu held.
func (s *Synchronizer[T]) detach() *livequery.Subscription {
	old := s.sub
	s.sub = nil
	s.mounted = false
	s.loaded = false
	s.scope = models.Scope{}
	s.rows = nil
	return old
}

func (s *Synchronizer[T]) drain(sub *livequery.Subscription) {
	for snap := range sub.Snapshots() {
		rows := make([]T, 0, len(snap.Documents))
		for _, doc := range snap.Documents {
			rows = append(rows, s.mapRow(doc))
		}

		s.mu.Lock()
		if s.sub != sub {
			s.mu.Unlock()
			return
		}
		s.rows = rows
		s.loaded = true
		s.mu.Unlock()

		s.changed()
	}

	if err := sub.Err(); err != nil {
		log.Printf("Подписка на %s завершилась с ошибкой: %v", sub.Scope().Key(), err)
	}
}

func (s *Synchronizer[T]) changed() {
	s.mu.Lock()
	fn := s.onEvent
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Rows returns a copy of the current list.
func (s *Synchronizer[T]) Rows() []T {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]T, len(s.rows))
	copy(out, s.rows)
	return out
}

// Loaded reports whether the mounted scope has delivered its first snapshot,
// telling an empty list apart from one still loading.
func (s *Synchronizer[T]) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Scope reports the mounted scope and whether anything is mounted.
func (s *Synchronizer[T]) Scope() (models.Scope, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scope, s.mounted
}
