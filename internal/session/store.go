package session

import (
	"sync"

	"microfeed/internal/models"
)

// Observer is told about every change of the session slot.
type Observer func(models.Session)

// Store holds the identity of the signed-in user. The zero session means
// signed out.
type Store struct {
	mu        sync.Mutex
	current   models.Session
	nextID    int
	observers map[int]Observer
	order     []int
}

func NewStore() *Store {
	return &Store{observers: make(map[int]Observer)}
}

func (s *Store) Current() models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Store) Login(session models.Session) {
	s.set(session)
}

func (s *Store) Logout() {
	s.set(models.Session{})
}

// UpdateProfile changes the display fields of the current session. It is a
// no-op when signed out.
func (s *Store) UpdateProfile(displayName, photoURL string) {
	s.mu.Lock()
	if s.current.Empty() {
		s.mu.Unlock()
		return
	}
	s.current.DisplayName = displayName
	s.current.PhotoURL = photoURL
	current := s.current
	observers := s.snapshotObservers()
	s.mu.Unlock()

	notify(observers, current)
}

// Subscribe registers fn and returns the function that unregisters it.
// Unregistering more than once has no further effect.
func (s *Store) Subscribe(fn Observer) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	s.order = append(s.order, id)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()

			delete(s.observers, id)
			for i, v := range s.order {
				if v == id {
					s.order = append(s.order[:i], s.order[i+1:]...)
					break
				}
			}
		})
	}
}

func (s *Store) set(session models.Session) {
	s.mu.Lock()
	s.current = session
	observers := s.snapshotObservers()
	s.mu.Unlock()

	notify(observers, session)
}

// snapshotObservers must be called with mu held.
func (s *Store) snapshotObservers() []Observer {
	out := make([]Observer, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.observers[id])
	}
	return out
}

func notify(observers []Observer, session models.Session) {
	for _, fn := range observers {
		fn(session)
	}
}
