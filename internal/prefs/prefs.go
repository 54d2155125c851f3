// Package prefs holds the dashboard's UI preferences: sidebar state and
// colour scheme. One Store is created at startup and shared by reference.
package prefs

import "sync"

type Preferences struct {
	SidebarCollapsed bool `json:"sidebarCollapsed"`
	DarkMode         bool `json:"darkMode"`
}

// Store is safe for concurrent use. Subscribers always see the latest
// snapshot; intermediate values may be skipped.
type Store struct {
	mu     sync.Mutex
	cur    Preferences
	nextID int
	subs   map[int]chan Preferences
}

func NewStore(initial Preferences) *Store {
	return &Store{cur: initial, subs: make(map[int]chan Preferences)}
}

func (s *Store) Get() Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// Update applies fn to the current preferences and notifies subscribers.
// It returns the new snapshot.
func (s *Store) Update(fn func(*Preferences)) Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cur
	fn(&next)
	s.cur = next
	for _, ch := range s.subs {
		publish(ch, next)
	}
	return next
}

// ToggleSidebar flips the sidebar state.
func (s *Store) ToggleSidebar() Preferences {
	return s.Update(func(p *Preferences) { p.SidebarCollapsed = !p.SidebarCollapsed })
}

// ToggleDarkMode flips the colour scheme.
func (s *Store) ToggleDarkMode() Preferences {
	return s.Update(func(p *Preferences) { p.DarkMode = !p.DarkMode })
}

// Subscribe returns a channel that receives the current snapshot now and
// every later one. cancel closes the channel; calling it twice is safe.
func (s *Store) Subscribe() (<-chan Preferences, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan Preferences, 1)
	ch <- s.cur
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// publish replaces any unread snapshot with p. Callers hold s.mu, so no other
// sender can refill the buffer between the drain and the send.
func publish(ch chan Preferences, p Preferences) {
	select {
	case <-ch:
	default:
	}
	ch <- p
}
