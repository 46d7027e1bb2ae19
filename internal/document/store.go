package document

import "sync"

// Store holds the text of the most recently uploaded report. One report is
// active at a time; a new upload replaces the previous one.
type Store struct {
	mu   sync.RWMutex
	text string
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Set(text string) {
	s.mu.Lock()
	s.text = text
	s.mu.Unlock()
}

func (s *Store) Text() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.text
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.text)
}

func (s *Store) Clear() {
	s.mu.Lock()
	s.text = ""
	s.mu.Unlock()
}
