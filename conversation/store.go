package conversation

import "sync"

// Store keeps one Conversation per user in memory. Records are created
// lazily on first access and live for the process lifetime; "destroying"
// a conversation just resets it to idle.
//
// Individual operations are atomic under a single mutex, so a
// read-modify-write through Update cannot interleave with a concurrent
// handler for the same user. The Router is the only writer.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]*Conversation
}

// NewStore constructs an empty in-memory store.
func NewStore() *Store {
	return &Store{sessions: make(map[int64]*Conversation)}
}

// Get returns a snapshot of the user's conversation, creating an idle
// record if the user is seen for the first time.
func (s *Store) Get(userID int64) Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.locked(userID)
}

// Update applies fn to the user's conversation atomically.
func (s *Store) Update(userID int64, fn func(*Conversation)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.locked(userID))
}

// Reset returns the user's conversation to idle and discards the
// selected hall, regardless of the current mode.
func (s *Store) Reset(userID int64) {
	s.Update(userID, func(c *Conversation) {
		c.Mode = ModeIdle
		c.SelectedHall = ""
	})
}

// InProgress reports whether the user currently has an active flow.
func (s *Store) InProgress(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.sessions[userID]; ok {
		return c.Mode != ModeIdle
	}
	return false
}

// locked returns the live record for userID; callers must hold s.mu.
func (s *Store) locked(userID int64) *Conversation {
	c, ok := s.sessions[userID]
	if !ok {
		c = &Conversation{Mode: ModeIdle}
		s.sessions[userID] = c
	}
	return c
}
