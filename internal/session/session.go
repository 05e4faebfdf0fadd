// Package session keeps the per-conversation wizard state of the bot.
package session

import (
	"sync"

	"github.com/DigneZzZ/remnabot/internal/flow"
)

// Key identifies one admin's conversation in one chat
type Key struct {
	ChatID int64
	UserID int64
}

// MessageRef points at a message the bot keeps editing
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// Session is the state of one conversation. At most one flow is active.
type Session struct {
	Flow flow.Flow
	// Anchor is the prompt message of the active flow, if any
	Anchor *MessageRef
}

// Store holds sessions in memory. State does not survive a restart.
type Store struct {
	mu       sync.Mutex
	sessions map[Key]*Session
	locks    map[Key]*sync.Mutex
}

// NewStore returns an empty store
func NewStore() *Store {
	return &Store{
		sessions: make(map[Key]*Session),
		locks:    make(map[Key]*sync.Mutex),
	}
}

// Get returns a copy of the session for key. ok is false when no flow is
// active.
func (s *Store) Get(key Key) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[key]
	if !ok || sess.Flow == nil {
		return Session{}, false
	}
	return *sess, true
}

// Begin makes f the active flow for key, discarding whatever was active.
func (s *Store) Begin(key Key, f flow.Flow) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[key] = &Session{Flow: f}
}

// SetAnchor records the prompt message of the active flow. It is a no-op
// when no flow is active.
func (s *Store) SetAnchor(key Key, ref MessageRef) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[key]; ok {
		sess.Anchor = &ref
	}
}

// End discards the session for key and returns what was active.
func (s *Store) End(key Key) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[key]
	if !ok {
		return Session{}, false
	}
	delete(s.sessions, key)
	return *sess, true
}

// Lock serializes updates for key and returns the unlock func.
func (s *Store) Lock(key Key) func() {
	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Len is the number of active sessions
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
