package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/asistente-hogar/backend/internal/model/chat"
)

var ErrSessionNotFound = errors.New("session not found")

// Store owns every live conversation. Sessions are kept for the process
// lifetime; nothing is evicted or persisted.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*chat.Session
	now      func() time.Time
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*chat.Session),
		now:      time.Now,
	}
}

// CreateSession registers a fresh session with an empty history.
func (s *Store) CreateSession(_ context.Context) chat.Session {
	session := &chat.Session{
		ID:        uuid.NewString(),
		CreatedAt: s.now().UTC(),
		History:   make([]chat.Turn, 0, 16),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	return chat.Session{ID: session.ID, CreatedAt: session.CreatedAt, History: []chat.Turn{}}
}

// Resolve returns id when it names a live session, otherwise it creates one.
func (s *Store) Resolve(ctx context.Context, id string) (string, bool) {
	if id != "" {
		s.mu.RLock()
		_, ok := s.sessions[id]
		s.mu.RUnlock()
		if ok {
			return id, false
		}
	}
	return s.CreateSession(ctx).ID, true
}

// GetHistory returns a copy of the turns recorded for the session.
func (s *Store) GetHistory(_ context.Context, id string) ([]chat.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}

	copied := make([]chat.Turn, len(session.History))
	copy(copied, session.History)
	return copied, nil
}

// GetSession retrieves a session snapshot by identifier.
func (s *Store) GetSession(_ context.Context, id string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}

	history := make([]chat.Turn, len(session.History))
	copy(history, session.History)
	return chat.Session{ID: session.ID, CreatedAt: session.CreatedAt, History: history}, nil
}

// AppendExchange records a user turn and the model reply as one step.
func (s *Store) AppendExchange(_ context.Context, id string, user, model chat.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}

	session.History = append(session.History, user, model)
	return nil
}

// Count reports how many sessions are alive.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
