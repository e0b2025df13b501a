package memory

import (
	"context"
	"sync"

	"github.com/mcoot/gamesessions/internal/model"
	"github.com/mcoot/gamesessions/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	sessions  map[model.SessionID]*model.Session
	joinCodes map[model.JoinCode]model.SessionID // active sessions only
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		sessions:  make(map[model.SessionID]*model.Session),
		joinCodes: make(map[model.JoinCode]model.SessionID),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) CreateSession(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !session.IsFinished {
		if _, taken := s.joinCodes[session.JoinCode]; taken {
			return model.ErrJoinCodeTaken
		}
		s.joinCodes[session.JoinCode] = session.ID
	}
	s.sessions[session.ID] = session.Clone()
	return nil
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return session.Clone(), nil
}

func (s *Storage) GetSessionByJoinCode(ctx context.Context, code model.JoinCode) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.joinCodes[code]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	session, ok := s.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return session.Clone(), nil
}

func (s *Storage) JoinCodeInUse(ctx context.Context, code model.JoinCode) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.joinCodes[code]
	return ok, nil
}

func (s *Storage) UpdateSession(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.sessions[session.ID]
	if !ok {
		return model.ErrSessionNotFound
	}
	if current.Version != session.Version {
		return model.ErrVersionConflict
	}

	if !session.IsFinished {
		if owner, taken := s.joinCodes[session.JoinCode]; taken && owner != session.ID {
			return model.ErrJoinCodeTaken
		}
	}

	if s.joinCodes[current.JoinCode] == current.ID {
		delete(s.joinCodes, current.JoinCode)
	}
	if !session.IsFinished {
		s.joinCodes[session.JoinCode] = session.ID
	}

	session.Version++
	s.sessions[session.ID] = session.Clone()
	return nil
}

func (s *Storage) DeleteSession(ctx context.Context, id model.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return model.ErrSessionNotFound
	}
	if s.joinCodes[session.JoinCode] == id {
		delete(s.joinCodes, session.JoinCode)
	}
	delete(s.sessions, id)
	return nil
}
