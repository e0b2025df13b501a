package storage

import (
	"context"

	"github.com/mcoot/gamesessions/internal/model"
)

// Storage defines the interface for session persistence.
//
// Implementations hand out copies: mutating a returned session has no effect
// until it is written back with UpdateSession.
type Storage interface {
	// CreateSession persists a new session. It fails with model.ErrJoinCodeTaken
	// if an active session already holds the join code.
	CreateSession(ctx context.Context, session *model.Session) error

	// GetSession returns model.ErrSessionNotFound if no session has the id
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)

	// GetSessionByJoinCode finds the active session holding the code
	GetSessionByJoinCode(ctx context.Context, code model.JoinCode) (*model.Session, error)

	// JoinCodeInUse reports whether an active session holds the code
	JoinCodeInUse(ctx context.Context, code model.JoinCode) (bool, error)

	// UpdateSession writes the session if its Version still matches the stored
	// one, otherwise it returns model.ErrVersionConflict. On success the
	// session's Version is incremented. Join code changes are re-indexed and
	// finished sessions release their code.
	UpdateSession(ctx context.Context, session *model.Session) error

	// DeleteSession removes the session and its join code
	DeleteSession(ctx context.Context, id model.SessionID) error
}
