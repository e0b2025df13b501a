package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/mcoot/gamesessions/internal/authz"
	"github.com/mcoot/gamesessions/internal/dependencies/clock"
	"github.com/mcoot/gamesessions/internal/dependencies/random"
	"github.com/mcoot/gamesessions/internal/model"
	"github.com/mcoot/gamesessions/internal/services/credentials"
	"github.com/mcoot/gamesessions/internal/storage"
)

const (
	// JoinCodeLength is the length of generated join codes
	JoinCodeLength = 6
	// JoinCodeAlphabet is the characters used in join codes
	JoinCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// FallbackJoinCodeLength is used once short codes keep colliding
	FallbackJoinCodeLength = 8
	// MaxJoinCodeAttempts bounds short-code generation before falling back
	MaxJoinCodeAttempts = 10
	// ConflictBackoffBase is the first wait after a version conflict
	ConflictBackoffBase = 2 * time.Millisecond
	// ConflictBackoffMax caps the wait between conflict retries
	ConflictBackoffMax = 100 * time.Millisecond
)

// Manager runs the session state machine: Created -> Running -> Finished
type Manager struct {
	storage storage.Storage
	hasher  credentials.Hasher
	policy  authz.Policy
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
}

// NewManager creates a new session Manager
func NewManager(
	storage storage.Storage,
	hasher credentials.Hasher,
	policy authz.Policy,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Manager {
	if policy == nil {
		policy = authz.Open{}
	}
	return &Manager{
		storage: storage,
		hasher:  hasher,
		policy:  policy,
		clock:   clock,
		random:  random,
		logger:  logger,
	}
}

// CreateParams describes a new session
type CreateParams struct {
	HostID   model.PlayerID
	Password string // optional
	Location string
	IsPublic bool
	Name     string
}

// Create creates a new session with the host as its only player
func (m *Manager) Create(ctx context.Context, params CreateParams) (*model.Session, error) {
	var passwordHash string
	if params.Password != "" {
		hash, err := m.hasher.Hash(params.Password)
		if err != nil {
			return nil, fmt.Errorf("hash join password: %w", err)
		}
		passwordHash = hash
	}

	now := m.clock.Now()
	s := &model.Session{
		ID:           model.SessionID(m.random.NewID()),
		PasswordHash: passwordHash,
		Name:         params.Name,
		Location:     params.Location,
		IsPublic:     params.IsPublic,
		HostID:       params.HostID,
		Teams:        make(map[model.PlayerID]model.Team),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.AddPlayer(params.HostID)

	for attempt := 0; attempt < 2*MaxJoinCodeAttempts; attempt++ {
		length := JoinCodeLength
		if attempt >= MaxJoinCodeAttempts {
			length = FallbackJoinCodeLength
		}
		code := model.JoinCode(m.random.String(length, JoinCodeAlphabet))

		inUse, err := m.storage.JoinCodeInUse(ctx, code)
		if err != nil {
			return nil, &model.PersistenceError{Op: "check join code", Err: err}
		}
		if inUse {
			continue
		}

		s.JoinCode = code
		err = m.storage.CreateSession(ctx, s)
		if errors.Is(err, model.ErrJoinCodeTaken) {
			continue
		}
		if err != nil {
			return nil, &model.PersistenceError{Op: "create session", Err: err}
		}

		m.logger.Info("session created",
			slog.String("session_id", string(s.ID)),
			slog.String("host_id", string(s.HostID)),
			slog.Bool("password", s.RequiresPassword()),
		)
		return s, nil
	}

	return nil, &model.PersistenceError{Op: "create session", Err: model.ErrJoinCodeTaken}
}

// Get retrieves a session by id
func (m *Manager) Get(ctx context.Context, id model.SessionID) (*model.Session, error) {
	return m.storage.GetSession(ctx, id)
}

// Join adds a user to the session holding the join code and returns its id.
// The same user may join more than once.
func (m *Manager) Join(ctx context.Context, userID model.PlayerID, code model.JoinCode, password string) (model.SessionID, error) {
	s, err := m.storage.GetSessionByJoinCode(ctx, code)
	if err != nil {
		return "", err
	}
	if err := checkJoinable(s); err != nil {
		return "", err
	}

	if password != "" || s.RequiresPassword() {
		if !m.hasher.Verify(password, s.PasswordHash) {
			return "", model.ErrBadPassword
		}
	}

	updated, err := m.mutate(ctx, s.ID, func(s *model.Session) error {
		if err := checkJoinable(s); err != nil {
			return err
		}
		s.AddPlayer(userID)
		return nil
	})
	if err != nil {
		return "", err
	}

	m.logger.Info("player joined session",
		slog.String("session_id", string(updated.ID)),
		slog.String("player_id", string(userID)),
		slog.Int("player_count", updated.PlayerCount),
	)
	return updated.ID, nil
}

// JoinTeam assigns the user to a team, moving them off the other team
func (m *Manager) JoinTeam(ctx context.Context, userID model.PlayerID, team string, id model.SessionID) error {
	t, err := model.ParseTeam(team)
	if err != nil {
		return err
	}

	_, err = m.mutate(ctx, id, func(s *model.Session) error {
		if s.IsRunning {
			return model.ErrAlreadyRunning
		}
		if s.IsFinished {
			return model.ErrAlreadyFinished
		}
		s.AssignTeam(userID, t)
		return nil
	})
	return err
}

// Start marks the session as running. No minimum player count applies.
func (m *Manager) Start(ctx context.Context, id model.SessionID) error {
	_, err := m.mutate(ctx, id, func(s *model.Session) error {
		if err := m.policy.Authorize(ctx, authz.ActionStart, s); err != nil {
			return err
		}
		if s.IsFinished {
			return model.ErrAlreadyFinished
		}
		s.IsRunning = true
		return nil
	})
	if err == nil {
		m.logger.Info("session started", slog.String("session_id", string(id)))
	}
	return err
}

// End finishes the session, records the final score and releases its join
// code by replacing it with a timestamp.
func (m *Manager) End(ctx context.Context, id model.SessionID, score model.Score) (*model.Session, error) {
	updated, err := m.mutate(ctx, id, func(s *model.Session) error {
		if err := m.policy.Authorize(ctx, authz.ActionEnd, s); err != nil {
			return err
		}
		if s.IsFinished {
			return model.ErrAlreadyFinished
		}

		now := m.clock.Now()
		s.IsRunning = false
		s.IsFinished = true
		s.Duration = score.Duration
		s.TeamRedScore = score.TeamRedScore
		s.TeamBlueScore = score.TeamBlueScore
		s.Winner = score.Winner()
		s.JoinCode = model.JoinCode(strconv.FormatInt(now.UnixMilli(), 10))
		s.FinishedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("session ended",
		slog.String("session_id", string(id)),
		slog.String("winner", updated.Winner),
	)
	return updated, nil
}

// UpdateState overwrites duration and scores. Only a finished, stopped
// session rejects updates.
func (m *Manager) UpdateState(ctx context.Context, id model.SessionID, score model.Score) error {
	_, err := m.mutate(ctx, id, func(s *model.Session) error {
		if err := m.policy.Authorize(ctx, authz.ActionUpdateState, s); err != nil {
			return err
		}
		if s.IsFinished && !s.IsRunning {
			return model.ErrSessionClosed
		}
		s.Duration = score.Duration
		s.TeamRedScore = score.TeamRedScore
		s.TeamBlueScore = score.TeamBlueScore
		return nil
	})
	return err
}

// GetTeams resolves team members to usernames. Names are returned in
// directory order; members missing from the directory are skipped.
func (m *Manager) GetTeams(ctx context.Context, id model.SessionID, users []model.UserRecord) (red []string, blue []string, err error) {
	s, err := m.storage.GetSession(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	red, blue = []string{}, []string{}
	for _, u := range users {
		switch s.TeamOf(u.ID) {
		case model.TeamRed:
			red = append(red, u.Username)
		case model.TeamBlue:
			blue = append(blue, u.Username)
		}
	}
	return red, blue, nil
}

// GetStats returns the current scoreboard
func (m *Manager) GetStats(ctx context.Context, id model.SessionID) (model.Stats, error) {
	s, err := m.storage.GetSession(ctx, id)
	if err != nil {
		return model.Stats{}, err
	}
	return model.Stats{
		TeamRedScore:  s.TeamRedScore,
		TeamBlueScore: s.TeamBlueScore,
		Duration:      s.Duration,
	}, nil
}

// Delete permanently removes the session
func (m *Manager) Delete(ctx context.Context, id model.SessionID) error {
	s, err := m.storage.GetSession(ctx, id)
	if err != nil {
		return err
	}
	if err := m.policy.Authorize(ctx, authz.ActionDelete, s); err != nil {
		return err
	}
	if err := m.storage.DeleteSession(ctx, id); err != nil {
		return err
	}

	m.logger.Info("session deleted", slog.String("session_id", string(id)))
	return nil
}

// Reconnect reports whether a user may rejoin a session and whether they host it
func (m *Manager) Reconnect(ctx context.Context, id model.SessionID, userID model.PlayerID) (allowed bool, isHost bool, err error) {
	s, err := m.storage.GetSession(ctx, id)
	if err != nil {
		return false, false, err
	}
	if s.IsFinished {
		return false, false, model.ErrAlreadyFinished
	}
	if !s.HasPlayer(userID) {
		return false, false, model.ErrNotAParticipant
	}
	return true, userID == s.HostID, nil
}

// mutate applies fn to a fresh copy of the session and writes it back.
// When another writer got there first it re-reads and retries after a
// jittered backoff, until it succeeds or ctx is done.
func (m *Manager) mutate(ctx context.Context, id model.SessionID, fn func(*model.Session) error) (*model.Session, error) {
	backoff := ConflictBackoffBase
	for attempt := 1; ; attempt++ {
		s, err := m.storage.GetSession(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := fn(s); err != nil {
			return nil, err
		}
		s.UpdatedAt = m.clock.Now()

		err = m.storage.UpdateSession(ctx, s)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, model.ErrVersionConflict) {
			return nil, err
		}

		m.logger.Debug("session update conflict, retrying",
			slog.String("session_id", string(id)),
			slog.Int("attempt", attempt),
		)
		if err := m.wait(ctx, backoff); err != nil {
			return nil, fmt.Errorf("update session %s: %w", id, err)
		}
		backoff = min(2*backoff, ConflictBackoffMax)
	}
}

// wait sleeps for a random duration in [backoff/2, backoff) or until ctx is done
func (m *Manager) wait(ctx context.Context, backoff time.Duration) error {
	half := backoff / 2
	delay := half + time.Duration(m.random.Intn(int(half)))

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// checkJoinable rejects running and finished sessions
func checkJoinable(s *model.Session) error {
	if s.IsRunning {
		return model.ErrAlreadyRunning
	}
	if s.IsFinished {
		return model.ErrAlreadyFinished
	}
	return nil
}

// Interface for dependency injection
type ManagerInterface interface {
	Create(ctx context.Context, params CreateParams) (*model.Session, error)
	Get(ctx context.Context, id model.SessionID) (*model.Session, error)
	Join(ctx context.Context, userID model.PlayerID, code model.JoinCode, password string) (model.SessionID, error)
	JoinTeam(ctx context.Context, userID model.PlayerID, team string, id model.SessionID) error
	Start(ctx context.Context, id model.SessionID) error
	End(ctx context.Context, id model.SessionID, score model.Score) (*model.Session, error)
	UpdateState(ctx context.Context, id model.SessionID, score model.Score) error
	GetTeams(ctx context.Context, id model.SessionID, users []model.UserRecord) ([]string, []string, error)
	GetStats(ctx context.Context, id model.SessionID) (model.Stats, error)
	Delete(ctx context.Context, id model.SessionID) error
	Reconnect(ctx context.Context, id model.SessionID, userID model.PlayerID) (bool, bool, error)
}

var _ ManagerInterface = (*Manager)(nil)
