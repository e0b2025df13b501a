// Package storagetest holds the behaviour every storage backend must share.
package storagetest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/gamesessions/internal/model"
	"github.com/mcoot/gamesessions/internal/storage"
)

// Suite runs storage conformance tests. Backends embed it and set
// NewStorage from their SetupTest.
type Suite struct {
	suite.Suite
	Storage storage.Storage
	Ctx     context.Context
}

// NewSession builds an active session fixture
func NewSession(id string, code string) *model.Session {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return &model.Session{
		ID:          model.SessionID(id),
		JoinCode:    model.JoinCode(code),
		Name:        "Friday match",
		Location:    "Arena 1",
		IsPublic:    true,
		HostID:      "host-1",
		PlayerIDs:   []model.PlayerID{"host-1"},
		PlayerCount: 1,
		Teams:       map[model.PlayerID]model.Team{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (s *Suite) create(id, code string) *model.Session {
	session := NewSession(id, code)
	s.Require().NoError(s.Storage.CreateSession(s.Ctx, session))
	return session
}

func (s *Suite) TestCreateAndGetSession() {
	created := s.create("s-1", "ABC123")
	created.AssignTeam("host-1", model.TeamBlue)

	retrieved, err := s.Storage.GetSession(s.Ctx, "s-1")
	s.Require().NoError(err)
	s.Equal(created.ID, retrieved.ID)
	s.Equal(model.JoinCode("ABC123"), retrieved.JoinCode)
	s.Equal([]model.PlayerID{"host-1"}, retrieved.PlayerIDs)
	s.Equal(1, retrieved.PlayerCount)
	s.Equal("Arena 1", retrieved.Location)
	s.True(retrieved.IsPublic)
	s.Empty(retrieved.TeamOf("host-1"), "stored copy must not alias the caller's session")
}

func (s *Suite) TestGetSessionNotFound() {
	_, err := s.Storage.GetSession(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *Suite) TestGetSessionByJoinCode() {
	s.create("s-1", "ABC123")

	retrieved, err := s.Storage.GetSessionByJoinCode(s.Ctx, "ABC123")
	s.Require().NoError(err)
	s.Equal(model.SessionID("s-1"), retrieved.ID)

	_, err = s.Storage.GetSessionByJoinCode(s.Ctx, "ZZZZZZ")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *Suite) TestCreateRejectsActiveJoinCode() {
	s.create("s-1", "ABC123")

	err := s.Storage.CreateSession(s.Ctx, NewSession("s-2", "ABC123"))
	s.ErrorIs(err, model.ErrJoinCodeTaken)

	_, err = s.Storage.GetSession(s.Ctx, "s-2")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *Suite) TestJoinCodeInUse() {
	inUse, err := s.Storage.JoinCodeInUse(s.Ctx, "ABC123")
	s.Require().NoError(err)
	s.False(inUse)

	s.create("s-1", "ABC123")

	inUse, err = s.Storage.JoinCodeInUse(s.Ctx, "ABC123")
	s.Require().NoError(err)
	s.True(inUse)
}

func (s *Suite) TestUpdateSessionBumpsVersion() {
	s.create("s-1", "ABC123")

	session, err := s.Storage.GetSession(s.Ctx, "s-1")
	s.Require().NoError(err)
	version := session.Version

	session.AddPlayer("player-2")
	session.AssignTeam("player-2", model.TeamRed)
	s.Require().NoError(s.Storage.UpdateSession(s.Ctx, session))
	s.Equal(version+1, session.Version)

	retrieved, err := s.Storage.GetSession(s.Ctx, "s-1")
	s.Require().NoError(err)
	s.Equal(version+1, retrieved.Version)
	s.Equal([]model.PlayerID{"host-1", "player-2"}, retrieved.PlayerIDs)
	s.Equal(2, retrieved.PlayerCount)
	s.Equal(model.TeamRed, retrieved.TeamOf("player-2"))
}

func (s *Suite) TestUpdateSessionDetectsConflict() {
	s.create("s-1", "ABC123")

	first, err := s.Storage.GetSession(s.Ctx, "s-1")
	s.Require().NoError(err)
	second, err := s.Storage.GetSession(s.Ctx, "s-1")
	s.Require().NoError(err)

	first.AddPlayer("player-2")
	s.Require().NoError(s.Storage.UpdateSession(s.Ctx, first))

	second.AddPlayer("player-3")
	err = s.Storage.UpdateSession(s.Ctx, second)
	s.ErrorIs(err, model.ErrVersionConflict)

	retrieved, err := s.Storage.GetSession(s.Ctx, "s-1")
	s.Require().NoError(err)
	s.Equal([]model.PlayerID{"host-1", "player-2"}, retrieved.PlayerIDs)
}

func (s *Suite) TestUpdateSessionNotFound() {
	err := s.Storage.UpdateSession(s.Ctx, NewSession("missing", "ABC123"))
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *Suite) TestFinishingReleasesJoinCode() {
	s.create("s-1", "ABC123")

	session, err := s.Storage.GetSession(s.Ctx, "s-1")
	s.Require().NoError(err)
	session.IsFinished = true
	session.JoinCode = "1704110400000"
	s.Require().NoError(s.Storage.UpdateSession(s.Ctx, session))

	inUse, err := s.Storage.JoinCodeInUse(s.Ctx, "ABC123")
	s.Require().NoError(err)
	s.False(inUse)

	_, err = s.Storage.GetSessionByJoinCode(s.Ctx, "1704110400000")
	s.ErrorIs(err, model.ErrSessionNotFound, "finished sessions are not joinable by code")

	// The released code can be claimed by a new session
	s.create("s-2", "ABC123")
	retrieved, err := s.Storage.GetSessionByJoinCode(s.Ctx, "ABC123")
	s.Require().NoError(err)
	s.Equal(model.SessionID("s-2"), retrieved.ID)
}

func (s *Suite) TestDeleteSession() {
	s.create("s-1", "ABC123")

	s.Require().NoError(s.Storage.DeleteSession(s.Ctx, "s-1"))

	_, err := s.Storage.GetSession(s.Ctx, "s-1")
	s.ErrorIs(err, model.ErrSessionNotFound)

	inUse, err := s.Storage.JoinCodeInUse(s.Ctx, "ABC123")
	s.Require().NoError(err)
	s.False(inUse)
}

func (s *Suite) TestDeleteSessionNotFound() {
	err := s.Storage.DeleteSession(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *Suite) TestConcurrentUpdatesNeverLoseWrites() {
	s.create("s-1", "ABC123")

	const writers = 8
	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for {
				session, err := s.Storage.GetSession(s.Ctx, "s-1")
				if err != nil {
					return
				}
				session.AddPlayer(model.PlayerID(rune('a' + i)))
				err = s.Storage.UpdateSession(s.Ctx, session)
				if !errors.Is(err, model.ErrVersionConflict) {
					return
				}
			}
		}(i)
	}
	wg.Wait()

	retrieved, err := s.Storage.GetSession(s.Ctx, "s-1")
	s.Require().NoError(err)
	s.Len(retrieved.PlayerIDs, writers+1)
	s.Equal(writers+1, retrieved.PlayerCount)
}
