package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/gamesessions/internal/model"
	"github.com/mcoot/gamesessions/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
	sqlite *Storage
	path   string
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.path = filepath.Join(s.T().TempDir(), "sessions.db")

	store, err := New(s.path)
	s.Require().NoError(err)

	s.sqlite = store
	s.Storage = store
	s.Ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.sqlite != nil {
		_ = s.sqlite.Close()
	}
}

func (s *StorageSuite) TestDataSurvivesReopen() {
	session := storagetest.NewSession("s-1", "ABC123")
	session.AssignTeam("host-1", model.TeamRed)
	s.Require().NoError(s.sqlite.CreateSession(s.Ctx, session))
	s.Require().NoError(s.sqlite.Close())

	reopened, err := New(s.path)
	s.Require().NoError(err)
	s.sqlite = reopened

	retrieved, err := reopened.GetSession(s.Ctx, "s-1")
	s.Require().NoError(err)
	s.Equal(model.TeamRed, retrieved.TeamOf("host-1"))
	s.Equal([]model.PlayerID{"host-1"}, retrieved.PlayerIDs)
}

func TestNewCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "sessions.db")

	store, err := New(path)
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.FileExists(t, path)
}
