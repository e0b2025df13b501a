package factory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/gamesessions/internal/authz"
	"github.com/mcoot/gamesessions/internal/config"
	"github.com/mcoot/gamesessions/internal/model"
	"github.com/mcoot/gamesessions/internal/services/session"
	"github.com/mcoot/gamesessions/internal/storage/memory"
	redisstorage "github.com/mcoot/gamesessions/internal/storage/redis"
	sqlitestorage "github.com/mcoot/gamesessions/internal/storage/sqlite"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp(nil)
	s.ctx = context.Background()
}

// Test: complete session flow from creation to end
func (s *IntegrationSuite) TestCompleteSessionFlow() {
	s.app.MockRandom.QueueString("C1AAAA")
	manager := s.app.SessionManager

	created, err := manager.Create(s.ctx, session.CreateParams{HostID: "u1", Name: "Friday", Location: "Arena"})
	s.Require().NoError(err)
	s.Equal(model.JoinCode("C1AAAA"), created.JoinCode)

	id, err := manager.Join(s.ctx, "u2", created.JoinCode, "")
	s.Require().NoError(err)
	s.Equal(created.ID, id)

	s.Require().NoError(manager.JoinTeam(s.ctx, "u1", "red", id))
	s.Require().NoError(manager.JoinTeam(s.ctx, "u2", "blue", id))
	s.Require().NoError(manager.Start(s.ctx, id))
	s.Require().NoError(manager.UpdateState(s.ctx, id, model.Score{Duration: 300, TeamRedScore: 2, TeamBlueScore: 1}))

	allowed, isHost, err := manager.Reconnect(s.ctx, id, "u2")
	s.Require().NoError(err)
	s.True(allowed)
	s.False(isHost)

	ended, err := manager.End(s.ctx, id, model.Score{Duration: 600, TeamRedScore: 3, TeamBlueScore: 5})
	s.Require().NoError(err)
	s.Equal("Team Blue", ended.Winner)
	s.NotEqual(created.JoinCode, ended.JoinCode)

	red, blue, err := manager.GetTeams(s.ctx, id, []model.UserRecord{
		{ID: "u1", Username: "alice"},
		{ID: "u2", Username: "bob"},
	})
	s.Require().NoError(err)
	s.Equal([]string{"alice"}, red)
	s.Equal([]string{"bob"}, blue)

	stats, err := manager.GetStats(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(model.Stats{TeamRedScore: 3, TeamBlueScore: 5, Duration: 600}, stats)

	s.ErrorIs(manager.UpdateState(s.ctx, id, model.Score{}), model.ErrSessionClosed)
	s.Require().NoError(manager.Delete(s.ctx, id))
}

func TestNewDefaultsToMemory(t *testing.T) {
	app, err := New(config.Config{}, nil)
	require.NoError(t, err)
	defer func() { _ = app.Close() }()

	assert.IsType(t, &memory.Storage{}, app.Storage)
	assert.IsType(t, authz.Open{}, app.Policy)
	assert.NotNil(t, app.SessionManager)
}

func TestNewSQLite(t *testing.T) {
	app, err := New(config.Config{
		StorageType: config.StorageTypeSQLite,
		SQLitePath:  filepath.Join(t.TempDir(), "sessions.db"),
		AuthzPolicy: authz.PolicyHostOnly,
		BcryptCost:  4,
	}, nil)
	require.NoError(t, err)
	defer func() { _ = app.Close() }()

	assert.IsType(t, &sqlitestorage.Storage{}, app.Storage)
	assert.IsType(t, authz.HostOnly{}, app.Policy)
}

func TestNewRedis(t *testing.T) {
	mini := miniredis.RunT(t)

	app, err := New(config.Config{
		StorageType: config.StorageTypeRedis,
		RedisURL:    "redis://" + mini.Addr(),
	}, nil)
	require.NoError(t, err)
	defer func() { _ = app.Close() }()

	assert.IsType(t, &redisstorage.Storage{}, app.Storage)
}

func TestNewLoadsUserDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"u1","username":"alice"}]`), 0600))

	app, err := New(config.Config{UserDirectoryFile: path}, nil)
	require.NoError(t, err)

	users, err := app.Directory.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.UserRecord{{ID: "u1", Username: "alice"}}, users)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(config.Config{StorageType: "mongo"}, nil)
	assert.Error(t, err)

	_, err = New(config.Config{StorageType: config.StorageTypeRedis}, nil)
	assert.Error(t, err)

	_, err = New(config.Config{AuthzPolicy: "admins"}, nil)
	assert.Error(t, err)
}

// Every backend must absorb a burst of simultaneous joins without losing one
func TestConcurrentJoinsAcrossBackends(t *testing.T) {
	backends := map[string]func(t *testing.T) config.Config{
		"memory": func(t *testing.T) config.Config {
			return config.Config{StorageType: config.StorageTypeMemory}
		},
		"sqlite": func(t *testing.T) config.Config {
			return config.Config{
				StorageType: config.StorageTypeSQLite,
				SQLitePath:  filepath.Join(t.TempDir(), "sessions.db"),
			}
		},
		"redis": func(t *testing.T) config.Config {
			mini := miniredis.RunT(t)
			return config.Config{
				StorageType:   config.StorageTypeRedis,
				RedisURL:      "redis://" + mini.Addr(),
				RedisPoolSize: 64,
			}
		},
	}

	for name, newConfig := range backends {
		t.Run(name, func(t *testing.T) {
			cfg := newConfig(t)
			cfg.BcryptCost = 4
			app, err := New(cfg, nil)
			require.NoError(t, err)
			defer func() { _ = app.Close() }()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			created, err := app.SessionManager.Create(ctx, session.CreateParams{HostID: "host"})
			require.NoError(t, err)

			const joiners = 50
			var wg sync.WaitGroup
			errs := make([]error, joiners)
			for i := range joiners {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, errs[i] = app.SessionManager.Join(ctx, model.PlayerID(fmt.Sprintf("player-%d", i)), created.JoinCode, "")
				}(i)
			}
			wg.Wait()

			for i, err := range errs {
				assert.NoError(t, err, "joiner %d", i)
			}

			got, err := app.SessionManager.Get(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, joiners+1, got.PlayerCount)
			assert.Len(t, got.PlayerIDs, joiners+1)
		})
	}
}
