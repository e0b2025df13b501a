package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/gamesessions/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
	mini  *miniredis.Miniredis
	redis *Storage
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.SessionTTL = time.Hour

	s.redis = NewWithClient(client, cfg)
	s.Storage = s.redis
	s.Ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.redis != nil {
		_ = s.redis.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) TestSessionAndIndexHaveTTL() {
	s.Require().NoError(s.redis.CreateSession(s.Ctx, storagetest.NewSession("s-1", "ABC123")))

	s.True(s.mini.TTL(sessionKey("s-1")) > 0, "session should have TTL")
	s.True(s.mini.TTL(joinCodeIndexKey("ABC123")) > 0, "join code index should have TTL")
}

func (s *StorageSuite) TestSessionExpires() {
	s.Require().NoError(s.redis.CreateSession(s.Ctx, storagetest.NewSession("s-1", "ABC123")))

	s.mini.FastForward(2 * time.Hour)

	inUse, err := s.redis.JoinCodeInUse(s.Ctx, "ABC123")
	s.Require().NoError(err)
	s.False(inUse)
}

func (s *StorageSuite) TestStoredAsJSONDocument() {
	s.Require().NoError(s.redis.CreateSession(s.Ctx, storagetest.NewSession("s-1", "ABC123")))

	raw, err := s.mini.Get(sessionKey("s-1"))
	s.Require().NoError(err)
	s.Contains(raw, `"join_code":"ABC123"`)

	owner, err := s.mini.Get(joinCodeIndexKey("ABC123"))
	s.Require().NoError(err)
	s.Equal("s-1", owner)
}

func (s *StorageSuite) TestNewRejectsBadURL() {
	_, err := New(Config{URL: "not-a-url"})
	s.Error(err)
}

func (s *StorageSuite) TestNewConnects() {
	cfg := DefaultConfig()
	cfg.URL = "redis://" + s.mini.Addr()

	store, err := New(cfg)
	s.Require().NoError(err)
	s.NoError(store.Close())
}
