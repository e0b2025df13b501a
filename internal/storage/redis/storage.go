package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/gamesessions/internal/model"
	"github.com/mcoot/gamesessions/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Sessions are JSON documents; updates use WATCH/MULTI so a concurrent
// writer causes a version conflict instead of a lost update.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) CreateSession(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	if !session.IsFinished {
		// Claim the join code first so two creators cannot share it
		claimed, err := s.client.SetNX(ctx, joinCodeIndexKey(session.JoinCode), string(session.ID), s.cfg.SessionTTL).Result()
		if err != nil {
			return err
		}
		if !claimed {
			return model.ErrJoinCodeTaken
		}
	}

	if err := s.client.Set(ctx, sessionKey(session.ID), data, s.cfg.SessionTTL).Err(); err != nil {
		if !session.IsFinished {
			_ = s.client.Del(ctx, joinCodeIndexKey(session.JoinCode)).Err()
		}
		return err
	}
	return nil
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	return getSession(ctx, s.client, id)
}

func (s *Storage) GetSessionByJoinCode(ctx context.Context, code model.JoinCode) (*model.Session, error) {
	id, err := s.client.Get(ctx, joinCodeIndexKey(code)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}

	return s.GetSession(ctx, model.SessionID(id))
}

func (s *Storage) JoinCodeInUse(ctx context.Context, code model.JoinCode) (bool, error) {
	exists, err := s.client.Exists(ctx, joinCodeIndexKey(code)).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

func (s *Storage) UpdateSession(ctx context.Context, session *model.Session) error {
	key := sessionKey(session.ID)
	newIndexKey := joinCodeIndexKey(session.JoinCode)

	next := session.Clone()
	next.Version++
	data, err := json.Marshal(next)
	if err != nil {
		return err
	}

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := getSession(ctx, tx, session.ID)
		if err != nil {
			return err
		}
		if current.Version != session.Version {
			return model.ErrVersionConflict
		}

		if !session.IsFinished && session.JoinCode != current.JoinCode {
			owner, err := tx.Get(ctx, newIndexKey).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
			if err == nil && owner != string(session.ID) {
				return model.ErrJoinCodeTaken
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.cfg.SessionTTL)
			if session.IsFinished || session.JoinCode != current.JoinCode {
				pipe.Del(ctx, joinCodeIndexKey(current.JoinCode))
			}
			if !session.IsFinished {
				pipe.Set(ctx, newIndexKey, string(session.ID), s.cfg.SessionTTL)
			}
			return nil
		})
		return err
	}, key, newIndexKey)

	if errors.Is(err, redis.TxFailedErr) {
		return model.ErrVersionConflict
	}
	if err != nil {
		return err
	}

	session.Version = next.Version
	return nil
}

func (s *Storage) DeleteSession(ctx context.Context, id model.SessionID) error {
	session, err := s.GetSession(ctx, id)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, sessionKey(id))
	if !session.IsFinished {
		pipe.Del(ctx, joinCodeIndexKey(session.JoinCode))
	}
	_, err = pipe.Exec(ctx)
	return err
}

// getter is satisfied by both *redis.Client and *redis.Tx
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// getSession reads a session document through either the client or a
// transaction handle
func getSession(ctx context.Context, cmd getter, id model.SessionID) (*model.Session, error) {
	data, err := cmd.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}
