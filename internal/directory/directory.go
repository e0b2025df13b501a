// Package directory resolves participant ids to display usernames.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/mcoot/gamesessions/internal/model"
)

// Directory is the set of known users, in a stable order
type Directory interface {
	ListUsers(ctx context.Context) ([]model.UserRecord, error)
	PutUser(ctx context.Context, user model.UserRecord) error
}

// Memory is an ordered in-memory Directory. Users keep the position of
// their first insertion; putting an existing id renames it in place.
type Memory struct {
	mu    sync.RWMutex
	users []model.UserRecord
	index map[model.PlayerID]int
}

// NewMemory creates a directory seeded with users
func NewMemory(users ...model.UserRecord) *Memory {
	m := &Memory{index: make(map[model.PlayerID]int)}
	for _, u := range users {
		m.put(u)
	}
	return m
}

// LoadFile seeds a directory from a JSON array of {"id", "username"} objects
func LoadFile(path string) (*Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read user directory: %w", err)
	}

	var users []model.UserRecord
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("parse user directory: %w", err)
	}
	return NewMemory(users...), nil
}

// ListUsers returns a copy of all users in directory order
func (m *Memory) ListUsers(ctx context.Context) ([]model.UserRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.users), nil
}

// PutUser adds or renames a user
func (m *Memory) PutUser(ctx context.Context, user model.UserRecord) error {
	if strings.TrimSpace(string(user.ID)) == "" {
		return model.ErrInvalidUserID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(user)
	return nil
}

func (m *Memory) put(user model.UserRecord) {
	if i, ok := m.index[user.ID]; ok {
		m.users[i] = user
		return
	}
	m.index[user.ID] = len(m.users)
	m.users = append(m.users, user)
}

var _ Directory = (*Memory)(nil)
