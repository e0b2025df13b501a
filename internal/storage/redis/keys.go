package redis

import (
	"fmt"

	"github.com/mcoot/gamesessions/internal/model"
)

// Key prefix for all session data
const keyPrefix = "gs"

// sessionKey returns the Redis key for a Session document
func sessionKey(id model.SessionID) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, id)
}

// joinCodeIndexKey returns the Redis key for the join code -> session id index.
// Only active sessions are indexed.
func joinCodeIndexKey(code model.JoinCode) string {
	return fmt.Sprintf("%s:idx:joincode:%s", keyPrefix, code)
}
