package model

// PlayerID uniquely identifies a participant across the system
type PlayerID string

// UserRecord is a single entry of the user directory
type UserRecord struct {
	ID       PlayerID `json:"id"`
	Username string   `json:"username"`
}
