package response

import (
	"time"

	"github.com/mcoot/gamesessions/internal/model"
)

// Status is embedded in every response envelope
type Status struct {
	Success    bool   `json:"success"`
	StatusCode string `json:"statusCode"`
}

// Success builds a successful Status
func Success(code string) Status {
	return Status{Success: true, StatusCode: code}
}

// Failure builds a failed Status
func Failure(code string) Status {
	return Status{Success: false, StatusCode: code}
}

// ErrorResponse is the failure envelope. Error is only set for unhandled errors.
type ErrorResponse struct {
	Status
	Error          string `json:"error,omitempty"`
	AllowReconnect *bool  `json:"allowReconnect,omitempty"`
}

// StatusResponse carries no payload
type StatusResponse struct {
	Status
}

// CreateResponse is returned by session creation
type CreateResponse struct {
	Status
	GameID   string `json:"gameId"`
	GameCode string `json:"gameCode"`
}

// JoinResponse is returned by a successful join
type JoinResponse struct {
	Status
	GameID string `json:"gameId"`
}

// TeamsResponse lists team usernames
type TeamsResponse struct {
	Status
	TeamRedUsernames  []string `json:"teamRedUsernames"`
	TeamBlueUsernames []string `json:"teamBlueUsernames"`
}

// StatsResponse carries the scoreboard
type StatsResponse struct {
	Status
	TeamRedScores  int `json:"teamRedScores"`
	TeamBlueScores int `json:"teamBlueScores"`
	GameTime       int `json:"gameTime"`
}

// StatsFromModel converts model.Stats
func StatsFromModel(code string, s model.Stats) StatsResponse {
	return StatsResponse{
		Status:         Success(code),
		TeamRedScores:  s.TeamRedScore,
		TeamBlueScores: s.TeamBlueScore,
		GameTime:       s.Duration,
	}
}

// ReconnectResponse answers a reconnect request
type ReconnectResponse struct {
	Status
	AllowReconnect bool `json:"allowReconnect"`
	IsHost         bool `json:"isHost"`
}

// EndResponse is returned when a session ends
type EndResponse struct {
	Status
	Winner string `json:"winner"`
}

// Session is the public view of a session. The password hash is never exposed.
type Session struct {
	ID             string     `json:"gameId"`
	GameCode       string     `json:"gameCode"`
	Name           string     `json:"gameName"`
	Location       string     `json:"location"`
	IsPublic       bool       `json:"isPublic"`
	HasPassword    bool       `json:"hasPassword"`
	HostID         string     `json:"hostId"`
	PlayerIDs      []string   `json:"playersIds"`
	PlayerCount    int        `json:"numberOfPlayers"`
	TeamRed        []string   `json:"teamRed"`
	TeamBlue       []string   `json:"teamBlue"`
	IsRunning      bool       `json:"isRunning"`
	IsFinished     bool       `json:"isFinished"`
	GameTime       int        `json:"gameTime"`
	TeamRedScores  int        `json:"teamRedScores"`
	TeamBlueScores int        `json:"teamBlueScores"`
	Winner         string     `json:"winner,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	FinishedAt     *time.Time `json:"finishedAt,omitempty"`
}

// SessionFromModel converts a model.Session to a response Session
func SessionFromModel(s *model.Session) Session {
	return Session{
		ID:             string(s.ID),
		GameCode:       string(s.JoinCode),
		Name:           s.Name,
		Location:       s.Location,
		IsPublic:       s.IsPublic,
		HasPassword:    s.RequiresPassword(),
		HostID:         string(s.HostID),
		PlayerIDs:      playerIDStrings(s.PlayerIDs),
		PlayerCount:    s.PlayerCount,
		TeamRed:        playerIDStrings(s.TeamRed()),
		TeamBlue:       playerIDStrings(s.TeamBlue()),
		IsRunning:      s.IsRunning,
		IsFinished:     s.IsFinished,
		GameTime:       s.Duration,
		TeamRedScores:  s.TeamRedScore,
		TeamBlueScores: s.TeamBlueScore,
		Winner:         s.Winner,
		CreatedAt:      s.CreatedAt,
		FinishedAt:     s.FinishedAt,
	}
}

// SessionResponse wraps a Session
type SessionResponse struct {
	Status
	Game Session `json:"game"`
}

// User is a directory entry
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// UserResponse wraps a User
type UserResponse struct {
	Status
	User User `json:"user"`
}

func playerIDStrings(ids []model.PlayerID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
