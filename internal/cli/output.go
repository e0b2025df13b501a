package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case CreateResult:
		fmt.Fprintf(o.w, "Game: %s\n", v.GameID)
		fmt.Fprintf(o.w, "Code: %s\n", v.GameCode)
	case JoinResult:
		fmt.Fprintf(o.w, "Joined game %s\n", v.GameID)
	case GameResult:
		o.printGame(v.Game)
	case TeamsResult:
		fmt.Fprintf(o.w, "Team Red: %s\n", joinOrNone(v.TeamRedUsernames))
		fmt.Fprintf(o.w, "Team Blue: %s\n", joinOrNone(v.TeamBlueUsernames))
	case StatsResult:
		fmt.Fprintf(o.w, "Red %d - %d Blue (%ds)\n", v.TeamRedScores, v.TeamBlueScores, v.GameTime)
	case EndResult:
		fmt.Fprintf(o.w, "Game over, winner: %s\n", v.Winner)
	case ReconnectResult:
		if v.IsHost {
			fmt.Fprintln(o.w, "Reconnect allowed (host)")
		} else {
			fmt.Fprintln(o.w, "Reconnect allowed")
		}
	case UserResult:
		fmt.Fprintf(o.w, "User %s: %s\n", v.User.ID, v.User.Username)
	case StatusResult:
		fmt.Fprintf(o.w, "OK (%s)\n", v.StatusCode)
	case HealthResult:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printGame(g Game) {
	state := "waiting"
	switch {
	case g.IsFinished:
		state = "finished"
	case g.IsRunning:
		state = "running"
	}

	fmt.Fprintf(o.w, "Game: %s (%s)\n", g.Name, g.ID)
	fmt.Fprintf(o.w, "Code: %s\n", g.GameCode)
	fmt.Fprintf(o.w, "State: %s\n", state)
	fmt.Fprintf(o.w, "Host: %s\n", g.HostID)
	fmt.Fprintf(o.w, "Players (%d): %s\n", g.PlayerCount, joinOrNone(g.PlayerIDs))
	fmt.Fprintf(o.w, "Red %d - %d Blue (%ds)\n", g.TeamRedScores, g.TeamBlueScores, g.GameTime)
	if g.Winner != "" {
		fmt.Fprintf(o.w, "Winner: %s\n", g.Winner)
	}
}

func joinOrNone(s []string) string {
	if len(s) == 0 {
		return "-"
	}
	return strings.Join(s, ", ")
}

// StatusResult is the envelope every response carries
type StatusResult struct {
	Success    bool   `json:"success"`
	StatusCode string `json:"statusCode"`
}

// CreateResult response type
type CreateResult struct {
	StatusResult
	GameID   string `json:"gameId"`
	GameCode string `json:"gameCode"`
}

// JoinResult response type
type JoinResult struct {
	StatusResult
	GameID string `json:"gameId"`
}

// Game response type
type Game struct {
	ID             string   `json:"gameId"`
	GameCode       string   `json:"gameCode"`
	Name           string   `json:"gameName"`
	Location       string   `json:"location"`
	IsPublic       bool     `json:"isPublic"`
	HasPassword    bool     `json:"hasPassword"`
	HostID         string   `json:"hostId"`
	PlayerIDs      []string `json:"playersIds"`
	PlayerCount    int      `json:"numberOfPlayers"`
	IsRunning      bool     `json:"isRunning"`
	IsFinished     bool     `json:"isFinished"`
	GameTime       int      `json:"gameTime"`
	TeamRedScores  int      `json:"teamRedScores"`
	TeamBlueScores int      `json:"teamBlueScores"`
	Winner         string   `json:"winner,omitempty"`
}

// GameResult response type
type GameResult struct {
	StatusResult
	Game Game `json:"game"`
}

// TeamsResult response type
type TeamsResult struct {
	StatusResult
	TeamRedUsernames  []string `json:"teamRedUsernames"`
	TeamBlueUsernames []string `json:"teamBlueUsernames"`
}

// StatsResult response type
type StatsResult struct {
	StatusResult
	TeamRedScores  int `json:"teamRedScores"`
	TeamBlueScores int `json:"teamBlueScores"`
	GameTime       int `json:"gameTime"`
}

// EndResult response type
type EndResult struct {
	StatusResult
	Winner string `json:"winner"`
}

// ReconnectResult response type
type ReconnectResult struct {
	StatusResult
	AllowReconnect bool `json:"allowReconnect"`
	IsHost         bool `json:"isHost"`
}

// User response type
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// UserResult response type
type UserResult struct {
	StatusResult
	User User `json:"user"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}
