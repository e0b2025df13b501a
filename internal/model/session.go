package model

import (
	"maps"
	"slices"
	"time"
)

// SessionID uniquely identifies a game session
type SessionID string

// JoinCode is the short public token used to find a session for joining
type JoinCode string

// Session is one pending, running or finished multiplayer match.
//
// A session moves Created -> Running -> Finished. Finished is terminal:
// the record persists but accepts no further joins, starts or state updates.
type Session struct {
	ID           SessionID `json:"id"`
	JoinCode     JoinCode  `json:"join_code"`
	PasswordHash string    `json:"password_hash"` // empty when no password is required

	Name     string   `json:"name"`
	Location string   `json:"location"`
	IsPublic bool     `json:"is_public"`
	HostID   PlayerID `json:"host_id"`

	// PlayerIDs is ordered by join time, host first. Duplicates are allowed.
	PlayerIDs   []PlayerID `json:"player_ids"`
	PlayerCount int        `json:"player_count"`

	// Teams holds one entry per assigned participant
	Teams map[PlayerID]Team `json:"teams"`

	IsRunning  bool `json:"is_running"`
	IsFinished bool `json:"is_finished"`

	// Populated by state updates and at end
	Duration      int    `json:"duration"` // seconds
	TeamRedScore  int    `json:"team_red_score"`
	TeamBlueScore int    `json:"team_blue_score"`
	Winner        string `json:"winner,omitempty"`

	// Version is bumped by the store on every successful update
	Version int64 `json:"version"`

	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// RequiresPassword reports whether joining needs a password
func (s *Session) RequiresPassword() bool {
	return s.PasswordHash != ""
}

// HasPlayer reports whether the user is among the session's participants
func (s *Session) HasPlayer(id PlayerID) bool {
	return slices.Contains(s.PlayerIDs, id)
}

// AddPlayer appends a participant and keeps PlayerCount in step
func (s *Session) AddPlayer(id PlayerID) {
	s.PlayerIDs = append(s.PlayerIDs, id)
	s.PlayerCount = len(s.PlayerIDs)
}

// AssignTeam puts the user on the given team, replacing any previous assignment
func (s *Session) AssignTeam(id PlayerID, team Team) {
	if s.Teams == nil {
		s.Teams = make(map[PlayerID]Team)
	}
	s.Teams[id] = team
}

// TeamOf returns the user's team, or "" if unassigned
func (s *Session) TeamOf(id PlayerID) Team {
	return s.Teams[id]
}

// TeamRed returns the members of Team Red
func (s *Session) TeamRed() []PlayerID {
	return s.teamMembers(TeamRed)
}

// TeamBlue returns the members of Team Blue
func (s *Session) TeamBlue() []PlayerID {
	return s.teamMembers(TeamBlue)
}

// teamMembers lists members in player order, followed by members who
// never joined as players sorted by id.
func (s *Session) teamMembers(team Team) []PlayerID {
	members := []PlayerID{}
	seen := make(map[PlayerID]bool)
	for _, id := range s.PlayerIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if s.Teams[id] == team {
			members = append(members, id)
		}
	}
	for _, id := range slices.Sorted(maps.Keys(s.Teams)) {
		if !seen[id] && s.Teams[id] == team {
			members = append(members, id)
		}
	}
	return members
}

// Clone returns a deep copy of the session
func (s *Session) Clone() *Session {
	c := *s
	c.PlayerIDs = slices.Clone(s.PlayerIDs)
	c.Teams = maps.Clone(s.Teams)
	if s.FinishedAt != nil {
		t := *s.FinishedAt
		c.FinishedAt = &t
	}
	return &c
}

// Score is the mutable scoreboard of a session
type Score struct {
	Duration      int
	TeamRedScore  int
	TeamBlueScore int
}

// Winner returns the winning team label. Ties go to Team Blue.
func (sc Score) Winner() string {
	if sc.TeamRedScore > sc.TeamBlueScore {
		return TeamRed.DisplayName()
	}
	return TeamBlue.DisplayName()
}

// Stats is the read-only view returned by stats queries
type Stats struct {
	TeamRedScore  int
	TeamBlueScore int
	Duration      int
}
