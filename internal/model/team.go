package model

import "strings"

// Team is one of the two sides of a session
type Team string

const (
	TeamRed  Team = "red"
	TeamBlue Team = "blue"
)

// ParseTeam parses a team name case-insensitively
func ParseTeam(s string) (Team, error) {
	switch Team(strings.ToLower(strings.TrimSpace(s))) {
	case TeamRed:
		return TeamRed, nil
	case TeamBlue:
		return TeamBlue, nil
	default:
		return "", ErrInvalidTeam
	}
}

// DisplayName returns the label used for winners, e.g. "Team Red"
func (t Team) DisplayName() string {
	switch t {
	case TeamRed:
		return "Team Red"
	case TeamBlue:
		return "Team Blue"
	default:
		return string(t)
	}
}
