package sqlite

import (
	"time"

	"github.com/mcoot/gamesessions/internal/model"
)

// sessionRecord is the table row for a session. Slices and maps are stored
// as JSON columns.
type sessionRecord struct {
	ID           string `gorm:"primaryKey"`
	JoinCode     string `gorm:"index;not null"`
	PasswordHash string

	Name     string
	Location string
	IsPublic bool
	HostID   string `gorm:"not null"`

	PlayerIDs   []model.PlayerID              `gorm:"serializer:json"`
	PlayerCount int                           `gorm:"not null"`
	Teams       map[model.PlayerID]model.Team `gorm:"serializer:json"`

	IsRunning  bool
	IsFinished bool `gorm:"index"`

	Duration      int
	TeamRedScore  int
	TeamBlueScore int
	Winner        string

	Version int64 `gorm:"not null"`

	CreatedAt  time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime:false"`
	FinishedAt *time.Time
}

func (sessionRecord) TableName() string {
	return "game_sessions"
}

func recordFromModel(s *model.Session) *sessionRecord {
	return &sessionRecord{
		ID:            string(s.ID),
		JoinCode:      string(s.JoinCode),
		PasswordHash:  s.PasswordHash,
		Name:          s.Name,
		Location:      s.Location,
		IsPublic:      s.IsPublic,
		HostID:        string(s.HostID),
		PlayerIDs:     s.PlayerIDs,
		PlayerCount:   s.PlayerCount,
		Teams:         s.Teams,
		IsRunning:     s.IsRunning,
		IsFinished:    s.IsFinished,
		Duration:      s.Duration,
		TeamRedScore:  s.TeamRedScore,
		TeamBlueScore: s.TeamBlueScore,
		Winner:        s.Winner,
		Version:       s.Version,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
		FinishedAt:    s.FinishedAt,
	}
}

func (r *sessionRecord) toModel() *model.Session {
	teams := r.Teams
	if teams == nil {
		teams = make(map[model.PlayerID]model.Team)
	}
	return &model.Session{
		ID:            model.SessionID(r.ID),
		JoinCode:      model.JoinCode(r.JoinCode),
		PasswordHash:  r.PasswordHash,
		Name:          r.Name,
		Location:      r.Location,
		IsPublic:      r.IsPublic,
		HostID:        model.PlayerID(r.HostID),
		PlayerIDs:     r.PlayerIDs,
		PlayerCount:   r.PlayerCount,
		Teams:         teams,
		IsRunning:     r.IsRunning,
		IsFinished:    r.IsFinished,
		Duration:      r.Duration,
		TeamRedScore:  r.TeamRedScore,
		TeamBlueScore: r.TeamBlueScore,
		Winner:        r.Winner,
		Version:       r.Version,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		FinishedAt:    r.FinishedAt,
	}
}
