package models

import (
	"time"

	"gorm.io/datatypes"
)

// Fixture is one scheduled match. Difficulty is the FPL 1-5 opponent rating,
// computed separately for each side (a club's rating describes how hard its
// opponent is).
type Fixture struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Event          int       `gorm:"index" json:"event"` // gameweek; 0 when unscheduled
	HomeTeamID     uint      `gorm:"not null;index" json:"home_team_id"`
	AwayTeamID     uint      `gorm:"not null;index" json:"away_team_id"`
	HomeDifficulty int       `json:"home_difficulty"`
	AwayDifficulty int       `json:"away_difficulty"`
	Started        bool      `gorm:"default:false" json:"started"`
	Finished       bool      `gorm:"default:false" json:"finished"`
	KickoffTime    time.Time `json:"kickoff_time"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Fixture) TableName() string {
	return "fixtures"
}

// Involves reports whether the given club plays in this fixture.
func (f *Fixture) Involves(teamID uint) bool {
	return f.HomeTeamID == teamID || f.AwayTeamID == teamID
}

// IsHome reports whether the given club is the home side.
func (f *Fixture) IsHome(teamID uint) bool {
	return f.HomeTeamID == teamID
}

// DifficultyFor returns the 1-5 difficulty rating from the given club's
// perspective, defaulting to neutral when the feed omitted a rating.
func (f *Fixture) DifficultyFor(teamID uint) int {
	var d int
	switch teamID {
	case f.HomeTeamID:
		d = f.HomeDifficulty
	case f.AwayTeamID:
		d = f.AwayDifficulty
	}
	if d < 1 || d > 5 {
		return 3
	}
	return d
}

// GameweekSnapshot archives one raw upstream payload per gameweek so a solve
// can be replayed against the exact inputs it saw.
type GameweekSnapshot struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Gameweek  int            `gorm:"not null;index" json:"gameweek"`
	Source    string         `gorm:"not null" json:"source"` // "bootstrap", "fixtures", "live"
	Payload   datatypes.JSON `gorm:"type:jsonb" json:"payload"`
	FetchedAt time.Time      `gorm:"not null" json:"fetched_at"`
}

func (GameweekSnapshot) TableName() string {
	return "gameweek_snapshots"
}
