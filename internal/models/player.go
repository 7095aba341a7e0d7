package models

import (
	"time"
)

// Position is the FPL position category. The four values are exhaustive;
// scoring tables are methods so an unknown position cannot slip through a
// map lookup.
type Position int

const (
	Goalkeeper Position = iota + 1
	Defender
	Midfielder
	Forward
)

func (p Position) Valid() bool {
	return p >= Goalkeeper && p <= Forward
}

func (p Position) String() string {
	switch p {
	case Goalkeeper:
		return "GKP"
	case Defender:
		return "DEF"
	case Midfielder:
		return "MID"
	case Forward:
		return "FWD"
	}
	return "UNK"
}

// GoalPoints is the FPL points awarded for a goal by this position.
func (p Position) GoalPoints() int {
	switch p {
	case Goalkeeper, Defender:
		return 6
	case Midfielder:
		return 5
	case Forward:
		return 4
	}
	return 0
}

// CleanSheetPoints is the FPL points awarded for a clean sheet by this position.
func (p Position) CleanSheetPoints() int {
	switch p {
	case Goalkeeper, Defender:
		return 4
	case Midfielder:
		return 1
	case Forward:
		return 0
	}
	return 0
}

// SquadQuota is how many players of this position a legal 15-man squad holds.
func (p Position) SquadQuota() int {
	switch p {
	case Goalkeeper:
		return 2
	case Defender, Midfielder:
		return 5
	case Forward:
		return 3
	}
	return 0
}

// Availability mirrors the FPL status flag on each element.
type Availability string

const (
	StatusAvailable   Availability = "a"
	StatusDoubtful    Availability = "d"
	StatusInjured     Availability = "i"
	StatusSuspended   Availability = "s"
	StatusUnavailable Availability = "u"
)

func (a Availability) Playable() bool {
	return a == StatusAvailable || a == StatusDoubtful
}

// Player is one FPL element with the season statistics the projection model
// consumes. Rows are snapshot data refreshed by the data fetcher; the engine
// treats them as read-only.
type Player struct {
	ID       uint         `gorm:"primaryKey" json:"id"`
	Name     string       `gorm:"not null" json:"name"`
	TeamID   uint         `gorm:"not null;index" json:"team_id"`
	Position Position     `gorm:"not null;index" json:"position"`
	NowCost  int          `gorm:"not null" json:"now_cost"` // tenths of £1.0m
	Status   Availability `gorm:"size:1;default:a" json:"status"`

	// Selling price differs from NowCost for owned players (FPL 50% sell-on
	// rule); it comes from the manager's picks, not the bootstrap feed.
	SellingPrice int `gorm:"-" json:"selling_price,omitempty"`

	ChanceOfPlaying *int    `json:"chance_of_playing,omitempty"` // percent, nil when unset
	Form            float64 `json:"form"`
	OwnershipPct    float64 `json:"ownership_pct"`
	PointsPerGame   float64 `json:"points_per_game"`
	TotalPoints     int     `json:"total_points"`

	Minutes         int     `json:"minutes"`
	Starts          int     `json:"starts"`
	Goals           int     `json:"goals"`
	Assists         int     `json:"assists"`
	CleanSheets     int     `json:"clean_sheets"`
	GoalsConceded   int     `json:"goals_conceded"`
	Bonus           int     `json:"bonus"`
	ExpectedGoals   float64 `json:"expected_goals"`
	ExpectedAssists float64 `json:"expected_assists"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Player) TableName() string {
	return "players"
}

// PriceMillions converts the tenths-of-a-million cost to £m for display.
func (p *Player) PriceMillions() float64 {
	return float64(p.NowCost) / 10.0
}

// startsOrOne guards the per-start rate denominators for players yet to start.
func (p *Player) startsOrOne() float64 {
	if p.Starts < 1 {
		return 1
	}
	return float64(p.Starts)
}

func (p *Player) GoalsPerStart() float64 {
	return float64(p.Goals) / p.startsOrOne()
}

func (p *Player) AssistsPerStart() float64 {
	return float64(p.Assists) / p.startsOrOne()
}

func (p *Player) CleanSheetsPerStart() float64 {
	return float64(p.CleanSheets) / p.startsOrOne()
}

func (p *Player) BonusPerStart() float64 {
	return float64(p.Bonus) / p.startsOrOne()
}

func (p *Player) XGPerStart() float64 {
	return p.ExpectedGoals / p.startsOrOne()
}

func (p *Player) XAPerStart() float64 {
	return p.ExpectedAssists / p.startsOrOne()
}
