package models

import (
	"math"
)

// Squad sizing rules shared by the optimizer, auto-subs and transfer solver.
const (
	SquadSize  = 15
	StartingXI = 11
	BenchSize  = 4
	MaxPerClub = 3
	HitCost    = 4 // points per transfer beyond the free allowance
)

// RiskTier classifies how fragile a projection is.
type RiskTier string

const (
	RiskLow    RiskTier = "low"
	RiskMedium RiskTier = "medium"
	RiskHigh   RiskTier = "high"
)

// Projection is the per-player, per-gameweek expected points estimate.
// Values are kept at full precision for comparison; Rounded returns a
// two-decimal copy for display.
type Projection struct {
	PlayerID       uint     `json:"player_id"`
	Gameweek       int      `json:"gameweek"`
	ExpectedPoints float64  `json:"expected_points"`
	GoalThreat     float64  `json:"goal_threat"`
	AssistThreat   float64  `json:"assist_threat"`
	CleanSheetProb float64  `json:"clean_sheet_prob"`
	MinutesProb    float64  `json:"minutes_prob"`
	Risk           RiskTier `json:"risk"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Rounded returns a display copy with all numeric fields at two decimals.
func (p Projection) Rounded() Projection {
	p.ExpectedPoints = round2(p.ExpectedPoints)
	p.GoalThreat = round2(p.GoalThreat)
	p.AssistThreat = round2(p.AssistThreat)
	p.CleanSheetProb = round2(p.CleanSheetProb)
	p.MinutesProb = round2(p.MinutesProb)
	return p
}

// Pick is one of the 15 roster slots a manager owns. Slots 1-11 are the
// starting line; 12-15 are the bench in auto-substitution priority order.
type Pick struct {
	Player        Player `json:"player"`
	Slot          int    `json:"slot"`
	Multiplier    int    `json:"multiplier"` // 0 benched, 1 normal, 2 captain, 3 triple captain
	IsCaptain     bool   `json:"is_captain"`
	IsViceCaptain bool   `json:"is_vice_captain"`
}

func (p Pick) IsStarter() bool {
	return p.Slot >= 1 && p.Slot <= StartingXI
}

// SquadState is a manager's roster plus the transfer context the solver needs.
type SquadState struct {
	Picks         []Pick `json:"picks"`
	Bank          int    `json:"bank"` // tenths of £1.0m
	FreeTransfers int    `json:"free_transfers"`
	Gameweek      int    `json:"gameweek"`
}

// Players returns the squad members in pick order.
func (s *SquadState) Players() []Player {
	players := make([]Player, 0, len(s.Picks))
	for _, pick := range s.Picks {
		players = append(players, pick.Player)
	}
	return players
}

// Owns reports whether the squad already contains the given element.
func (s *SquadState) Owns(playerID uint) bool {
	for _, pick := range s.Picks {
		if pick.Player.ID == playerID {
			return true
		}
	}
	return false
}

// Lineup is an optimized starting eleven with bench order and captaincy.
type Lineup struct {
	Starters       []Pick  `json:"starters"`
	Bench          []Pick  `json:"bench"`
	Captain        Player  `json:"captain"`
	ViceCaptain    Player  `json:"vice_captain"`
	Formation      string  `json:"formation"`
	ExpectedPoints float64 `json:"expected_points"`
}

// TransferPair is one proposed swap with its projected and budget impact.
type TransferPair struct {
	Out         Player  `json:"out"`
	In          Player  `json:"in"`
	PointsDelta float64 `json:"points_delta"`
	CostDelta   int     `json:"cost_delta"` // tenths of £1.0m, positive = spends money
}

// SolverResult is the outcome of one transfer solve. Computed fresh per
// request; never cached across gameweeks.
type SolverResult struct {
	Gameweek       int            `json:"gameweek"`
	Transfers      []TransferPair `json:"transfers"`
	Lineup         Lineup         `json:"lineup"`
	BaselinePoints float64        `json:"baseline_points"`
	TotalPoints    float64        `json:"total_points"`
	HitCost        int            `json:"hit_cost"`
	NetPoints      float64        `json:"net_points"`
	ShouldRoll     bool           `json:"should_roll"`
}
