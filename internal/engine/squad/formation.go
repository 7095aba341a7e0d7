// Package squad holds the roster invariants shared by the lineup optimizer,
// the auto-substitution engine and the transfer solver: squad composition,
// the legal formation set, and the per-club cap. Keeping one validator here
// stops the optimizer and solver drifting apart.
package squad

import (
	"errors"
	"fmt"

	"github.com/jstittsworth/fpl-advisor/internal/models"
)

var (
	// ErrInvalidSquad marks a roster that breaks the 2-5-5-3 composition,
	// the 15-player size, or the per-club cap. This is a data-integrity
	// failure, not a normal solver outcome.
	ErrInvalidSquad = errors.New("invalid squad composition")

	// ErrNoValidFormation marks a 15 from which no legal starting eleven
	// can be formed.
	ErrNoValidFormation = errors.New("no valid formation")
)

// Formation is a legal outfield shape; the keeper count is always 1.
type Formation struct {
	Defenders   int
	Midfielders int
	Forwards    int
}

func (f Formation) String() string {
	return fmt.Sprintf("%d-%d-%d", f.Defenders, f.Midfielders, f.Forwards)
}

// LegalFormations is the exhaustive set of FPL starting shapes: 3-5
// defenders, 2-5 midfielders, 1-3 forwards, ten outfielders plus the keeper.
var LegalFormations = []Formation{
	{3, 4, 3},
	{3, 5, 2},
	{4, 3, 3},
	{4, 4, 2},
	{4, 5, 1},
	{5, 2, 3},
	{5, 3, 2},
	{5, 4, 1},
}

// ValidStartingCounts reports whether the position counts form a legal
// starting eleven.
func ValidStartingCounts(keepers, defenders, midfielders, forwards int) bool {
	if keepers != 1 {
		return false
	}
	if defenders < 3 || defenders > 5 {
		return false
	}
	if midfielders < 2 || midfielders > 5 {
		return false
	}
	if forwards < 1 || forwards > 3 {
		return false
	}
	return keepers+defenders+midfielders+forwards == models.StartingXI
}

// PositionCounts tallies a player list by position.
func PositionCounts(players []models.Player) map[models.Position]int {
	counts := make(map[models.Position]int, 4)
	for _, p := range players {
		counts[p.Position]++
	}
	return counts
}

// ClubCounts tallies a player list by owning club.
func ClubCounts(players []models.Player) map[uint]int {
	counts := make(map[uint]int)
	for _, p := range players {
		counts[p.TeamID]++
	}
	return counts
}

// ValidateComposition checks the full-squad invariant: exactly 15 players,
// 2 keepers, 5 defenders, 5 midfielders, 3 forwards, and no more than 3
// players from one club.
func ValidateComposition(players []models.Player) error {
	if len(players) != models.SquadSize {
		return fmt.Errorf("%w: have %d players, want %d", ErrInvalidSquad, len(players), models.SquadSize)
	}

	counts := PositionCounts(players)
	for _, pos := range []models.Position{models.Goalkeeper, models.Defender, models.Midfielder, models.Forward} {
		if counts[pos] != pos.SquadQuota() {
			return fmt.Errorf("%w: have %d %s, want %d", ErrInvalidSquad, counts[pos], pos, pos.SquadQuota())
		}
	}

	for teamID, count := range ClubCounts(players) {
		if count > models.MaxPerClub {
			return fmt.Errorf("%w: club %d has %d players, cap is %d", ErrInvalidSquad, teamID, count, models.MaxPerClub)
		}
	}
	return nil
}
