package squad

import (
	"sort"

	"github.com/jstittsworth/fpl-advisor/internal/models"
)

// ScoredPlayer pairs a squad member with its projected points for the round.
type ScoredPlayer struct {
	Player models.Player `json:"player"`
	Points float64       `json:"points"`
}

// BestLineup selects the highest-scoring legal starting eleven, bench order
// and captain from a 15-man squad.
//
// For a fixed formation, taking the top scorers per position is optimal, and
// the formation set is small, so greedy-per-formation with an exhaustive
// sweep over LegalFormations finds the global maximum.
func BestLineup(scored []ScoredPlayer) (*models.Lineup, error) {
	if err := ValidateComposition(playersOf(scored)); err != nil {
		return nil, err
	}

	byPosition := groupByPosition(scored)

	var best Formation
	bestScore := -1.0
	found := false
	for _, f := range LegalFormations {
		if len(byPosition[models.Goalkeeper]) < 1 ||
			len(byPosition[models.Defender]) < f.Defenders ||
			len(byPosition[models.Midfielder]) < f.Midfielders ||
			len(byPosition[models.Forward]) < f.Forwards {
			continue
		}

		score := byPosition[models.Goalkeeper][0].Points +
			topScore(byPosition[models.Defender], f.Defenders) +
			topScore(byPosition[models.Midfielder], f.Midfielders) +
			topScore(byPosition[models.Forward], f.Forwards)

		if !found || score > bestScore {
			best = f
			bestScore = score
			found = true
		}
	}
	if !found {
		return nil, ErrNoValidFormation
	}

	starters := make([]ScoredPlayer, 0, models.StartingXI)
	starters = append(starters, byPosition[models.Goalkeeper][0])
	starters = append(starters, byPosition[models.Defender][:best.Defenders]...)
	starters = append(starters, byPosition[models.Midfielder][:best.Midfielders]...)
	starters = append(starters, byPosition[models.Forward][:best.Forwards]...)

	captain, vice := pickCaptains(starters)

	started := make(map[uint]bool, len(starters))
	for _, sp := range starters {
		started[sp.Player.ID] = true
	}
	bench := make([]ScoredPlayer, 0, models.BenchSize)
	for _, sp := range scored {
		if !started[sp.Player.ID] {
			bench = append(bench, sp)
		}
	}
	// Bench order doubles as auto-substitution priority.
	sort.SliceStable(bench, func(i, j int) bool {
		return bench[i].Points > bench[j].Points
	})

	lineup := &models.Lineup{
		Starters:       make([]models.Pick, 0, models.StartingXI),
		Bench:          make([]models.Pick, 0, models.BenchSize),
		Captain:        captain.Player,
		ViceCaptain:    vice.Player,
		Formation:      best.String(),
		ExpectedPoints: bestScore,
	}
	for i, sp := range starters {
		pick := models.Pick{
			Player:        sp.Player,
			Slot:          i + 1,
			Multiplier:    1,
			IsCaptain:     sp.Player.ID == captain.Player.ID,
			IsViceCaptain: sp.Player.ID == vice.Player.ID,
		}
		if pick.IsCaptain {
			pick.Multiplier = 2
		}
		lineup.Starters = append(lineup.Starters, pick)
	}
	for i, sp := range bench {
		lineup.Bench = append(lineup.Bench, models.Pick{
			Player:     sp.Player,
			Slot:       models.StartingXI + i + 1,
			Multiplier: 0,
		})
	}
	return lineup, nil
}

func playersOf(scored []ScoredPlayer) []models.Player {
	players := make([]models.Player, 0, len(scored))
	for _, sp := range scored {
		players = append(players, sp.Player)
	}
	return players
}

func groupByPosition(scored []ScoredPlayer) map[models.Position][]ScoredPlayer {
	byPosition := make(map[models.Position][]ScoredPlayer, 4)
	for _, sp := range scored {
		byPosition[sp.Player.Position] = append(byPosition[sp.Player.Position], sp)
	}
	// Stable sort keeps encounter order as the tie-break.
	for pos := range byPosition {
		group := byPosition[pos]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Points > group[j].Points
		})
	}
	return byPosition
}

func topScore(group []ScoredPlayer, n int) float64 {
	total := 0.0
	for _, sp := range group[:n] {
		total += sp.Points
	}
	return total
}

// pickCaptains returns the top two starters by points, ties broken by
// encounter order.
func pickCaptains(starters []ScoredPlayer) (captain, vice ScoredPlayer) {
	captain = starters[0]
	capIdx := 0
	for i, sp := range starters[1:] {
		if sp.Points > captain.Points {
			captain = sp
			capIdx = i + 1
		}
	}
	first := true
	for i, sp := range starters {
		if i == capIdx {
			continue
		}
		if first || sp.Points > vice.Points {
			vice = sp
			first = false
		}
	}
	return captain, vice
}
