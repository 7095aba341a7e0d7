// Package transfer enumerates 0, 1 and 2-player transfers against a
// candidate pool and reports the best net-of-penalty improvement. The search
// is deterministic and side-effect-free: identical inputs always produce the
// identical result.
package transfer

import (
	"github.com/jstittsworth/fpl-advisor/internal/engine/squad"
	"github.com/jstittsworth/fpl-advisor/internal/models"
)

// RollThreshold is the inertia rule: net gains below this are not worth
// spending a transfer or taking a hit.
const RollThreshold = 2.0

// search tracks the best candidate seen. Comparisons are strictly-greater so
// enumeration order (squad order x pool order) breaks ties, keeping the
// solver deterministic.
type search struct {
	state  models.SquadState
	pool   []models.Player
	points map[uint]float64

	bestPairs  []models.TransferPair
	bestLineup *models.Lineup
	bestTotal  float64
	bestHit    int
	bestNet    float64
	found      bool
}

// Solve runs the lineup optimizer on the unmodified squad to fix the
// baseline, then searches single and double transfers under the budget,
// per-club and composition constraints.
//
// Constraint rejections inside the search are expected high-frequency events
// and are skipped silently; only a malformed squad or a roster with no legal
// formation surfaces as an error.
func Solve(state models.SquadState, pool []models.Player, points map[uint]float64) (*models.SolverResult, error) {
	current := state.Players()
	if err := squad.ValidateComposition(current); err != nil {
		return nil, err
	}

	baseline, err := squad.BestLineup(score(current, points))
	if err != nil {
		return nil, err
	}

	s := &search{
		state:      state,
		pool:       pool,
		points:     points,
		bestLineup: baseline,
		bestTotal:  baseline.ExpectedPoints,
		bestNet:    baseline.ExpectedPoints,
	}

	s.singles(current)

	// Double transfers are only explored when a single already improved
	// things or two free transfers are banked. This can miss a pair that is
	// only good together; the pruning bound is kept deliberately.
	if s.found || state.FreeTransfers >= 2 {
		s.doubles(current)
	}

	improvement := s.bestNet - baseline.ExpectedPoints

	return &models.SolverResult{
		Gameweek:       state.Gameweek,
		Transfers:      s.bestPairs,
		Lineup:         *s.bestLineup,
		BaselinePoints: baseline.ExpectedPoints,
		TotalPoints:    s.bestTotal,
		HitCost:        s.bestHit,
		NetPoints:      s.bestNet,
		ShouldRoll:     s.found && improvement < RollThreshold,
	}, nil
}

func (s *search) singles(current []models.Player) {
	hit := hitCost(1, s.state.FreeTransfers)

	for i, outgoing := range current {
		budget := s.state.Bank + sellingPrice(outgoing)
		for _, incoming := range s.pool {
			if incoming.Position != outgoing.Position || s.state.Owns(incoming.ID) {
				continue
			}
			if incoming.NowCost > budget {
				continue
			}
			next := swapped(current, i, incoming)
			if !clubCapHolds(next) {
				continue
			}
			s.consider(next, hit, pair(outgoing, incoming, s.points))
		}
	}
}

func (s *search) doubles(current []models.Player) {
	hit := hitCost(2, s.state.FreeTransfers)

	for i := 0; i < len(current); i++ {
		for j := i + 1; j < len(current); j++ {
			outA, outB := current[i], current[j]
			budget := s.state.Bank + sellingPrice(outA) + sellingPrice(outB)

			for _, inA := range s.pool {
				if inA.Position != outA.Position || s.state.Owns(inA.ID) {
					continue
				}
				if inA.NowCost > budget {
					continue
				}
				for _, inB := range s.pool {
					if inB.Position != outB.Position || s.state.Owns(inB.ID) || inB.ID == inA.ID {
						continue
					}
					if inA.NowCost+inB.NowCost > budget {
						continue
					}
					next := swapped(current, i, inA)
					next[j] = inB
					if !clubCapHolds(next) {
						continue
					}
					s.consider(next, hit, pair(outA, inA, s.points), pair(outB, inB, s.points))
				}
			}
		}
	}
}

// consider scores a candidate 15 and commits it when it beats the running
// best. Rosters with no legal formation are silently skipped.
func (s *search) consider(next []models.Player, hit int, pairs ...models.TransferPair) {
	lineup, err := squad.BestLineup(score(next, s.points))
	if err != nil {
		return
	}
	net := lineup.ExpectedPoints - float64(hit)
	if net <= s.bestNet {
		return
	}
	s.bestPairs = pairs
	s.bestLineup = lineup
	s.bestTotal = lineup.ExpectedPoints
	s.bestHit = hit
	s.bestNet = net
	s.found = true
}

func swapped(players []models.Player, idx int, incoming models.Player) []models.Player {
	next := make([]models.Player, len(players))
	copy(next, players)
	next[idx] = incoming
	return next
}

func clubCapHolds(players []models.Player) bool {
	for _, count := range squad.ClubCounts(players) {
		if count > models.MaxPerClub {
			return false
		}
	}
	return true
}

func score(players []models.Player, points map[uint]float64) []squad.ScoredPlayer {
	scored := make([]squad.ScoredPlayer, 0, len(players))
	for _, p := range players {
		scored = append(scored, squad.ScoredPlayer{Player: p, Points: points[p.ID]})
	}
	return scored
}

func pair(outgoing, incoming models.Player, points map[uint]float64) models.TransferPair {
	return models.TransferPair{
		Out:         outgoing,
		In:          incoming,
		PointsDelta: points[incoming.ID] - points[outgoing.ID],
		CostDelta:   incoming.NowCost - sellingPrice(outgoing),
	}
}

// sellingPrice falls back to the current price when the picks feed did not
// carry a sell value.
func sellingPrice(p models.Player) int {
	if p.SellingPrice > 0 {
		return p.SellingPrice
	}
	return p.NowCost
}

func hitCost(transfers, free int) int {
	extra := transfers - free
	if extra < 0 {
		extra = 0
	}
	return extra * models.HitCost
}
