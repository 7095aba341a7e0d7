package squad

import (
	"fmt"
	"sort"

	"github.com/jstittsworth/fpl-advisor/internal/models"
)

// ApplyAutoSubs simulates the platform's automatic bench promotion after a
// round: every starter with zero recorded minutes is replaced by the first
// bench player, in priority order, who played and whose promotion keeps the
// eleven a legal formation.
//
// This is a greedy left-to-right replica of the real substitution rule, not a
// re-optimization. The captain is never substituted; the vice-captain switch
// is handled by the caller's scoring layer. A player missing from the minutes
// map counts as zero minutes.
func ApplyAutoSubs(picks []models.Pick, minutes map[uint]int) ([]models.Pick, error) {
	if len(picks) != models.SquadSize {
		return nil, fmt.Errorf("%w: have %d picks, want %d", ErrInvalidSquad, len(picks), models.SquadSize)
	}

	updated := make([]models.Pick, len(picks))
	copy(updated, picks)
	sort.SliceStable(updated, func(i, j int) bool {
		return updated[i].Slot < updated[j].Slot
	})

	counts := make(map[models.Position]int, 4)
	for _, pick := range updated[:models.StartingXI] {
		counts[pick.Player.Position]++
	}

	benchUsed := make(map[uint]bool, models.BenchSize)

	for i := 0; i < models.StartingXI; i++ {
		starter := updated[i]
		if starter.IsCaptain {
			continue
		}
		if minutes[starter.Player.ID] > 0 {
			continue
		}

		for j := models.StartingXI; j < models.SquadSize; j++ {
			candidate := updated[j]
			if benchUsed[candidate.Player.ID] || minutes[candidate.Player.ID] == 0 {
				continue
			}
			if !swapKeepsLegalCounts(counts, starter.Player.Position, candidate.Player.Position) {
				continue
			}

			// Promote: the bench player inherits the starter's slot and
			// multiplier; the starter drops to the bench slot at 0x.
			updated[i], updated[j] = candidate, starter
			updated[i].Slot = starter.Slot
			updated[i].Multiplier = starter.Multiplier
			updated[j].Slot = candidate.Slot
			updated[j].Multiplier = 0

			counts[starter.Player.Position]--
			counts[candidate.Player.Position]++
			benchUsed[candidate.Player.ID] = true
			break
		}
	}

	return updated, nil
}

func swapKeepsLegalCounts(counts map[models.Position]int, out, in models.Position) bool {
	next := map[models.Position]int{
		models.Goalkeeper: counts[models.Goalkeeper],
		models.Defender:   counts[models.Defender],
		models.Midfielder: counts[models.Midfielder],
		models.Forward:    counts[models.Forward],
	}
	next[out]--
	next[in]++
	return ValidStartingCounts(next[models.Goalkeeper], next[models.Defender], next[models.Midfielder], next[models.Forward])
}
