package squad

import (
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstittsworth/fpl-advisor/internal/models"
)

func scoredSquad(points []float64) []ScoredPlayer {
	players := validSquadPlayers()
	scored := make([]ScoredPlayer, 0, len(players))
	for i, p := range players {
		scored = append(scored, ScoredPlayer{Player: p, Points: points[i]})
	}
	return scored
}

// Squad order: GKP x2, DEF x5, MID x5, FWD x3.
var defaultPoints = []float64{
	5.0, 1.5, // keepers
	6.0, 5.5, 4.0, 2.0, 1.0, // defenders
	8.0, 7.5, 7.0, 6.5, 3.0, // midfielders
	7.0, 6.0, 2.5, // forwards
}

func TestBestLineup_ShapeAndCaptain(t *testing.T) {
	lineup, err := BestLineup(scoredSquad(defaultPoints))
	require.NoError(t, err)

	require.Len(t, lineup.Starters, models.StartingXI)
	require.Len(t, lineup.Bench, models.BenchSize)

	counts := make(map[models.Position]int)
	for _, pick := range lineup.Starters {
		assert.True(t, pick.IsStarter())
		counts[pick.Player.Position]++
	}
	assert.True(t, ValidStartingCounts(
		counts[models.Goalkeeper], counts[models.Defender],
		counts[models.Midfielder], counts[models.Forward]))

	// Captain is the 8.0 midfielder (ID 8), doubled.
	assert.Equal(t, uint(8), lineup.Captain.ID)
	for _, pick := range lineup.Starters {
		if pick.IsCaptain {
			assert.Equal(t, 2, pick.Multiplier)
			assert.Equal(t, lineup.Captain.ID, pick.Player.ID)
		} else {
			assert.Equal(t, 1, pick.Multiplier)
		}
	}
	assert.NotEqual(t, lineup.Captain.ID, lineup.ViceCaptain.ID)

	// Bench is ordered by descending score: that order is the
	// auto-substitution priority.
	for i := 1; i < len(lineup.Bench); i++ {
		prev := benchPoints(t, lineup.Bench[i-1].Player.ID)
		cur := benchPoints(t, lineup.Bench[i].Player.ID)
		assert.GreaterOrEqual(t, prev, cur)
		assert.Equal(t, 0, lineup.Bench[i].Multiplier)
	}
}

func benchPoints(t *testing.T, playerID uint) float64 {
	t.Helper()
	for i, sp := range scoredSquad(defaultPoints) {
		if sp.Player.ID == playerID {
			return defaultPoints[i]
		}
	}
	t.Fatalf("player %d not in squad", playerID)
	return 0
}

// TestBestLineup_BeatsEveryLegalEleven brute-forces every 11-of-15 subset
// with legal position counts and checks the optimizer's total is the maximum.
func TestBestLineup_BeatsEveryLegalEleven(t *testing.T) {
	pointSets := [][]float64{
		defaultPoints,
		{2, 9, 3, 3, 3, 8, 8, 1, 1, 1, 1, 9, 9, 9, 9},
		{4, 4, 7, 6, 5, 4, 3, 2, 2, 2, 2, 2, 1, 1, 1},
	}

	for _, points := range pointSets {
		scored := scoredSquad(points)
		lineup, err := BestLineup(scored)
		require.NoError(t, err)

		bestBrute := -1.0
		for mask := 0; mask < 1<<len(scored); mask++ {
			if bits.OnesCount(uint(mask)) != models.StartingXI {
				continue
			}
			var gkp, def, mid, fwd int
			total := 0.0
			for i, sp := range scored {
				if mask>>i&1 == 0 {
					continue
				}
				total += sp.Points
				switch sp.Player.Position {
				case models.Goalkeeper:
					gkp++
				case models.Defender:
					def++
				case models.Midfielder:
					mid++
				case models.Forward:
					fwd++
				}
			}
			if ValidStartingCounts(gkp, def, mid, fwd) && total > bestBrute {
				bestBrute = total
			}
		}

		assert.InDelta(t, bestBrute, lineup.ExpectedPoints, 1e-9)
	}
}

func TestBestLineup_InvalidSquad(t *testing.T) {
	scored := scoredSquad(defaultPoints)

	_, err := BestLineup(scored[:12])
	assert.ErrorIs(t, err, ErrInvalidSquad)

	broken := scoredSquad(defaultPoints)
	broken[0].Player.Position = models.Defender // 1 GKP, 6 DEF
	_, err = BestLineup(broken)
	assert.ErrorIs(t, err, ErrInvalidSquad)
}
