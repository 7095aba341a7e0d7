package transfer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstittsworth/fpl-advisor/internal/engine/squad"
	"github.com/jstittsworth/fpl-advisor/internal/models"
)

// testSquad builds a valid 15 (2 GKP, 5 DEF, 5 MID, 3 FWD across clubs 1-6)
// with the projected points used throughout these tests. Best baseline
// lineup is a 3-5-2 totalling 72.0 with the 3.0-point midfielder starting.
func testSquad() (models.SquadState, map[uint]float64) {
	points := map[uint]float64{}
	var picks []models.Pick
	add := func(id, team uint, pos models.Position, cost int, pts float64) {
		points[id] = pts
		picks = append(picks, models.Pick{
			Player: models.Player{ID: id, TeamID: team, Position: pos, NowCost: cost, SellingPrice: cost},
			Slot:   len(picks) + 1,
		})
	}
	add(1, 1, models.Goalkeeper, 50, 5.0)
	add(2, 2, models.Goalkeeper, 40, 1.0)
	add(3, 1, models.Defender, 55, 6.0)
	add(4, 2, models.Defender, 55, 6.0)
	add(5, 3, models.Defender, 55, 6.0)
	add(6, 4, models.Defender, 40, 2.0)
	add(7, 5, models.Defender, 40, 2.0)
	add(8, 1, models.Midfielder, 80, 8.0)
	add(9, 2, models.Midfielder, 80, 8.0)
	add(10, 3, models.Midfielder, 80, 8.0)
	add(11, 4, models.Midfielder, 80, 8.0)
	add(12, 5, models.Midfielder, 50, 3.0)
	add(13, 3, models.Forward, 70, 7.0)
	add(14, 4, models.Forward, 70, 7.0)
	add(15, 6, models.Forward, 45, 1.0)

	return models.SquadState{
		Picks:         picks,
		Bank:          10,
		FreeTransfers: 1,
		Gameweek:      7,
	}, points
}

func poolPlayer(id, team uint, pos models.Position, cost int, pts float64, points map[uint]float64) models.Player {
	points[id] = pts
	return models.Player{ID: id, TeamID: team, Position: pos, NowCost: cost}
}

func TestSolve_NoBeneficialTransfer(t *testing.T) {
	state, points := testSquad()
	pool := []models.Player{
		poolPlayer(100, 7, models.Midfielder, 50, 1.0, points),
	}

	result, err := Solve(state, pool, points)
	require.NoError(t, err)

	assert.Empty(t, result.Transfers)
	assert.False(t, result.ShouldRoll)
	assert.Zero(t, result.HitCost)
	assert.InDelta(t, 72.0, result.BaselinePoints, 1e-9)
	assert.InDelta(t, result.BaselinePoints, result.NetPoints, 1e-9)
}

func TestSolve_MarginalGainRecommendsRoll(t *testing.T) {
	state, points := testSquad()
	// Upgrading the 3.0 midfielder to 4.5 lifts the best lineup by exactly
	// 1.5 points, under the 2.0 inertia threshold.
	pool := []models.Player{
		poolPlayer(100, 7, models.Midfielder, 55, 4.5, points),
	}

	result, err := Solve(state, pool, points)
	require.NoError(t, err)

	require.Len(t, result.Transfers, 1)
	assert.Equal(t, uint(12), result.Transfers[0].Out.ID)
	assert.Equal(t, uint(100), result.Transfers[0].In.ID)
	assert.InDelta(t, 1.5, result.NetPoints-result.BaselinePoints, 1e-9)
	assert.True(t, result.ShouldRoll)
	assert.Zero(t, result.HitCost, "one transfer with one free transfer is free")
}

func TestSolve_ClearUpgradeIsKept(t *testing.T) {
	state, points := testSquad()
	pool := []models.Player{
		poolPlayer(100, 7, models.Midfielder, 60, 7.5, points),
	}

	result, err := Solve(state, pool, points)
	require.NoError(t, err)

	require.Len(t, result.Transfers, 1)
	assert.InDelta(t, 4.5, result.NetPoints-result.BaselinePoints, 1e-9)
	assert.False(t, result.ShouldRoll)
}

func TestSolve_BudgetConstraint(t *testing.T) {
	state, points := testSquad()
	// Bank 10 plus the priciest midfielder's 80 selling price leaves 90
	// available; this candidate costs 95 and is out of reach for every swap.
	pool := []models.Player{
		poolPlayer(100, 7, models.Midfielder, 95, 12.0, points),
	}

	result, err := Solve(state, pool, points)
	require.NoError(t, err)
	assert.Empty(t, result.Transfers, "unaffordable candidates must never be returned")
}

func TestSolve_ClubCapConstraint(t *testing.T) {
	state, points := testSquad()
	// Club 3 already has three players. The only upgrade this candidate
	// offers is over the 3.0 midfielder from club 5, but that swap would put
	// a fourth club-3 player in the squad.
	pool := []models.Player{
		poolPlayer(100, 3, models.Midfielder, 55, 6.0, points),
	}

	result, err := Solve(state, pool, points)
	require.NoError(t, err)
	assert.Empty(t, result.Transfers)
}

func TestSolve_ClubCapAllowsReplacingClubmate(t *testing.T) {
	state, points := testSquad()
	// Swapping out the club-3 midfielder for a better club-3 midfielder
	// keeps the club at three and is legal.
	pool := []models.Player{
		poolPlayer(100, 3, models.Midfielder, 80, 9.0, points),
	}

	result, err := Solve(state, pool, points)
	require.NoError(t, err)
	require.Len(t, result.Transfers, 1)
	assert.Equal(t, uint(10), result.Transfers[0].Out.ID)
}

func TestSolve_HitAccounting(t *testing.T) {
	state, points := testSquad()
	state.FreeTransfers = 0
	pool := []models.Player{
		poolPlayer(100, 7, models.Midfielder, 60, 10.0, points),
	}

	result, err := Solve(state, pool, points)
	require.NoError(t, err)

	require.Len(t, result.Transfers, 1)
	assert.Equal(t, models.HitCost, result.HitCost)
	assert.InDelta(t, result.TotalPoints-float64(models.HitCost), result.NetPoints, 1e-9)
}

func TestSolve_DoubleTransferWithTwoFree(t *testing.T) {
	state, points := testSquad()
	state.FreeTransfers = 2
	// Two separate midfield upgrades: no single is wildly better, together
	// they beat any one alone.
	pool := []models.Player{
		poolPlayer(100, 7, models.Midfielder, 55, 5.0, points),
		poolPlayer(101, 8, models.Midfielder, 55, 4.8, points),
	}
	// Weaken a second midfielder so two upgrade targets exist.
	state.Picks[10].Player.NowCost = 50
	points[11] = 3.0

	result, err := Solve(state, pool, points)
	require.NoError(t, err)

	require.Len(t, result.Transfers, 2)
	assert.Zero(t, result.HitCost, "two transfers with two free transfers are free")
	assert.False(t, result.ShouldRoll)
}

func TestSolve_DoubleTransferTakesHitOnlyWhenWorthIt(t *testing.T) {
	state, points := testSquad()
	state.FreeTransfers = 1
	pool := []models.Player{
		poolPlayer(100, 7, models.Midfielder, 55, 5.0, points),
		poolPlayer(101, 8, models.Midfielder, 55, 4.8, points),
	}
	state.Picks[10].Player.NowCost = 50
	points[11] = 3.0

	result, err := Solve(state, pool, points)
	require.NoError(t, err)

	// Best double gains 3.8 gross but costs a 4-point hit; the best single
	// (+2.0, free) wins on net.
	require.Len(t, result.Transfers, 1)
	assert.Equal(t, uint(100), result.Transfers[0].In.ID)
	assert.Zero(t, result.HitCost)
}

func TestSolve_Idempotent(t *testing.T) {
	state, points := testSquad()
	pool := []models.Player{
		poolPlayer(100, 7, models.Midfielder, 60, 7.5, points),
		poolPlayer(101, 8, models.Forward, 60, 6.5, points),
		poolPlayer(102, 8, models.Defender, 45, 3.5, points),
	}

	first, err := Solve(state, pool, points)
	require.NoError(t, err)
	second, err := Solve(state, pool, points)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSolve_InvalidSquad(t *testing.T) {
	state, points := testSquad()
	state.Picks = state.Picks[:14]

	_, err := Solve(state, nil, points)
	assert.ErrorIs(t, err, squad.ErrInvalidSquad)
}
