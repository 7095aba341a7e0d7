package projection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstittsworth/fpl-advisor/internal/models"
)

func awayFixture(gameweek int, teamID uint, difficulty int) models.Fixture {
	return models.Fixture{
		Event:          gameweek,
		HomeTeamID:     99,
		AwayTeamID:     teamID,
		HomeDifficulty: 3,
		AwayDifficulty: difficulty,
	}
}

func homeFixture(gameweek int, teamID uint, difficulty int) models.Fixture {
	return models.Fixture{
		Event:          gameweek,
		HomeTeamID:     teamID,
		AwayTeamID:     99,
		HomeDifficulty: difficulty,
		AwayDifficulty: 3,
	}
}

func forward() models.Player {
	return models.Player{
		ID:            10,
		TeamID:        1,
		Position:      models.Forward,
		Status:        models.StatusAvailable,
		Starts:        10,
		Minutes:       900,
		Goals:         5,
		ExpectedGoals: 4.0,
		Form:          4.5,
	}
}

func TestProject_ForwardNeutralAwayFixture(t *testing.T) {
	fixtures := []models.Fixture{awayFixture(7, 1, 3)}
	proj := Project(forward(), fixtures, 7)

	// goal threat = 0.6*0.4 + 0.4*0.5 = 0.44; minutes = 0.95;
	// xP = 0.44*4*0.95 + 2*0.95 + 0.3*0.44*0.95 = 3.6974
	assert.InDelta(t, 0.44, proj.GoalThreat, 1e-9)
	assert.InDelta(t, 0.95, proj.MinutesProb, 1e-9)
	assert.Zero(t, proj.CleanSheetProb, "forwards earn no clean-sheet credit")
	assert.InDelta(t, 3.6974, proj.ExpectedPoints, 1e-9)
	assert.Equal(t, models.RiskLow, proj.Risk)
}

func TestProject_HomeAdvantageAndDifficulty(t *testing.T) {
	neutral := Project(forward(), []models.Fixture{awayFixture(7, 1, 3)}, 7)
	home := Project(forward(), []models.Fixture{homeFixture(7, 1, 3)}, 7)
	easy := Project(forward(), []models.Fixture{awayFixture(7, 1, 1)}, 7)
	hard := Project(forward(), []models.Fixture{awayFixture(7, 1, 5)}, 7)

	assert.Greater(t, home.ExpectedPoints, neutral.ExpectedPoints)
	assert.Greater(t, easy.ExpectedPoints, neutral.ExpectedPoints)
	assert.Less(t, hard.ExpectedPoints, neutral.ExpectedPoints)

	// Attack multipliers scale the threat directly.
	assert.InDelta(t, neutral.GoalThreat*1.4, easy.GoalThreat, 1e-9)
	assert.InDelta(t, neutral.GoalThreat*0.6, hard.GoalThreat, 1e-9)
	assert.InDelta(t, neutral.GoalThreat*1.12, home.GoalThreat, 1e-9)
}

func TestProject_ZeroMinutesMeansZeroPoints(t *testing.T) {
	for _, status := range []models.Availability{
		models.StatusInjured, models.StatusSuspended, models.StatusUnavailable,
	} {
		p := forward()
		p.Status = status
		proj := Project(p, []models.Fixture{homeFixture(7, 1, 2)}, 7)

		assert.Zero(t, proj.MinutesProb, "status %s", status)
		assert.Zero(t, proj.ExpectedPoints, "status %s", status)
		assert.Equal(t, models.RiskHigh, proj.Risk, "status %s", status)
	}
}

func TestProject_BlankGameweek(t *testing.T) {
	proj := Project(forward(), []models.Fixture{awayFixture(8, 1, 3)}, 7)

	assert.Zero(t, proj.ExpectedPoints)
	assert.Zero(t, proj.GoalThreat)
	assert.Zero(t, proj.MinutesProb)
	assert.Equal(t, models.RiskHigh, proj.Risk)
}

func TestProject_DoubleGameweekSums(t *testing.T) {
	single := Project(forward(), []models.Fixture{awayFixture(7, 1, 3)}, 7)
	double := Project(forward(), []models.Fixture{
		awayFixture(7, 1, 3),
		awayFixture(7, 1, 3),
	}, 7)

	assert.InDelta(t, 2*single.ExpectedPoints, double.ExpectedPoints, 1e-9)
	assert.InDelta(t, 2*single.GoalThreat, double.GoalThreat, 1e-9)
}

func TestProject_CleanSheetByPosition(t *testing.T) {
	base := models.Player{
		ID: 20, TeamID: 1, Status: models.StatusAvailable,
		Starts: 10, Minutes: 900, CleanSheets: 4, Form: 3.0,
	}
	fixtures := []models.Fixture{awayFixture(7, 1, 3)}

	def := base
	def.Position = models.Defender
	mid := base
	mid.Position = models.Midfielder
	fwd := base
	fwd.Position = models.Forward

	assert.InDelta(t, 0.4, Project(def, fixtures, 7).CleanSheetProb, 1e-9)
	assert.InDelta(t, 0.15, Project(mid, fixtures, 7).CleanSheetProb, 1e-9)
	assert.Zero(t, Project(fwd, fixtures, 7).CleanSheetProb)
}

func TestProject_CleanSheetCapped(t *testing.T) {
	keeper := models.Player{
		ID: 21, TeamID: 1, Position: models.Goalkeeper,
		Status: models.StatusAvailable,
		Starts: 10, Minutes: 900, CleanSheets: 9, Form: 3.0,
	}
	// 0.9 rate * 1.3 easy-fixture * 1.12 home would exceed certainty.
	proj := Project(keeper, []models.Fixture{homeFixture(7, 1, 1)}, 7)
	assert.InDelta(t, 0.95, proj.CleanSheetProb, 1e-9)
}

func TestProject_MinutesProbability(t *testing.T) {
	chance := func(v int) *int { return &v }

	tests := []struct {
		name   string
		mutate func(*models.Player)
		want   float64
	}{
		{"explicit chance of playing", func(p *models.Player) { p.ChanceOfPlaying = chance(75) }, 0.75},
		{"explicit chance capped", func(p *models.Player) { p.ChanceOfPlaying = chance(100) }, 0.95},
		{"doubtful", func(p *models.Player) { p.Status = models.StatusDoubtful }, 0.5},
		{"available with record", func(p *models.Player) {}, 0.95},
		{"available without record", func(p *models.Player) { p.Starts = 0; p.Minutes = 0 }, 0.5},
		{"injured", func(p *models.Player) { p.Status = models.StatusInjured }, 0},
	}

	fixtures := []models.Fixture{awayFixture(7, 1, 3)}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := forward()
			tt.mutate(&p)
			assert.InDelta(t, tt.want, Project(p, fixtures, 7).MinutesProb, 1e-9)
		})
	}
}

func TestProject_RiskTiers(t *testing.T) {
	fixtures := []models.Fixture{awayFixture(7, 1, 3)}

	nailed := forward()
	assert.Equal(t, models.RiskLow, Project(nailed, fixtures, 7).Risk)

	doubtful := forward()
	doubtful.Status = models.StatusDoubtful
	assert.Equal(t, models.RiskMedium, Project(doubtful, fixtures, 7).Risk)

	coldStreak := forward()
	coldStreak.Form = 1.2
	assert.Equal(t, models.RiskMedium, Project(coldStreak, fixtures, 7).Risk)

	benched := forward()
	chance := 25
	benched.ChanceOfPlaying = &chance
	assert.Equal(t, models.RiskHigh, Project(benched, fixtures, 7).Risk)
}

func TestProjection_Rounded(t *testing.T) {
	proj := models.Projection{ExpectedPoints: 3.69742, GoalThreat: 0.4444, MinutesProb: 0.949999}
	rounded := proj.Rounded()

	assert.Equal(t, 3.7, rounded.ExpectedPoints)
	assert.Equal(t, 0.44, rounded.GoalThreat)
	assert.Equal(t, 0.95, rounded.MinutesProb)
	// Full precision is preserved on the original.
	assert.Equal(t, 3.69742, proj.ExpectedPoints)
}

func TestPointsByPlayer(t *testing.T) {
	players := []models.Player{forward()}
	projections := ProjectAll(players, []models.Fixture{awayFixture(7, 1, 3)}, 7)
	require.Len(t, projections, 1)

	points := PointsByPlayer(projections)
	assert.InDelta(t, projections[0].ExpectedPoints, points[players[0].ID], 1e-12)
}
