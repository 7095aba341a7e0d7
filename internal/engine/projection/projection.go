// Package projection converts season statistics and fixture difficulty into
// per-gameweek expected-points estimates. Every function is pure: missing
// data falls back to defaults instead of returning errors, because new
// signings and postponed fixtures are normal inputs, not failures.
package projection

import (
	"github.com/jstittsworth/fpl-advisor/internal/models"
)

const (
	homeAdvantage  = 1.12
	appearancePts  = 2.0
	assistPts      = 3.0
	cleanSheetCap  = 0.95
	midfielderCS   = 0.15 // flat partial clean-sheet credit for midfielders
	xgBlendWeight  = 0.6  // expected rate vs actual rate
	bonusHistWt    = 0.7  // historical bonus-per-start vs threat-derived
	minutesCeiling = 0.95

	defaultForm        = 2.0
	defaultMinutesProb = 0.5
)

// attackMultiplier scales attacking threat by opponent difficulty: easier
// opponents (rating 1) inflate output, harder ones (rating 5) suppress it.
func attackMultiplier(difficulty int) float64 {
	switch difficulty {
	case 1:
		return 1.4
	case 2:
		return 1.2
	case 4:
		return 0.8
	case 5:
		return 0.6
	}
	return 1.0
}

// defenseMultiplier is the narrower clean-sheet analogue.
func defenseMultiplier(difficulty int) float64 {
	switch difficulty {
	case 1:
		return 1.3
	case 2:
		return 1.15
	case 4:
		return 0.85
	case 5:
		return 0.7
	}
	return 1.0
}

// Project builds the expected-points estimate for one player in one gameweek.
// Fixtures may be the full schedule; only unfinished fixtures for the
// player's club in the target gameweek contribute. A blank gameweek yields an
// all-zero projection at high risk.
func Project(p models.Player, fixtures []models.Fixture, gameweek int) models.Projection {
	proj := models.Projection{
		PlayerID: p.ID,
		Gameweek: gameweek,
		Risk:     models.RiskHigh,
	}

	clubFixtures := fixturesFor(p.TeamID, fixtures, gameweek)
	if len(clubFixtures) == 0 {
		// Blank gameweek: all-zero projection, nothing to chase.
		return proj
	}

	minutesProb := minutesProbability(p)
	proj.MinutesProb = minutesProb

	goalPts := float64(p.Position.GoalPoints())
	csPts := float64(p.Position.CleanSheetPoints())

	for _, f := range clubFixtures {
		fdr := attackMultiplier(f.DifficultyFor(p.TeamID))
		defFdr := defenseMultiplier(f.DifficultyFor(p.TeamID))
		homeMult := 1.0
		if f.IsHome(p.TeamID) {
			homeMult = homeAdvantage
		}

		goalThreat := blend(p.XGPerStart(), p.GoalsPerStart()) * fdr * homeMult
		assistThreat := blend(p.XAPerStart(), p.AssistsPerStart()) * fdr * homeMult
		csProb := cleanSheetProbability(p, defFdr*homeMult)

		bonusProj := bonusHistWt*p.BonusPerStart() + (1-bonusHistWt)*(goalThreat+assistThreat+csProb)

		fixturePts := goalThreat*goalPts*minutesProb +
			assistThreat*assistPts*minutesProb +
			csProb*csPts*minutesProb +
			appearancePts*minutesProb +
			bonusProj*minutesProb

		proj.GoalThreat += goalThreat
		proj.AssistThreat += assistThreat
		proj.CleanSheetProb += csProb
		proj.ExpectedPoints += fixturePts
	}

	if proj.CleanSheetProb > cleanSheetCap {
		proj.CleanSheetProb = cleanSheetCap
	}

	proj.Risk = riskTier(p, minutesProb)
	return proj
}

// ProjectAll projects every player in the pool for the given gameweek.
func ProjectAll(players []models.Player, fixtures []models.Fixture, gameweek int) []models.Projection {
	projections := make([]models.Projection, 0, len(players))
	for _, p := range players {
		projections = append(projections, Project(p, fixtures, gameweek))
	}
	return projections
}

// PointsByPlayer flattens projections into the lookup the transfer solver
// consumes.
func PointsByPlayer(projections []models.Projection) map[uint]float64 {
	points := make(map[uint]float64, len(projections))
	for _, proj := range projections {
		points[proj.PlayerID] = proj.ExpectedPoints
	}
	return points
}

func fixturesFor(teamID uint, fixtures []models.Fixture, gameweek int) []models.Fixture {
	var matched []models.Fixture
	for _, f := range fixtures {
		if f.Event == gameweek && !f.Finished && f.Involves(teamID) {
			matched = append(matched, f)
		}
	}
	return matched
}

func blend(expectedRate, actualRate float64) float64 {
	return expectedRate*xgBlendWeight + actualRate*(1-xgBlendWeight)
}

func cleanSheetProbability(p models.Player, multiplier float64) float64 {
	switch p.Position {
	case models.Goalkeeper, models.Defender:
		prob := p.CleanSheetsPerStart() * multiplier
		if prob > cleanSheetCap {
			prob = cleanSheetCap
		}
		return prob
	case models.Midfielder:
		return midfielderCS
	}
	return 0
}

// minutesProbability prefers the explicit chance-of-playing signal, then the
// availability flag, then the missing-data default.
func minutesProbability(p models.Player) float64 {
	if p.ChanceOfPlaying != nil {
		prob := float64(*p.ChanceOfPlaying) / 100
		if prob > minutesCeiling {
			prob = minutesCeiling
		}
		if prob < 0 {
			prob = 0
		}
		return prob
	}

	switch p.Status {
	case models.StatusAvailable:
		if p.Minutes == 0 && p.Starts == 0 {
			// No season record yet (new signing): fall back rather than
			// assume a nailed starter.
			return defaultMinutesProb
		}
		return minutesCeiling
	case models.StatusDoubtful:
		return defaultMinutesProb
	}
	return 0
}

func riskTier(p models.Player, minutesProb float64) models.RiskTier {
	if minutesProb < 0.5 {
		return models.RiskHigh
	}
	form := p.Form
	if form == 0 {
		form = defaultForm
	}
	if minutesProb < 0.8 || p.Status != models.StatusAvailable || form < defaultForm {
		return models.RiskMedium
	}
	return models.RiskLow
}
