package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/fpl-advisor/internal/models"
)

// Tag is a strategic label attached to a player by the advisor.
type Tag string

const (
	TagTemplate          Tag = "Template"
	TagDifferential      Tag = "Differential"
	TagUltraDifferential Tag = "Ultra-Differential"
	TagTrap              Tag = "Trap"
	TagValueBeast        Tag = "Value Beast"
)

// Tagging thresholds. Ownership percentages come straight from the FPL feed.
const (
	templateOwnership     = 30.0
	differentialOwnership = 10.0
	ultraOwnership        = 2.0
	trapOverperformance   = 1.5
	valueBeastRatio       = 0.8
)

// TaggedPlayer is a player with advisory context attached.
type TaggedPlayer struct {
	Player         models.Player  `json:"player"`
	ExpectedPoints float64        `json:"expected_points"`
	ValueRatio     float64        `json:"value_ratio"`
	Tags           []Tag          `json:"tags"`
	Reasons        map[Tag]string `json:"reasons,omitempty"`
}

func (t TaggedPlayer) HasTag(tag Tag) bool {
	for _, have := range t.Tags {
		if have == tag {
			return true
		}
	}
	return false
}

// TransferAdvice is one solver-recommended swap with human-readable reasoning.
type TransferAdvice struct {
	Out         TaggedPlayer `json:"out"`
	In          TaggedPlayer `json:"in"`
	PointsGain  float64      `json:"points_gain"`
	BudgetDelta float64      `json:"budget_delta"` // £m, positive = saves money
	Reasoning   string       `json:"reasoning"`
	Priority    int          `json:"priority"`
}

// AdvisorReport is the full advisory output for one manager and round.
type AdvisorReport struct {
	Gameweek    int              `json:"gameweek"`
	Advice      []TransferAdvice `json:"advice"`
	Captain     TaggedPlayer     `json:"captain"`
	ViceCaptain TaggedPlayer     `json:"vice_captain"`
	ShouldRoll  bool             `json:"should_roll"`
	Warnings    []string         `json:"warnings"`
	Summary     string           `json:"summary"`
}

// AdvisorService post-processes solver output into tagged, reasoned advice.
type AdvisorService struct {
	logger *logrus.Logger
}

func NewAdvisorService(logger *logrus.Logger) *AdvisorService {
	return &AdvisorService{logger: logger}
}

// TagPlayer assigns strategic tags from ownership, value, and the
// actual-versus-expected gap. The Trap check uses season averages as a proxy
// for a recent-form window; the public feed has no cheap per-window total.
func (s *AdvisorService) TagPlayer(p models.Player, expectedPoints, topQuartile float64) TaggedPlayer {
	tagged := TaggedPlayer{
		Player:         p,
		ExpectedPoints: expectedPoints,
		Reasons:        make(map[Tag]string),
	}
	if price := p.PriceMillions(); price > 0 {
		tagged.ValueRatio = expectedPoints / price
	}

	add := func(tag Tag, reason string) {
		tagged.Tags = append(tagged.Tags, tag)
		tagged.Reasons[tag] = reason
	}

	if p.OwnershipPct > templateOwnership {
		add(TagTemplate, fmt.Sprintf(
			"Owned by %.1f%% of managers. Benching risks a red arrow.", p.OwnershipPct))
	}

	if p.OwnershipPct < differentialOwnership && expectedPoints > topQuartile {
		add(TagDifferential, fmt.Sprintf(
			"Only %.1f%% ownership but %.1f xP (top 25%% threshold: %.1f).",
			p.OwnershipPct, expectedPoints, topQuartile))
	}

	if p.OwnershipPct < ultraOwnership {
		add(TagUltraDifferential, fmt.Sprintf(
			"Only %.1f%% ownership. Massive rank swing potential if they haul.", p.OwnershipPct))
	}

	actual, expected := p.PointsPerGame*5, expectedPoints*5
	if expected > 0 && actual > expected*trapOverperformance {
		over := (actual/expected - 1) * 100
		add(TagTrap, fmt.Sprintf(
			"Scored %.0f pts vs %.1f xP pace (%.0f%% overperformance). Regression likely.",
			actual, expected, over))
	}

	if tagged.ValueRatio > valueBeastRatio {
		add(TagValueBeast, fmt.Sprintf(
			"%.1f xP / £%.1fm = %.2f value ratio. Frees budget for premium picks.",
			expectedPoints, p.PriceMillions(), tagged.ValueRatio))
	}

	return tagged
}

// TopQuartileThreshold is the expected-points value a player must clear to
// count as top-25% of the pool.
func TopQuartileThreshold(pool []models.Player, points map[uint]float64) float64 {
	if len(pool) == 0 {
		return 0
	}
	values := make([]float64, 0, len(pool))
	for _, p := range pool {
		values = append(values, points[p.ID])
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(values)))
	return values[len(values)/4]
}

// BuildReport turns a solver result into the full advisory report.
func (s *AdvisorService) BuildReport(result *models.SolverResult, pool []models.Player, points map[uint]float64) *AdvisorReport {
	threshold := TopQuartileThreshold(pool, points)
	tag := func(p models.Player) TaggedPlayer {
		return s.TagPlayer(p, points[p.ID], threshold)
	}

	report := &AdvisorReport{
		Gameweek:    result.Gameweek,
		Captain:     tag(result.Lineup.Captain),
		ViceCaptain: tag(result.Lineup.ViceCaptain),
		ShouldRoll:  result.ShouldRoll,
	}

	for i, pair := range result.Transfers {
		out, in := tag(pair.Out), tag(pair.In)
		advice := TransferAdvice{
			Out:         out,
			In:          in,
			PointsGain:  pair.PointsDelta,
			BudgetDelta: float64(-pair.CostDelta) / 10.0,
			Priority:    i + 1,
		}
		advice.Reasoning = buildReasoning(out, in, advice.BudgetDelta)
		report.Advice = append(report.Advice, advice)
	}

	report.Warnings = detectSquadWarnings(taggedLineup(result.Lineup, tag))
	report.Summary = buildSummary(report, result)

	s.logger.WithFields(logrus.Fields{
		"gameweek":  report.Gameweek,
		"transfers": len(report.Advice),
		"warnings":  len(report.Warnings),
	}).Info("Advisor report built")

	return report
}

func taggedLineup(lineup models.Lineup, tag func(models.Player) TaggedPlayer) []TaggedPlayer {
	tagged := make([]TaggedPlayer, 0, models.SquadSize)
	for _, pick := range lineup.Starters {
		tagged = append(tagged, tag(pick.Player))
	}
	for _, pick := range lineup.Bench {
		tagged = append(tagged, tag(pick.Player))
	}
	return tagged
}

func buildReasoning(out, in TaggedPlayer, budgetDelta float64) string {
	var parts []string

	if out.ExpectedPoints > 0 {
		pct := in.ExpectedPoints / out.ExpectedPoints * 100
		if pct >= 90 {
			parts = append(parts, fmt.Sprintf("%s provides %.0f%% of %s's output",
				in.Player.Name, pct, out.Player.Name))
		} else {
			parts = append(parts, fmt.Sprintf("%s projects %.1f xP vs %s's %.1f xP",
				in.Player.Name, in.ExpectedPoints, out.Player.Name, out.ExpectedPoints))
		}
	}

	if budgetDelta > 0.5 {
		parts = append(parts, fmt.Sprintf("saving £%.1fm to upgrade elsewhere", budgetDelta))
	} else if budgetDelta < -0.5 {
		parts = append(parts, fmt.Sprintf("costs £%.1fm more but justifies the premium", -budgetDelta))
	}

	if in.ExpectedPoints > out.ExpectedPoints {
		parts = append(parts, "better upcoming fixture run")
	}

	if out.HasTag(TagTrap) {
		parts = append(parts, fmt.Sprintf("%s is flagged as a Trap (regression risk)", out.Player.Name))
	}
	if in.HasTag(TagDifferential) {
		parts = append(parts, fmt.Sprintf("%s is a Differential pick for rank gains", in.Player.Name))
	}
	if in.HasTag(TagValueBeast) {
		parts = append(parts, fmt.Sprintf("%s offers elite value per £m", in.Player.Name))
	}

	if len(parts) == 0 {
		return "Marginal improvement based on fixture swing."
	}
	return strings.Join(parts, ". ") + "."
}

func detectSquadWarnings(squad []TaggedPlayer) []string {
	var warnings []string

	var traps, templates []TaggedPlayer
	for _, tp := range squad {
		if tp.HasTag(TagTrap) {
			traps = append(traps, tp)
		}
		if tp.HasTag(TagTemplate) {
			templates = append(templates, tp)
		}
	}

	if len(traps) > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"Regression alert: %s flagged as Trap(s). Consider selling before price drops.",
			joinNames(traps)))
	}

	if len(templates) < 3 {
		warnings = append(warnings, fmt.Sprintf(
			"Low template coverage (%d template players). Risk of falling behind the crowd.",
			len(templates)))
	}

	teamCounts := make(map[uint]int)
	for _, tp := range squad {
		teamCounts[tp.Player.TeamID]++
	}
	heavy := 0
	for _, count := range teamCounts {
		if count >= models.MaxPerClub {
			heavy++
		}
	}
	if heavy > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"Fixture dependency: %d team(s) with 3 players. Blank GW risk.", heavy))
	}

	var flagged []TaggedPlayer
	for _, tp := range squad {
		status := tp.Player.Status
		if (status == models.StatusDoubtful || status == models.StatusInjured) && tp.Player.Form > 3.0 {
			flagged = append(flagged, tp)
		}
	}
	if len(flagged) > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"Fitness concern: %s flagged as doubtful/injured.", joinNames(flagged)))
	}

	return warnings
}

func buildSummary(report *AdvisorReport, result *models.SolverResult) string {
	var parts []string

	if len(report.Advice) > 0 && !report.ShouldRoll {
		lines := make([]string, 0, len(report.Advice))
		for _, a := range report.Advice {
			lines = append(lines, fmt.Sprintf("  Sell %s -> Buy %s (+%.1f xP)%s",
				a.Out.Player.Name, a.In.Player.Name, a.PointsGain, tagSuffix(a.In.Tags)))
		}
		parts = append(parts, "Recommended transfers:\n"+strings.Join(lines, "\n"))
	} else {
		parts = append(parts, "Recommendation: Roll the transfer. No clear upgrades available.")
	}

	if result.HitCost > 0 {
		parts = append(parts, fmt.Sprintf(
			"Transfer cost: -%d pts. Net gain: %.1f xP.", result.HitCost,
			result.NetPoints-result.BaselinePoints))
	}

	parts = append(parts, fmt.Sprintf("Captain: %s (%.1f xP)%s",
		report.Captain.Player.Name, report.Captain.ExpectedPoints, tagSuffix(report.Captain.Tags)))

	return strings.Join(parts, "\n")
}

func tagSuffix(tags []Tag) string {
	if len(tags) == 0 {
		return ""
	}
	labels := make([]string, 0, len(tags))
	for _, t := range tags {
		labels = append(labels, fmt.Sprintf("[%s]", t))
	}
	return " " + strings.Join(labels, " ")
}

func joinNames(tagged []TaggedPlayer) string {
	names := make([]string, 0, len(tagged))
	for _, tp := range tagged {
		names = append(names, tp.Player.Name)
	}
	return strings.Join(names, ", ")
}
