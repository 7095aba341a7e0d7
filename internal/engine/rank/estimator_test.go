package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const population = 10_000_000

func TestEstimate_AverageScoreIsMedian(t *testing.T) {
	assert.Equal(t, population/2, Estimate(60, 60, population))
}

func TestEstimate_KnownPercentiles(t *testing.T) {
	// One standard deviation (13 points) above the mean is roughly the 84th
	// percentile, leaving about 15.9% of the population ahead.
	oneUp := Estimate(73, 60, population)
	assert.InDelta(t, 1_586_553, oneUp, 10)

	oneDown := Estimate(47, 60, population)
	assert.InDelta(t, 8_413_447, oneDown, 10)

	// Symmetry: the two tails sum to the whole population.
	assert.InDelta(t, population, oneUp+oneDown, 10)
}

func TestEstimate_MonotoneInScore(t *testing.T) {
	prev := Estimate(20, 60, population)
	for score := 25.0; score <= 120; score += 5 {
		cur := Estimate(score, 60, population)
		assert.LessOrEqual(t, cur, prev, "score %v should not rank worse than a lower score", score)
		prev = cur
	}
}

func TestEstimate_Bounds(t *testing.T) {
	assert.Equal(t, 1, Estimate(160, 60, population), "a runaway score floors at first")
	assert.Equal(t, 100, Estimate(0, 60, 100), "a disaster clamps to last")
	assert.Equal(t, 1, Estimate(60, 60, 0), "empty population degrades to rank one")
	assert.Equal(t, 1, Estimate(10, 60, 1))
}
