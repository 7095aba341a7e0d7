// Package rank estimates a manager's live global rank from a point total and
// the population average. It treats round scores as approximately normal
// with an empirically fixed spread; a cheap, stateless approximation rather
// than a live census.
package rank

import (
	"math"
)

// stdDev is the empirical spread of gameweek scores across the population.
const stdDev = 13.0

// Estimate maps a live score to an estimated global rank. The percentile is
// the normal CDF of the z-score; rank is the share of the population above
// it, floored at 1.
func Estimate(liveScore, averageScore float64, population int) int {
	if population < 1 {
		return 1
	}

	z := (liveScore - averageScore) / stdDev
	percentile := normalCDF(z)

	rank := int(math.Round(float64(population) * (1 - percentile)))
	if rank < 1 {
		rank = 1
	}
	if rank > population {
		rank = population
	}
	return rank
}

// normalCDF is the standard normal cumulative distribution via the error
// function; well within the 1.5e-7 accuracy of the usual rational
// approximation.
func normalCDF(z float64) float64 {
	return 0.5 * (1 + math.Erf(z/math.Sqrt2))
}
