package bias

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// chiSquareGOF computes the chi-square goodness-of-fit statistic for observed
// counts against expected counts. Degrees of freedom = cells - 1. Cells with
// zero expected count are skipped; callers guard against them upstream.
func chiSquareGOF(observed, expected []float64) (statistic float64, df int) {
	cells := 0
	for i := range observed {
		if expected[i] <= 0 {
			continue
		}
		diff := observed[i] - expected[i]
		statistic += diff * diff / expected[i]
		cells++
	}
	return statistic, cells - 1
}

// chiSquareIndependence computes the chi-square test of independence over a
// contingency table (rows x cols of counts). Returns the statistic, degrees
// of freedom (r-1)(c-1), and the expected cell counts for validity checks.
func chiSquareIndependence(table [][]float64) (statistic float64, df int, expected [][]float64) {
	rows := len(table)
	if rows == 0 {
		return 0, 0, nil
	}
	cols := len(table[0])

	rowSums := make([]float64, rows)
	colSums := make([]float64, cols)
	var total float64
	for i, row := range table {
		for j, v := range row {
			rowSums[i] += v
			colSums[j] += v
			total += v
		}
	}
	if total == 0 {
		return 0, 0, nil
	}

	expected = make([][]float64, rows)
	for i := range table {
		expected[i] = make([]float64, cols)
		for j := range table[i] {
			e := rowSums[i] * colSums[j] / total
			expected[i][j] = e
			if e > 0 {
				diff := table[i][j] - e
				statistic += diff * diff / e
			}
		}
	}
	return statistic, (rows - 1) * (cols - 1), expected
}

// chiSquarePValue returns the upper-tail probability of the chi-square
// distribution with df degrees of freedom.
func chiSquarePValue(statistic float64, df int) float64 {
	if df < 1 {
		return 1
	}
	return distuv.ChiSquared{K: float64(df)}.Survival(statistic)
}

// pearson computes the Pearson correlation between x and y and the two-sided
// p-value from the t distribution with n-2 degrees of freedom. ok is false
// when the correlation is undefined (fewer than 3 points or zero variance).
func pearson(x, y []float64) (r, p float64, ok bool) {
	n := len(x)
	if n < 3 || len(y) != n {
		return 0, 0, false
	}
	r = stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return 0, 0, false
	}
	// Perfect correlation: the t statistic diverges, the tail is zero.
	if r >= 1 || r <= -1 {
		return math.Copysign(1, r), 0, true
	}
	t := r * math.Sqrt(float64(n-2)/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 2)}
	return r, 2 * dist.Survival(math.Abs(t)), true
}

// oneWayANOVA computes the one-way ANOVA F statistic and p-value over the
// given groups. ok is false when the decomposition is undefined: fewer than
// two groups, any group smaller than two observations, or zero within-group
// variance with zero between-group variance.
func oneWayANOVA(groups [][]float64) (f, p float64, ok bool) {
	k := len(groups)
	if k < 2 {
		return 0, 0, false
	}

	var total float64
	var n int
	for _, g := range groups {
		if len(g) < 2 {
			return 0, 0, false
		}
		for _, v := range g {
			total += v
			n++
		}
	}
	grand := total / float64(n)

	var ssBetween, ssWithin float64
	for _, g := range groups {
		mean := stat.Mean(g, nil)
		d := mean - grand
		ssBetween += float64(len(g)) * d * d
		for _, v := range g {
			dv := v - mean
			ssWithin += dv * dv
		}
	}

	dfBetween := k - 1
	dfWithin := n - k
	if dfWithin < 1 {
		return 0, 0, false
	}
	if ssWithin == 0 {
		if ssBetween == 0 {
			return 0, 0, false
		}
		// Identical values within every group but different group means.
		return math.Inf(1), 0, true
	}

	f = (ssBetween / float64(dfBetween)) / (ssWithin / float64(dfWithin))
	dist := distuv.F{D1: float64(dfBetween), D2: float64(dfWithin)}
	return f, dist.Survival(f), true
}

// standardizedResidual is the signed cell residual (observed-expected)/sqrt(expected).
func standardizedResidual(observed, expected float64) float64 {
	if expected <= 0 {
		return 0
	}
	return (observed - expected) / math.Sqrt(expected)
}
