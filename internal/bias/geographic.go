package bias

import (
	"fmt"
	"sort"
	"strings"

	"github.com/caselens/caselens/internal/config"
	"github.com/caselens/caselens/internal/feature"
)

// AnalyzeGeographic runs a chi-square goodness-of-fit test of observed
// per-state case counts against the expected distribution implied by the
// baseline population table. Records with an unknown state or a state absent
// from the baseline are excluded and counted. Fewer than two usable states
// makes the test inconclusive; sub-threshold expected cells or a small sample
// make it low power, never silent.
func AnalyzeGeographic(ds *feature.Dataset, baseline config.Baseline, analysis config.Analysis) *GeographicResult {
	res := &GeographicResult{TestResult: TestResult{
		Name:  "geographic_representation",
		Alpha: analysis.Alpha,
	}}

	counts := make(map[string]int)
	for _, r := range ds.Records {
		if r.StateCode == feature.StateUnknown {
			res.Excluded++
			continue
		}
		if _, ok := baseline.StatePopulations[r.StateCode]; !ok {
			res.Excluded++
			continue
		}
		counts[r.StateCode]++
	}

	states := make([]string, 0, len(counts))
	for st := range counts {
		states = append(states, st)
	}
	sort.Strings(states)

	var totalCases int
	var totalPop float64
	for _, st := range states {
		totalCases += counts[st]
		totalPop += baseline.StatePopulations[st]
	}
	res.SampleSize = totalCases

	if len(states) < 2 {
		res.inconclusive(fmt.Sprintf(
			"Insufficient data for geographic analysis: %d usable state(s), need at least 2.", len(states)))
		return res
	}

	observed := make([]float64, len(states))
	expected := make([]float64, len(states))
	for i, st := range states {
		pop := baseline.StatePopulations[st]
		obs := float64(counts[st])
		exp := pop / totalPop * float64(totalCases)
		observed[i] = obs
		expected[i] = exp
		res.States = append(res.States, StateDetail{
			State:      st,
			Observed:   counts[st],
			Expected:   exp,
			Ratio:      obs / exp,
			Residual:   standardizedResidual(obs, exp),
			Population: pop,
		})
		if exp < analysis.MinExpectedCell {
			res.LowPower = true
		}
	}
	if totalCases < analysis.MinGeoSample {
		res.LowPower = true
	}

	statistic, df := chiSquareGOF(observed, expected)
	p := chiSquarePValue(statistic, df)
	res.conclude(statistic, p, df)

	res.OverRepresented, res.UnderRepresented = rankedOutliers(res.States, analysis)
	res.Interpretation = interpretGeographic(res, p)
	return res
}

// rankedOutliers returns the top and bottom N states by standardized
// residual, restricted to those beyond the configured representation ratios.
func rankedOutliers(states []StateDetail, analysis config.Analysis) (over, under []string) {
	ranked := make([]StateDetail, len(states))
	copy(ranked, states)
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].Residual > ranked[j].Residual })

	for _, s := range ranked {
		if len(over) >= analysis.ResidualTopN {
			break
		}
		if s.Ratio > analysis.OverRatio {
			over = append(over, s.State)
		}
	}
	for i := len(ranked) - 1; i >= 0; i-- {
		if len(under) >= analysis.ResidualTopN {
			break
		}
		if s := ranked[i]; s.Ratio < analysis.UnderRatio {
			under = append(under, s.State)
		}
	}
	return over, under
}

func interpretGeographic(res *GeographicResult, p float64) string {
	var b strings.Builder
	if res.Significant {
		fmt.Fprintf(&b, "Significant geographic bias detected (%s).", formatP(p))
		if len(res.OverRepresented) > 0 {
			fmt.Fprintf(&b, " Over-represented states: %s.", strings.Join(res.OverRepresented, ", "))
		}
		if len(res.UnderRepresented) > 0 {
			fmt.Fprintf(&b, " Under-represented states: %s.", strings.Join(res.UnderRepresented, ", "))
		}
	} else {
		fmt.Fprintf(&b, "No significant geographic bias detected (%s). Representation appears proportional to population.", formatP(p))
	}
	if res.LowPower {
		b.WriteString(" Low statistical power: sample size or expected cell counts fall below validity thresholds; interpret with caution.")
	}
	return b.String()
}
