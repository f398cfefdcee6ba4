package bias

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/caselens/caselens/internal/config"
	"github.com/caselens/caselens/internal/feature"
)

// minGroupObservations is the minimum number of non-null durations a family
// needs to join the ANOVA.
const minGroupObservations = 2

// AnalyzePersistence runs a one-way ANOVA of list duration across crime
// families. Records without a resolved duration are excluded and counted.
// Fewer than two usable groups means insufficient data, reported as an
// inconclusive result rather than a fabricated statistic.
func AnalyzePersistence(ds *feature.Dataset, analysis config.Analysis) *PersistenceResult {
	res := &PersistenceResult{TestResult: TestResult{
		Name:  "persistence_anova",
		Alpha: analysis.Alpha,
	}}

	durations := make(map[string][]float64)
	for _, r := range ds.Records {
		if r.Duration == nil || r.Family == "" {
			res.Excluded++
			continue
		}
		durations[r.Family] = append(durations[r.Family], float64(*r.Duration))
	}

	var groups [][]float64
	for _, fam := range sortedKeys(durations) {
		obs := durations[fam]
		res.Groups = append(res.Groups, groupStats(fam, obs))
		if len(obs) >= minGroupObservations {
			groups = append(groups, obs)
			res.SampleSize += len(obs)
		}
	}

	if len(groups) < 2 {
		res.inconclusive(fmt.Sprintf(
			"Insufficient data for persistence comparison: %d group(s) with at least %d resolved cases, need at least 2.",
			len(groups), minGroupObservations))
		return res
	}

	f, p, ok := oneWayANOVA(groups)
	if !ok {
		res.inconclusive("Insufficient data for persistence comparison: duration variance is degenerate.")
		return res
	}

	res.conclude(f, p, len(groups)-1)
	res.Interpretation = interpretPersistence(res, p)
	return res
}

func groupStats(family string, obs []float64) GroupStats {
	sorted := make([]float64, len(obs))
	copy(sorted, obs)
	sort.Float64s(sorted)

	g := GroupStats{
		Family: family,
		Count:  len(obs),
		Mean:   stat.Mean(obs, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
	}
	if len(obs) > 1 {
		g.Std = stat.StdDev(obs, nil)
	}
	return g
}

func interpretPersistence(res *PersistenceResult, p float64) string {
	if !res.Significant {
		return fmt.Sprintf("No significant differences in case persistence across families (%s).", formatP(p))
	}

	var eligible []GroupStats
	for _, g := range res.Groups {
		if g.Count >= minGroupObservations {
			eligible = append(eligible, g)
		}
	}
	longest, shortest := eligible[0], eligible[0]
	for _, g := range eligible[1:] {
		if g.Mean > longest.Mean {
			longest = g
		}
		if g.Mean < shortest.Mean {
			shortest = g
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Significant differences in case persistence detected (%s). ", formatP(p))
	fmt.Fprintf(&b, "%q cases persist longest (avg %.0f days) while %q cases resolve fastest (avg %.0f days).",
		longest.Family, longest.Mean, shortest.Family, shortest.Mean)
	return b.String()
}
