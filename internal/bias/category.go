package bias

import (
	"fmt"
	"sort"
	"strings"

	"github.com/caselens/caselens/internal/config"
	"github.com/caselens/caselens/internal/feature"
)

// AnalyzeCategory runs a chi-square test of independence on the crime-family
// by publication-year contingency table. It reports whether category mix and
// time are associated; it makes no causal claim. The test is inconclusive
// when the table is smaller than 2x2.
func AnalyzeCategory(ds *feature.Dataset, analysis config.Analysis) *CategoryResult {
	res := &CategoryResult{TestResult: TestResult{
		Name:  "category_independence",
		Alpha: analysis.Alpha,
	}}

	cells := make(map[string]map[int]int)
	years := make(map[int]bool)
	for _, r := range ds.Records {
		if r.Family == "" {
			res.Excluded++
			continue
		}
		if cells[r.Family] == nil {
			cells[r.Family] = make(map[int]int)
		}
		cells[r.Family][r.Year]++
		years[r.Year] = true
		res.SampleSize++
	}

	res.Families = sortedKeys(cells)
	for y := range years {
		res.Years = append(res.Years, y)
	}
	sort.Ints(res.Years)

	if len(res.Families) < 2 || len(res.Years) < 2 {
		res.inconclusive(fmt.Sprintf(
			"Insufficient data for independence test: contingency table is %dx%d, need at least 2x2.",
			len(res.Families), len(res.Years)))
		return res
	}

	table := make([][]float64, len(res.Families))
	res.Table = make([][]int, len(res.Families))
	for i, fam := range res.Families {
		table[i] = make([]float64, len(res.Years))
		res.Table[i] = make([]int, len(res.Years))
		for j, y := range res.Years {
			n := cells[fam][y]
			table[i][j] = float64(n)
			res.Table[i][j] = n
		}
	}

	statistic, df, expected := chiSquareIndependence(table)
	for i := range expected {
		for j := range expected[i] {
			if expected[i][j] < analysis.MinExpectedCell {
				res.LowPower = true
			}
		}
	}

	p := chiSquarePValue(statistic, df)
	res.conclude(statistic, p, df)
	res.OverRepresented, res.UnderRepresented = familyOutliers(res.Families, table, expected)
	res.Interpretation = interpretCategory(res, p)
	return res
}

// familyOutliers lists families whose largest-magnitude standardized residual
// exceeds 2, split by residual sign.
func familyOutliers(families []string, observed, expected [][]float64) (over, under []string) {
	for i, fam := range families {
		var extreme float64
		for j := range observed[i] {
			r := standardizedResidual(observed[i][j], expected[i][j])
			if abs(r) > abs(extreme) {
				extreme = r
			}
		}
		switch {
		case extreme > 2:
			over = append(over, fam)
		case extreme < -2:
			under = append(under, fam)
		}
	}
	return over, under
}

func interpretCategory(res *CategoryResult, p float64) string {
	var b strings.Builder
	if res.Significant {
		fmt.Fprintf(&b, "Crime category mix is significantly associated with publication year (%s). The association is directionless; no causal claim is made.", formatP(p))
	} else {
		fmt.Fprintf(&b, "No significant association between crime category and publication year (%s).", formatP(p))
	}
	if res.LowPower {
		b.WriteString(" Low statistical power: some expected cell counts fall below the validity threshold.")
	}
	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
