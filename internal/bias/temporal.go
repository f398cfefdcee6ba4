package bias

import (
	"fmt"
	"strings"

	"github.com/caselens/caselens/internal/config"
	"github.com/caselens/caselens/internal/feature"
)

// minTrendPoints is the minimum number of distinct years a family must appear
// in before a trend is computed for it.
const minTrendPoints = 3

// AnalyzeTemporal computes, per crime family, the Pearson correlation between
// publication year and annual case count. A family needs at least three years
// with cases before a trend is claimed; families below that appear in Skipped
// rather than being zero-filled into a fabricated series.
func AnalyzeTemporal(ds *feature.Dataset, analysis config.Analysis) *TemporalResult {
	res := &TemporalResult{Alpha: analysis.Alpha}

	years := ds.Years()
	counts := make(map[string]map[int]int)
	for _, r := range ds.Records {
		if r.Family == "" {
			res.Excluded++
			continue
		}
		if counts[r.Family] == nil {
			counts[r.Family] = make(map[int]int)
		}
		counts[r.Family][r.Year]++
	}

	for _, fam := range sortedKeys(counts) {
		famCounts := counts[fam]
		if len(famCounts) < minTrendPoints {
			res.Skipped = append(res.Skipped, fam)
			continue
		}

		// Series over all dataset years; the family has cases in at
		// least minTrendPoints of them.
		xs := make([]float64, len(years))
		ys := make([]float64, len(years))
		trend := CategoryTrend{Family: fam, Years: years}
		for i, y := range years {
			n := famCounts[y]
			xs[i] = float64(y)
			ys[i] = float64(n)
			trend.Counts = append(trend.Counts, n)
			trend.TotalCases += n
		}

		r, p, ok := pearson(xs, ys)
		if !ok {
			res.Skipped = append(res.Skipped, fam)
			continue
		}
		trend.Correlation = r
		trend.PValue = p
		trend.Significant = p < analysis.Alpha
		trend.Direction = trendDirection(r, trend.Significant)
		trend.PercentChange = percentChange(trend.Counts)
		res.Trends = append(res.Trends, trend)
	}

	res.Interpretation = interpretTemporal(res)
	return res
}

func trendDirection(r float64, significant bool) string {
	if !significant {
		return "stable"
	}
	if r > 0 {
		return "increasing"
	}
	return "decreasing"
}

// percentChange is the first-to-last change of the series, zero when the
// first observation is zero.
func percentChange(counts []int) float64 {
	if len(counts) == 0 || counts[0] == 0 {
		return 0
	}
	first := float64(counts[0])
	last := float64(counts[len(counts)-1])
	return (last - first) / first * 100
}

func interpretTemporal(res *TemporalResult) string {
	var significant []string
	for _, t := range res.Trends {
		if t.Significant {
			significant = append(significant, fmt.Sprintf("%s (%s)", t.Family, t.Direction))
		}
	}

	var b strings.Builder
	if len(significant) > 0 {
		fmt.Fprintf(&b, "Significant temporal trends: %s.", strings.Join(significant, ", "))
	} else if len(res.Trends) > 0 {
		b.WriteString("No crime family shows a significant trend over time.")
	} else {
		b.WriteString("No family has enough time points for trend analysis.")
	}
	if len(res.Skipped) > 0 {
		fmt.Fprintf(&b, " Skipped for insufficient time points: %s.", strings.Join(res.Skipped, ", "))
	}
	return b.String()
}
