package bias

import "fmt"

// TestResult is one hypothesis test outcome. Statistic and PValue are nil
// exactly when Conclusive is false: an inconclusive test never carries a
// fabricated number, it carries the reason in Interpretation instead.
type TestResult struct {
	Name            string   `json:"name"`
	Statistic       *float64 `json:"statistic"`
	PValue          *float64 `json:"p_value"`
	DF              int      `json:"degrees_of_freedom"`
	Alpha           float64  `json:"alpha"`
	Significant     bool     `json:"significant"`
	Conclusive      bool     `json:"conclusive"`
	LowPower        bool     `json:"low_power"`
	SampleSize      int      `json:"sample_size"`
	Excluded        int      `json:"excluded_records"`
	Interpretation  string   `json:"interpretation"`
	OverRepresented []string `json:"over_represented,omitempty"`
	UnderRepresented []string `json:"under_represented,omitempty"`
}

// conclusive fills in the statistic fields of a result.
func (r *TestResult) conclude(statistic, pValue float64, df int) {
	r.Statistic = &statistic
	r.PValue = &pValue
	r.DF = df
	r.Conclusive = true
	r.Significant = pValue < r.Alpha
}

// inconclusive marks the result as having no usable statistic.
func (r *TestResult) inconclusive(reason string) {
	r.Statistic = nil
	r.PValue = nil
	r.Conclusive = false
	r.Significant = false
	r.Interpretation = reason
}

// StateDetail is one per-state row of the geographic analysis.
type StateDetail struct {
	State      string  `json:"state"`
	Observed   int     `json:"observed"`
	Expected   float64 `json:"expected"`
	Ratio      float64 `json:"ratio"`
	Residual   float64 `json:"residual"`
	Population float64 `json:"population_millions"`
}

// GeographicResult is the goodness-of-fit outcome plus per-state detail.
type GeographicResult struct {
	TestResult
	States []StateDetail `json:"states"`
}

// CategoryResult is the independence-test outcome plus the contingency table.
type CategoryResult struct {
	TestResult
	Families []string  `json:"families"`
	Years    []int     `json:"years"`
	Table    [][]int   `json:"table"`
}

// CategoryTrend is one per-family temporal trend.
type CategoryTrend struct {
	Family        string  `json:"family"`
	Years         []int   `json:"years"`
	Counts        []int   `json:"counts"`
	Correlation   float64 `json:"correlation"`
	PValue        float64 `json:"p_value"`
	Significant   bool    `json:"significant"`
	Direction     string  `json:"direction"`
	PercentChange float64 `json:"percent_change"`
	TotalCases    int     `json:"total_cases"`
}

// TemporalResult holds per-family trend analyses. Families with too few time
// points appear in Skipped rather than being zero-filled into trends.
type TemporalResult struct {
	Alpha          float64         `json:"alpha"`
	Trends         []CategoryTrend `json:"trends"`
	Skipped        []string        `json:"skipped_families"`
	Excluded       int             `json:"excluded_records"`
	Interpretation string          `json:"interpretation"`
}

// GroupStats summarizes duration observations for one family.
type GroupStats struct {
	Family string  `json:"family"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// PersistenceResult is the ANOVA outcome plus per-family duration stats.
type PersistenceResult struct {
	TestResult
	Groups []GroupStats `json:"groups"`
}

func formatP(p float64) string {
	if p < 0.0001 {
		return "p<0.0001"
	}
	return fmt.Sprintf("p=%.4f", p)
}
