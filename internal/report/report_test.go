package report

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/caselens/caselens/internal/bias"
	"github.com/caselens/caselens/internal/feature"
	"github.com/caselens/caselens/internal/weapons"
)

func f64(v float64) *float64 { return &v }

func sampleReport() *Report {
	geo := &bias.GeographicResult{
		TestResult: bias.TestResult{
			Name: "chi-square goodness-of-fit", Statistic: f64(12.5), PValue: f64(0.002),
			DF: 3, Alpha: 0.05, Significant: true, Conclusive: true, SampleSize: 400,
			Interpretation: "Case counts deviate from population-proportional expectations.",
		},
		States: []bias.StateDetail{{State: "CA", Observed: 120, Expected: 90.5, Ratio: 1.33}},
	}
	cat := &bias.CategoryResult{
		TestResult: bias.TestResult{
			Name: "chi-square independence", Statistic: f64(8.1), PValue: f64(0.04),
			DF: 4, Alpha: 0.05, Significant: true, Conclusive: true, SampleSize: 400,
			Interpretation: "Category mix shifts across years.",
		},
		Families: []string{"Violent Crime"}, Years: []int{2022, 2023},
	}
	temp := &bias.TemporalResult{
		Alpha:          0.05,
		Trends:         []bias.CategoryTrend{{Family: "Violent Crime", Direction: "increasing", Correlation: 0.98, PValue: 0.01, PercentChange: 40}},
		Skipped:        []string{"Cyber Crime"},
		Interpretation: "1 of 2 categories show a significant trend.",
	}
	pers := &bias.PersistenceResult{
		TestResult: bias.TestResult{
			Name: "one-way ANOVA", Statistic: f64(6.2), PValue: f64(0.01),
			DF: 1, Alpha: 0.05, Significant: true, Conclusive: true, SampleSize: 120,
			Interpretation: "Mean list duration differs across categories.",
		},
		Groups: []bias.GroupStats{{Family: "Violent Crime", Count: 60, Mean: 210.5, Median: 180}},
	}
	weap := &weapons.Summary{
		SampleSize: 400, DatasetSize: 400,
		Distribution: []weapons.CategoryShare{{Category: "firearm", Count: 200, Percentage: 50}},
		Note:         "Analyzed 400 of 400 records.",
	}

	summary := DatasetSummary{RecordCount: 400, DateFrom: "2022-01-04", DateTo: "2023-11-19", CategoryCount: 5, StateCount: 12}
	r, _ := Assemble(summary, geo, cat, temp, pers, weap)
	return r
}

func TestAssembleRejectsNilInputs(t *testing.T) {
	full := sampleReport()
	summary := full.DatasetSummary

	cases := []struct {
		name string
		call func() (*Report, error)
	}{
		{"geographic", func() (*Report, error) {
			return Assemble(summary, nil, full.Category, full.Temporal, full.Persistence, full.Weapons)
		}},
		{"category", func() (*Report, error) {
			return Assemble(summary, full.Geographic, nil, full.Temporal, full.Persistence, full.Weapons)
		}},
		{"temporal", func() (*Report, error) {
			return Assemble(summary, full.Geographic, full.Category, nil, full.Persistence, full.Weapons)
		}},
		{"persistence", func() (*Report, error) {
			return Assemble(summary, full.Geographic, full.Category, full.Temporal, nil, full.Weapons)
		}},
		{"weapons", func() (*Report, error) {
			return Assemble(summary, full.Geographic, full.Category, full.Temporal, full.Persistence, nil)
		}},
	}
	for _, tc := range cases {
		r, err := tc.call()
		if err == nil {
			t.Errorf("%s: expected error for nil input, got report %+v", tc.name, r)
			continue
		}
		if !strings.Contains(err.Error(), tc.name) {
			t.Errorf("%s: error should name the missing analysis, got %q", tc.name, err)
		}
	}
}

func TestReportJSONTopLevelKeys(t *testing.T) {
	data, err := json.Marshal(sampleReport())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []string{
		"dataset_summary", "geographic_bias", "category_bias",
		"temporal_trends", "persistence_analysis", "weapons_analysis",
	}
	for _, key := range want {
		if _, ok := m[key]; !ok {
			t.Errorf("missing top-level key %q", key)
		}
	}
	if len(m) != len(want) {
		t.Errorf("expected exactly %d top-level keys, got %d", len(want), len(m))
	}
}

func TestSummarize(t *testing.T) {
	ds := &feature.Dataset{
		Records: []feature.EnrichedRecord{
			{RawRecord: feature.RawRecord{ID: "a", Category: "Violent Crime", Published: "2023-03-01"}, StateCode: "TX", Year: 2023},
			{RawRecord: feature.RawRecord{ID: "b", Category: "Cyber Crime", Published: "2022-06-15"}, StateCode: "CA", Year: 2022},
			{RawRecord: feature.RawRecord{ID: "c", Category: "Violent Crime", Published: "2023-09-20"}, StateCode: feature.StateUnknown, Year: 2023},
		},
		Quality: feature.QualityReport{InputCount: 5, DroppedBadDate: 2},
	}

	s := Summarize(ds)
	if s.RecordCount != 3 {
		t.Errorf("RecordCount = %d, want 3", s.RecordCount)
	}
	if s.DateFrom != "2022-06-15" || s.DateTo != "2023-09-20" {
		t.Errorf("date range = %s..%s, want 2022-06-15..2023-09-20", s.DateFrom, s.DateTo)
	}
	if s.CategoryCount != 2 {
		t.Errorf("CategoryCount = %d, want 2", s.CategoryCount)
	}
	if s.StateCount != 2 {
		t.Errorf("StateCount = %d, want 2 (UNKNOWN excluded)", s.StateCount)
	}
	if s.Quality.DroppedBadDate != 2 {
		t.Errorf("quality report not carried through: %+v", s.Quality)
	}
}

func TestRenderMarkdownSectionsAndDeterminism(t *testing.T) {
	r := sampleReport()
	md := RenderMarkdown(r)

	sections := []string{
		"## Dataset Summary",
		"## Geographic Bias",
		"## Category Bias",
		"## Temporal Trends",
		"## Persistence Analysis",
		"## Weapons Analysis",
		"## Data Quality & Limitations",
	}
	for _, s := range sections {
		if !strings.Contains(md, s) {
			t.Errorf("markdown missing section %q", s)
		}
	}
	if !strings.Contains(md, "aggregate statistical observations") {
		t.Errorf("markdown missing methodology note")
	}
	if !strings.Contains(md, "| CA | 120 | 90.5 | 1.33 |") {
		t.Errorf("markdown missing per-state row:\n%s", md)
	}

	for i := 0; i < 3; i++ {
		if again := RenderMarkdown(r); again != md {
			t.Fatalf("rendering not deterministic")
		}
	}
}

func TestRenderMarkdownInconclusiveHasNoNumbers(t *testing.T) {
	r := sampleReport()
	r.Persistence = &bias.PersistenceResult{
		TestResult: bias.TestResult{
			Name: "one-way ANOVA", Alpha: 0.05,
			Interpretation: "Insufficient data: fewer than 2 categories with 2 or more resolved cases.",
		},
	}

	md := RenderMarkdown(r)
	if !strings.Contains(md, "Inconclusive: Insufficient data") {
		t.Errorf("inconclusive test should render its reason:\n%s", md)
	}
	if strings.Contains(md, "one-way ANOVA: statistic=") {
		t.Errorf("inconclusive test must not render a statistic line")
	}
}
