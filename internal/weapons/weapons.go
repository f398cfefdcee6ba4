package weapons

import (
	"fmt"
	"sort"
	"strings"

	"github.com/caselens/caselens/internal/categorize"
	"github.com/caselens/caselens/internal/cluster"
	"github.com/caselens/caselens/internal/config"
	"github.com/caselens/caselens/internal/feature"
)

// Options select the analysis subset. Filters compose with logical AND;
// zero values mean "no filter".
type Options struct {
	SeriousOnly bool
	CompareAll  bool
	Region      string
	YearFrom    int
	YearTo      int
}

// CategoryShare is one weapon category's count and percentage within a
// distribution. Every distribution carries all six categories; zero counts
// appear as 0%, never omitted.
type CategoryShare struct {
	Category   categorize.WeaponCategory `json:"category"`
	Count      int                       `json:"count"`
	Percentage float64                   `json:"percentage"`
}

// YearQuality is the unknown-weapon percentage for one publication year,
// used to reveal reporting-quality drift over time.
type YearQuality struct {
	Year           int     `json:"year"`
	SampleSize     int     `json:"sample_size"`
	UnknownPercent float64 `json:"unknown_percentage"`
}

// RegionDistribution is a per-region weapon distribution annotated with its
// sample size so consumers can discount low-n rows.
type RegionDistribution struct {
	Region        string          `json:"region"`
	SampleSize    int             `json:"sample_size"`
	Distribution  []CategoryShare `json:"distribution"`
	LowConfidence bool            `json:"low_confidence"`
}

// ComparisonRow is one weapon category's serious-vs-all percentage shift.
type ComparisonRow struct {
	Category         categorize.WeaponCategory `json:"category"`
	SeriousPercent   float64                   `json:"serious_percentage"`
	AllPercent       float64                   `json:"all_percentage"`
	Difference       float64                   `json:"difference"`
	OverInSerious    bool                      `json:"over_represented_in_serious"`
	UnderInSerious   bool                      `json:"under_represented_in_serious"`
}

// StateGroup is a set of states with similar weapon mixes.
type StateGroup struct {
	States []string `json:"states"`
}

// Summary is the weapons analysis output. UnknownPercent is the headline
// data-quality metric: unknown stays in every denominator, because dropping
// it would inflate apparent certainty.
type Summary struct {
	SampleSize        int     `json:"sample_size"`
	DatasetSize       int     `json:"dataset_size"`
	SeriousCount      int     `json:"serious_count"`
	SeriousPercent    float64 `json:"serious_crime_percentage"`
	SeriousOnly       bool    `json:"serious_only"`
	Region            string  `json:"region_filter,omitempty"`
	YearFrom          int     `json:"year_from,omitempty"`
	YearTo            int     `json:"year_to,omitempty"`
	LowConfidence     bool    `json:"low_confidence"`

	Distribution   []CategoryShare `json:"distribution"`
	UnknownPercent float64         `json:"unknown_percentage"`

	UnknownTrend []YearQuality        `json:"unknown_trend"`
	Regional     []RegionDistribution `json:"regional"`
	StateGroups  []StateGroup         `json:"state_groups,omitempty"`
	Comparison   []ComparisonRow      `json:"comparison,omitempty"`

	Note string `json:"note"`
}

// Analyze computes the weapon-usage summary over the filtered dataset.
// A subset below the configured minimum sample still computes fully but is
// annotated low confidence; data limits are reported, never silenced.
func Analyze(ds *feature.Dataset, opts Options, analysis config.Analysis) *Summary {
	s := &Summary{
		DatasetSize: len(ds.Records),
		SeriousOnly: opts.SeriousOnly,
		Region:      opts.Region,
		YearFrom:    opts.YearFrom,
		YearTo:      opts.YearTo,
	}

	for _, r := range ds.Records {
		if r.Serious {
			s.SeriousCount++
		}
	}
	if s.DatasetSize > 0 {
		s.SeriousPercent = float64(s.SeriousCount) / float64(s.DatasetSize) * 100
	}

	subset := filter(ds.Records, opts.SeriousOnly, opts)
	s.SampleSize = len(subset)
	s.LowConfidence = s.SampleSize < analysis.MinWeaponsSample

	s.Distribution = distribution(subset)
	s.UnknownPercent = share(s.Distribution, categorize.WeaponUnknown)
	s.UnknownTrend = unknownTrend(subset)
	s.Regional = regional(subset, analysis)
	s.StateGroups = stateGroups(subset, analysis)

	if opts.CompareAll {
		// Same region/year filters, seriousness filter lifted.
		all := distribution(filter(ds.Records, false, opts))
		s.Comparison = compare(s.Distribution, all, analysis.ComparisonShiftPoints)
	}

	s.Note = note(s)
	return s
}

func filter(records []feature.EnrichedRecord, seriousOnly bool, opts Options) []feature.EnrichedRecord {
	var out []feature.EnrichedRecord
	for _, r := range records {
		if seriousOnly && !r.Serious {
			continue
		}
		if opts.Region != "" && r.Region != opts.Region {
			continue
		}
		if opts.YearFrom != 0 && r.Year < opts.YearFrom {
			continue
		}
		if opts.YearTo != 0 && r.Year > opts.YearTo {
			continue
		}
		out = append(out, r)
	}
	return out
}

// distribution covers all six weapon categories in declaration order;
// percentages sum to 100 within floating-point tolerance.
func distribution(records []feature.EnrichedRecord) []CategoryShare {
	counts := make(map[categorize.WeaponCategory]int)
	for _, r := range records {
		counts[r.Weapon]++
	}

	total := len(records)
	shares := make([]CategoryShare, 0, len(categorize.AllWeaponCategories))
	for _, cat := range categorize.AllWeaponCategories {
		cs := CategoryShare{Category: cat, Count: counts[cat]}
		if total > 0 {
			cs.Percentage = float64(cs.Count) / float64(total) * 100
		}
		shares = append(shares, cs)
	}
	return shares
}

func share(dist []CategoryShare, cat categorize.WeaponCategory) float64 {
	for _, cs := range dist {
		if cs.Category == cat {
			return cs.Percentage
		}
	}
	return 0
}

func unknownTrend(records []feature.EnrichedRecord) []YearQuality {
	totals := make(map[int]int)
	unknowns := make(map[int]int)
	for _, r := range records {
		totals[r.Year]++
		if r.Weapon == categorize.WeaponUnknown {
			unknowns[r.Year]++
		}
	}

	years := make([]int, 0, len(totals))
	for y := range totals {
		years = append(years, y)
	}
	sort.Ints(years)

	out := make([]YearQuality, 0, len(years))
	for _, y := range years {
		out = append(out, YearQuality{
			Year:           y,
			SampleSize:     totals[y],
			UnknownPercent: float64(unknowns[y]) / float64(totals[y]) * 100,
		})
	}
	return out
}

func regional(records []feature.EnrichedRecord, analysis config.Analysis) []RegionDistribution {
	byRegion := make(map[string][]feature.EnrichedRecord)
	for _, r := range records {
		byRegion[r.Region] = append(byRegion[r.Region], r)
	}

	regions := make([]string, 0, len(byRegion))
	for region := range byRegion {
		regions = append(regions, region)
	}
	sort.Strings(regions)

	out := make([]RegionDistribution, 0, len(regions))
	for _, region := range regions {
		group := byRegion[region]
		out = append(out, RegionDistribution{
			Region:        region,
			SampleSize:    len(group),
			Distribution:  distribution(group),
			LowConfidence: len(group) < analysis.MinWeaponsSample,
		})
	}
	return out
}

// stateGroups clusters states with enough samples by the similarity of their
// weapon-mix vectors, giving an aggregate regional-pattern view.
func stateGroups(records []feature.EnrichedRecord, analysis config.Analysis) []StateGroup {
	byState := make(map[string][]feature.EnrichedRecord)
	for _, r := range records {
		if r.StateCode == feature.StateUnknown {
			continue
		}
		byState[r.StateCode] = append(byState[r.StateCode], r)
	}

	states := make([]string, 0, len(byState))
	for st := range byState {
		if len(byState[st]) >= analysis.MinWeaponsSample {
			states = append(states, st)
		}
	}
	sort.Strings(states)
	if len(states) < 2 {
		return nil
	}

	profiles := make([]cluster.Profile, 0, len(states))
	for _, st := range states {
		dist := distribution(byState[st])
		vec := make([]float64, len(dist))
		for i, cs := range dist {
			vec[i] = cs.Percentage / 100
		}
		profiles = append(profiles, cluster.Profile{Label: st, Vector: vec})
	}

	groups := cluster.GroupProfiles(profiles, analysis.ClusterThreshold)
	out := make([]StateGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, StateGroup{States: g.Labels})
	}
	return out
}

func compare(serious, all []CategoryShare, shiftPoints float64) []ComparisonRow {
	allByCat := make(map[categorize.WeaponCategory]float64, len(all))
	for _, cs := range all {
		allByCat[cs.Category] = cs.Percentage
	}

	out := make([]ComparisonRow, 0, len(serious))
	for _, cs := range serious {
		diff := cs.Percentage - allByCat[cs.Category]
		out = append(out, ComparisonRow{
			Category:       cs.Category,
			SeriousPercent: cs.Percentage,
			AllPercent:     allByCat[cs.Category],
			Difference:     diff,
			OverInSerious:  diff > shiftPoints,
			UnderInSerious: diff < -shiftPoints,
		})
	}
	return out
}

func note(s *Summary) string {
	var parts []string
	parts = append(parts, fmt.Sprintf("Analyzed %d of %d records (%.1f%% flagged serious).",
		s.SampleSize, s.DatasetSize, s.SeriousPercent))
	parts = append(parts, fmt.Sprintf("Unknown weapon information: %.1f%% of the analyzed subset.", s.UnknownPercent))
	if s.LowConfidence {
		parts = append(parts, "Low confidence: sample below the configured minimum; treat percentages as indicative only.")
	}
	parts = append(parts, "Aggregate-only analysis, subject to reporting bias and missing-data limits.")
	return strings.Join(parts, " ")
}
