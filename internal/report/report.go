package report

import (
	"fmt"

	"github.com/caselens/caselens/internal/bias"
	"github.com/caselens/caselens/internal/feature"
	"github.com/caselens/caselens/internal/weapons"
)

// DatasetSummary describes the analyzed dataset at a glance.
type DatasetSummary struct {
	RecordCount   int                   `json:"record_count"`
	DateFrom      string                `json:"date_from"`
	DateTo        string                `json:"date_to"`
	CategoryCount int                   `json:"category_count"`
	StateCount    int                   `json:"state_count"`
	Quality       feature.QualityReport `json:"quality"`
}

// Report is the canonical analysis artifact: the dataset summary plus every
// analyzer output. It is pure aggregation; nothing here is recomputed, and
// the struct is read-only once returned.
type Report struct {
	DatasetSummary DatasetSummary          `json:"dataset_summary"`
	Geographic     *bias.GeographicResult  `json:"geographic_bias"`
	Category       *bias.CategoryResult    `json:"category_bias"`
	Temporal       *bias.TemporalResult    `json:"temporal_trends"`
	Persistence    *bias.PersistenceResult `json:"persistence_analysis"`
	Weapons        *weapons.Summary        `json:"weapons_analysis"`
}

// Summarize derives the dataset summary from an enriched dataset.
func Summarize(ds *feature.Dataset) DatasetSummary {
	s := DatasetSummary{
		RecordCount: len(ds.Records),
		Quality:     ds.Quality,
	}

	categories := make(map[string]bool)
	states := make(map[string]bool)
	for _, r := range ds.Records {
		if r.Category != "" {
			categories[r.Category] = true
		}
		if r.StateCode != feature.StateUnknown {
			states[r.StateCode] = true
		}
		if s.DateFrom == "" || r.Published < s.DateFrom {
			s.DateFrom = r.Published
		}
		if r.Published > s.DateTo {
			s.DateTo = r.Published
		}
	}
	s.CategoryCount = len(categories)
	s.StateCount = len(states)
	return s
}

// Assemble merges the summary and analyzer outputs into one Report. A nil
// analyzer output is a caller contract violation and is returned as an
// error immediately, never papered over with an empty section.
func Assemble(
	summary DatasetSummary,
	geo *bias.GeographicResult,
	cat *bias.CategoryResult,
	temp *bias.TemporalResult,
	pers *bias.PersistenceResult,
	weap *weapons.Summary,
) (*Report, error) {
	switch {
	case geo == nil:
		return nil, fmt.Errorf("assembling report: missing geographic analysis")
	case cat == nil:
		return nil, fmt.Errorf("assembling report: missing category analysis")
	case temp == nil:
		return nil, fmt.Errorf("assembling report: missing temporal analysis")
	case pers == nil:
		return nil, fmt.Errorf("assembling report: missing persistence analysis")
	case weap == nil:
		return nil, fmt.Errorf("assembling report: missing weapons analysis")
	}

	return &Report{
		DatasetSummary: summary,
		Geographic:     geo,
		Category:       cat,
		Temporal:       temp,
		Persistence:    pers,
		Weapons:        weap,
	}, nil
}
