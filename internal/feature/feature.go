package feature

import (
	"log"
	"sort"
	"time"

	"github.com/caselens/caselens/internal/categorize"
	"github.com/caselens/caselens/internal/config"
)

// RawRecord is one law-enforcement case record as supplied by ingestion.
// Dates are YYYY-MM-DD strings; Removed is empty while the case is open.
type RawRecord struct {
	ID          string
	Title       string
	Description string
	Category    string
	Published   string
	Removed     string
	State       string
	Population  *float64
}

// EnrichedRecord is a RawRecord plus the derived features every analyzer
// consumes. Weapon, Serious, and Family are computed exactly once here and
// never re-derived downstream.
type EnrichedRecord struct {
	RawRecord

	Weapon    categorize.WeaponCategory
	Serious   bool
	Family    string
	Duration  *int // days on the list; nil while open or when invalid
	Year      int
	Quarter   int
	StateCode string // two-letter code or "UNKNOWN"
	Region    string
	AgeBucket string
}

// QualityReport counts every record excluded or repaired during engineering.
// Exclusions are never silent; consumers use these counts to judge how much
// of the input survived.
type QualityReport struct {
	InputCount        int `json:"input_count"`
	DroppedMissingID  int `json:"dropped_missing_id"`
	DroppedBadDate    int `json:"dropped_bad_date"`
	DroppedDuplicate  int `json:"dropped_duplicate"`
	NegativeDurations int `json:"negative_durations"`
	MissingState      int `json:"missing_state"`
	MissingCategory   int `json:"missing_category"`
}

// Dropped returns the total number of excluded input records.
func (q QualityReport) Dropped() int {
	return q.DroppedMissingID + q.DroppedBadDate + q.DroppedDuplicate
}

// Dataset is the immutable enriched dataset shared by all analyzers.
// Records keep input order so report output is reproducible.
type Dataset struct {
	Records []EnrichedRecord
	Quality QualityReport
}

// Age-bucket boundaries in days.
const (
	ageRecentDays = 30
	ageMediumDays = 365
	ageLongDays   = 1825
)

// Engineer turns raw records into an enriched Dataset.
type Engineer struct {
	categorizer *categorize.Categorizer
	regions     map[string]string // state code -> region name
}

// NewEngineer creates an Engineer using the given categorizer and the
// configured region mapping.
func NewEngineer(c *categorize.Categorizer, baseline config.Baseline) *Engineer {
	regions := make(map[string]string)
	for region, states := range baseline.Regions {
		for _, st := range states {
			regions[st] = region
		}
	}
	return &Engineer{categorizer: c, regions: regions}
}

// Run enriches raw records into a Dataset. Records with a missing ID, an
// unparsable publication date, or a duplicate ID are dropped and counted;
// a bad record never corrupts its neighbors. Run reads no clock and no
// other external state, so identical input yields an identical Dataset.
func (e *Engineer) Run(records []RawRecord) *Dataset {
	ds := &Dataset{}
	ds.Quality.InputCount = len(records)
	seen := make(map[string]bool, len(records))

	for _, raw := range records {
		if raw.ID == "" {
			ds.Quality.DroppedMissingID++
			continue
		}
		if seen[raw.ID] {
			ds.Quality.DroppedDuplicate++
			continue
		}

		published, err := time.Parse("2006-01-02", raw.Published)
		if err != nil {
			ds.Quality.DroppedBadDate++
			continue
		}
		seen[raw.ID] = true

		rec := EnrichedRecord{RawRecord: raw}
		rec.Year = published.Year()
		rec.Quarter = 1 + (int(published.Month())-1)/3

		rec.Duration = e.duration(published, raw.Removed, &ds.Quality)
		rec.AgeBucket = ageBucket(rec.Duration)

		text := raw.Title + " " + raw.Description
		rec.Weapon = e.categorizer.Weapon(text)
		rec.Serious = e.categorizer.Serious(raw.Category, text)
		rec.Family = e.categorizer.Family(raw.Category, text)

		rec.StateCode = ExtractState(raw.State, raw.Description)
		if rec.StateCode == StateUnknown {
			ds.Quality.MissingState++
		}
		rec.Region = e.region(rec.StateCode)
		if raw.Category == "" {
			ds.Quality.MissingCategory++
		}

		ds.Records = append(ds.Records, rec)
	}

	if dropped := ds.Quality.Dropped(); dropped > 0 {
		log.Printf("feature engineering: %d of %d records excluded (%d missing id, %d bad date, %d duplicate)",
			dropped, ds.Quality.InputCount, ds.Quality.DroppedMissingID,
			ds.Quality.DroppedBadDate, ds.Quality.DroppedDuplicate)
	}
	return ds
}

// duration computes list days from publication to removal. An unparsable or
// negative span is a data-quality violation: the duration becomes nil and the
// violation is counted, never propagated into statistics.
func (e *Engineer) duration(published time.Time, removed string, q *QualityReport) *int {
	if removed == "" {
		return nil
	}
	end, err := time.Parse("2006-01-02", removed)
	if err != nil {
		return nil
	}
	days := int(end.Sub(published).Hours() / 24)
	if days < 0 {
		q.NegativeDurations++
		return nil
	}
	return &days
}

func (e *Engineer) region(stateCode string) string {
	if r, ok := e.regions[stateCode]; ok {
		return r
	}
	return "Other"
}

func ageBucket(duration *int) string {
	if duration == nil {
		return "open"
	}
	switch d := *duration; {
	case d < ageRecentDays:
		return "recent"
	case d < ageMediumDays:
		return "medium"
	case d < ageLongDays:
		return "long"
	default:
		return "very_long"
	}
}

// Years returns the sorted distinct publication years in the dataset.
func (ds *Dataset) Years() []int {
	seen := make(map[int]bool)
	var years []int
	for _, r := range ds.Records {
		if !seen[r.Year] {
			seen[r.Year] = true
			years = append(years, r.Year)
		}
	}
	sort.Ints(years)
	return years
}
