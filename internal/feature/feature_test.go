package feature

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/caselens/caselens/internal/categorize"
	"github.com/caselens/caselens/internal/config"
)

func testEngineer(t *testing.T) *Engineer {
	t.Helper()
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("failed to build default config: %v", err)
	}
	return NewEngineer(categorize.New(cfg.Rules), cfg.Baseline)
}

func TestRunBasicEnrichment(t *testing.T) {
	e := testEngineer(t)

	ds := e.Run([]RawRecord{
		{
			ID:          "c1",
			Title:       "Armed Bank Robbery",
			Description: "Suspect fled Houston, TX with a handgun",
			Category:    "robbery",
			Published:   "2023-05-14",
			Removed:     "2023-08-01",
		},
	})

	if len(ds.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(ds.Records))
	}
	r := ds.Records[0]
	if r.Weapon != categorize.WeaponFirearm {
		t.Errorf("expected firearm, got %q", r.Weapon)
	}
	if !r.Serious {
		t.Error("expected robbery to be serious")
	}
	if r.Family != "Violent Crime" {
		t.Errorf("expected Violent Crime, got %q", r.Family)
	}
	if r.Year != 2023 {
		t.Errorf("expected year 2023, got %d", r.Year)
	}
	if r.Quarter != 2 {
		t.Errorf("expected quarter 2, got %d", r.Quarter)
	}
	if r.Duration == nil || *r.Duration != 79 {
		t.Errorf("expected duration 79 days, got %v", r.Duration)
	}
	if r.StateCode != "TX" {
		t.Errorf("expected state TX, got %q", r.StateCode)
	}
	if r.Region != "Southwest" {
		t.Errorf("expected region Southwest, got %q", r.Region)
	}
}

func TestQuarterBucketing(t *testing.T) {
	e := testEngineer(t)

	tests := []struct {
		published string
		quarter   int
	}{
		{"2022-01-01", 1},
		{"2022-03-31", 1},
		{"2022-04-01", 2},
		{"2022-06-30", 2},
		{"2022-07-15", 3},
		{"2022-10-01", 4},
		{"2022-12-31", 4},
	}
	for _, tt := range tests {
		ds := e.Run([]RawRecord{{ID: "x", Published: tt.published}})
		if len(ds.Records) != 1 {
			t.Fatalf("record for %s was dropped", tt.published)
		}
		if got := ds.Records[0].Quarter; got != tt.quarter {
			t.Errorf("quarter for %s = %d, want %d", tt.published, got, tt.quarter)
		}
	}
}

func TestRunDropsAndCounts(t *testing.T) {
	e := testEngineer(t)

	ds := e.Run([]RawRecord{
		{ID: "", Title: "No ID", Published: "2023-01-01"},
		{ID: "a", Title: "Bad date", Published: "not-a-date"},
		{ID: "b", Title: "Good", Published: "2023-02-01"},
		{ID: "b", Title: "Duplicate of b", Published: "2023-02-02"},
	})

	if len(ds.Records) != 1 {
		t.Fatalf("expected 1 surviving record, got %d", len(ds.Records))
	}
	q := ds.Quality
	if q.InputCount != 4 {
		t.Errorf("expected input count 4, got %d", q.InputCount)
	}
	if q.DroppedMissingID != 1 {
		t.Errorf("expected 1 missing id, got %d", q.DroppedMissingID)
	}
	if q.DroppedBadDate != 1 {
		t.Errorf("expected 1 bad date, got %d", q.DroppedBadDate)
	}
	if q.DroppedDuplicate != 1 {
		t.Errorf("expected 1 duplicate, got %d", q.DroppedDuplicate)
	}
	if q.Dropped() != 3 {
		t.Errorf("expected 3 dropped total, got %d", q.Dropped())
	}
}

func TestNegativeDurationClampedToNil(t *testing.T) {
	e := testEngineer(t)

	ds := e.Run([]RawRecord{
		{ID: "neg", Published: "2023-06-01", Removed: "2023-05-01"},
	})

	if len(ds.Records) != 1 {
		t.Fatalf("record with negative duration must not be dropped")
	}
	if ds.Records[0].Duration != nil {
		t.Errorf("expected nil duration, got %d", *ds.Records[0].Duration)
	}
	if ds.Quality.NegativeDurations != 1 {
		t.Errorf("expected 1 negative duration counted, got %d", ds.Quality.NegativeDurations)
	}
}

func TestOpenCaseHasNilDuration(t *testing.T) {
	e := testEngineer(t)

	ds := e.Run([]RawRecord{{ID: "open", Published: "2023-01-01"}})
	if ds.Records[0].Duration != nil {
		t.Error("expected nil duration for open case")
	}
	if ds.Records[0].AgeBucket != "open" {
		t.Errorf("expected open bucket, got %q", ds.Records[0].AgeBucket)
	}
	if ds.Quality.NegativeDurations != 0 {
		t.Error("open case must not count as negative duration")
	}
}

func TestAgeBuckets(t *testing.T) {
	e := testEngineer(t)

	tests := []struct {
		removed string
		bucket  string
	}{
		{"2020-01-10", "recent"},    // 9 days
		{"2020-06-01", "medium"},    // ~5 months
		{"2023-01-01", "long"},      // 3 years
		{"2026-06-01", "very_long"}, // > 5 years
	}
	for _, tt := range tests {
		ds := e.Run([]RawRecord{{ID: "x", Published: "2020-01-01", Removed: tt.removed}})
		if got := ds.Records[0].AgeBucket; got != tt.bucket {
			t.Errorf("bucket for removal %s = %q, want %q", tt.removed, got, tt.bucket)
		}
	}
}

func TestRunIdempotent(t *testing.T) {
	e := testEngineer(t)

	records := []RawRecord{
		{ID: "a", Title: "Shooting", Description: "in Dallas, Texas", Category: "homicide", Published: "2022-03-04", Removed: "2023-01-01"},
		{ID: "b", Title: "Fraud", Description: "scheme", Category: "fraud", Published: "2021-11-30"},
		{ID: "c", Title: "Stabbing", Description: "no state given", Category: "assault", Published: "2023-07-07"},
	}

	first := e.Run(records)
	second := e.Run(records)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("engineering is not idempotent (-first +second):\n%s", diff)
	}
}

func TestExtractState(t *testing.T) {
	tests := []struct {
		state       string
		description string
		want        string
	}{
		{"TX", "", "TX"},
		{"tx", "", "TX"},
		{"Houston, TX", "", "TX"},
		{"Los Angeles, California", "", "CA"},
		{"", "Last seen near Phoenix, AZ", "AZ"},
		{"West Virginia", "", "WV"},
		{"Arkansas", "", "AR"},
		{"", "", "UNKNOWN"},
		{"overseas", "no location", "UNKNOWN"},
	}
	for _, tt := range tests {
		got := ExtractState(tt.state, tt.description)
		if got != tt.want {
			t.Errorf("ExtractState(%q, %q) = %q, want %q", tt.state, tt.description, got, tt.want)
		}
	}
}

func TestDatasetYears(t *testing.T) {
	e := testEngineer(t)
	ds := e.Run([]RawRecord{
		{ID: "a", Published: "2023-01-01"},
		{ID: "b", Published: "2021-06-01"},
		{ID: "c", Published: "2023-09-01"},
		{ID: "d", Published: "2022-02-01"},
	})

	want := []int{2021, 2022, 2023}
	if diff := cmp.Diff(want, ds.Years()); diff != "" {
		t.Errorf("unexpected years (-want +got):\n%s", diff)
	}
}
