package ingest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/caselens/caselens/internal/config"
	"github.com/caselens/caselens/internal/database"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestWantedClientPaging(t *testing.T) {
	pages := map[string][]wantedItem{
		"1": {
			{UID: "a1", Title: "SUSPECT ONE", Description: "Armed robbery", Subjects: []string{"Violent Crime"}, Publication: "2023-05-14T10:00:00", FieldOffices: []string{"dallas"}},
			{UID: "a2", Title: "SUSPECT TWO", Publication: "2023-06-01"},
		},
		"2": {
			{UID: "b1", Title: "SUSPECT THREE", Publication: "2022-11-30T08:15:00+00:00"},
		},
	}

	var requested []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		requested = append(requested, page)
		if r.URL.Query().Get("pageSize") != "2" {
			t.Errorf("expected pageSize=2, got %q", r.URL.Query().Get("pageSize"))
		}
		json.NewEncoder(w).Encode(map[string]any{"items": pages[page]})
	}))
	defer srv.Close()

	client := NewWantedClient(srv.URL, 2, 5, 0)
	cases := client.FetchAll()

	if len(cases) != 3 {
		t.Fatalf("expected 3 cases, got %d", len(cases))
	}
	// Page 2 was short, so paging stops without requesting page 3.
	if diff := cmp.Diff([]string{"1", "2"}, requested); diff != "" {
		t.Errorf("unexpected page requests (-want +got):\n%s", diff)
	}

	first := cases[0]
	if first.UID != "a1" || first.Category != "Violent Crime" {
		t.Errorf("unexpected mapping: %+v", first)
	}
	if first.PublishedDate != "2023-05-14" {
		t.Errorf("expected normalized date 2023-05-14, got %q", first.PublishedDate)
	}
	if first.State != "dallas" {
		t.Errorf("expected field office as state text, got %q", first.State)
	}
	if cases[2].PublishedDate != "2022-11-30" {
		t.Errorf("RFC3339 date not normalized: %q", cases[2].PublishedDate)
	}
}

func TestWantedClientErrorKeepsPartialResults(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls > 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		items := make([]wantedItem, 2)
		for i := range items {
			items[i] = wantedItem{UID: fmt.Sprintf("p1-%d", i), Title: "X", Publication: "2023-01-01"}
		}
		json.NewEncoder(w).Encode(map[string]any{"items": items})
	}))
	defer srv.Close()

	cases := NewWantedClient(srv.URL, 2, 5, 0).FetchAll()
	if len(cases) != 2 {
		t.Errorf("expected the first page kept after error, got %d cases", len(cases))
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"2023-05-14T10:00:00", "2023-05-14"},
		{"2023-05-14T10:00:00Z", "2023-05-14"},
		{"2023-05-14", "2023-05-14"},
		{"not a date", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizeDate(tt.in); got != tt.want {
			t.Errorf("normalizeDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStripHTML(t *testing.T) {
	in := "<p>Wanted for <b>armed robbery</b> &amp; assault</p>"
	want := "Wanted for armed robbery & assault"
	if got := stripHTML(in); got != want {
		t.Errorf("stripHTML = %q, want %q", got, want)
	}
}

func TestExtractSourceName(t *testing.T) {
	if got := extractSourceName("https://www.justice.gov/feeds/opa/justice-news.xml"); got != "Justice" {
		t.Errorf("extractSourceName = %q, want Justice", got)
	}
}

func TestSampleDeterministic(t *testing.T) {
	a := Sample(200, 42)
	b := Sample(200, 42)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("same seed must yield identical records:\n%s", diff)
	}

	c := Sample(200, 7)
	if diff := cmp.Diff(a, c); diff == "" {
		t.Error("different seeds should yield different records")
	}
}

func TestSampleShape(t *testing.T) {
	cases := Sample(1000, 1)
	if len(cases) != 1000 {
		t.Fatalf("expected 1000 records, got %d", len(cases))
	}

	heavy := 0
	years := map[int]int{}
	seen := map[string]bool{}
	for _, c := range cases {
		if c.UID == "" || c.Title == "" || c.Category == "" {
			t.Fatalf("incomplete record: %+v", c)
		}
		if seen[c.UID] {
			t.Fatalf("duplicate UID %s", c.UID)
		}
		seen[c.UID] = true
		switch c.State {
		case "California", "Texas", "Florida":
			heavy++
		}
		var y int
		fmt.Sscanf(c.PublishedDate, "%d", &y)
		years[y]++
	}

	// 35% weighted toward the three heavy states, with sampling slack.
	if heavy < 250 || heavy > 450 {
		t.Errorf("expected roughly 35%% heavy-state records, got %d/1000", heavy)
	}
	if years[2023] < 450 || years[2023] > 650 {
		t.Errorf("expected roughly 55%% from 2023, got %d/1000", years[2023])
	}
}

func TestStoreSampleAndDuplicates(t *testing.T) {
	db := openTestDB(t)
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("default config: %v", err)
	}
	ing := NewIngestor(cfg, db)

	r := ing.StoreSample(50, 3)
	if r.NewCases != 50 || r.Duplicates != 0 {
		t.Fatalf("expected 50 new cases, got %+v", r)
	}

	again := ing.StoreSample(50, 3)
	if again.NewCases != 0 || again.Duplicates != 50 {
		t.Errorf("expected all duplicates on rerun, got %+v", again)
	}

	count, _ := db.CountCases()
	if count != 50 {
		t.Errorf("expected 50 stored cases, got %d", count)
	}

	stored, _ := db.GetAllCases()
	resolved := 0
	for _, c := range stored {
		if c.RemovedDate != nil {
			resolved++
		}
	}
	if resolved == 0 || resolved == 50 {
		t.Errorf("expected a partial share of resolved cases, got %d/50", resolved)
	}
}
