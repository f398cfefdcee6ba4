package ingest

import (
	"log"

	"github.com/caselens/caselens/internal/config"
	"github.com/caselens/caselens/internal/database"
)

// Result holds the results of a collection run.
type Result struct {
	TotalFound int
	NewCases   int
	Duplicates int
	Sources    map[string]int
}

// Ingestor orchestrates case collection from the wanted-list API and
// press-release feeds.
type Ingestor struct {
	db         *database.DB
	wanted     *WantedClient
	feedParser *FeedParser
}

// NewIngestor creates an ingestor from the configured sources.
func NewIngestor(cfg *config.Config, db *database.DB) *Ingestor {
	ing := &Ingestor{db: db}

	if cfg.Source.Wanted.Enabled {
		w := cfg.Source.Wanted
		ing.wanted = NewWantedClient(w.BaseURL, w.PageSize, w.MaxPages, w.RateDelayMS)
	}

	if len(cfg.Source.Feeds) > 0 {
		feeds := make([]FeedConfig, len(cfg.Source.Feeds))
		for i, f := range cfg.Source.Feeds {
			feeds[i] = FeedConfig{URL: f.URL, Name: f.Name}
		}
		ing.feedParser = NewFeedParser(feeds)
	}

	return ing
}

// Collect pulls records from every configured source and stores them.
// Already-stored UIDs are counted as duplicates, not errors.
func (ing *Ingestor) Collect() *Result {
	r := &Result{Sources: make(map[string]int)}

	if ing.wanted != nil {
		log.Println("Collecting from wanted-list API...")
		ing.store(r, ing.wanted.FetchAll(), "fbi")
	}

	if ing.feedParser != nil {
		log.Println("Collecting from press-release feeds...")
		ing.store(r, ing.feedParser.ParseAll(), "feed")
	}

	log.Printf("Collection complete: %d found, %d new, %d duplicates", r.TotalFound, r.NewCases, r.Duplicates)
	return r
}

func (ing *Ingestor) store(r *Result, cases []WantedCase, source string) {
	r.TotalFound += len(cases)
	for _, wc := range cases {
		inserted, err := ing.db.InsertCase(toDBCase(wc, source))
		if err != nil {
			log.Printf("Storing case %s: %v", wc.UID, err)
			continue
		}
		if inserted {
			r.NewCases++
			r.Sources[source]++
		} else {
			r.Duplicates++
		}
	}
}

func toDBCase(wc WantedCase, source string) *database.Case {
	c := &database.Case{
		UID:    wc.UID,
		Title:  wc.Title,
		Source: source,
	}
	if wc.Description != "" {
		c.Description = &wc.Description
	}
	if wc.Category != "" {
		c.Category = &wc.Category
	}
	if wc.PublishedDate != "" {
		c.PublishedDate = &wc.PublishedDate
	}
	if wc.RemovedDate != "" {
		c.RemovedDate = &wc.RemovedDate
	}
	if wc.State != "" {
		c.State = &wc.State
	}
	if wc.URL != "" {
		c.URL = &wc.URL
	}
	return c
}
