package ingest

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// WantedCase is one record from the wanted-list API, reduced to the fields
// the analysis pipeline consumes.
type WantedCase struct {
	UID           string
	Title         string
	Description   string
	Category      string
	PublishedDate string // YYYY-MM-DD or empty
	RemovedDate   string // YYYY-MM-DD or empty while the case is open
	State         string
	URL           string
}

// WantedClient fetches case records from a paged wanted-list JSON API.
type WantedClient struct {
	baseURL   string
	pageSize  int
	maxPages  int
	rateDelay time.Duration
	client    *http.Client
}

// NewWantedClient creates a wanted-list client. pageSize and maxPages of 0
// fall back to conservative defaults.
func NewWantedClient(baseURL string, pageSize, maxPages, rateDelayMS int) *WantedClient {
	if pageSize <= 0 {
		pageSize = 50
	}
	if maxPages <= 0 {
		maxPages = 10
	}
	return &WantedClient{
		baseURL:   baseURL,
		pageSize:  pageSize,
		maxPages:  maxPages,
		rateDelay: time.Duration(rateDelayMS) * time.Millisecond,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchAll pages through the API until an empty or short page, the page cap,
// or an error. Errors terminate paging but keep the records already fetched:
// partial data is still analyzable data.
func (c *WantedClient) FetchAll() []WantedCase {
	var all []WantedCase

	for page := 1; page <= c.maxPages; page++ {
		items, err := c.fetchPage(page)
		if err != nil {
			log.Printf("wanted-list page %d: %v (keeping %d records)", page, err, len(all))
			break
		}
		if len(items) == 0 {
			break
		}
		all = append(all, items...)
		if len(items) < c.pageSize {
			break
		}
		if c.rateDelay > 0 {
			time.Sleep(c.rateDelay)
		}
	}

	log.Printf("Fetched %d wanted-list records", len(all))
	return all
}

type wantedItem struct {
	UID          string   `json:"uid"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Subjects     []string `json:"subjects"`
	Publication  string   `json:"publication"`
	URL          string   `json:"url"`
	FieldOffices []string `json:"field_offices"`
}

func (c *WantedClient) fetchPage(page int) ([]WantedCase, error) {
	params := url.Values{
		"page":     {fmt.Sprintf("%d", page)},
		"pageSize": {fmt.Sprintf("%d", c.pageSize)},
	}

	resp, err := c.client.Get(c.baseURL + "?" + params.Encode())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var body struct {
		Items []wantedItem `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding page: %w", err)
	}

	var cases []WantedCase
	for _, item := range body.Items {
		if item.UID == "" || item.Title == "" {
			continue
		}
		cases = append(cases, WantedCase{
			UID:           item.UID,
			Title:         strings.TrimSpace(item.Title),
			Description:   strings.TrimSpace(item.Description),
			Category:      firstNonEmpty(item.Subjects),
			PublishedDate: normalizeDate(item.Publication),
			State:         strings.Join(item.FieldOffices, " "),
			URL:           item.URL,
		})
	}
	return cases, nil
}

func firstNonEmpty(values []string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// normalizeDate accepts the timestamp formats the API has been seen to emit
// and reduces them to YYYY-MM-DD. Unparsable input maps to empty, which the
// feature engineer counts as a dropped record.
func normalizeDate(raw string) string {
	if raw == "" {
		return ""
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}
