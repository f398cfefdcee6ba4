package fetch

import (
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"github.com/caselens/caselens/internal/database"
)

// minDetailLength filters out boilerplate-only extractions.
const minDetailLength = 100

// Result holds the results of a detail fetch run.
type Result struct {
	Fetched int
	Failed  int
}

// DetailFetcher fetches case notice pages and extracts their text via
// readability. Extracted text lands in the details column, which the pipeline
// appends to the categorization input.
type DetailFetcher struct {
	db     *database.DB
	client *http.Client
}

// NewDetailFetcher creates a detail fetcher.
func NewDetailFetcher(db *database.DB, timeout time.Duration) *DetailFetcher {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &DetailFetcher{
		db: db,
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// FetchMissingDetails fetches detail text for cases that lack it. A domain
// that returns an HTTP error is skipped for the rest of the run; every
// attempted case is marked so it is not retried forever.
func (f *DetailFetcher) FetchMissingDetails(limit int) *Result {
	cases, err := f.db.GetCasesNeedingDetails(limit)
	if err != nil {
		log.Printf("Error getting cases needing details: %v", err)
		return &Result{}
	}

	if len(cases) == 0 {
		log.Println("No cases need detail fetching")
		return &Result{}
	}

	result := &Result{}
	failedDomains := make(map[string]struct{})

	for _, c := range cases {
		if c.URL == nil {
			continue
		}
		u, _ := url.Parse(*c.URL)
		domain := ""
		if u != nil {
			domain = strings.ToLower(u.Host)
		}

		if _, failed := failedDomains[domain]; failed {
			f.db.MarkCaseDetailsAttempted(c.UID)
			result.Failed++
			continue
		}

		details, httpErr := f.fetchDetails(*c.URL)
		if httpErr != nil {
			f.db.MarkCaseDetailsAttempted(c.UID)
			result.Failed++
			if domain != "" {
				failedDomains[domain] = struct{}{}
			}
			log.Printf("HTTP error for %s, skipping remaining from %s", *c.URL, domain)
			continue
		}

		if details != "" {
			f.db.UpdateCaseDetails(c.UID, &details)
			result.Fetched++
			log.Printf("Fetched details for: %s", c.Title)
		} else {
			f.db.MarkCaseDetailsAttempted(c.UID)
			result.Failed++
			log.Printf("No extractable details from: %s", *c.URL)
		}
	}

	log.Printf("Detail fetch complete: %d fetched, %d failed", result.Fetched, result.Failed)
	return result
}

func (f *DetailFetcher) fetchDetails(caseURL string) (string, error) {
	req, err := http.NewRequest("GET", caseURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "caselens/1.0 (case record analysis)")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", nil // connection error, not HTTP error
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", &httpError{code: resp.StatusCode}
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil
	}

	parsedURL, _ := url.Parse(caseURL)
	page, err := readability.FromReader(strings.NewReader(string(bodyBytes)), parsedURL)
	if err != nil {
		return "", nil
	}

	text := strings.TrimSpace(page.TextContent)
	if len(text) > minDetailLength {
		return text, nil
	}
	return "", nil
}

type httpError struct {
	code int
}

func (e *httpError) Error() string {
	return http.StatusText(e.code)
}
