package database

// Case is one stored law-enforcement case record. Nullable columns are
// pointers; Published and Removed are YYYY-MM-DD strings.
type Case struct {
	UID            string
	Title          string
	Description    *string
	Category       *string
	PublishedDate  *string
	RemovedDate    *string
	State          *string
	PopulationRef  *float64
	URL            *string
	Source         string
	Details        *string
	DetailsFetched bool
	CollectedAt    *string
}

// Run holds metadata about one analysis pipeline run.
type Run struct {
	ID            int64
	StartedAt     *string
	FinishedAt    *string
	Status        string // "running", "completed", or "failed"
	CaseCount     int
	ExcludedCount int
	Error         *string
}

// StoredReport is a persisted analysis report in both renderings.
type StoredReport struct {
	ID             int64
	RunID          *int64
	ReportJSON     string
	ReportMarkdown string
	CaseCount      int
	GeneratedAt    *string
}

// Stats contains aggregate database statistics.
type Stats struct {
	TotalCases      int
	CasesWithState  int
	CasesWithDetail int
	DistinctSources int
	Runs            int
	Reports         int
}
