package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/caselens/caselens/internal/bias"
	"github.com/caselens/caselens/internal/categorize"
	"github.com/caselens/caselens/internal/config"
	"github.com/caselens/caselens/internal/database"
	"github.com/caselens/caselens/internal/feature"
	"github.com/caselens/caselens/internal/report"
	"github.com/caselens/caselens/internal/weapons"
)

// StepResult holds the result of a single pipeline step.
type StepResult struct {
	Name    string
	Summary string
	Err     error
}

// Result holds the results of a full analysis run.
type Result struct {
	RunID    int64
	ReportID int64
	Report   *report.Report
	Markdown string
	Steps    []StepResult
}

// Pipeline orchestrates the 5-step analysis over stored cases:
// Load, Engineer, Analyze, Assemble, Store.
type Pipeline struct {
	cfg *config.Config
	db  *database.DB
}

// New creates a new analysis pipeline.
func New(cfg *config.Config, db *database.DB) *Pipeline {
	return &Pipeline{cfg: cfg, db: db}
}

// Run executes the full pipeline and persists the report against a run row.
// Analyzer failures mark the run failed; data-quality problems inside the
// dataset never do, they surface as exclusion counts in the report.
func (p *Pipeline) Run(ctx context.Context) *Result {
	r := &Result{}

	runID, err := p.db.InsertRun()
	if err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Load", Err: fmt.Errorf("recording run: %w", err)})
		return r
	}
	r.RunID = runID

	ds, steps := p.buildDataset()
	r.Steps = append(r.Steps, steps...)
	for _, s := range steps {
		if s.Err != nil {
			p.db.FinishRun(runID, 0, 0, s.Err)
			return r
		}
	}

	step := p.runAnalyze(ctx, ds, r)
	r.Steps = append(r.Steps, step)
	if step.Err != nil {
		p.db.FinishRun(runID, len(ds.Records), ds.Quality.Dropped(), step.Err)
		return r
	}

	step = p.runStore(ds, r)
	r.Steps = append(r.Steps, step)

	p.db.FinishRun(runID, len(ds.Records), ds.Quality.Dropped(), step.Err)
	return r
}

// DryRun shows what each step would do without analyzing or writing.
func (p *Pipeline) DryRun() *Result {
	r := &Result{}

	count, _ := p.db.CountCases()
	r.Steps = append(r.Steps, StepResult{
		Name:    "Load",
		Summary: fmt.Sprintf("[dry-run] %d cases in store", count),
	})
	r.Steps = append(r.Steps, StepResult{
		Name:    "Engineer",
		Summary: fmt.Sprintf("[dry-run] would enrich %d cases", count),
	})
	r.Steps = append(r.Steps, StepResult{
		Name:    "Analyze",
		Summary: "[dry-run] would run geographic, category, temporal, persistence, and weapons analyzers",
	})
	r.Steps = append(r.Steps, StepResult{
		Name:    "Assemble",
		Summary: "[dry-run] would assemble the report",
	})

	latest, _ := p.db.GetLatestReport()
	if latest != nil {
		r.Steps = append(r.Steps, StepResult{
			Name:    "Store",
			Summary: fmt.Sprintf("[dry-run] would store a new report (latest is #%d over %d cases)", latest.ID, latest.CaseCount),
		})
	} else {
		r.Steps = append(r.Steps, StepResult{
			Name:    "Store",
			Summary: "[dry-run] would store the first report",
		})
	}

	return r
}

// buildDataset runs the Load and Engineer steps.
func (p *Pipeline) buildDataset() (*feature.Dataset, []StepResult) {
	log.Println("Step 1/5: Loading cases...")
	cases, err := p.db.GetAllCases()
	if err != nil {
		return nil, []StepResult{{Name: "Load", Err: fmt.Errorf("loading cases: %w", err)}}
	}
	steps := []StepResult{{
		Name:    "Load",
		Summary: fmt.Sprintf("Loaded %d cases", len(cases)),
	}}

	log.Println("Step 2/5: Engineering features...")
	raw := make([]feature.RawRecord, len(cases))
	for i, c := range cases {
		raw[i] = toRawRecord(c)
	}

	eng := feature.NewEngineer(categorize.New(p.cfg.Rules), p.cfg.Baseline)
	ds := eng.Run(raw)
	steps = append(steps, StepResult{
		Name: "Engineer",
		Summary: fmt.Sprintf("Enriched %d records (%d excluded)",
			len(ds.Records), ds.Quality.Dropped()),
	})
	return ds, steps
}

// runAnalyze runs the five analyzers concurrently. Each is a pure function
// over the immutable dataset, so the errgroup is a latency optimization only.
func (p *Pipeline) runAnalyze(ctx context.Context, ds *feature.Dataset, r *Result) StepResult {
	log.Println("Step 3/5: Running analyzers...")

	var (
		geo  *bias.GeographicResult
		cat  *bias.CategoryResult
		temp *bias.TemporalResult
		pers *bias.PersistenceResult
		weap *weapons.Summary
	)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		geo = bias.AnalyzeGeographic(ds, p.cfg.Baseline, p.cfg.Analysis)
		return nil
	})
	g.Go(func() error {
		cat = bias.AnalyzeCategory(ds, p.cfg.Analysis)
		return nil
	})
	g.Go(func() error {
		temp = bias.AnalyzeTemporal(ds, p.cfg.Analysis)
		return nil
	})
	g.Go(func() error {
		pers = bias.AnalyzePersistence(ds, p.cfg.Analysis)
		return nil
	})
	g.Go(func() error {
		weap = weapons.Analyze(ds, weapons.Options{SeriousOnly: true, CompareAll: true}, p.cfg.Analysis)
		return nil
	})
	if err := g.Wait(); err != nil {
		return StepResult{Name: "Analyze", Err: err}
	}

	log.Println("Step 4/5: Assembling report...")
	rep, err := report.Assemble(report.Summarize(ds), geo, cat, temp, pers, weap)
	if err != nil {
		return StepResult{Name: "Assemble", Err: err}
	}
	r.Report = rep
	r.Markdown = report.RenderMarkdown(rep)

	return StepResult{
		Name:    "Analyze",
		Summary: fmt.Sprintf("Ran 5 analyzers over %d records", len(ds.Records)),
	}
}

func (p *Pipeline) runStore(ds *feature.Dataset, r *Result) StepResult {
	log.Println("Step 5/5: Storing report...")

	data, err := json.MarshalIndent(r.Report, "", "  ")
	if err != nil {
		return StepResult{Name: "Store", Err: fmt.Errorf("encoding report: %w", err)}
	}

	reportID, err := p.db.SaveReport(&r.RunID, string(data), r.Markdown, len(ds.Records))
	if err != nil {
		return StepResult{Name: "Store", Err: fmt.Errorf("storing report: %w", err)}
	}
	r.ReportID = reportID

	return StepResult{
		Name:    "Store",
		Summary: fmt.Sprintf("Stored report #%d", reportID),
	}
}

// toRawRecord flattens a stored case into analysis input. Fetched detail
// text is appended to the description so categorization sees it.
func toRawRecord(c database.Case) feature.RawRecord {
	r := feature.RawRecord{
		ID:         c.UID,
		Title:      c.Title,
		Population: c.PopulationRef,
	}
	if c.Description != nil {
		r.Description = *c.Description
	}
	if c.Details != nil && *c.Details != "" {
		if r.Description != "" {
			r.Description += " "
		}
		r.Description += *c.Details
	}
	if c.Category != nil {
		r.Category = *c.Category
	}
	if c.PublishedDate != nil {
		r.Published = *c.PublishedDate
	}
	if c.RemovedDate != nil {
		r.Removed = *c.RemovedDate
	}
	if c.State != nil {
		r.State = *c.State
	}
	return r
}
