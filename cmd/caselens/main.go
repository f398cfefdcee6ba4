package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/caselens/caselens/internal/config"
	"github.com/caselens/caselens/internal/database"
	"github.com/caselens/caselens/internal/fetch"
	"github.com/caselens/caselens/internal/ingest"
	"github.com/caselens/caselens/internal/pipeline"
	"github.com/caselens/caselens/internal/server"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "caselens",
	Short:   "Aggregate bias analysis over public case records",
	Long:    "caselens ingests public law-enforcement case records and computes aggregate statistical bias indicators: geographic, categorical, temporal, persistence, and weapon-mix patterns.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(sampleCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("caselens", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/caselens/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure sources, analysis thresholds, and baselines.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show store and system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		fmt.Println("Cases:")
		fmt.Printf("  Total stored: %d\n", stats.TotalCases)
		fmt.Printf("  With state text: %d\n", stats.CasesWithState)
		fmt.Printf("  With fetched details: %d\n", stats.CasesWithDetail)
		fmt.Printf("  Distinct sources: %d\n", stats.DistinctSources)
		fmt.Println("\nAnalysis:")
		fmt.Printf("  Runs: %d\n", stats.Runs)
		fmt.Printf("  Reports: %d\n", stats.Reports)

		if lastRun, _ := db.GetLastRun(); lastRun != nil {
			fmt.Printf("\nLast run: %s (%s, %d cases, %d excluded)\n",
				deref(lastRun.StartedAt), lastRun.Status, lastRun.CaseCount, lastRun.ExcludedCount)
		}
		return nil
	},
}

// --- collect command ---

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect case records from configured sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		fmt.Println("Collecting case records from sources...")
		result := ingest.NewIngestor(cfg, db).Collect()
		printCollectResult(result)

		if cfg.Source.FetchDetails {
			fmt.Println("\nFetching case details...")
			fr := fetch.NewDetailFetcher(db, 15*time.Second).FetchMissingDetails(0)
			fmt.Printf("  Fetched: %d, failed: %d\n", fr.Fetched, fr.Failed)
		}
		return nil
	},
}

func printCollectResult(result *ingest.Result) {
	fmt.Println("\nCollection complete:")
	fmt.Printf("  Total found: %d\n", result.TotalFound)
	fmt.Printf("  New cases: %d\n", result.NewCases)
	fmt.Printf("  Duplicates skipped: %d\n", result.Duplicates)

	if len(result.Sources) > 0 {
		fmt.Println("\nCases by source:")
		sources := make([]string, 0, len(result.Sources))
		for s := range result.Sources {
			sources = append(sources, s)
		}
		sort.Strings(sources)
		for _, s := range sources {
			fmt.Printf("  %s: %d\n", s, result.Sources[s])
		}
	}
}

// --- sample command ---

var (
	sampleCount int
	sampleSeed  int64
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Insert deterministic synthetic case records",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		result := ingest.NewIngestor(cfg, db).StoreSample(sampleCount, sampleSeed)
		fmt.Printf("Inserted %d synthetic cases (%d duplicates skipped, seed %d)\n",
			result.NewCases, result.Duplicates, sampleSeed)
		return nil
	},
}

func init() {
	sampleCmd.Flags().IntVar(&sampleCount, "count", 1000, "Number of synthetic records")
	sampleCmd.Flags().Int64Var(&sampleSeed, "seed", 42, "Generator seed")
}

// --- analyze command ---

var dryRun bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the analysis pipeline over stored cases",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		return runAnalysis(db)
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be done without executing")
}

func runAnalysis(db *database.DB) error {
	pipe := pipeline.New(cfg, db)

	var result *pipeline.Result
	if dryRun {
		result = pipe.DryRun()
	} else {
		result = pipe.Run(context.Background())
	}

	for i, step := range result.Steps {
		fmt.Printf("\nStep %d/%d: %s\n", i+1, len(result.Steps), step.Name)
		if step.Err != nil {
			fmt.Printf("  Error: %v\n", step.Err)
		} else {
			fmt.Printf("  %s\n", step.Summary)
		}
	}
	for _, step := range result.Steps {
		if step.Err != nil {
			return fmt.Errorf("pipeline failed at %s: %w", step.Name, step.Err)
		}
	}

	if !dryRun && result.Report != nil {
		fmt.Println("\nKey findings:")
		fmt.Printf("  Geographic: %s\n", result.Report.Geographic.Interpretation)
		fmt.Printf("  Category: %s\n", result.Report.Category.Interpretation)
		fmt.Printf("  Temporal: %s\n", result.Report.Temporal.Interpretation)
		fmt.Printf("  Persistence: %s\n", result.Report.Persistence.Interpretation)
		fmt.Printf("  Weapons: %s\n", result.Report.Weapons.Note)
		fmt.Printf("\nReport #%d stored. Run 'caselens serve' to browse it.\n", result.ReportID)
	}
	return nil
}

// --- run command ---

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Collect then analyze: the full refresh in one command",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		fmt.Println("Collecting case records from sources...")
		printCollectResult(ingest.NewIngestor(cfg, db).Collect())

		if cfg.Source.FetchDetails {
			fmt.Println("\nFetching case details...")
			fr := fetch.NewDetailFetcher(db, 15*time.Second).FetchMissingDetails(0)
			fmt.Printf("  Fetched: %d, failed: %d\n", fr.Fetched, fr.Failed)
		}

		fmt.Println("\nRunning analysis...")
		return runAnalysis(db)
	},
}

// --- report command ---

var reportJSON bool

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the latest stored report",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stored, err := db.GetLatestReport()
		if err != nil {
			return err
		}
		if stored == nil {
			return fmt.Errorf("no reports stored yet; run 'caselens analyze' first")
		}

		if reportJSON {
			fmt.Println(stored.ReportJSON)
		} else {
			fmt.Print(stored.ReportMarkdown)
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "Print the JSON document instead of markdown")
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		if spec := cfg.Server.RefreshCron; spec != "" {
			c := cron.New()
			_, err := c.AddFunc(spec, func() {
				log.Println("Scheduled refresh: collecting and analyzing...")
				ingest.NewIngestor(cfg, db).Collect()
				result := pipeline.New(cfg, db).Run(context.Background())
				for _, step := range result.Steps {
					if step.Err != nil {
						log.Printf("Scheduled refresh failed at %s: %v", step.Name, step.Err)
						return
					}
				}
				log.Printf("Scheduled refresh complete: report #%d", result.ReportID)
			})
			if err != nil {
				return fmt.Errorf("invalid refresh_cron %q: %w", spec, err)
			}
			c.Start()
			defer c.Stop()
			fmt.Printf("Scheduled refresh: %s\n", spec)
		}

		fmt.Printf("Starting dashboard at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(db, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run the dashboard on (default from config)")
}

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "caselens.db")
	return database.Open(dbPath)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
