package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/rfgon/pautagen/internal/classify"
	"github.com/rfgon/pautagen/internal/config"
	"github.com/rfgon/pautagen/internal/extract"
	"github.com/rfgon/pautagen/internal/pipeline"
	"github.com/rfgon/pautagen/internal/server"
	"github.com/rfgon/pautagen/internal/session"
	"github.com/rfgon/pautagen/internal/store"
	"github.com/rfgon/pautagen/internal/text"
	"github.com/spf13/cobra"
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
	Use:     "pautagen",
	Short:   "Session agenda builder for TCM-SP",
	Long:    "Pautagen extracts case rows from counselor spreadsheets and assembles the unified session agenda.",
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
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("pautagen", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/pautagen/",
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
		fmt.Println("Edit it to set the spreadsheet folder and session defaults.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database and system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		count, err := db.CountRuns()
		if err != nil {
			return fmt.Errorf("counting runs: %w", err)
		}

		fmt.Printf("Database: %s\n", db.Path())
		fmt.Printf("Spreadsheet folder: %s\n\n", cfg.Input.SpreadsheetDir)
		fmt.Printf("Recorded builds: %d\n", count)

		latest, err := db.GetLatestRun()
		if err != nil {
			return err
		}
		if latest != nil {
			fmt.Println("\nLatest build:")
			fmt.Printf("  Session: %s %s (%s)\n", latest.SessionNumber, latest.SessionType, latest.SessionFormat)
			fmt.Printf("  Rows: %d (%d reinclusion)\n", latest.RowCount, latest.ReinclusionCount)
			fmt.Printf("  Document: %s\n", latest.DocumentName)
			fmt.Printf("  Created: %s\n", latest.CreatedAt)
		}
		return nil
	},
}

// --- build command ---

var (
	dryRun     bool
	allowEmpty bool
	buildDir   string

	metaNumber     string
	metaType       string
	metaFormat     string
	metaCompetency string
	metaOpening    string
	metaClosing    string
	metaStartTime  string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the agenda: extract -> session metadata -> assemble -> record",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		pipe := pipeline.New(cfg, db)
		opts := pipeline.Options{
			SpreadsheetDir: buildDir,
			Meta:           metaFromFlags(cmd),
			AllowEmpty:     allowEmpty,
		}

		var result *pipeline.Result
		if dryRun {
			result = pipe.DryRun(opts)
		} else {
			result = pipe.Run(opts)
		}

		for i, step := range result.Steps {
			fmt.Printf("\nStep %d/4: %s\n", i+1, step.Name)
			if step.Err != nil {
				fmt.Printf("  Error: %v\n", step.Err)
			} else {
				fmt.Printf("  %s\n", step.Summary)
			}
		}

		if result.Failed() {
			return fmt.Errorf("build failed")
		}

		if !dryRun {
			fmt.Printf("\nDocument written: %s\n", result.DocumentPath)
			fmt.Println("Run 'pautagen serve' to preview it.")
		}
		return nil
	},
}

func init() {
	buildCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be done without executing")
	buildCmd.Flags().BoolVar(&allowEmpty, "allow-empty", false, "Emit a header-only document when no rows are found")
	buildCmd.Flags().StringVar(&buildDir, "dir", "", "Spreadsheet folder (overrides config)")

	buildCmd.Flags().StringVar(&metaNumber, "number", "", "Session number (e.g. 74)")
	buildCmd.Flags().StringVar(&metaType, "type", "", "Session type: ordinaria | extraordinaria")
	buildCmd.Flags().StringVar(&metaFormat, "format", "", "Session format: nao-presencial | presencial")
	buildCmd.Flags().StringVar(&metaCompetency, "competency", "", "Competency: pleno | 1c | 2c")
	buildCmd.Flags().StringVar(&metaOpening, "opening", "", "Opening date (dd/mm/yyyy)")
	buildCmd.Flags().StringVar(&metaClosing, "closing", "", "Closing date (dd/mm/yyyy)")
	buildCmd.Flags().StringVar(&metaStartTime, "start-time", "", "Session start time (e.g. 9h30min.)")
}

// metaFromFlags merges the --number/--type/... flags over the configured
// session defaults. Returns nil when nothing is set anywhere, which makes
// the document fall back to the static introduction.
func metaFromFlags(cmd *cobra.Command) *session.Meta {
	meta := pipeline.MetaFromConfig(cfg)
	if !cmd.Flags().Changed("number") && !cmd.Flags().Changed("type") &&
		!cmd.Flags().Changed("format") && !cmd.Flags().Changed("competency") &&
		!cmd.Flags().Changed("opening") && !cmd.Flags().Changed("closing") &&
		!cmd.Flags().Changed("start-time") {
		return meta
	}

	if meta == nil {
		s := cfg.Session
		meta = &session.Meta{
			Type:       s.Type,
			Format:     s.Format,
			Competency: s.Competency,
			StartTime:  s.StartTime,
		}
	}
	if metaNumber != "" {
		meta.Number = metaNumber
	}
	if metaType != "" {
		meta.Type = metaType
	}
	if metaFormat != "" {
		meta.Format = metaFormat
	}
	if metaCompetency != "" {
		meta.Competency = metaCompetency
	}
	if metaOpening != "" {
		meta.Opening = metaOpening
	}
	if metaClosing != "" {
		meta.Closing = metaClosing
	}
	if metaStartTime != "" {
		meta.StartTime = metaStartTime
	}
	return meta
}

// --- extract command ---

var extractDir string

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract case rows from the spreadsheet folder and print them",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := extractDir
		if dir == "" {
			dir = cfg.Input.SpreadsheetDir
		}

		res, err := extract.Folder(dir)
		if err != nil {
			return err
		}

		fmt.Printf("Extracted %d rows from %d files (%d skipped)\n\n",
			len(res.Rows), res.Files, res.Skipped)
		for _, row := range res.Rows {
			marker := " "
			if row.Reinclusion {
				marker = "R"
			}
			fmt.Printf("  %s [%s] %-30s %s\n",
				marker, row.Competency, row.Relator, text.NormalizeTCID(row.ProcessID))
		}
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractDir, "dir", "", "Spreadsheet folder (overrides config)")
}

// --- classify command ---

var classifyCmd = &cobra.Command{
	Use:   "classify [subject]",
	Short: "Classify a subject text against the keyword catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m := classify.Classify(args[0])
		if !m.Matched() {
			fmt.Printf("No catalog phrase matched (rank %d)\n", m.Rank)
			return nil
		}
		fmt.Printf("Keyword: %s\n", m.Label)
		fmt.Printf("Rank: %d\n", m.Rank)
		fmt.Printf("Span: [%d:%d]\n", m.Start, m.End)
		return nil
	},
}

// --- runs command ---

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded agenda builds",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		runs, err := db.GetAllRuns()
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Println("No builds recorded. Run 'pautagen build' first.")
			return nil
		}

		fmt.Println("Recorded builds:")
		fmt.Println()
		for _, r := range runs {
			fmt.Printf("  [%d] %s\n", r.ID, r.DocumentName)
			fmt.Printf("        session %s, %d rows, %s\n", r.SessionNumber, r.RowCount, r.CreatedAt)
		}
		return nil
	},
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local preview server",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		port := servePort
		if !cmd.Flags().Changed("port") && cfg.Server.Port > 0 {
			port = cfg.Server.Port
		}

		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(db, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8000, "Port to run server on")
}

func openDB() (*store.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "pautagen.db")
	return store.Open(dbPath)
}
