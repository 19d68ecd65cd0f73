// Package main provides the warsim CLI for simulating games of War.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/signalnine/warsim/config"
	"github.com/signalnine/warsim/report"
	"github.com/signalnine/warsim/server"
	"github.com/signalnine/warsim/simulation"
	"github.com/signalnine/warsim/store"
)

// Version information (set by build flags)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// CLI-only flags; the rest bind straight onto config.Config
var (
	serve       bool
	quiet       bool
	showVersion bool
)

// registerFlags binds flags onto cfg so that flags override the environment
func registerFlags(fs *flag.FlagSet, cfg *config.Config) {
	fs.IntVar(&cfg.Games, "games", cfg.Games, "Number of games to simulate")
	fs.StringVar(&cfg.Policy, "policy", cfg.Policy, "Reshuffle policy (shuffled, in-order)")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed (0 = use current time)")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "Number of worker goroutines (0 = auto-detect CPU count)")
	fs.IntVar(&cfg.MaxIterations, "max-iterations", cfg.MaxIterations, "Per-game cap on turns plus ties (0 = no cap)")
	fs.StringVar(&cfg.Output, "out", cfg.Output, "CSV output path (empty = no CSV)")
	fs.StringVar(&cfg.BatchFile, "fb", cfg.BatchFile, "Also write the batch as a FlatBuffers file")
	fs.StringVar(&cfg.SummaryFile, "summary-json", cfg.SummaryFile, "Also write the summary as JSON")
	fs.StringVar(&cfg.DatabaseURL, "db", cfg.DatabaseURL, "Postgres DSN for storing runs")
	fs.StringVar(&cfg.ListenAddr, "addr", cfg.ListenAddr, "Listen address for -serve")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json)")
	fs.BoolVar(&serve, "serve", false, "Run the HTTP API instead of a single batch")
	fs.BoolVar(&quiet, "quiet", false, "Suppress the banner and progress output")
	fs.BoolVar(&showVersion, "version", false, "Show version information")
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	registerFlags(flag.CommandLine, cfg)
	flag.Parse()

	if showVersion {
		fmt.Printf("warsim %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(2)
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}

	// SIGINT/SIGTERM cancel the running batch or stop the server
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var db *store.DB
	if cfg.DatabaseURL != "" {
		db, err = openStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.WithError(err).Error("database unavailable")
			os.Exit(1)
		}
		defer db.Close()
	}

	if serve {
		if err := runServer(ctx, cfg, db, logger); err != nil {
			logger.WithError(err).Error("server failed")
			os.Exit(1)
		}
		return
	}

	if err := runBatch(ctx, cfg, db, logger); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "\n\nInterrupted! No results written.")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "\nSimulation failed: %v\n", err)
		os.Exit(1)
	}
}

func openStore(ctx context.Context, dsn string) (*store.DB, error) {
	db, err := store.Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	if err := store.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return db, nil
}

func runServer(ctx context.Context, cfg *config.Config, db *store.DB, logger *logrus.Logger) error {
	opts := server.Options{
		Logger:        logger,
		MaxGames:      cfg.MaxGamesPerRequest,
		Workers:       cfg.Workers,
		MaxWorkers:    cfg.MaxWorkersPerRequest,
		MaxIterations: cfg.MaxIterationsPerRequest,
	}
	// A nil *store.DB must not become a non-nil interface
	if db != nil {
		opts.Store = db
	}
	return server.New(opts).ListenAndServe(ctx, cfg.ListenAddr)
}

func runBatch(ctx context.Context, cfg *config.Config, db *store.DB, logger *logrus.Logger) error {
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	simCfg, err := cfg.Simulation(logger)
	if err != nil {
		return err
	}

	if !quiet {
		printBanner(cfg)
	}

	// Track progress
	startTime := time.Now()
	if !quiet {
		done := 0
		step := cfg.Games / 100
		if step == 0 {
			step = 1
		}
		simCfg.OnResult = func(simulation.GameRecord) {
			done++
			if done%step == 0 || done == cfg.Games {
				progress := float64(done) / float64(cfg.Games) * 100
				fmt.Printf("\rGames %d/%d | %s (%.0f%%)", done, cfg.Games, formatDuration(time.Since(startTime)), progress)
			}
		}
	}

	records, err := simulation.RunBatchParallel(ctx, simCfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(startTime)
	if !quiet {
		fmt.Printf("\n\nSimulation complete in %s\n\n", formatDuration(elapsed))
	}

	summary := report.Summary{
		Policy:        simCfg.Policy.String(),
		Seed:          cfg.Seed,
		Games:         cfg.Games,
		MaxIterations: simCfg.EffectiveMaxIterations(),
		Elapsed:       elapsed,
		Stats:         simulation.Aggregate(records),
	}

	if cfg.Output != "" {
		if err := report.WriteCSVFile(cfg.Output, records); err != nil {
			return err
		}
		logger.WithField("path", cfg.Output).Info("wrote csv")
	}

	if cfg.BatchFile != "" {
		info := report.BatchInfo{Policy: summary.Policy, Seed: cfg.Seed, MaxIterations: summary.MaxIterations}
		if err := report.WriteBatchFile(cfg.BatchFile, info, records); err != nil {
			return err
		}
		logger.WithField("path", cfg.BatchFile).Info("wrote flatbuffers batch")
	}

	if db != nil {
		id, err := db.SaveRun(ctx, summary, records)
		if err != nil {
			// Files are already written; a failed insert should not lose them
			logger.WithError(err).Warn("failed to store run")
		} else {
			summary.RunID = id
			logger.WithField("run_id", id).Info("stored run")
		}
	}

	if cfg.SummaryFile != "" {
		if err := report.SaveSummary(cfg.SummaryFile, summary); err != nil {
			return err
		}
		logger.WithField("path", cfg.SummaryFile).Info("wrote summary")
	}

	return report.WriteSummary(os.Stdout, summary)
}

func printBanner(cfg *config.Config) {
	fmt.Println()
	fmt.Println("╔════════════════════════════════════════════════════════════╗")
	fmt.Println("║                 War Card Game Simulator                    ║")
	fmt.Println("╚════════════════════════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("Configuration:\n")
	fmt.Printf("  Games:          %d\n", cfg.Games)
	fmt.Printf("  Policy:         %s\n", cfg.Policy)
	fmt.Printf("  Seed:           %d\n", cfg.Seed)
	fmt.Printf("  Workers:        %d (0=auto)\n", cfg.Workers)
	fmt.Printf("  Max iterations: %d (0=none)\n", cfg.MaxIterations)
	if cfg.Output != "" {
		fmt.Printf("  Output:         %s\n", cfg.Output)
	}
	fmt.Println()
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}
