package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/importer"
	"github.com/claude/liftlog/internal/localstore"
	"github.com/claude/liftlog/internal/session"
	"github.com/claude/liftlog/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	dataPath := flag.String("data", "", "path to CSV data directory (required)")
	dryRun := flag.Bool("dry-run", false, "report counts without writing to the store")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *dataPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: liftlog-import -config config.yaml -data /path/to/csvdir [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	info, err := os.Stat(*dataPath)
	if err != nil || !info.IsDir() {
		log.Error("data path does not exist or is not a directory", "path", *dataPath)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	if *dryRun {
		log.Info("DRY RUN mode — nothing will be written")
	}

	target, cleanup, err := openTarget(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open target store", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer cleanup()

	keySpec, _ := session.KeySpecByName(cfg.History.KeySchema)
	imp := importer.New(target, keySpec, log, *dryRun)
	stats, err := imp.Import(ctx, *dataPath)
	if err != nil {
		log.Error("import failed", "error", err)
		printStats(log, stats)
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("import complete")
}

// openTarget connects the configured database backend. A csv driver makes no
// sense as an import target: the CSV directory is the source format.
func openTarget(ctx context.Context, cfg *config.Config, log *slog.Logger) (importer.Target, func(), error) {
	switch cfg.Storage.Driver {
	case "postgres":
		dsn := cfg.Database.DSN()
		if err := storage.RunMigrations(dsn, "migrations"); err != nil {
			return nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		log.Info("migrations applied")
		db, err := storage.New(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		log.Info("database connected")
		return db, db.Close, nil

	case "sqlite":
		db, err := localstore.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Info("sqlite opened", "path", cfg.Storage.SQLitePath)
		return db, func() { db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("storage driver %q cannot be an import target", cfg.Storage.Driver)
	}
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	log.Info("import stats",
		"plan_entries", stats.PlanEntries,
		"records_read", stats.RecordsRead,
		"records_written", stats.RecordsWritten,
		"people", stats.People,
	)
}
