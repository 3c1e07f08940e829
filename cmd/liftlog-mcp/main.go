// liftlog-mcp serves the workout log over the Model Context Protocol on
// stdio. It either opens the configured store directly (local mode) or talks
// to a running liftlog server's REST API (-remote), which is how it is used
// over Tailscale.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/csvstore"
	"github.com/claude/liftlog/internal/localstore"
	"github.com/claude/liftlog/internal/mcp"
	"github.com/claude/liftlog/internal/session"
	"github.com/claude/liftlog/internal/storage"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	remote := flag.String("remote", "", "base URL of a running liftlog server; empty means direct store access")
	flag.Parse()

	// Stdout carries the MCP transport, so logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var ds mcp.DataSource
	var cleanup func()
	if *remote != "" {
		ds = mcp.NewHTTPClient(*remote, cfg.Auth.APIKey)
		cleanup = func() {}
		log.Info("remote mode", "url", *remote)
	} else {
		ds, cleanup, err = openSource(ctx, cfg, log)
		if err != nil {
			log.Error("failed to open storage", "driver", cfg.Storage.Driver, "error", err)
			os.Exit(1)
		}
	}
	defer cleanup()

	keySpec, _ := session.KeySpecByName(cfg.History.KeySchema)
	s := mcp.New(ds, keySpec, cfg.People, Version, log)

	log.Info("MCP server starting on stdio", "version", Version)
	if err := mcpserver.ServeStdio(s); err != nil {
		log.Error("MCP server error", "error", err)
		os.Exit(1)
	}
}

func openSource(ctx context.Context, cfg *config.Config, log *slog.Logger) (mcp.DataSource, func(), error) {
	switch cfg.Storage.Driver {
	case "postgres":
		dsn := cfg.Database.DSN()
		if err := storage.RunMigrations(dsn, "migrations"); err != nil {
			return nil, nil, fmt.Errorf("running migrations: %w", err)
		}
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

	case "csv":
		log.Info("csv store", "dir", cfg.Storage.CSVDir)
		return csvstore.New(cfg.Storage.CSVDir), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
