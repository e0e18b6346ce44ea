package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/pageza/cuistot/backend/config"
	"github.com/pageza/cuistot/backend/internal/database"
	"github.com/pageza/cuistot/backend/internal/logger"
)

func main() {
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	version := flag.Bool("version", false, "Print the current migration version")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Format: "console"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if cfg.DBDriver != "postgres" {
		log.Fatal("versioned migrations only run against postgres", zap.String("driver", cfg.DBDriver))
	}

	db, err := database.OpenSQL(cfg)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	m, err := database.NewMigrator(db, log)
	if err != nil {
		log.Fatal("failed to create migrator", zap.Error(err))
	}

	switch {
	case *version:
		v, dirty, err := m.Version()
		if err != nil {
			log.Fatal("failed to read version", zap.Error(err))
		}
		fmt.Printf("version %d (dirty: %t)\n", v, dirty)
	case *rollback:
		if err := m.Down(); err != nil {
			log.Fatal("rollback failed", zap.Error(err))
		}
	default:
		if err := m.Up(); err != nil {
			log.Fatal("migration failed", zap.Error(err))
		}
	}
}
