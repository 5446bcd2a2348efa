package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"

	"github.com/JaimeStill/promptops/internal/config"
	"github.com/JaimeStill/promptops/migrations"
	"github.com/JaimeStill/promptops/pkg/database"
	"github.com/JaimeStill/promptops/pkg/query"
)

const envDSN = "PROMPTOPS_DB_DSN"

func main() {
	var (
		driver  = flag.String("driver", "", "Database driver (postgres or sqlite); defaults to the configured driver")
		dsn     = flag.String("dsn", "", "Database URL (postgres://... or sqlite://path); defaults to the configured database")
		up      = flag.Bool("up", false, "Run all up migrations")
		down    = flag.Bool("down", false, "Run all down migrations")
		steps   = flag.Int("steps", 0, "Number of migrations (positive=up, negative=down)")
		version = flag.Bool("version", false, "Print current migration version")
		force   = flag.Int("force", -1, "Force set version (use with caution)")
	)
	flag.Parse()

	forceSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "force" {
			forceSet = true
		}
	})

	if *dsn == "" {
		*dsn = os.Getenv(envDSN)
	}

	m, err := newMigrator(*driver, *dsn)
	if err != nil {
		log.Fatalf("failed to create migrator: %v", err)
	}
	defer m.Close()

	switch {
	case *version:
		v, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			log.Fatalf("failed to get version: %v", err)
		}
		fmt.Printf("version: %d, dirty: %v\n", v, dirty)
	case forceSet:
		if err := m.Force(*force); err != nil {
			log.Fatalf("failed to force version: %v", err)
		}
		fmt.Printf("forced to version %d\n", *force)
	case *up:
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("failed to run up migrations: %v", err)
		}
		fmt.Println("migrations applied successfully")
	case *down:
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("failed to run down migrations: %v", err)
		}
		fmt.Println("migrations reverted successfully")
	case *steps != 0:
		if err := m.Steps(*steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("failed to run migrations: %v", err)
		}
		fmt.Printf("applied %d migration steps\n", *steps)
	default:
		fmt.Println("usage: migrate [-driver postgres|sqlite] [-dsn <url>] [-up|-down|-steps N|-version|-force N]")
		flag.PrintDefaults()
	}
}

// newMigrator uses an explicit URL when one is given and otherwise the
// database section of the loaded configuration.
func newMigrator(driver, dsn string) (*migrate.Migrate, error) {
	if dsn != "" {
		if driver == "" {
			driver = "postgres"
		}
		d, err := query.ParseDialect(driver)
		if err != nil {
			return nil, err
		}
		return database.NewMigratorURL(d, dsn, migrations.FS)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if driver != "" {
		d, err := query.ParseDialect(driver)
		if err != nil {
			return nil, err
		}
		if d != cfg.Database.Dialect() {
			return nil, fmt.Errorf("-driver %s conflicts with configured driver %s; pass -dsn", driver, cfg.Database.Driver)
		}
	}
	return database.NewMigrator(&cfg.Database, migrations.FS)
}
