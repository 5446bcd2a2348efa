// Package database provides PostgreSQL and SQLite connection management
// with lifecycle coordination.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/JaimeStill/promptops/pkg/lifecycle"
	"github.com/JaimeStill/promptops/pkg/query"
)

// System manages database connections and lifecycle coordination.
type System interface {
	// Connection returns the underlying database connection pool.
	Connection() *sql.DB
	// Dialect returns the SQL dialect of the connection.
	Dialect() query.Dialect
	// Start registers startup and shutdown hooks with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error
}

type database struct {
	conn        *sql.DB
	cfg         *Config
	migrations  fs.FS
	logger      *slog.Logger
	connTimeout time.Duration
}

// New creates a database system with the given configuration.
// It calls sql.Open to validate the DSN and configure pool parameters,
// but does not establish a connection until Start is called.
// When cfg.AutoMigrate is set, migrations from fsys are applied on startup.
func New(cfg *Config, migrations fs.FS, logger *slog.Logger) (System, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	return &database{
		conn:        db,
		cfg:         cfg,
		migrations:  migrations,
		logger:      logger.With("system", "database", "driver", cfg.Dialect().String()),
		connTimeout: cfg.ConnTimeoutDuration(),
	}, nil
}

// Open returns a configured connection pool for cfg.
// SQLite pools are limited to a single connection.
func Open(cfg *Config) (*sql.DB, error) {
	db, err := sql.Open(cfg.DriverName(), cfg.Dsn())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if cfg.Dialect() == query.SQLite {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	return db, nil
}

func (d *database) Connection() *sql.DB {
	return d.conn
}

func (d *database) Dialect() query.Dialect {
	return d.cfg.Dialect()
}

func (d *database) Start(lc *lifecycle.Coordinator) error {
	d.logger.Info("starting database connection")

	lc.OnStartup(func() error {
		pingCtx, cancel := context.WithTimeout(lc.Context(), d.connTimeout)
		defer cancel()

		if err := d.conn.PingContext(pingCtx); err != nil {
			d.logger.Error("database ping failed", "error", err)
			return fmt.Errorf("%w: %w", ErrNotReady, err)
		}

		if d.cfg.AutoMigrate && d.migrations != nil {
			if err := Migrate(d.cfg, d.migrations); err != nil {
				d.logger.Error("database migration failed", "error", err)
				return err
			}
			d.logger.Info("database migrations applied")
		}

		d.logger.Info("database connection established")
		return nil
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		d.logger.Info("closing database connection")

		if err := d.conn.Close(); err != nil {
			d.logger.Error("database close failed", "error", err)
			return
		}

		d.logger.Info("database connection closed")
	})

	return nil
}
