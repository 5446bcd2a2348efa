//go:build postgres

package prompts_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/promptops/internal/prompts"
	"github.com/JaimeStill/promptops/migrations"
	"github.com/JaimeStill/promptops/pkg/database"
)

// Run with: PROMPTOPS_TEST_DB_HOST=localhost go test -tags postgres ./internal/prompts/
var postgresEnv = &database.Env{
	Host:     "PROMPTOPS_TEST_DB_HOST",
	Port:     "PROMPTOPS_TEST_DB_PORT",
	Name:     "PROMPTOPS_TEST_DB_NAME",
	User:     "PROMPTOPS_TEST_DB_USER",
	Password: "PROMPTOPS_TEST_DB_PASSWORD",
	SSLMode:  "PROMPTOPS_TEST_DB_SSL_MODE",
}

// collisionStore counts version numbers lost to a concurrent writer.
type collisionStore struct {
	prompts.Store
	taken atomic.Int64
}

func (s *collisionStore) AppendVersion(ctx context.Context, v prompts.Version) (*prompts.Version, error) {
	out, err := s.Store.AppendVersion(ctx, v)
	if errors.Is(err, prompts.ErrVersionTaken) {
		s.taken.Add(1)
	}
	return out, err
}

func newPostgresStore(t *testing.T) prompts.Store {
	t.Helper()
	if os.Getenv(postgresEnv.Host) == "" {
		t.Skipf("%s not set", postgresEnv.Host)
	}

	cfg := &database.Config{
		Driver:       "postgres",
		Name:         "promptops_test",
		User:         "promptops",
		MaxOpenConns: 16,
		MaxIdleConns: 16,
	}
	if err := cfg.Finalize(postgresEnv); err != nil {
		t.Fatalf("database finalize: %v", err)
	}
	if err := database.Migrate(cfg, migrations.FS); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return prompts.NewRepository(db, cfg.Dialect())
}

func TestCreateVersionConcurrentPostgres(t *testing.T) {
	store := &collisionStore{Store: newPostgresStore(t)}

	ledger := prompts.Config{MaxAttempts: 10, RetryDelay: "2ms", MaxJitter: "10ms"}
	if err := ledger.Finalize(nil); err != nil {
		t.Fatalf("ledger finalize: %v", err)
	}
	sys := prompts.New(store, nil, discard(), pageConfig, ledger)
	ctx := context.Background()

	const (
		writers = 8
		rounds  = 5
	)

	for round := range rounds {
		p := mustCreate(t, sys, alice, "race "+uuid.NewString(), "v1")

		var wg sync.WaitGroup
		errs := make(chan error, writers)
		for range writers {
			wg.Go(func() {
				_, err := sys.CreateVersion(ctx, alice, p.ID, prompts.VersionCommand{Content: "parallel"})
				errs <- err
			})
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			if err != nil {
				t.Fatalf("round %d: CreateVersion error = %v", round, err)
			}
		}

		versions, err := sys.History(ctx, alice, p.ID)
		if err != nil {
			t.Fatalf("History error = %v", err)
		}
		assertContiguous(t, versions, writers+1)

		if store.taken.Load() > 0 {
			return
		}
	}

	t.Errorf("no unique violation observed in %d rounds of %d writers", rounds, writers)
}
