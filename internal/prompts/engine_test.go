package prompts_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/promptops/internal/prompts"
	"github.com/JaimeStill/promptops/migrations"
	"github.com/JaimeStill/promptops/pkg/database"
	"github.com/JaimeStill/promptops/pkg/lifecycle"
	"github.com/JaimeStill/promptops/pkg/pagination"
	"github.com/JaimeStill/promptops/pkg/storage"
)

const (
	alice = "alice"
	bob   = "bob"
)

var pageConfig = pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ledgerConfig(t *testing.T) prompts.Config {
	t.Helper()
	cfg := prompts.Config{RetryDelay: "1ms", MaxJitter: "1ms"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("ledger finalize: %v", err)
	}
	return cfg
}

func newStore(t *testing.T) prompts.Store {
	t.Helper()

	cfg := &database.Config{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "prompts.db"),
	}
	if err := cfg.Finalize(nil); err != nil {
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

func newEngine(t *testing.T, archive storage.System) prompts.System {
	t.Helper()
	return prompts.New(newStore(t), archive, discard(), pageConfig, ledgerConfig(t))
}

func mustCreate(t *testing.T, sys prompts.System, owner, name, content string) *prompts.Prompt {
	t.Helper()
	p, err := sys.CreatePrompt(context.Background(), owner, prompts.CreateCommand{Name: name, Content: content})
	if err != nil {
		t.Fatalf("CreatePrompt(%q) error = %v", name, err)
	}
	return p
}

func mustAppend(t *testing.T, sys prompts.System, p *prompts.Prompt, content string) *prompts.Version {
	t.Helper()
	v, err := sys.CreateVersion(context.Background(), p.OwnerID, p.ID, prompts.VersionCommand{Content: content})
	if err != nil {
		t.Fatalf("CreateVersion error = %v", err)
	}
	return v
}

func assertContiguous(t *testing.T, versions []prompts.Version, n int) {
	t.Helper()
	if len(versions) != n {
		t.Fatalf("len(versions) = %d, want %d", len(versions), n)
	}
	for i, v := range versions {
		if want := n - i; v.VersionNum != want {
			t.Errorf("versions[%d].VersionNum = %d, want %d", i, v.VersionNum, want)
		}
	}
}

func TestCreatePrompt(t *testing.T) {
	sys := newEngine(t, nil)
	ctx := context.Background()
	desc := "  Summaries for release notes  "

	p, err := sys.CreatePrompt(ctx, alice, prompts.CreateCommand{
		Name:        "  Release Notes  ",
		Description: &desc,
		Content:     "Summarize the changes.\n",
	})
	if err != nil {
		t.Fatalf("CreatePrompt error = %v", err)
	}

	if p.Name != "Release Notes" {
		t.Errorf("Name = %q, want trimmed", p.Name)
	}
	if p.Slug != "release-notes" {
		t.Errorf("Slug = %q, want release-notes", p.Slug)
	}
	if p.Description == nil || *p.Description != "Summaries for release notes" {
		t.Errorf("Description = %v", p.Description)
	}
	if p.OwnerID != alice {
		t.Errorf("OwnerID = %q, want %q", p.OwnerID, alice)
	}

	latest, err := sys.LatestVersion(ctx, alice, p.ID)
	if err != nil {
		t.Fatalf("LatestVersion error = %v", err)
	}
	if latest.VersionNum != 1 {
		t.Errorf("VersionNum = %d, want 1", latest.VersionNum)
	}
	if latest.Content != "Summarize the changes.\n" {
		t.Errorf("Content = %q, want verbatim", latest.Content)
	}
	if latest.CreatedBy != alice {
		t.Errorf("CreatedBy = %q, want %q", latest.CreatedBy, alice)
	}

	found, err := sys.FindPrompt(ctx, alice, p.ID)
	if err != nil {
		t.Fatalf("FindPrompt error = %v", err)
	}
	if !found.CreatedAt.Equal(p.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", found.CreatedAt, p.CreatedAt)
	}
}

func TestCreatePromptAllowsEmptyInitialContent(t *testing.T) {
	sys := newEngine(t, nil)
	p := mustCreate(t, sys, alice, "Blank", "")

	v, err := sys.LatestVersion(context.Background(), alice, p.ID)
	if err != nil {
		t.Fatalf("LatestVersion error = %v", err)
	}
	if v.VersionNum != 1 || v.Content != "" {
		t.Errorf("latest = %d %q, want 1 \"\"", v.VersionNum, v.Content)
	}
}

func TestCreatePromptNonLatinNames(t *testing.T) {
	sys := newEngine(t, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		slug string
	}{
		{"日本語プロンプト", "日本語プロンプト"},
		{"Резюме", "резюме"},
		{"Résumé", "résumé"},
	}

	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			p := mustCreate(t, sys, alice, tt.name, "content")
			if p.Slug != tt.slug {
				t.Errorf("Slug = %q, want %q", p.Slug, tt.slug)
			}

			found, err := sys.FindPrompt(ctx, alice, p.ID)
			if err != nil {
				t.Fatalf("FindPrompt error = %v", err)
			}
			if found.Name != tt.name || found.Slug != tt.slug {
				t.Errorf("found = %q/%q, want %q/%q", found.Name, found.Slug, tt.name, tt.slug)
			}
		})
	}

	_, err := sys.CreatePrompt(ctx, bob, prompts.CreateCommand{Name: "РЕЗЮМЕ"})
	if !errors.Is(err, prompts.ErrConflict) {
		t.Errorf("CreatePrompt(РЕЗЮМЕ) error = %v, want ErrConflict", err)
	}
}

func TestCreatePromptValidation(t *testing.T) {
	sys := newEngine(t, nil)

	tests := []struct {
		name  string
		owner string
		cmd   prompts.CreateCommand
		want  error
	}{
		{"empty name", alice, prompts.CreateCommand{Name: "   "}, prompts.ErrEmptyName},
		{"no slug characters", alice, prompts.CreateCommand{Name: "!!!"}, prompts.ErrInvalidSlug},
		{"symbols only", alice, prompts.CreateCommand{Name: "🚀 → ✨"}, prompts.ErrInvalidSlug},
		{"no owner", "", prompts.CreateCommand{Name: "ok"}, prompts.ErrEmptyOwner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sys.CreatePrompt(context.Background(), tt.owner, tt.cmd)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
			if !errors.Is(err, prompts.ErrValidation) {
				t.Errorf("error = %v, want ErrValidation kind", err)
			}
		})
	}
}

func TestCreatePromptSlugConflict(t *testing.T) {
	sys := newEngine(t, nil)
	ctx := context.Background()
	mustCreate(t, sys, alice, "Code Review", "first")

	_, err := sys.CreatePrompt(ctx, bob, prompts.CreateCommand{Name: "code  review!", Content: "second"})
	if !errors.Is(err, prompts.ErrConflict) {
		t.Fatalf("error = %v, want ErrConflict", err)
	}

	result, err := sys.ListPrompts(ctx, bob, pagination.PageRequest{})
	if err != nil {
		t.Fatalf("ListPrompts error = %v", err)
	}
	if result.Total != 0 {
		t.Errorf("bob Total = %d, want 0 after conflict", result.Total)
	}
}

func TestCreateVersionContiguous(t *testing.T) {
	sys := newEngine(t, nil)
	ctx := context.Background()
	p := mustCreate(t, sys, alice, "Triage", "v1")

	for i := 2; i <= 5; i++ {
		v := mustAppend(t, sys, p, "content")
		if v.VersionNum != i {
			t.Errorf("VersionNum = %d, want %d", v.VersionNum, i)
		}
	}

	versions, err := sys.ListVersions(ctx, alice, p.ID)
	if err != nil {
		t.Fatalf("ListVersions error = %v", err)
	}
	assertContiguous(t, versions, 5)
}

// SQLite pools hold a single connection, so concurrent writers are
// serialized and never collide on a version number. The collision retry
// path runs against PostgreSQL in engine_postgres_test.go and against a
// racing Store in retry_test.go.
func TestCreateVersionConcurrent(t *testing.T) {
	sys := newEngine(t, nil)
	ctx := context.Background()
	p := mustCreate(t, sys, alice, "Concurrent", "v1")

	const writers = 8
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
			t.Errorf("CreateVersion error = %v", err)
		}
	}

	versions, err := sys.History(ctx, alice, p.ID)
	if err != nil {
		t.Fatalf("History error = %v", err)
	}
	assertContiguous(t, versions, writers+1)
}

func TestCreateVersionEmptyContent(t *testing.T) {
	sys := newEngine(t, nil)
	ctx := context.Background()
	p := mustCreate(t, sys, alice, "Guarded", "v1")

	for _, content := range []string{"", "   ", "\n\t"} {
		_, err := sys.CreateVersion(ctx, alice, p.ID, prompts.VersionCommand{Content: content})
		if !errors.Is(err, prompts.ErrValidation) {
			t.Errorf("CreateVersion(%q) error = %v, want ErrValidation", content, err)
		}
	}

	versions, err := sys.ListVersions(ctx, alice, p.ID)
	if err != nil {
		t.Fatalf("ListVersions error = %v", err)
	}
	assertContiguous(t, versions, 1)
}

func TestCreateVersionStoresContentVerbatim(t *testing.T) {
	sys := newEngine(t, nil)
	p := mustCreate(t, sys, alice, "Verbatim", "v1")

	content := "  indented\n\ttabbed\n"
	v := mustAppend(t, sys, p, content)
	if v.Content != content {
		t.Errorf("Content = %q, want %q", v.Content, content)
	}
}

func TestCreateVersionMissingPrompt(t *testing.T) {
	sys := newEngine(t, nil)

	_, err := sys.CreateVersion(context.Background(), alice, uuid.New(), prompts.VersionCommand{Content: "x"})
	if !errors.Is(err, prompts.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestOwnerVisibility(t *testing.T) {
	sys := newEngine(t, nil)
	ctx := context.Background()
	p := mustCreate(t, sys, alice, "Private", "secret")
	latest, err := sys.LatestVersion(ctx, alice, p.ID)
	if err != nil {
		t.Fatalf("LatestVersion error = %v", err)
	}

	calls := map[string]func() error{
		"FindPrompt": func() error { _, err := sys.FindPrompt(ctx, bob, p.ID); return err },
		"CreateVersion": func() error {
			_, err := sys.CreateVersion(ctx, bob, p.ID, prompts.VersionCommand{Content: "x"})
			return err
		},
		"ListVersions":   func() error { _, err := sys.ListVersions(ctx, bob, p.ID); return err },
		"LatestVersion":  func() error { _, err := sys.LatestVersion(ctx, bob, p.ID); return err },
		"FindVersion":    func() error { _, err := sys.FindVersion(ctx, bob, p.ID, latest.ID); return err },
		"RestoreVersion": func() error { _, err := sys.RestoreVersion(ctx, bob, p.ID, latest.ID); return err },
		"Detail":         func() error { _, err := sys.Detail(ctx, bob, p.ID); return err },
		"History":        func() error { _, err := sys.History(ctx, bob, p.ID); return err },
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			if err := call(); !errors.Is(err, prompts.ErrNotFound) {
				t.Errorf("error = %v, want ErrNotFound", err)
			}
		})
	}

	versions, err := sys.ListVersions(ctx, alice, p.ID)
	if err != nil {
		t.Fatalf("ListVersions error = %v", err)
	}
	assertContiguous(t, versions, 1)
}

func TestRestoreVersion(t *testing.T) {
	sys := newEngine(t, nil)
	ctx := context.Background()
	p := mustCreate(t, sys, alice, "Restorable", "first draft")
	mustAppend(t, sys, p, "second draft")
	mustAppend(t, sys, p, "third draft")

	versions, err := sys.ListVersions(ctx, alice, p.ID)
	if err != nil {
		t.Fatalf("ListVersions error = %v", err)
	}
	v1 := versions[len(versions)-1]

	restored, err := sys.RestoreVersion(ctx, alice, p.ID, v1.ID)
	if err != nil {
		t.Fatalf("RestoreVersion error = %v", err)
	}
	if restored.VersionNum != 4 {
		t.Errorf("VersionNum = %d, want 4", restored.VersionNum)
	}
	if restored.Content != "first draft" {
		t.Errorf("Content = %q, want first draft", restored.Content)
	}
	if restored.ID == v1.ID {
		t.Error("restore must create a new version id")
	}

	t.Run("latest appends a duplicate", func(t *testing.T) {
		again, err := sys.RestoreVersion(ctx, alice, p.ID, restored.ID)
		if err != nil {
			t.Fatalf("RestoreVersion error = %v", err)
		}
		if again.VersionNum != 5 || again.Content != restored.Content {
			t.Errorf("restore of latest = %d %q, want 5 %q", again.VersionNum, again.Content, restored.Content)
		}
	})

	t.Run("version of another prompt", func(t *testing.T) {
		other := mustCreate(t, sys, alice, "Other", "other")
		_, err := sys.RestoreVersion(ctx, alice, other.ID, v1.ID)
		if !errors.Is(err, prompts.ErrVersionNotFound) {
			t.Errorf("error = %v, want ErrVersionNotFound", err)
		}
	})

	t.Run("empty first version", func(t *testing.T) {
		blank := mustCreate(t, sys, alice, "Blank Slate", "")
		first, err := sys.LatestVersion(ctx, alice, blank.ID)
		if err != nil {
			t.Fatalf("LatestVersion error = %v", err)
		}
		if _, err := sys.RestoreVersion(ctx, alice, blank.ID, first.ID); !errors.Is(err, prompts.ErrValidation) {
			t.Errorf("error = %v, want ErrValidation", err)
		}
	})
}

func TestDetail(t *testing.T) {
	sys := newEngine(t, nil)
	ctx := context.Background()
	p := mustCreate(t, sys, alice, "Detailed", "v1")
	mustAppend(t, sys, p, "v2")

	d, err := sys.Detail(ctx, alice, p.ID)
	if err != nil {
		t.Fatalf("Detail error = %v", err)
	}
	if d.ID != p.ID || d.Slug != "detailed" {
		t.Errorf("Detail prompt = %+v", d.Prompt)
	}
	if d.LatestVersion.VersionNum != 2 || d.LatestVersion.Content != "v2" {
		t.Errorf("LatestVersion = %d %q, want 2 v2", d.LatestVersion.VersionNum, d.LatestVersion.Content)
	}

	if _, err := sys.Detail(ctx, alice, uuid.New()); !errors.Is(err, prompts.ErrNotFound) {
		t.Errorf("missing prompt error = %v, want ErrNotFound", err)
	}
}

func TestListPrompts(t *testing.T) {
	sys := newEngine(t, nil)
	ctx := context.Background()

	names := []string{"Alpha", "Bravo", "Charlie", "Delta", "Echo"}
	for _, name := range names {
		mustCreate(t, sys, alice, name, name)
	}
	mustCreate(t, sys, bob, "Foxtrot", "bob's")

	t.Run("newest first", func(t *testing.T) {
		result, err := sys.ListPrompts(ctx, alice, pagination.PageRequest{})
		if err != nil {
			t.Fatalf("ListPrompts error = %v", err)
		}
		if result.Total != len(names) {
			t.Fatalf("Total = %d, want %d", result.Total, len(names))
		}
		for i, p := range result.Data {
			if want := names[len(names)-1-i]; p.Name != want {
				t.Errorf("Data[%d].Name = %q, want %q", i, p.Name, want)
			}
		}
	})

	t.Run("pages", func(t *testing.T) {
		result, err := sys.ListPrompts(ctx, alice, pagination.PageRequest{Page: 2, PageSize: 2})
		if err != nil {
			t.Fatalf("ListPrompts error = %v", err)
		}
		if result.TotalPages != 3 || !result.HasNext() {
			t.Errorf("TotalPages = %d HasNext = %v", result.TotalPages, result.HasNext())
		}
		if len(result.Data) != 2 || result.Data[0].Name != "Charlie" || result.Data[1].Name != "Bravo" {
			t.Errorf("page 2 = %+v", result.Data)
		}
	})

	t.Run("page size clamped", func(t *testing.T) {
		result, err := sys.ListPrompts(ctx, alice, pagination.PageRequest{PageSize: 1000})
		if err != nil {
			t.Fatalf("ListPrompts error = %v", err)
		}
		if result.PageSize != pageConfig.MaxPageSize {
			t.Errorf("PageSize = %d, want %d", result.PageSize, pageConfig.MaxPageSize)
		}
	})

	t.Run("search is case-insensitive", func(t *testing.T) {
		search := "CHAR"
		result, err := sys.ListPrompts(ctx, alice, pagination.PageRequest{Search: &search})
		if err != nil {
			t.Fatalf("ListPrompts error = %v", err)
		}
		if result.Total != 1 || result.Data[0].Name != "Charlie" {
			t.Errorf("search result = %+v", result.Data)
		}
	})

	t.Run("client sort", func(t *testing.T) {
		result, err := sys.ListPrompts(ctx, alice, pagination.PageRequest{
			Sort: pagination.SortFields{{Field: "Name"}},
		})
		if err != nil {
			t.Fatalf("ListPrompts error = %v", err)
		}
		if result.Data[0].Name != "Alpha" {
			t.Errorf("first = %q, want Alpha", result.Data[0].Name)
		}
	})

	t.Run("only owned prompts", func(t *testing.T) {
		result, err := sys.ListPrompts(ctx, bob, pagination.PageRequest{})
		if err != nil {
			t.Fatalf("ListPrompts error = %v", err)
		}
		if result.Total != 1 || result.Data[0].Name != "Foxtrot" {
			t.Errorf("bob's prompts = %+v", result.Data)
		}
	})
}

func TestFindVersion(t *testing.T) {
	sys := newEngine(t, nil)
	ctx := context.Background()
	p := mustCreate(t, sys, alice, "Browse", "v1")
	v2 := mustAppend(t, sys, p, "v2")

	got, err := sys.FindVersion(ctx, alice, p.ID, v2.ID)
	if err != nil {
		t.Fatalf("FindVersion error = %v", err)
	}
	if got.VersionNum != 2 || got.Content != "v2" {
		t.Errorf("FindVersion = %d %q", got.VersionNum, got.Content)
	}

	if _, err := sys.FindVersion(ctx, alice, p.ID, uuid.New()); !errors.Is(err, prompts.ErrVersionNotFound) {
		t.Errorf("missing version error = %v, want ErrVersionNotFound", err)
	}
}

type memoryStorage struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	uploads int
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{blobs: make(map[string][]byte)}
}

func (m *memoryStorage) Start(*lifecycle.Coordinator) error { return nil }

func (m *memoryStorage) Upload(_ context.Context, key string, r io.Reader, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = data
	m.uploads++
	return nil
}

func (m *memoryStorage) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.blobs[key]
	return ok, nil
}

func TestArchive(t *testing.T) {
	blobs := newMemoryStorage()
	sys := newEngine(t, blobs)
	ctx := context.Background()
	p := mustCreate(t, sys, alice, "Archived Prompt", "v1")
	mustAppend(t, sys, p, "v2")

	first, err := sys.Archive(ctx, alice, p.ID)
	if err != nil {
		t.Fatalf("Archive error = %v", err)
	}
	if first.Key != "prompts/archived-prompt/v2.json" {
		t.Errorf("Key = %q", first.Key)
	}
	if !first.Created || first.VersionNum != 2 {
		t.Errorf("Archive = %+v, want created at v2", first)
	}

	var snap struct {
		Prompt   prompts.Prompt    `json:"prompt"`
		Versions []prompts.Version `json:"versions"`
	}
	if err := json.Unmarshal(blobs.blobs[first.Key], &snap); err != nil {
		t.Fatalf("snapshot decode: %v", err)
	}
	if snap.Prompt.ID != p.ID {
		t.Errorf("snapshot prompt = %v, want %v", snap.Prompt.ID, p.ID)
	}
	assertContiguous(t, snap.Versions, 2)
	if first.SizeBytes != len(blobs.blobs[first.Key]) {
		t.Errorf("SizeBytes = %d, want %d", first.SizeBytes, len(blobs.blobs[first.Key]))
	}

	t.Run("idempotent", func(t *testing.T) {
		before := bytes.Clone(blobs.blobs[first.Key])
		again, err := sys.Archive(ctx, alice, p.ID)
		if err != nil {
			t.Fatalf("Archive error = %v", err)
		}
		if again.Created {
			t.Error("second archive reported Created")
		}
		if blobs.uploads != 1 {
			t.Errorf("uploads = %d, want 1", blobs.uploads)
		}
		if !bytes.Equal(before, blobs.blobs[first.Key]) {
			t.Error("snapshot was rewritten")
		}
	})

	t.Run("new version gets a new key", func(t *testing.T) {
		mustAppend(t, sys, p, "v3")
		next, err := sys.Archive(ctx, alice, p.ID)
		if err != nil {
			t.Fatalf("Archive error = %v", err)
		}
		if !strings.HasSuffix(next.Key, "/v3.json") || !next.Created {
			t.Errorf("Archive = %+v", next)
		}
	})

	t.Run("not owned", func(t *testing.T) {
		if _, err := sys.Archive(ctx, bob, p.ID); !errors.Is(err, prompts.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})
}

func TestArchiveDisabled(t *testing.T) {
	sys := newEngine(t, nil)
	p := mustCreate(t, sys, alice, "No Storage", "v1")

	if _, err := sys.Archive(context.Background(), alice, p.ID); !errors.Is(err, prompts.ErrArchiveDisabled) {
		t.Errorf("error = %v, want ErrArchiveDisabled", err)
	}
}
