package api_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JaimeStill/promptops/internal/api"
	"github.com/JaimeStill/promptops/internal/config"
	"github.com/JaimeStill/promptops/internal/infrastructure"
	"github.com/JaimeStill/promptops/internal/prompts"
	"github.com/JaimeStill/promptops/pkg/auth"
	"github.com/JaimeStill/promptops/pkg/database"
	"github.com/JaimeStill/promptops/pkg/middleware"
	"github.com/JaimeStill/promptops/pkg/module"
	"github.com/JaimeStill/promptops/pkg/pagination"
)

func validConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{
		Database: database.Config{
			Driver:      "sqlite",
			Path:        filepath.Join(t.TempDir(), "promptops.db"),
			AutoMigrate: true,
		},
		API: config.APIConfig{
			BasePath: "/api",
			CORS: middleware.CORSConfig{
				Enabled: false,
			},
			Pagination: pagination.Config{
				DefaultPageSize: 20,
				MaxPageSize:     100,
			},
		},
		Auth: auth.Config{Mode: auth.ModeHeader, Header: "X-User-ID"},
		Ledger: prompts.Config{
			MaxAttempts: 5,
			RetryDelay:  "1ms",
			MaxJitter:   "1ms",
		},
	}
	if err := cfg.Database.Finalize(nil); err != nil {
		t.Fatalf("database finalize: %v", err)
	}
	return cfg
}

func setupInfra(t *testing.T, cfg *config.Config) *infrastructure.Infrastructure {
	t.Helper()
	infra, err := infrastructure.NewWithLogger(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("infrastructure.New() error = %v", err)
	}
	if err := infra.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := infra.Lifecycle.WaitForStartup(); err != nil {
		t.Fatalf("WaitForStartup() error = %v", err)
	}
	t.Cleanup(func() { infra.Database.Connection().Close() })
	return infra
}

func TestNewRuntime(t *testing.T) {
	cfg := validConfig(t)
	infra := setupInfra(t, cfg)

	runtime := api.NewRuntime(cfg, infra)

	if runtime.Pagination.DefaultPageSize != 20 {
		t.Errorf("pagination default page size: got %d, want 20", runtime.Pagination.DefaultPageSize)
	}
	if runtime.Ledger.MaxAttempts != 5 {
		t.Errorf("ledger max attempts: got %d, want 5", runtime.Ledger.MaxAttempts)
	}
	if runtime.Logger == nil || runtime.Database == nil || runtime.Lifecycle == nil || runtime.Verifier == nil {
		t.Errorf("runtime missing systems: %+v", runtime.Infrastructure)
	}
	if runtime.Storage != nil {
		t.Error("runtime storage should be nil when disabled")
	}
}

func TestNewDomain(t *testing.T) {
	cfg := validConfig(t)
	domain := api.NewDomain(api.NewRuntime(cfg, setupInfra(t, cfg)))

	if domain.Prompts == nil {
		t.Fatal("Prompts system is nil")
	}
}

func newServer(t *testing.T) http.Handler {
	t.Helper()
	cfg := validConfig(t)

	m, err := api.NewModule(cfg, setupInfra(t, cfg))
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}
	if m.Prefix() != "/api" {
		t.Errorf("prefix: got %s, want /api", m.Prefix())
	}

	router := module.NewRouter()
	router.Mount(m)
	return router
}

func do(t *testing.T, h http.Handler, method, path, user, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestModuleRequiresIdentity(t *testing.T) {
	h := newServer(t)

	rec := do(t, h, "GET", "/api/prompts", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestModulePromptLifecycle(t *testing.T) {
	h := newServer(t)

	rec := do(t, h, "POST", "/api/prompts", "alice", `{"name":"Release Notes","content":"v1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	var p prompts.Prompt
	if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
		t.Fatalf("decode prompt: %v", err)
	}
	base := "/api/prompts/" + p.ID.String()

	rec = do(t, h, "POST", "/api/prompts", "bob", `{"name":"release notes","content":"dup"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate slug status = %d, want 409", rec.Code)
	}

	rec = do(t, h, "POST", base+"/versions", "alice", `{"content":"v2"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add version status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, "POST", base+"/version", "alice", `{"content":"v3"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("alias add version status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, "GET", base+"/versions", "alice", "")
	var history []prompts.Version
	if err := json.NewDecoder(rec.Body).Decode(&history); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(history) != 3 || history[0].VersionNum != 3 {
		t.Fatalf("history = %+v", history)
	}

	v1 := history[2]
	rec = do(t, h, "POST", base+"/versions/"+v1.ID.String()+"/restore", "alice", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("restore status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, "GET", base, "alice", "")
	var detail prompts.Detail
	if err := json.NewDecoder(rec.Body).Decode(&detail); err != nil {
		t.Fatalf("decode detail: %v", err)
	}
	if detail.LatestVersion.VersionNum != 4 || detail.LatestVersion.Content != "v1" {
		t.Errorf("latest = %d %q, want 4 v1", detail.LatestVersion.VersionNum, detail.LatestVersion.Content)
	}

	rec = do(t, h, "GET", base, "bob", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("foreign detail status = %d, want 404", rec.Code)
	}

	rec = do(t, h, "POST", base+"/archive", "alice", "")
	if rec.Code != http.StatusNotImplemented {
		t.Errorf("archive status = %d, want 501", rec.Code)
	}

	rec = do(t, h, "GET", "/api/prompts?search=release", "alice", "")
	var page pagination.PageResult[prompts.Prompt]
	if err := json.NewDecoder(rec.Body).Decode(&page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.Total != 1 {
		t.Errorf("search total = %d, want 1", page.Total)
	}
}
