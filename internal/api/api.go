// Package api assembles the API module with the prompt registry and route registration.
package api

import (
	"net/http"

	"github.com/JaimeStill/promptops/internal/config"
	"github.com/JaimeStill/promptops/internal/infrastructure"
	"github.com/JaimeStill/promptops/pkg/auth"
	"github.com/JaimeStill/promptops/pkg/middleware"
	"github.com/JaimeStill/promptops/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// Middleware runs in registration order: CORS, request logging, then
// identity verification.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	registerRoutes(mux, domain)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(auth.Middleware(runtime.Verifier, runtime.Logger))

	return m, nil
}
