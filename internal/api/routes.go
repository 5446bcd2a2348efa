package api

import (
	"net/http"

	"github.com/JaimeStill/promptops/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain) {
	routes.Register(
		mux,
		domain.Prompts.Handler().Routes(),
	)
}
