package api

import (
	"github.com/JaimeStill/promptops/internal/prompts"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Prompts prompts.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	store := prompts.NewRepository(
		runtime.Database.Connection(),
		runtime.Database.Dialect(),
	)

	return &Domain{
		Prompts: prompts.New(
			store,
			runtime.Storage,
			runtime.Logger,
			runtime.Pagination,
			runtime.Ledger,
		),
	}
}
