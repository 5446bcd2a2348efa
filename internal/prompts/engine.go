package prompts

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/promptops/pkg/pagination"
	"github.com/JaimeStill/promptops/pkg/storage"
)

type engine struct {
	store      Store
	archive    storage.System
	logger     *slog.Logger
	pagination pagination.Config
	ledger     Config
	now        func() time.Time
}

// New creates the prompt registry over store. archive may be nil, in which
// case Archive reports ErrArchiveDisabled.
func New(
	store Store,
	archive storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
	ledger Config,
) System {
	return &engine{
		store:      store,
		archive:    archive,
		logger:     logger.With("system", "prompts"),
		pagination: pagination,
		ledger:     ledger,
		now:        now,
	}
}

func (e *engine) Handler() *Handler {
	return NewHandler(e, e.logger, e.pagination)
}

// Timestamps are kept at microsecond precision so they survive both storage formats.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// Version 7 ids sort by creation time, which keeps the id tie-break
// consistent with created_at ordering.
func newID() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}
