package prompts

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/promptops/pkg/pagination"
)

// System defines the public contract for the prompt registry.
// Every operation acts on behalf of owner; prompts owned by someone else
// are reported as ErrNotFound.
type System interface {
	Handler() *Handler

	CreatePrompt(ctx context.Context, owner string, cmd CreateCommand) (*Prompt, error)
	ListPrompts(ctx context.Context, owner string, page pagination.PageRequest) (*pagination.PageResult[Prompt], error)
	FindPrompt(ctx context.Context, owner string, id uuid.UUID) (*Prompt, error)

	CreateVersion(ctx context.Context, owner string, promptID uuid.UUID, cmd VersionCommand) (*Version, error)
	ListVersions(ctx context.Context, owner string, promptID uuid.UUID) ([]Version, error)
	LatestVersion(ctx context.Context, owner string, promptID uuid.UUID) (*Version, error)
	FindVersion(ctx context.Context, owner string, promptID, versionID uuid.UUID) (*Version, error)
	RestoreVersion(ctx context.Context, owner string, promptID, versionID uuid.UUID) (*Version, error)

	Detail(ctx context.Context, owner string, promptID uuid.UUID) (*Detail, error)
	History(ctx context.Context, owner string, promptID uuid.UUID) ([]Version, error)
	Archive(ctx context.Context, owner string, promptID uuid.UUID) (*Archive, error)
}
